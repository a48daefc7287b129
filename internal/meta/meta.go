// Where: cli/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep product naming and directory layout in one place.
package meta

const (
	// Project Identity
	AppName   = "bsam"
	EnvPrefix = "BSAM"

	// Directory Layout
	HomeDir          = ".bsam"
	CredentialDir    = ".bce"
	DefaultTemplate  = "template.yaml"
	ArchiveExtension = ".zip"

	// Labels applied to local invoke containers.
	LabelPrefix = "com.bsam"
)
