// Where: cli/internal/version/version.go
// What: Version information retrieval.
// Why: Report the release version or the VCS revision the binary was built from.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is stamped at release time with
// -ldflags "-X github.com/poruru/bsam-cli/internal/version.Version=v0.1.0".
var Version = ""

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the stamped release version when present. Otherwise it
// returns the short VCS revision, with "(dirty)" appended for a modified
// tree, or "dev" when no build info is available.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			if setting.Value == "true" {
				modified = true
			}
		}
	}

	if revision == "" {
		return "dev"
	}

	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
