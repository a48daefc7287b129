// Where: cli/internal/infra/envutil/envutil.go
// What: Helpers for prefixed host environment variables.
// Why: Keep BSAM_* lookups consistent across config and commands.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru/bsam-cli/internal/meta"
)

// HostEnvKey returns the prefixed variable name.
// Example: HostEnvKey("ENDPOINT") returns "BSAM_ENDPOINT".
func HostEnvKey(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// GetHostEnv returns the trimmed value of the prefixed variable.
func GetHostEnv(suffix string) string {
	return strings.TrimSpace(os.Getenv(HostEnvKey(suffix)))
}
