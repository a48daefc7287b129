// Where: cli/internal/command/branding.go
// What: Brand-aware CLI naming.
// Why: Keep user-facing command names consistent with the installed binary name.
package command

import (
	"os"
	"strings"

	"github.com/poruru/bsam-cli/internal/meta"
)

func cliName() string {
	name := strings.TrimSpace(os.Getenv("CLI_CMD"))
	if name == "" {
		name = meta.AppName
	}
	return name
}
