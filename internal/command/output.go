// Where: cli/internal/command/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface construction from global flags.
package command

import (
	"io"

	"github.com/poruru/bsam-cli/internal/infra/ui"
)

func newUI(out io.Writer, cli CLI) ui.UserInterface {
	return ui.New(out, !cli.NoEmoji)
}
