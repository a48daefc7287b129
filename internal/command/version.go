// Where: cli/internal/command/version.go
// What: version command handler.
// Why: Print the build version.
package command

import (
	"context"

	"github.com/poruru/bsam-cli/internal/version"
)

func runVersion(_ context.Context, cli CLI, deps Dependencies) int {
	newUI(deps.Out, cli).Info(version.GetVersion())
	return 0
}
