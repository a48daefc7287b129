// Where: cli/internal/command/error_helpers.go
// What: Shared CLI error output.
// Why: Map error kinds to one message plus an actionable hint and exit code 1.
package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/docker"
	"github.com/poruru/bsam-cli/internal/infra/ui"
	"github.com/poruru/bsam-cli/internal/meta"
)

// exitWithError prints an error message to the output writer and returns
// exit code 1 for CLI error handling.
func exitWithError(out io.Writer, err error) int {
	return reportError(ui.New(out, false), err)
}

func reportError(console ui.UserInterface, err error) int {
	console.Error(err.Error())
	if hint := errorHint(err); hint != "" {
		console.Info("Hint: " + hint)
	}
	return 1
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, function.ErrCredentialStoreMissing):
		return fmt.Sprintf(
			"create ~/%s/credentials and ~/%s/config, or point %s_CREDENTIALS_FILE at them",
			meta.CredentialDir, meta.CredentialDir, meta.EnvPrefix,
		)
	case errors.Is(err, function.ErrProbeUnknown):
		return "retry later, or pass --create-on-probe-error to create the function anyway"
	case errors.Is(err, docker.ErrInvocationTimeout):
		return "raise Timeout in the template, or attach a debugger to lift the limit"
	case errors.Is(err, function.ErrNotFound):
		return "use a FunctionName or logical ID declared in the template"
	}
	return ""
}
