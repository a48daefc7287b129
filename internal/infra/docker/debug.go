// Where: cli/internal/infra/docker/debug.go
// What: Debugger entrypoints per runtime family.
// Why: Start the runtime under a debugger that listens on the published port.
package docker

import (
	"fmt"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/runtime"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
)

const (
	nodeBinary      = "/usr/local/bin/node"
	nodeBootstrap   = "/var/runtime/node_modules/awslambda/index.js"
	pythonBinary    = "/usr/bin/python2.7"
	pythonBootstrap = "/var/runtime/awslambda/bootstrap.py"
)

// debugEntrypoint returns the entrypoint that wraps the runtime bootstrap in a
// debugger, or nil when debugging is off.
func debugEntrypoint(kind runtime.Kind, debug *invoke.DebugContext) ([]string, error) {
	if !debug.Active() {
		return nil, nil
	}
	extra := strings.Fields(debug.Args)
	switch kind {
	case runtime.KindNode:
		entry := []string{
			nodeBinary,
			fmt.Sprintf("--inspect-brk=0.0.0.0:%d", debug.Port),
			"--nolazy",
			"--expose-gc",
			"--max-semi-space-size=150",
			"--max-old-space-size=2707",
		}
		entry = append(entry, extra...)
		return append(entry, nodeBootstrap), nil
	case runtime.KindPython:
		entry := append([]string{pythonBinary}, extra...)
		return append(entry, pythonBootstrap), nil
	default:
		return nil, fmt.Errorf("debugging is not supported for runtime family %q", kind)
	}
}
