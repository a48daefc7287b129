// Where: cli/internal/usecase/invoke/runner.go
// What: Local invoke orchestration.
// Why: Look up a function, resolve its configuration, and hand it to the executor.
package invoke

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/overrides"
	log "github.com/sirupsen/logrus"
)

// DefaultEvent is sent when no event source is given.
const DefaultEvent = "{}"

// DebugContext describes debugger attachment for an invoke.
type DebugContext struct {
	Port int
	Args string
}

// Active reports whether a debugger will be attached.
func (d *DebugContext) Active() bool {
	return d != nil && d.Port > 0
}

// Executor runs a resolved function once and blocks until it exits or times out.
type Executor interface {
	Invoke(
		ctx context.Context,
		cfg function.InvocationConfig,
		cwd string,
		event string,
		debug *DebugContext,
		stdout io.Writer,
		stderr io.Writer,
	) error
}

// Runner invokes functions locally.
type Runner struct {
	Provider  function.Provider
	Resolver  Resolver
	Executor  Executor
	Cwd       string
	Overrides overrides.Input
	Debug     *DebugContext
}

// Invoke finds the named function and runs it with event.
func (r Runner) Invoke(ctx context.Context, name, event string, stdout, stderr io.Writer) error {
	if r.Provider == nil {
		return fmt.Errorf("%w: function provider is not configured", function.ErrConfiguration)
	}
	fn, ok := r.Provider.Get(name)
	if !ok {
		return fmt.Errorf("%w: unable to find a function with name '%s'", function.ErrNotFound, name)
	}
	log.Debugf("Found one function with name '%s'", name)
	log.Infof("Invoking %s (%s)", fn.Handler, fn.Runtime)

	resolution, err := r.Resolver.Resolve(fn, Request{
		Cwd:       r.Cwd,
		Overrides: r.Overrides,
		Debug:     r.Debug.Active(),
	})
	if err != nil {
		return err
	}
	if r.Executor == nil {
		return fmt.Errorf("%w: executor is not configured", function.ErrConfiguration)
	}
	return r.Executor.Invoke(ctx, resolution.Config, resolution.Cwd, event, r.Debug, stdout, stderr)
}

// ReadEvent loads the event payload: "" yields DefaultEvent, "-" reads stdin,
// anything else is a file path.
func ReadEvent(path string, stdin io.Reader) (string, error) {
	switch strings.TrimSpace(path) {
	case "":
		return DefaultEvent, nil
	case "-":
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read event from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read event file %s: %w", path, err)
		}
		return string(data), nil
	}
}
