// Where: cli/internal/command/local_invoke.go
// What: local invoke command handler.
// Why: Run one function in a local container with the resolved configuration.
package command

import (
	"context"
	"fmt"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/docker"
	"github.com/poruru/bsam-cli/internal/infra/overrides"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
	log "github.com/sirupsen/logrus"
)

func runLocalInvoke(ctx context.Context, cli CLI, deps Dependencies) int {
	cmd := cli.Local.Invoke
	// Function output owns stdout; status lines go to stderr.
	console := newUI(deps.ErrOut, cli)

	env, err := loadEnvironment(cli, deps)
	if err != nil {
		return reportError(console, err)
	}
	eventSource := cmd.Event
	if eventSource != "-" {
		eventSource = absPath(env.wd, eventSource)
	}
	event, err := invoke.ReadEvent(eventSource, deps.In)
	if err != nil {
		return reportError(console, err)
	}
	input, err := overrides.Load(absPath(env.wd, cmd.EnvVars))
	if err != nil {
		return reportError(console, err)
	}
	log.Debugf("environment overrides use the %s format", input.Kind())
	for _, name := range input.Functions() {
		if _, ok := env.provider.Get(name); !ok {
			console.Warn(fmt.Sprintf("env-vars entry %q matches no function in the template", name))
		}
	}

	var debug *invoke.DebugContext
	if cmd.DebugPort > 0 {
		debug = &invoke.DebugContext{Port: cmd.DebugPort, Args: cmd.DebuggerArgs}
		console.Info(fmt.Sprintf("Waiting for a debugger on port %d", cmd.DebugPort))
	}

	if deps.NewExecutor == nil {
		return reportError(console, fmt.Errorf("%w: container executor is not configured", function.ErrConfiguration))
	}
	executor, closer, err := deps.NewExecutor(docker.Options{
		Images:   env.config.Images,
		Network:  firstNonEmpty(cmd.DockerNetwork, env.config.DockerNetwork),
		SkipPull: cmd.SkipPullImage,
	})
	if err != nil {
		return reportError(console, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	resolver := invoke.NewResolver(env.source)
	resolver.Getwd = deps.Getwd
	resolver.Environ = deps.Environ
	runner := invoke.Runner{
		Provider:  env.provider,
		Resolver:  resolver,
		Executor:  executor,
		Cwd:       env.provider.Dir(),
		Overrides: input,
		Debug:     debug,
	}
	if err := runner.Invoke(ctx, cmd.Function, event, deps.Out, deps.ErrOut); err != nil {
		return reportError(console, err)
	}
	log.Debugf("invoke of %s finished", cmd.Function)
	return 0
}
