// Where: cli/internal/command/deploy.go
// What: deploy command handler.
// Why: Reconcile template functions against the platform and report each outcome.
package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/packager"
	"github.com/poruru/bsam-cli/internal/infra/platform"
	"github.com/poruru/bsam-cli/internal/infra/ui"
	"github.com/poruru/bsam-cli/internal/usecase/deploy"
)

func runDeploy(ctx context.Context, cli CLI, deps Dependencies) int {
	cmd := cli.Deploy
	console := newUI(deps.Out, cli)

	env, err := loadEnvironment(cli, deps)
	if err != nil {
		return reportError(console, err)
	}
	fns, err := selectFunctions(env, cmd.Function)
	if err != nil {
		return reportError(console, err)
	}

	factory := platform.NewFactory(env.source, platform.Settings{
		Endpoint: firstNonEmpty(cmd.Endpoint, env.config.Endpoint),
		Region:   firstNonEmpty(cmd.Region, env.config.Region),
		Role:     firstNonEmpty(cmd.Role, env.config.Role),
	})
	region, err := factory.Region()
	if err != nil {
		return reportError(console, err)
	}
	if deps.NewPlatform == nil {
		return reportError(console, fmt.Errorf("%w: platform client is not configured", function.ErrConfiguration))
	}
	client, err := deps.NewPlatform(ctx, factory)
	if err != nil {
		return reportError(console, err)
	}

	reconciler := deploy.NewReconciler(client, packager.New(), deploy.Options{
		Cwd:                env.provider.Dir(),
		ArtifactDir:        absPath(env.wd, cmd.ArtifactDir),
		Region:             region,
		AutoPackage:        cmd.Package,
		CreateOnProbeError: cmd.CreateOnProbeError,
		ProbeAttempts:      cmd.ProbeAttempts,
	})
	if cmd.Package {
		// Unselected functions' archives may sit in the same tree.
		excluded, err := reconciler.ArchivePaths(env.provider.All())
		if err != nil {
			return reportError(console, err)
		}
		reconciler.Options.ExcludeArchives = excluded
	}

	var mu sync.Mutex
	deployer := deploy.Deployer{
		Reconciler: reconciler,
		Parallel:   cmd.Parallel,
		Report: func(outcome deploy.Outcome) {
			mu.Lock()
			defer mu.Unlock()
			console.Block("🚀", outcome.Function, outcomeRows(outcome))
		},
	}
	outcomes, err := deployer.Deploy(ctx, fns)
	if err != nil {
		return reportError(console, err)
	}
	console.Success(fmt.Sprintf("Deployed %d function(s)", len(outcomes)))
	return 0
}

func selectFunctions(env environment, name string) ([]function.Definition, error) {
	if name == "" {
		return env.provider.All(), nil
	}
	fn, ok := env.provider.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unable to find a function with name '%s'", function.ErrNotFound, name)
	}
	return []function.Definition{fn}, nil
}

func outcomeRows(outcome deploy.Outcome) []ui.KeyValue {
	return []ui.KeyValue{
		{Key: "Action", Value: string(outcome.Action)},
		{Key: "Runtime", Value: outcome.Response.Runtime},
		{Key: "Version", Value: outcome.Response.Version},
		{Key: "Arn", Value: outcome.Response.Arn},
	}
}
