// Where: cli/internal/command/package.go
// What: package command handler.
// Why: Zip every function in the template and optionally upload the archives.
package command

import (
	"context"
	"fmt"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/artifacts"
	"github.com/poruru/bsam-cli/internal/infra/packager"
	"github.com/poruru/bsam-cli/internal/infra/platform"
	"github.com/poruru/bsam-cli/internal/infra/ui"
	"github.com/poruru/bsam-cli/internal/usecase/packaging"
)

func runPackage(ctx context.Context, cli CLI, deps Dependencies) int {
	cmd := cli.Package
	console := newUI(deps.Out, cli)

	env, err := loadEnvironment(cli, deps)
	if err != nil {
		return reportError(console, err)
	}

	var uploader packaging.Uploader
	bucket := firstNonEmpty(cmd.S3Bucket, env.config.ArtifactBucket)
	if bucket != "" {
		if uploader, err = newUploader(ctx, env, bucket, deps); err != nil {
			return reportError(console, err)
		}
	}

	workflow := packaging.NewWorkflow(packager.New(), uploader)
	results, err := workflow.Run(ctx, packaging.Request{
		Cwd:       env.provider.Dir(),
		OutputDir: absPath(env.wd, cmd.OutputDir),
		Prefix:    firstNonEmpty(cmd.S3Prefix, env.config.ArtifactPrefix),
		Functions: env.provider.All(),
	})
	for _, artifact := range results {
		console.Block("📦", artifact.Function, []ui.KeyValue{
			{Key: "Archive", Value: artifact.Path},
			{Key: "Files", Value: len(artifact.Entries)},
			{Key: "Location", Value: artifact.Location},
		})
		if cmd.Verbose {
			for _, entry := range artifact.Entries {
				console.Info("     - " + entry)
			}
		}
	}
	if err != nil {
		return reportError(console, err)
	}
	console.Success(fmt.Sprintf("Packaged %d function(s)", len(results)))
	return 0
}

func newUploader(ctx context.Context, env environment, bucket string, deps Dependencies) (packaging.Uploader, error) {
	if deps.NewUploader == nil {
		return nil, fmt.Errorf("%w: artifact uploader is not configured", function.ErrConfiguration)
	}
	region, err := platform.NewFactory(env.source, platform.Settings{Region: env.config.Region}).Region()
	if err != nil {
		return nil, err
	}
	return deps.NewUploader(ctx, env.source, artifacts.Settings{
		Bucket:   bucket,
		Endpoint: env.config.S3Endpoint,
		Region:   region,
	})
}
