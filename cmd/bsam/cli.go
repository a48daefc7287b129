// Where: cli/cmd/bsam/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"io"
	"os"

	"github.com/poruru/bsam-cli/internal/command"
	"github.com/poruru/bsam-cli/internal/infra/artifacts"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/docker"
	"github.com/poruru/bsam-cli/internal/infra/interaction"
	"github.com/poruru/bsam-cli/internal/infra/platform"
	"github.com/poruru/bsam-cli/internal/usecase/deploy"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
	"github.com/poruru/bsam-cli/internal/usecase/packaging"
)

var (
	getwd           = os.Getwd
	newDockerClient = docker.NewClient
	interactive     = interaction.Interactive
)

// buildDependencies constructs the runtime dependencies required by the CLI.
// The Docker client is created on first use so that commands which never run
// containers work without a daemon. The returned closer releases it.
func buildDependencies() (command.Dependencies, io.Closer, error) {
	if _, err := getwd(); err != nil {
		return command.Dependencies{}, nil, err
	}

	session := &dockerSession{}
	deps := command.Dependencies{
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		In:          os.Stdin,
		Getwd:       getwd,
		NewExecutor: session.executor,
		NewPlatform: newPlatform,
		NewUploader: newUploader,
	}
	if interactive() {
		deps.Prompter = interaction.HuhPrompter{}
	}
	return deps, session, nil
}

func newPlatform(ctx context.Context, factory platform.Factory) (deploy.Platform, error) {
	client, err := factory.New(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newUploader(ctx context.Context, source credentials.Source, settings artifacts.Settings) (packaging.Uploader, error) {
	uploader, err := artifacts.New(ctx, source, settings)
	if err != nil {
		return nil, err
	}
	return uploader, nil
}

type dockerSession struct {
	client docker.Client
}

func (s *dockerSession) executor(options docker.Options) (invoke.Executor, io.Closer, error) {
	if s.client == nil {
		client, err := newDockerClient()
		if err != nil {
			return nil, nil, err
		}
		s.client = client
	}
	return docker.NewExecutor(s.client, options), nil, nil
}

// Close releases the Docker client when one was created.
func (s *dockerSession) Close() error {
	if closer := asCloser(s.client); closer != nil {
		return closer.Close()
	}
	return nil
}

// asCloser attempts to cast the Docker client to an io.Closer.
// Returns nil if the client does not implement the Closer interface.
func asCloser(client docker.Client) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}
