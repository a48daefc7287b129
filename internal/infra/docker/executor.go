// Where: cli/internal/infra/docker/executor.go
// What: Run one function invocation in a throwaway container.
// Why: Provide the local execution collaborator for invoke.Runner.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/domain/runtime"
	"github.com/poruru/bsam-cli/internal/meta"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultImageRepository hosts the local emulation images.
	DefaultImageRepository = "lambci/lambda"
	taskDir                = "/var/task"
	waitGrace              = 5 * time.Second

	FunctionLabel = meta.LabelPrefix + ".function"
	ManagedLabel  = meta.LabelPrefix + ".managed"
)

var (
	errDockerClientNil   = errors.New("docker client is nil")
	ErrInvocationTimeout = errors.New("function timed out")
	unsafeNameChars      = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
)

// Options tune an Executor.
type Options struct {
	// Images maps a local image tag to a full image reference.
	Images   map[string]string
	Network  string
	SkipPull bool
	// Grace is added to the function timeout when waiting for exit.
	Grace time.Duration
}

// Executor implements invoke.Executor on top of Docker.
type Executor struct {
	client  Client
	options Options
}

var _ invoke.Executor = (*Executor)(nil)

// NewExecutor constructs an Executor.
func NewExecutor(client Client, options Options) *Executor {
	return &Executor{client: client, options: options}
}

// ImageFor returns the image used for a runtime profile.
func (e *Executor) ImageFor(profile runtime.Profile) string {
	if override := strings.TrimSpace(e.options.Images[profile.LocalImageTag]); override != "" {
		return override
	}
	return DefaultImageRepository + ":" + profile.LocalImageTag
}

func (e *Executor) Invoke(
	ctx context.Context,
	cfg function.InvocationConfig,
	cwd string,
	event string,
	debug *invoke.DebugContext,
	stdout io.Writer,
	stderr io.Writer,
) error {
	if e.client == nil {
		return errDockerClientNil
	}
	profile, err := runtime.Resolve(cfg.Runtime)
	if err != nil {
		return err
	}
	entrypoint, err := debugEntrypoint(profile.Kind, debug)
	if err != nil {
		return fmt.Errorf("%w: %w", function.ErrConfiguration, err)
	}
	imageRef := e.ImageFor(profile)
	if err := e.pull(ctx, imageRef); err != nil {
		return err
	}

	containerCfg, hostCfg := e.containerSpec(cfg, cwd, imageRef, event, entrypoint, debug)
	name := containerName(cfg.Name)
	created, err := e.client.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, name)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	defer e.remove(context.WithoutCancel(ctx), created.ID)
	log.Debugf("created container %s (%s) from %s", name, shortID(created.ID), imageRef)

	if err := e.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	if debug.Active() {
		log.Infof("Waiting for debugger to attach on port %d", debug.Port)
	}

	logsDone := make(chan error, 1)
	logs, err := e.client.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("attach container logs: %w", err)
	}
	go func() {
		defer logs.Close()
		_, copyErr := stdcopy.StdCopy(orDiscard(stdout), orDiscard(stderr), logs)
		logsDone <- copyErr
	}()

	grace := e.options.Grace
	if grace <= 0 {
		grace = waitGrace
	}
	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second+grace)
	defer cancel()
	statusCh, errCh := e.client.ContainerWait(waitCtx, created.ID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil && status.Error.Message != "" {
			return fmt.Errorf("wait container: %s", status.Error.Message)
		}
		log.Debugf("container %s exited with status %d", shortID(created.ID), status.StatusCode)
	case err := <-errCh:
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w after %d seconds", ErrInvocationTimeout, cfg.Timeout)
		}
		return fmt.Errorf("wait container: %w", err)
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %d seconds", ErrInvocationTimeout, cfg.Timeout)
	}

	if err := <-logsDone; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("read container output: %w", err)
	}
	return nil
}

func (e *Executor) pull(ctx context.Context, ref string) error {
	if e.options.SkipPull {
		return nil
	}
	log.Infof("Fetching %s Docker container image...", ref)
	stream, err := e.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer stream.Close()
	if _, err := io.Copy(io.Discard, stream); err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	return nil
}

func (e *Executor) containerSpec(
	cfg function.InvocationConfig,
	cwd string,
	imageRef string,
	event string,
	entrypoint []string,
	debug *invoke.DebugContext,
) (*container.Config, *container.HostConfig) {
	var env []string
	if cfg.Env != nil {
		env = cfg.Env.Slice()
	}
	containerCfg := &container.Config{
		Image:      imageRef,
		Cmd:        []string{cfg.Handler, event},
		Env:        env,
		Entrypoint: entrypoint,
		WorkingDir: taskDir,
		Labels: map[string]string{
			FunctionLabel: cfg.Name,
			ManagedLabel:  "true",
		},
	}
	hostCfg := &container.HostConfig{
		Binds: []string{cfg.CodeAbsPath + ":" + taskDir + ":ro"},
		Resources: container.Resources{
			Memory: int64(cfg.Memory) * 1024 * 1024,
		},
	}
	if network := strings.TrimSpace(e.options.Network); network != "" {
		hostCfg.NetworkMode = container.NetworkMode(network)
	}
	if debug.Active() {
		port := nat.Port(strconv.Itoa(debug.Port) + "/tcp")
		containerCfg.ExposedPorts = nat.PortSet{port: struct{}{}}
		hostCfg.PortBindings = nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(debug.Port)}},
		}
	}
	log.Debugf("mounting %s as %s (cwd %s)", cfg.CodeAbsPath, taskDir, cwd)
	return containerCfg, hostCfg
}

func (e *Executor) remove(ctx context.Context, id string) {
	if err := e.client.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		log.Warnf("failed to remove container %s: %v", shortID(id), err)
	}
}

func containerName(function string) string {
	base := strings.Trim(unsafeNameChars.ReplaceAllString(function, "-"), "-.")
	if base == "" {
		base = "function"
	}
	return fmt.Sprintf("%s-%s-%s", meta.AppName, base, uuid.NewString()[:8])
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
