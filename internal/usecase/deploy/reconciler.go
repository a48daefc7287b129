// Where: cli/internal/usecase/deploy/reconciler.go
// What: Per-function create-or-update reconciliation against the remote platform.
// Why: Validate local artifacts first, then probe remote state and dispatch.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/domain/runtime"
	"github.com/poruru/bsam-cli/internal/infra/packager"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMemory      = 128
	DefaultTimeout     = 3
	DefaultDescription = "cfc function from bsam cli"
)

// Action is the remote operation chosen for a function.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Outcome reports what happened to one function.
type Outcome struct {
	Function string
	Action   Action
	Response RemoteFunction
}

// Archiver builds and encodes code archives.
type Archiver interface {
	Package(ctx context.Context, srcDir, archivePath string, exclude ...string) ([]string, error)
	Encode(archivePath string) (string, error)
}

// Options tune a Reconciler.
type Options struct {
	// Cwd anchors relative CodeUri values and defaults ArtifactDir.
	Cwd         string
	ArtifactDir string
	Region      string
	Description string
	AutoPackage bool
	// CreateOnProbeError treats an undeterminable remote state as absent.
	CreateOnProbeError bool
	ProbeAttempts      int
	ProbeBackoff       time.Duration
	// ExcludeArchives are kept out of every packaged archive, usually the
	// archive paths of all template functions.
	ExcludeArchives []string
}

// Reconciler makes remote functions match local definitions.
type Reconciler struct {
	Platform Platform
	Archiver Archiver
	Options  Options
}

// NewReconciler constructs a Reconciler.
func NewReconciler(platform Platform, archiver Archiver, opts Options) Reconciler {
	return Reconciler{Platform: platform, Archiver: archiver, Options: opts}
}

// Reconcile packages (optionally), validates, probes, and then creates or
// updates fn. Local configuration problems are reported before any remote call.
func (r Reconciler) Reconcile(ctx context.Context, fn function.Definition) (Outcome, error) {
	if r.Platform == nil {
		return Outcome{}, fmt.Errorf("%w: platform client is not configured", function.ErrConfiguration)
	}
	if r.Archiver == nil {
		return Outcome{}, fmt.Errorf("%w: archiver is not configured", function.ErrConfiguration)
	}
	name := strings.TrimSpace(fn.Name)
	if name == "" {
		return Outcome{}, fmt.Errorf("%w: function name is required", function.ErrConfiguration)
	}

	archivePath, err := r.archivePath(fn)
	if err != nil {
		return Outcome{}, err
	}
	if r.Options.AutoPackage {
		src := function.ResolveCodePath(r.Options.Cwd, fn.CodeURI)
		log.Debugf("packaging %s into %s", src, archivePath)
		if _, err := r.Archiver.Package(ctx, src, archivePath, r.Options.ExcludeArchives...); err != nil {
			return Outcome{}, err
		}
	}
	zipBase64, err := r.Archiver.Encode(archivePath)
	if err != nil {
		return Outcome{}, err
	}
	platformRuntime, err := runtime.Translate(fn.Runtime)
	if err != nil {
		return Outcome{}, err
	}

	state, probeErr := probe(ctx, r.Platform, name, r.Options.ProbeAttempts, r.Options.ProbeBackoff)
	log.Debugf("function %s is %s remotely", name, state)
	if state == ProbeUnknown {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		if !r.Options.CreateOnProbeError {
			return Outcome{}, fmt.Errorf("%w: %s: %w", function.ErrProbeUnknown, name, probeErr)
		}
		log.Warnf("could not determine whether %s exists (%v); creating it", name, probeErr)
		state = ProbeAbsent
	}

	if state == ProbePresent {
		resp, err := r.Platform.UpdateFunctionCode(ctx, UpdateCodeInput{
			Name:      name,
			ZipBase64: zipBase64,
			Publish:   true,
		})
		if err != nil {
			return Outcome{}, platformError("update", name, err)
		}
		return Outcome{Function: name, Action: ActionUpdate, Response: resp}, nil
	}

	description := r.Options.Description
	if description == "" {
		description = DefaultDescription
	}
	resp, err := r.Platform.CreateFunction(ctx, CreateInput{
		Name:        name,
		Description: description,
		Handler:     fn.Handler,
		Memory:      fn.MemoryOr(DefaultMemory),
		Region:      r.Options.Region,
		ZipBase64:   zipBase64,
		Publish:     false,
		Runtime:     platformRuntime,
		Timeout:     fn.TimeoutOr(DefaultTimeout),
		DryRun:      false,
	})
	if err != nil {
		return Outcome{}, platformError("create", name, err)
	}
	return Outcome{Function: name, Action: ActionCreate, Response: resp}, nil
}

// ArchivePaths returns where the archive of each function is expected.
func (r Reconciler) ArchivePaths(fns []function.Definition) ([]string, error) {
	paths := make([]string, 0, len(fns))
	for _, fn := range fns {
		path, err := r.archivePath(fn)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r Reconciler) archivePath(fn function.Definition) (string, error) {
	archiveName, err := packager.ArchiveName(fn.CodeURI, fn.Name)
	if err != nil {
		return "", err
	}
	dir := r.Options.ArtifactDir
	if dir == "" {
		dir = r.Options.Cwd
	}
	if dir == "" {
		return archiveName, nil
	}
	return filepath.Join(dir, archiveName), nil
}

func platformError(op, name string, err error) error {
	if errors.Is(err, function.ErrPlatform) {
		return fmt.Errorf("%s %s: %w", op, name, err)
	}
	return fmt.Errorf("%w: %s %s: %w", function.ErrPlatform, op, name, err)
}
