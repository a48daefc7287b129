// Where: cli/internal/usecase/packaging/packaging.go
// What: Bulk packaging of every function with optional artifact upload.
// Why: Back the package command and pre-deploy packaging with one workflow.
package packaging

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/packager"
	log "github.com/sirupsen/logrus"
)

var errArchiverNil = errors.New("archiver is nil")

// Archiver zips a code directory.
type Archiver interface {
	Package(ctx context.Context, srcDir, archivePath string, exclude ...string) ([]string, error)
}

// Uploader stores an archive remotely and returns its location.
type Uploader interface {
	Upload(ctx context.Context, archivePath, key string) (string, error)
}

// Request describes one packaging run.
type Request struct {
	Cwd       string
	OutputDir string
	Prefix    string
	Functions []function.Definition
}

// Artifact describes a produced archive.
type Artifact struct {
	Function string
	Path     string
	Entries  []string
	Location string
}

// Workflow packages functions.
type Workflow struct {
	Archiver Archiver
	// Uploader is optional; nil keeps archives local.
	Uploader Uploader
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(archiver Archiver, uploader Uploader) Workflow {
	return Workflow{Archiver: archiver, Uploader: uploader}
}

// Run packages each function in order and stops at the first failure.
func (w Workflow) Run(ctx context.Context, req Request) ([]Artifact, error) {
	if w.Archiver == nil {
		return nil, errArchiverNil
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = req.Cwd
	} else if !filepath.IsAbs(outputDir) && req.Cwd != "" {
		outputDir = filepath.Join(req.Cwd, outputDir)
	}

	names := make([]string, 0, len(req.Functions))
	archivePaths := make([]string, 0, len(req.Functions))
	for _, fn := range req.Functions {
		name, err := packager.ArchiveName(fn.CodeURI, fn.Name)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		archivePaths = append(archivePaths, filepath.Join(outputDir, name))
	}

	artifacts := make([]Artifact, 0, len(req.Functions))
	for i, fn := range req.Functions {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		name, archivePath := names[i], archivePaths[i]
		src := function.ResolveCodePath(req.Cwd, fn.CodeURI)
		// Archives of this run never end up inside one another.
		entries, err := w.Archiver.Package(ctx, src, archivePath, archivePaths...)
		if err != nil {
			return artifacts, fmt.Errorf("package %s: %w", fn.Name, err)
		}
		log.Debugf("packaged %s (%d files) into %s", fn.Name, len(entries), archivePath)

		artifact := Artifact{Function: fn.Name, Path: archivePath, Entries: entries}
		if w.Uploader != nil {
			location, err := w.Uploader.Upload(ctx, archivePath, ObjectKey(req.Prefix, name))
			if err != nil {
				return artifacts, fmt.Errorf("upload %s: %w", fn.Name, err)
			}
			artifact.Location = location
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// ObjectKey joins prefix and archive name with forward slashes.
func ObjectKey(prefix, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
