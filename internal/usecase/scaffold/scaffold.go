// Where: cli/internal/usecase/scaffold/scaffold.go
// What: Project initialization workflow.
// Why: Resolve init inputs (flags or prompts) and write the scaffold to disk.
package scaffold

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/function"
	domaintemplate "github.com/poruru/bsam-cli/internal/domain/template"
	"github.com/poruru/bsam-cli/internal/infra/fileops"
	"github.com/poruru/bsam-cli/internal/infra/interaction"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultProjectName = "sam-app"
	DefaultRuntime     = "python2.7"
)

var errTargetNotEmpty = errors.New("target directory is not empty")

// RuntimeOptions are the runtimes offered by the interactive prompt.
var RuntimeOptions = []interaction.SelectOption{
	{Label: "Python 2.7", Value: "python2.7"},
	{Label: "Node.js 6.11", Value: "nodejs6.11"},
}

// Request describes an init run. Empty fields are prompted for when a
// Prompter is available and defaulted otherwise.
type Request struct {
	Name      string
	Runtime   string
	OutputDir string
	Force     bool
}

// Result reports what was written.
type Result struct {
	Dir     string
	Runtime string
	Files   []string
}

// Workflow scaffolds projects.
type Workflow struct {
	// Prompter is nil when stdin/stdout are not a terminal.
	Prompter interaction.Prompter
}

// Run renders and writes the scaffold.
func (w Workflow) Run(req Request) (Result, error) {
	name, runtimeAlias, err := w.resolveInputs(req)
	if err != nil {
		return Result{}, err
	}
	data, err := domaintemplate.NewScaffoldData(name, runtimeAlias)
	if err != nil {
		return Result{}, err
	}
	files, err := domaintemplate.RenderScaffold(data)
	if err != nil {
		return Result{}, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	target, err := filepath.Abs(filepath.Join(outputDir, name))
	if err != nil {
		return Result{}, err
	}
	if err := w.prepareTarget(target, req.Force); err != nil {
		return Result{}, err
	}

	written := make([]string, 0, len(files))
	for _, file := range files {
		dest := filepath.Join(target, filepath.FromSlash(file.Path))
		if err := fileops.WriteFile(dest, file.Content, 0o644); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", dest, err)
		}
		log.Debugf("wrote %s", dest)
		written = append(written, file.Path)
	}
	return Result{Dir: target, Runtime: data.Runtime, Files: written}, nil
}

func (w Workflow) resolveInputs(req Request) (string, string, error) {
	name := strings.TrimSpace(req.Name)
	runtimeAlias := strings.TrimSpace(req.Runtime)
	if w.Prompter != nil {
		var err error
		if name == "" {
			if name, err = w.Prompter.Input("Project name", DefaultProjectName); err != nil {
				return "", "", err
			}
		}
		if runtimeAlias == "" {
			if runtimeAlias, err = w.Prompter.SelectValue("Runtime", RuntimeOptions); err != nil {
				return "", "", err
			}
		}
	}
	if name == "" {
		name = DefaultProjectName
	}
	if runtimeAlias == "" {
		runtimeAlias = DefaultRuntime
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", "", fmt.Errorf("%w: invalid project name %q", function.ErrConfiguration, name)
	}
	return name, runtimeAlias, nil
}

func (w Workflow) prepareTarget(target string, force bool) error {
	if !fileops.DirExists(target) {
		return nil
	}
	empty, err := fileops.DirEmpty(target)
	if err != nil || empty {
		return err
	}
	if !force && w.Prompter != nil {
		force, err = w.Prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", target))
		if err != nil {
			return err
		}
	}
	if !force {
		return fmt.Errorf("%w: %s", errTargetNotEmpty, target)
	}
	return fileops.RemoveDir(target)
}
