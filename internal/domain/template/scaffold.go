// Where: cli/internal/domain/template/scaffold.go
// What: Render the embedded hello-world project for a runtime.
// Why: Give init a single entry point over the scaffold assets.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/poruru/bsam-cli/assets"
	"github.com/poruru/bsam-cli/internal/domain/runtime"
)

const (
	scaffoldRoot   = "scaffold"
	commonDir      = "common"
	templateSuffix = ".tmpl"
)

var (
	templateCache          sync.Map
	errProjectNameRequired = errors.New("project name is required")
)

// ScaffoldData is the template context for a new project.
type ScaffoldData struct {
	ProjectName  string
	FunctionName string
	Runtime      string
	Handler      string
	Memory       int
	Timeout      int
}

// File is one rendered scaffold file with a slash-separated relative path.
type File struct {
	Path    string
	Content []byte
}

var handlers = map[runtime.Kind]string{
	runtime.KindPython: "app.lambda_handler",
	runtime.KindNode:   "app.lambdaHandler",
}

// NewScaffoldData fills defaults for a project on the given runtime alias.
func NewScaffoldData(projectName, runtimeAlias string) (ScaffoldData, error) {
	profile, err := runtime.Resolve(runtimeAlias)
	if err != nil {
		return ScaffoldData{}, err
	}
	name := strings.TrimSpace(projectName)
	if name == "" {
		return ScaffoldData{}, errProjectNameRequired
	}
	return ScaffoldData{
		ProjectName:  name,
		FunctionName: "HelloWorldFunction",
		Runtime:      strings.TrimSpace(runtimeAlias),
		Handler:      handlers[profile.Kind],
		Memory:       128,
		Timeout:      3,
	}, nil
}

// RenderScaffold renders the common files plus the runtime family's files,
// sorted by path.
func RenderScaffold(data ScaffoldData) ([]File, error) {
	profile, err := runtime.Resolve(data.Runtime)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, dir := range []string{commonDir, string(profile.Kind)} {
		rendered, err := renderDir(path.Join(scaffoldRoot, dir), data)
		if err != nil {
			return nil, err
		}
		files = append(files, rendered...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func renderDir(root string, data ScaffoldData) ([]File, error) {
	var files []File
	err := fs.WalkDir(assets.ScaffoldFS, root, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(name, templateSuffix) {
			return nil
		}
		content, err := renderTemplate(name, data)
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(name, root+"/"), templateSuffix)
		files = append(files, File{Path: rel, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func renderTemplate(name string, data any) ([]byte, error) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		cached, ok := value.(*template.Template)
		if !ok {
			return nil, fmt.Errorf("template cache type mismatch for %s", name)
		}
		return cached, nil
	}
	tmpl, err := template.New(path.Base(name)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(assets.ScaffoldFS, name)
	if err != nil {
		return nil, err
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}
