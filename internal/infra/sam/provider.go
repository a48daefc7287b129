// Where: cli/internal/infra/sam/provider.go
// What: SAM template function provider.
// Why: Discover function definitions by name for invoke, package, and deploy.
package sam

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/domain/value"
	log "github.com/sirupsen/logrus"
	"sigs.k8s.io/yaml"
)

const (
	serverlessFunctionType = "AWS::Serverless::Function"
	defaultCodeURI         = "."
)

type templateDocument struct {
	Globals struct {
		Function map[string]any `json:"Function"`
	} `json:"Globals"`
	Resources map[string]templateResource `json:"Resources"`
}

type templateResource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties"`
}

// TemplateProvider serves function definitions parsed from one template.
type TemplateProvider struct {
	path      string
	functions []function.Definition
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string) (*TemplateProvider, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read template %s: %v", function.ErrConfiguration, path, err)
	}
	functions, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded %d function(s) from %s", len(functions), path)
	return &TemplateProvider{path: path, functions: functions}, nil
}

// NewProvider wraps already-parsed definitions.
func NewProvider(functions []function.Definition) *TemplateProvider {
	return &TemplateProvider{functions: functions}
}

// Dir returns the directory holding the template, or "" for in-memory providers.
func (p *TemplateProvider) Dir() string {
	if p.path == "" {
		return ""
	}
	return filepath.Dir(p.path)
}

// Get finds a function by its name or logical ID.
func (p *TemplateProvider) Get(name string) (function.Definition, bool) {
	for _, fn := range p.functions {
		if fn.Name == name {
			return fn, true
		}
	}
	for _, fn := range p.functions {
		if fn.LogicalID == name {
			return fn, true
		}
	}
	return function.Definition{}, false
}

// All returns every function in logical ID order.
func (p *TemplateProvider) All() []function.Definition {
	return append([]function.Definition(nil), p.functions...)
}

// ParseTemplate extracts AWS::Serverless::Function resources from YAML or JSON.
// Globals.Function supplies defaults for unset properties.
func ParseTemplate(content []byte) ([]function.Definition, error) {
	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: convert yaml to json: %v", function.ErrConfiguration, err)
	}
	var doc templateDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode template: %v", function.ErrConfiguration, err)
	}

	logicalIDs := make([]string, 0, len(doc.Resources))
	for logicalID, resource := range doc.Resources {
		if resource.Type == serverlessFunctionType {
			logicalIDs = append(logicalIDs, logicalID)
		}
	}
	sort.Strings(logicalIDs)

	functions := make([]function.Definition, 0, len(logicalIDs))
	for _, logicalID := range logicalIDs {
		props := doc.Resources[logicalID].Properties
		fn, err := parseFunction(logicalID, props, doc.Globals.Function)
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

func parseFunction(logicalID string, props, globals map[string]any) (function.Definition, error) {
	lookup := func(key string) any {
		if val, ok := props[key]; ok && val != nil {
			return val
		}
		return globals[key]
	}

	name := strings.TrimSpace(value.AsString(props["FunctionName"]))
	if name == "" {
		name = logicalID
	}

	codeURI := defaultCodeURI
	if raw := lookup("CodeUri"); raw != nil {
		uri, ok := raw.(string)
		if !ok {
			return function.Definition{}, fmt.Errorf(
				"%w: function %s: only local CodeUri paths are supported", function.ErrConfiguration, logicalID)
		}
		codeURI = uri
	}

	fn := function.Definition{
		LogicalID: logicalID,
		Name:      name,
		Handler:   value.AsString(lookup("Handler")),
		Runtime:   value.AsString(lookup("Runtime")),
		CodeURI:   codeURI,
	}

	var err error
	if fn.Memory, err = positiveInt(logicalID, "MemorySize", lookup("MemorySize")); err != nil {
		return function.Definition{}, err
	}
	if fn.Timeout, err = positiveInt(logicalID, "Timeout", lookup("Timeout")); err != nil {
		return function.Definition{}, err
	}

	vars := mergeVariables(globals, props)
	if vars != nil {
		fn.Environment = &function.Environment{Variables: vars}
	}
	return fn, nil
}

func positiveInt(logicalID, field string, raw any) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, ok := value.AsIntPointer(raw)
	if !ok || *parsed <= 0 {
		return nil, fmt.Errorf("%w: function %s: %s must be a positive integer, got %v",
			function.ErrConfiguration, logicalID, field, raw)
	}
	return parsed, nil
}

func mergeVariables(globals, props map[string]any) map[string]string {
	global := variablesOf(globals)
	local := variablesOf(props)
	if global == nil && local == nil {
		return nil
	}
	out := map[string]string{}
	for key, val := range global {
		out[key] = val
	}
	for key, val := range local {
		out[key] = val
	}
	return out
}

func variablesOf(props map[string]any) map[string]string {
	env := value.AsMap(props["Environment"])
	if env == nil {
		return nil
	}
	return value.StringMap(env["Variables"])
}
