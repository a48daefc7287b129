// Where: cli/internal/infra/overrides/overrides.go
// What: Environment override input decoding.
// Why: Detect the override file format once at the boundary and hand a typed value downstream.
package overrides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/jsonc"
)

// ParametersKey marks the flat (CloudFormation parameter file) format.
const ParametersKey = "Parameters"

// Kind identifies which override format was decoded.
type Kind int

const (
	// KindPerFunction is {FunctionName: {key: value}}.
	KindPerFunction Kind = iota
	// KindFlat is {"Parameters": {key: value}} and applies to every function.
	KindFlat
)

func (k Kind) String() string {
	if k == KindFlat {
		return "flat"
	}
	return "per-function"
}

// Input is the decoded override input. Exactly one format is active.
type Input struct {
	kind        Kind
	flat        map[string]string
	perFunction map[string]map[string]string
}

// Flat builds a flat input.
func Flat(values map[string]string) Input {
	return Input{kind: KindFlat, flat: values}
}

// PerFunction builds a per-function input.
func PerFunction(values map[string]map[string]string) Input {
	return Input{kind: KindPerFunction, perFunction: values}
}

// Kind returns the active format.
func (i Input) Kind() Kind {
	return i.kind
}

// For returns the overrides that apply to the named function, or nil.
func (i Input) For(name string) map[string]string {
	if i.kind == KindFlat {
		return i.flat
	}
	return i.perFunction[name]
}

const schemaURL = "https://schemas.bsam.local/overrides.schema.json"

const schemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {"type": ["string", "number", "boolean"]}
  }
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaText)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Load reads and decodes an override file. An empty path yields an empty
// per-function input.
func Load(path string) (Input, error) {
	if strings.TrimSpace(path) == "" {
		return PerFunction(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("%w: read env vars file %s: %v", function.ErrConfiguration, path, err)
	}
	input, err := Decode(data)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return input, nil
}

// Decode parses override JSON (comments and trailing commas allowed),
// validates its shape, and detects the format.
func Decode(data []byte) (Input, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return Input{}, fmt.Errorf("%w: invalid override json: %v", function.ErrConfiguration, err)
	}

	schema, err := loadSchema()
	if err != nil {
		return Input{}, fmt.Errorf("compile override schema: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return Input{}, fmt.Errorf("%w: malformed override input: %v", function.ErrConfiguration, err)
	}

	root, _ := document.(map[string]any)
	if params, ok := root[ParametersKey]; ok {
		if len(root) > 1 {
			log.Debugf("Override input has %q; ignoring %d per-function entries", ParametersKey, len(root)-1)
		}
		log.Debug("Environment variables overrides data is in CloudFormation parameter file format")
		return Flat(stringifyValues(params)), nil
	}

	log.Debug("Environment variables overrides data is standard format")
	perFunction := make(map[string]map[string]string, len(root))
	for name, values := range root {
		perFunction[name] = stringifyValues(values)
	}
	return PerFunction(perFunction), nil
}

// Functions lists the function names named by a per-function input.
func (i Input) Functions() []string {
	names := make([]string, 0, len(i.perFunction))
	for name := range i.perFunction {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringifyValues(raw any) map[string]string {
	values, _ := raw.(map[string]any)
	out := make(map[string]string, len(values))
	for key, value := range values {
		switch typed := value.(type) {
		case string:
			out[key] = typed
		case bool:
			if typed {
				out[key] = "true"
			} else {
				out[key] = "false"
			}
		case json.Number:
			out[key] = typed.String()
		default:
			out[key] = fmt.Sprint(typed)
		}
	}
	return out
}
