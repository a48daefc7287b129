// Where: cli/internal/domain/function/function.go
// What: Function definition and invocation configuration types.
// Why: Share one data model between the invoke and deploy pipelines.
package function

import "github.com/poruru/bsam-cli/internal/domain/envset"

// Environment mirrors the template's Environment property.
// Variables is the only recognized key.
type Environment struct {
	Variables map[string]string
}

// Definition is a locally authored function, as discovered from the template.
// Memory and Timeout are nil when the template leaves them unset.
type Definition struct {
	LogicalID   string
	Name        string
	Handler     string
	Runtime     string
	CodeURI     string
	Memory      *int
	Timeout     *int
	Environment *Environment
}

// Variables returns the declared variables, or nil when none are declared.
func (d Definition) Variables() map[string]string {
	if d.Environment == nil {
		return nil
	}
	return d.Environment.Variables
}

// MemoryOr returns the declared memory or the fallback when unset.
func (d Definition) MemoryOr(fallback int) int {
	if d.Memory == nil {
		return fallback
	}
	return *d.Memory
}

// TimeoutOr returns the declared timeout or the fallback when unset.
func (d Definition) TimeoutOr(fallback int) int {
	if d.Timeout == nil {
		return fallback
	}
	return *d.Timeout
}

// InvocationConfig is the fully resolved parameter set handed to the
// execution collaborator for a single invoke.
type InvocationConfig struct {
	Name        string
	Runtime     string
	Handler     string
	CodeAbsPath string
	Memory      int
	Timeout     int
	Env         *envset.Set
}

// Provider looks up function definitions by name.
type Provider interface {
	Get(name string) (Definition, bool)
	All() []Definition
}
