// Where: cli/internal/usecase/invoke/resolver.go
// What: Invocation configuration resolution.
// Why: Merge code location, timeout, environment, and credentials with a fixed precedence.
package invoke

import (
	"errors"
	"fmt"
	"os"

	"github.com/poruru/bsam-cli/internal/domain/envset"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/domain/value"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/overrides"
	log "github.com/sirupsen/logrus"
)

const (
	// MaxDebugTimeout replaces the declared timeout while a debugger is attached
	// so the runtime does not kill a process paused at a breakpoint.
	MaxDebugTimeout = 36000 // 10 hours in seconds

	DefaultMemory  = 128
	DefaultTimeout = 3
)

// Request carries the per-invocation inputs of a resolution.
type Request struct {
	Cwd       string
	Overrides overrides.Input
	Debug     bool
}

// Resolution is the outcome of a resolution. Cwd is the absolute working
// directory that CodeAbsPath was resolved against.
type Resolution struct {
	Config function.InvocationConfig
	Cwd    string
}

// Resolver builds invocation configurations. It holds no per-call state, so
// concurrent resolutions for different functions do not interfere.
type Resolver struct {
	Credentials credentials.Source
	Getwd       func() (string, error)
	Environ     func() []string
}

// NewResolver constructs a Resolver reading the process cwd and environment.
func NewResolver(source credentials.Source) Resolver {
	return Resolver{
		Credentials: source,
		Getwd:       os.Getwd,
		Environ:     os.Environ,
	}
}

// Resolve produces the invocation configuration for fn.
func (r Resolver) Resolve(fn function.Definition, req Request) (Resolution, error) {
	getwd := r.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}

	log.Debugf("Resolving code path. Cwd=%s, CodeUri=%s", req.Cwd, fn.CodeURI)
	cwd, err := function.ResolveCwd(req.Cwd, getwd)
	if err != nil {
		return Resolution{}, err
	}
	codePath := function.ResolveCodePath(cwd, fn.CodeURI)
	log.Debugf("Resolved absolute path to code is %s", codePath)

	memory := fn.MemoryOr(DefaultMemory)
	declaredTimeout := fn.TimeoutOr(DefaultTimeout)
	timeout := EffectiveTimeout(declaredTimeout, req.Debug)

	env, err := r.buildEnv(fn, memory, declaredTimeout, req.Overrides)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Cwd: cwd,
		Config: function.InvocationConfig{
			Name:        fn.Name,
			Runtime:     fn.Runtime,
			Handler:     fn.Handler,
			CodeAbsPath: codePath,
			Memory:      memory,
			Timeout:     timeout,
			Env:         env,
		},
	}, nil
}

// EffectiveTimeout returns MaxDebugTimeout while debugging, whatever the
// declared value, and the declared value otherwise.
func EffectiveTimeout(declared int, debug bool) int {
	if debug {
		return MaxDebugTimeout
	}
	return declared
}

func (r Resolver) buildEnv(
	fn function.Definition,
	memory int,
	timeout int,
	input overrides.Input,
) (*envset.Set, error) {
	declared := fn.Variables()
	if declared == nil {
		log.Debugf("No environment variables found for function '%s'", fn.Name)
	}

	creds, err := r.envCredentials()
	if err != nil {
		return nil, err
	}

	var shell map[string]string
	if r.Environ != nil {
		shell = value.EnvSliceToMap(r.Environ())
	}

	fnOverrides := input.For(fn.Name)
	for key := range fnOverrides {
		if _, ok := declared[key]; !ok && !envset.IsReserved(key) {
			log.Debugf("Ignoring override %s: not declared by function '%s'", key, fn.Name)
		}
	}
	set := envset.Build(
		envset.Params{
			FunctionName: fn.Name,
			Handler:      fn.Handler,
			Memory:       memory,
			Timeout:      timeout,
		},
		envset.Layers{
			Declared:  declared,
			Shell:     shell,
			Overrides: fnOverrides,
		},
		creds,
	)
	for _, key := range set.Dropped() {
		log.Warnf("Ignoring reserved environment variable %s for function '%s'", key, fn.Name)
	}
	return set, nil
}

func (r Resolver) envCredentials() (envset.Credentials, error) {
	if r.Credentials == nil {
		return envset.Credentials{}, fmt.Errorf("%w: credential source is not configured", function.ErrCredentialStoreMissing)
	}
	record, err := r.Credentials.Credentials()
	if err != nil {
		return envset.Credentials{}, err
	}
	region, err := r.Credentials.Region()
	if err != nil {
		if !errors.Is(err, function.ErrCredentialStoreMissing) {
			return envset.Credentials{}, err
		}
		log.Debugf("Region not configured: %v", err)
		region = ""
	}
	return record.EnvCredentials(region), nil
}
