// Where: cli/internal/domain/envset/envset.go
// What: Layered environment variable set for local invokes.
// Why: Enforce override precedence and keep reserved variables out of user reach.
package envset

import (
	"sort"
	"strconv"
)

// Reserved variable names synthesized from the function definition and the
// credential store. User layers never write these.
const (
	KeyLocal           = "BSAM_LOCAL"
	KeyFunctionName    = "AWS_LAMBDA_FUNCTION_NAME"
	KeyFunctionVersion = "AWS_LAMBDA_FUNCTION_VERSION"
	KeyMemorySize      = "AWS_LAMBDA_FUNCTION_MEMORY_SIZE"
	KeyTimeout         = "AWS_LAMBDA_FUNCTION_TIMEOUT"
	KeyHandler         = "AWS_LAMBDA_FUNCTION_HANDLER"
	KeyRegion          = "AWS_REGION"
	KeyDefaultRegion   = "AWS_DEFAULT_REGION"
	KeyAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeySecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	KeySessionToken    = "AWS_SESSION_TOKEN"
)

const latestVersion = "$LATEST"

func reservedKeys() map[string]bool {
	return map[string]bool{
		KeyLocal:           true,
		KeyFunctionName:    true,
		KeyFunctionVersion: true,
		KeyMemorySize:      true,
		KeyTimeout:         true,
		KeyHandler:         true,
		KeyRegion:          true,
		KeyDefaultRegion:   true,
		KeyAccessKeyID:     true,
		KeySecretAccessKey: true,
		KeySessionToken:    true,
	}
}

// IsReserved reports whether key belongs to the reserved namespace.
func IsReserved(key string) bool {
	return reservedKeys()[key]
}

// Params are the computed execution parameters for the reserved namespace.
type Params struct {
	FunctionName string
	Handler      string
	Memory       int
	Timeout      int
}

// Credentials are the credential-derived reserved values. Empty fields are
// omitted from the set rather than exported as empty strings.
type Credentials struct {
	Key          string
	Secret       string
	SessionToken string
	Region       string
}

// Layers holds the user-controlled sources in increasing priority.
type Layers struct {
	// Declared are the function's own Variables. They define the user keys.
	Declared map[string]string
	// Shell is the invoking process environment. It only replaces values of
	// declared keys; it never adds host variables.
	Shell map[string]string
	// Overrides come from the override input and win over everything else.
	// Like Shell they re-value declared keys only.
	Overrides map[string]string
}

// Set is an immutable, resolved environment.
type Set struct {
	user     map[string]string
	reserved map[string]string
	dropped  []string
}

// Build layers the user sources in priority order and then applies the
// reserved namespace on top.
func Build(params Params, layers Layers, creds Credentials) *Set {
	user := map[string]string{}
	dropped := map[string]bool{}

	for key := range layers.Overrides {
		if IsReserved(key) {
			dropped[key] = true
		}
	}
	for key, value := range layers.Declared {
		if IsReserved(key) {
			dropped[key] = true
			continue
		}
		if shellValue, found := layers.Shell[key]; found {
			value = shellValue
		}
		if overrideValue, found := layers.Overrides[key]; found {
			value = overrideValue
		}
		user[key] = value
	}

	return &Set{
		user:     user,
		reserved: buildReserved(params, creds),
		dropped:  sortedKeys(dropped),
	}
}

func buildReserved(params Params, creds Credentials) map[string]string {
	reserved := map[string]string{
		KeyLocal:           "true",
		KeyFunctionVersion: latestVersion,
		KeyMemorySize:      strconv.Itoa(params.Memory),
		KeyTimeout:         strconv.Itoa(params.Timeout),
		KeyHandler:         params.Handler,
	}
	if params.FunctionName != "" {
		reserved[KeyFunctionName] = params.FunctionName
	}
	if creds.Key != "" {
		reserved[KeyAccessKeyID] = creds.Key
	}
	if creds.Secret != "" {
		reserved[KeySecretAccessKey] = creds.Secret
	}
	if creds.SessionToken != "" {
		reserved[KeySessionToken] = creds.SessionToken
	}
	if creds.Region != "" {
		reserved[KeyRegion] = creds.Region
		reserved[KeyDefaultRegion] = creds.Region
	}
	return reserved
}

// Get returns the resolved value of key.
func (s *Set) Get(key string) (string, bool) {
	if value, ok := s.reserved[key]; ok {
		return value, true
	}
	value, ok := s.user[key]
	return value, ok
}

// User returns a copy of the user namespace.
func (s *Set) User() map[string]string {
	return copyMap(s.user)
}

// Dropped lists user-supplied keys ignored because they are reserved.
func (s *Set) Dropped() []string {
	return append([]string(nil), s.dropped...)
}

// Resolve returns the final mapping, reserved values last.
func (s *Set) Resolve() map[string]string {
	out := copyMap(s.user)
	for key, value := range s.reserved {
		out[key] = value
	}
	return out
}

// Slice renders the set as sorted KEY=VALUE entries.
func (s *Set) Slice() []string {
	resolved := s.Resolve()
	keys := make([]string, 0, len(resolved))
	for key := range resolved {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+resolved[key])
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func sortedKeys(in map[string]bool) []string {
	out := make([]string, 0, len(in))
	for key := range in {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
