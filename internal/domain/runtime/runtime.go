// Where: cli/internal/domain/runtime/runtime.go
// What: Runtime alias registry for deploy translation and local images.
// Why: Centralize runtime behavior to avoid scattered conditional logic.
package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/function"
)

type Kind string

const (
	KindPython Kind = "python"
	KindNode   Kind = "nodejs"
)

// Profile describes one runtime family: the identifier the platform accepts
// and the image that runs it locally.
type Profile struct {
	Kind Kind
	// Platform is the runtime identifier sent to the remote platform.
	Platform string
	// LocalImageTag is the tag of the local execution image.
	LocalImageTag string
}

var (
	python2 = Profile{Kind: KindPython, Platform: "python2", LocalImageTag: "python2.7"}
	nodejs6 = Profile{Kind: KindNode, Platform: "nodejs6.11", LocalImageTag: "nodejs6.10"}
)

var aliases = map[string]Profile{
	"python":     python2,
	"python2":    python2,
	"python2.7":  python2,
	"nodejs":     nodejs6,
	"nodejs6":    nodejs6,
	"nodejs6.11": nodejs6,
}

// Resolve looks up the profile for a template runtime alias.
func Resolve(runtime string) (Profile, error) {
	normalized := strings.TrimSpace(strings.ToLower(runtime))
	profile, ok := aliases[normalized]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unsupported runtime %q (supported: %s)",
			function.ErrConfiguration, runtime, strings.Join(Aliases(), ", "))
	}
	return profile, nil
}

// Translate returns the platform runtime identifier for an alias.
func Translate(runtime string) (string, error) {
	profile, err := Resolve(runtime)
	if err != nil {
		return "", err
	}
	return profile.Platform, nil
}

// Aliases lists every recognized runtime alias in sorted order.
func Aliases() []string {
	out := make([]string, 0, len(aliases))
	for alias := range aliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}
