// Where: cli/internal/domain/function/codepath.go
// What: Working directory and CodeUri resolution.
// Why: Resolve code locations without caching cwd on shared state.
package function

import (
	"fmt"
	"path/filepath"
)

// PresentDir is the sentinel meaning "the process working directory".
const PresentDir = "."

// ResolveCwd turns an optional working directory into an absolute path.
// An empty value or PresentDir falls back to getwd.
func ResolveCwd(cwd string, getwd func() (string, error)) (string, error) {
	if cwd == "" || cwd == PresentDir {
		wd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolve working directory %s: %w", cwd, err)
	}
	return abs, nil
}

// ResolveCodePath returns codeURI unchanged when absolute, otherwise joined to
// the absolute cwd and cleaned. Feeding the result back in returns it unchanged.
func ResolveCodePath(cwd, codeURI string) string {
	if filepath.IsAbs(codeURI) {
		return codeURI
	}
	return filepath.Clean(filepath.Join(cwd, codeURI))
}
