// Where: cli/internal/architecture/layering_test.go
// What: Layer dependency guard tests for CLI internal packages.
// Why: Keep domain pure and let infra see usecases only through their ports.
package architecture

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const internalImportPrefix = "github.com/poruru/bsam-cli/internal/"

func TestLayeringRules(t *testing.T) {
	t.Parallel()

	internalRoot := resolveInternalRoot(t)
	fset := token.NewFileSet()
	violations := []string{}

	err := filepath.WalkDir(internalRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(internalRoot, path)
		if err != nil {
			return err
		}
		sourceLayer := topLayer(rel)
		if sourceLayer == "" {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}

		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			importLayer := topLayerFromImport(importPath)
			if importLayer == "" {
				continue
			}
			if violatesRule(sourceLayer, importLayer) || violatesPortRule(sourceLayer, importPath) {
				violations = append(violations, rel+" -> "+importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan internal packages: %v", err)
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("layering rule violations:\n%s", strings.Join(violations, "\n"))
	}
}

func resolveInternalRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Clean(filepath.Join(wd, "..", ".."))
	return filepath.Join(root, "internal")
}

func topLayer(relPath string) string {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func topLayerFromImport(importPath string) string {
	if !strings.HasPrefix(importPath, internalImportPrefix) {
		return ""
	}
	rest := strings.TrimPrefix(importPath, internalImportPrefix)
	parts := strings.Split(rest, "/")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// allowedImports lists the layers each layer may depend on. Layers not
// listed here (command, meta, version) are unconstrained.
var allowedImports = map[string]map[string]bool{
	"domain":  {"domain": true, "meta": true},
	"usecase": {"domain": true, "usecase": true, "infra": true, "meta": true},
	"infra":   {"domain": true, "usecase": true, "infra": true, "meta": true, "version": true},
}

// usecaseImportsFromInfra names the only usecase packages infra adapters may
// import: the ones declaring the ports they implement.
var usecaseImportsFromInfra = map[string]bool{
	internalImportPrefix + "usecase/invoke": true,
	internalImportPrefix + "usecase/deploy": true,
}

func violatesRule(sourceLayer, importLayer string) bool {
	allowed, ok := allowedImports[sourceLayer]
	if !ok {
		return false
	}
	return !allowed[importLayer]
}

func violatesPortRule(sourceLayer, importPath string) bool {
	return sourceLayer == "infra" &&
		topLayerFromImport(importPath) == "usecase" &&
		!usecaseImportsFromInfra[importPath]
}

func TestViolatesRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		source, target string
		want           bool
	}{
		{"domain", "infra", true},
		{"domain", "usecase", true},
		{"domain", "meta", false},
		{"usecase", "command", true},
		{"usecase", "infra", false},
		{"infra", "command", true},
		{"command", "infra", false},
	}
	for _, tc := range cases {
		if got := violatesRule(tc.source, tc.target); got != tc.want {
			t.Fatalf("violatesRule(%s, %s) = %v, want %v", tc.source, tc.target, got, tc.want)
		}
	}
	if !violatesPortRule("infra", internalImportPrefix+"usecase/scaffold") {
		t.Fatalf("infra must not import usecase/scaffold")
	}
	if violatesPortRule("infra", internalImportPrefix+"usecase/invoke") {
		t.Fatalf("infra may import usecase/invoke")
	}
}
