// Where: cli/internal/domain/envset/envset_test.go
// What: Tests for environment layering.
// Why: Keep precedence and reserved-key rules stable.
package envset

import (
	"reflect"
	"testing"
)

func TestBuildPrecedence(t *testing.T) {
	set := Build(Params{Handler: "app.handler", Memory: 128, Timeout: 3}, Layers{
		Declared: map[string]string{
			"DECLARED_ONLY": "declared",
			"SHELL_WINS":    "declared",
			"OVERRIDE_WINS": "declared",
		},
		Shell: map[string]string{
			"SHELL_WINS":    "shell",
			"OVERRIDE_WINS": "shell",
			"PATH":          "/usr/bin",
		},
		Overrides: map[string]string{
			"OVERRIDE_WINS": "override",
		},
	}, Credentials{})

	want := map[string]string{
		"DECLARED_ONLY": "declared",
		"SHELL_WINS":    "shell",
		"OVERRIDE_WINS": "override",
	}
	if user := set.User(); !reflect.DeepEqual(user, want) {
		t.Fatalf("user = %v, want %v", user, want)
	}
	if _, ok := set.Get("PATH"); ok {
		t.Fatalf("host variables must not leak into the set")
	}
	if _, ok := set.Get("NEVER_SET"); ok {
		t.Fatalf("unset variables stay absent")
	}
}

func TestBuildOverridesOnlyReplaceDeclaredKeys(t *testing.T) {
	set := Build(Params{}, Layers{
		Declared:  map[string]string{"TABLE": "declared"},
		Shell:     map[string]string{"EXTRA": "shell"},
		Overrides: map[string]string{"TABLE": "override", "EXTRA": "override", "UNDECLARED": "override"},
	}, Credentials{})

	if value, _ := set.Get("TABLE"); value != "override" {
		t.Fatalf("TABLE = %q, want override", value)
	}
	for _, key := range []string{"EXTRA", "UNDECLARED"} {
		if _, ok := set.Get(key); ok {
			t.Fatalf("%s must not be added by a user layer", key)
		}
	}
	if dropped := set.Dropped(); len(dropped) != 0 {
		t.Fatalf("undeclared keys are not reserved drops: %v", dropped)
	}
}

func TestBuildReservedKeysNotOverridable(t *testing.T) {
	set := Build(Params{FunctionName: "hello", Handler: "app.handler", Memory: 256, Timeout: 9}, Layers{
		Declared:  map[string]string{KeyMemorySize: "1"},
		Overrides: map[string]string{KeyHandler: "evil.handler", KeyAccessKeyID: "stolen"},
	}, Credentials{Key: "ak"})

	resolved := set.Resolve()
	checks := map[string]string{
		KeyMemorySize:   "256",
		KeyTimeout:      "9",
		KeyHandler:      "app.handler",
		KeyFunctionName: "hello",
		KeyAccessKeyID:  "ak",
	}
	for key, want := range checks {
		if got := resolved[key]; got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
	wantDropped := []string{KeyAccessKeyID, KeyHandler, KeyMemorySize}
	if dropped := set.Dropped(); !reflect.DeepEqual(dropped, wantDropped) {
		t.Fatalf("dropped = %v, want %v", dropped, wantDropped)
	}
}

func TestBuildOmitsEmptyCredentials(t *testing.T) {
	set := Build(Params{}, Layers{}, Credentials{Secret: "sk"})

	for _, key := range []string{KeyAccessKeyID, KeySessionToken, KeyRegion} {
		if _, ok := set.Get(key); ok {
			t.Fatalf("%s should be omitted", key)
		}
	}
	if value, ok := set.Get(KeySecretAccessKey); !ok || value != "sk" {
		t.Fatalf("secret = %q, %v", value, ok)
	}
}

func TestBuildRegionSetsBothKeys(t *testing.T) {
	set := Build(Params{}, Layers{}, Credentials{Region: "bj"})

	resolved := set.Resolve()
	if resolved[KeyRegion] != "bj" || resolved[KeyDefaultRegion] != "bj" {
		t.Fatalf("region keys = %q/%q", resolved[KeyRegion], resolved[KeyDefaultRegion])
	}
}

func TestSliceIsSorted(t *testing.T) {
	set := Build(Params{Handler: "h", Memory: 1, Timeout: 2}, Layers{
		Declared: map[string]string{"B": "2", "A": "1"},
	}, Credentials{})

	entries := set.Slice()
	if len(entries) < 2 || entries[0] != "A=1" || entries[1] != "B=2" {
		t.Fatalf("unexpected order: %v", entries)
	}
	found := false
	for _, entry := range entries {
		if entry == KeyLocal+"=true" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing %s in %v", KeyLocal, entries)
	}
}
