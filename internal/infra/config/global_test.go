// Where: cli/internal/infra/config/global_test.go
// What: Tests for global config loading.
// Why: Ensure config decoding and env overrides stay stable.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadGlobalConfig(t *testing.T) {
	path := writeConfig(t, `version: 1
endpoint: http://127.0.0.1:9000
role: deployer
artifact_bucket: artifacts
images:
  python2.7: registry.local/lambda:python2.7
`)
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("load global config: %v", err)
	}
	if cfg.Endpoint != "http://127.0.0.1:9000" || cfg.Role != "deployer" || cfg.ArtifactBucket != "artifacts" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if image := cfg.Images["python2.7"]; image != "registry.local/lambda:python2.7" {
		t.Fatalf("unexpected image override: %q", image)
	}
	if _, ok := cfg.Images["nodejs6.10"]; ok {
		t.Fatalf("expected no nodejs override")
	}
}

func TestLoadGlobalConfigRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "endpoint: [unterminated")
	if _, err := LoadGlobalConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("BSAM_ENDPOINT", "")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load or default: %v", err)
	}
	if cfg.Version != 1 || cfg.Endpoint != "" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestLoadOrDefaultAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, "endpoint: http://from-file\nregion: bj\n")
	t.Setenv("BSAM_ENDPOINT", "http://from-env")
	t.Setenv("BSAM_REGION", "")
	t.Setenv("BSAM_CREDENTIALS_FILE", "/tmp/creds")

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("load or default: %v", err)
	}
	if cfg.Endpoint != "http://from-env" {
		t.Fatalf("expected env endpoint, got %s", cfg.Endpoint)
	}
	if cfg.Region != "bj" {
		t.Fatalf("expected file region, got %s", cfg.Region)
	}
	paths := cfg.CredentialPaths("/home/dev")
	if paths.CredentialsFile != "/tmp/creds" {
		t.Fatalf("unexpected credentials file: %s", paths.CredentialsFile)
	}
	if paths.ConfigFile != filepath.Join("/home/dev", ".bce", "config") {
		t.Fatalf("unexpected config file: %s", paths.ConfigFile)
	}
}

func TestGlobalConfigPathPrecedence(t *testing.T) {
	t.Setenv("BSAM_CONFIG_PATH", "/etc/bsam.yaml")
	t.Setenv("BSAM_CONFIG_HOME", "/opt/bsam")
	if got, _ := GlobalConfigPath(); got != "/etc/bsam.yaml" {
		t.Fatalf("unexpected path: %s", got)
	}

	t.Setenv("BSAM_CONFIG_PATH", "")
	if got, _ := GlobalConfigPath(); got != filepath.Join("/opt/bsam", "config.yaml") {
		t.Fatalf("unexpected path: %s", got)
	}

	t.Setenv("BSAM_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got, _ := GlobalConfigPath(); got != filepath.Join(home, ".bsam", "config.yaml") {
		t.Fatalf("unexpected path: %s", got)
	}
}
