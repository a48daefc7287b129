// Where: cli/internal/infra/config/global.go
// What: Global config load and env overrides.
// Why: Manage ~/.bsam/config.yaml consistently.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/envutil"
	"github.com/poruru/bsam-cli/internal/meta"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// GlobalConfig represents ~/.bsam/config.yaml.
type GlobalConfig struct {
	Version         int    `yaml:"version"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Role            string `yaml:"role,omitempty"`
	ArtifactBucket  string `yaml:"artifact_bucket,omitempty"`
	ArtifactPrefix  string `yaml:"artifact_prefix,omitempty"`
	S3Endpoint      string `yaml:"s3_endpoint,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	ConfigFile      string `yaml:"config_file,omitempty"`
	DockerNetwork   string `yaml:"docker_network,omitempty"`
	// Images maps a local image tag (python2.7, nodejs6.10) to a full image reference.
	Images map[string]string `yaml:"images,omitempty"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Version: 1,
		Images:  map[string]string{},
	}
}

// GlobalConfigPath resolves the config location: BSAM_CONFIG_PATH, then
// BSAM_CONFIG_HOME/config.yaml, then ~/.bsam/config.yaml.
func GlobalConfigPath() (string, error) {
	if path := envutil.GetHostEnv("CONFIG_PATH"); path != "" {
		return path, nil
	}
	if dir := envutil.GetHostEnv("CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, meta.HomeDir, configFileName), nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, fmt.Errorf("read global config: %w", err)
	}

	cfg := DefaultGlobalConfig()
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("decode global config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file is absent.
// Env overrides are applied in both cases.
func LoadOrDefault(path string) (GlobalConfig, error) {
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return GlobalConfig{}, err
		}
		cfg = DefaultGlobalConfig()
	}
	return cfg.WithEnvOverrides(), nil
}

// WithEnvOverrides returns a copy with BSAM_* variables applied.
func (c GlobalConfig) WithEnvOverrides() GlobalConfig {
	overrides := []struct {
		suffix string
		target *string
	}{
		{"ENDPOINT", &c.Endpoint},
		{"REGION", &c.Region},
		{"ROLE", &c.Role},
		{"S3_ENDPOINT", &c.S3Endpoint},
		{"CREDENTIALS_FILE", &c.CredentialsFile},
		{"BCE_CONFIG_FILE", &c.ConfigFile},
	}
	for _, item := range overrides {
		if value := envutil.GetHostEnv(item.suffix); value != "" {
			*item.target = value
		}
	}
	return c
}

// CredentialPaths returns the credential store locations, honoring overrides.
func (c GlobalConfig) CredentialPaths(home string) credentials.Paths {
	paths := credentials.DefaultPaths(home)
	if path := strings.TrimSpace(c.CredentialsFile); path != "" {
		paths.CredentialsFile = path
	}
	if path := strings.TrimSpace(c.ConfigFile); path != "" {
		paths.ConfigFile = path
	}
	return paths
}
