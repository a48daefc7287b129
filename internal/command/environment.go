// Where: cli/internal/command/environment.go
// What: Shared inputs for template-driven commands.
// Why: Load config, credential source, and function provider the same way for invoke, package, and deploy.
package command

import (
	"fmt"
	"path/filepath"

	"github.com/poruru/bsam-cli/internal/infra/config"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/sam"
	log "github.com/sirupsen/logrus"
)

type environment struct {
	wd       string
	config   config.GlobalConfig
	source   credentials.Source
	provider *sam.TemplateProvider
}

func loadEnvironment(cli CLI, deps Dependencies) (environment, error) {
	wd, err := deps.Getwd()
	if err != nil {
		return environment{}, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg, err := deps.LoadConfig()
	if err != nil {
		return environment{}, err
	}
	home, err := deps.HomeDir()
	if err != nil {
		return environment{}, fmt.Errorf("resolve home dir: %w", err)
	}
	paths := cfg.CredentialPaths(home)
	log.Debugf("credential store: %s, %s", paths.CredentialsFile, paths.ConfigFile)

	provider, err := sam.LoadTemplate(absPath(wd, cli.Template))
	if err != nil {
		return environment{}, err
	}
	return environment{
		wd:       wd,
		config:   cfg,
		source:   credentials.NewFileSource(paths),
		provider: provider,
	}, nil
}

// absPath anchors a user-supplied path at the working directory.
func absPath(wd, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(wd, path)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
