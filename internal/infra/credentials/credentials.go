// Where: cli/internal/infra/credentials/credentials.go
// What: Local BCE credential store reader.
// Why: Source credentials and region from explicit paths instead of fixed globals.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/bsam-cli/internal/domain/envset"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/meta"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const (
	defaultSection     = "default"
	accessKeyIDKey     = "bce_access_key_id"
	secretAccessKeyKey = "bce_secret_access_key"
	regionKey          = "region"
)

// Paths locates the credential file and the sibling config file.
type Paths struct {
	CredentialsFile string
	ConfigFile      string
}

// DefaultPaths returns ~/.bce/credentials and ~/.bce/config under home.
func DefaultPaths(home string) Paths {
	dir := filepath.Join(home, meta.CredentialDir)
	return Paths{
		CredentialsFile: filepath.Join(dir, "credentials"),
		ConfigFile:      filepath.Join(dir, "config"),
	}
}

// Record is a normalized credential record. Fields are empty only when the
// store has no value for them.
type Record struct {
	Key    string
	Secret string
	// SessionToken is part of the record shape but is never read from the store.
	SessionToken string
}

// Fields returns only the populated fields, keyed "key", "secret", "token".
func (r Record) Fields() map[string]string {
	out := map[string]string{}
	if r.Key != "" {
		out["key"] = r.Key
	}
	if r.Secret != "" {
		out["secret"] = r.Secret
	}
	if r.SessionToken != "" {
		out["token"] = r.SessionToken
	}
	return out
}

// EnvCredentials converts the record and region into reserved env values.
func (r Record) EnvCredentials(region string) envset.Credentials {
	return envset.Credentials{
		Key:          r.Key,
		Secret:       r.Secret,
		SessionToken: r.SessionToken,
		Region:       region,
	}
}

// Source reads the credential store.
type Source interface {
	Credentials() (Record, error)
	Region() (string, error)
}

// FileSource reads INI-style files from Paths.
type FileSource struct {
	Paths Paths
}

// NewFileSource constructs a FileSource.
func NewFileSource(paths Paths) FileSource {
	return FileSource{Paths: paths}
}

// Credentials reads the access key pair from the default section.
func (s FileSource) Credentials() (Record, error) {
	section, err := loadSection(s.Paths.CredentialsFile)
	if err != nil {
		return Record{}, err
	}
	record := Record{
		Key:    strings.TrimSpace(section.Key(accessKeyIDKey).String()),
		Secret: strings.TrimSpace(section.Key(secretAccessKeyKey).String()),
	}
	log.Debugf("Loaded credentials from %s (fields: %d)", s.Paths.CredentialsFile, len(record.Fields()))
	return record, nil
}

// Region reads the region from the default section of the config file.
// The config file's own existence is checked, not the credential file's.
func (s FileSource) Region() (string, error) {
	section, err := loadSection(s.Paths.ConfigFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(section.Key(regionKey).String()), nil
}

func loadSection(path string) (*ini.Section, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path is not configured", function.ErrCredentialStoreMissing)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", function.ErrCredentialStoreMissing, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", function.ErrConfiguration, path, err)
	}
	section, err := file.GetSection(defaultSection)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no [%s] section", function.ErrConfiguration, path, defaultSection)
	}
	return section, nil
}
