package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	clientHomeDirName = ".churchai"
	clientConfigFile  = "config.toml"
	clientEnvPrefix   = "CHURCHAI"
)

// ClientConfig configures the session client (churchctl and anything embedding the session core).
// Values come from an optional TOML profile and are overridden by CHURCHAI_* env vars.
type ClientConfig struct {
	APIURL         string `toml:"api_url" envconfig:"API_URL"`
	Store          string `toml:"store" envconfig:"STORE"`
	CredentialPath string `toml:"credential_path" envconfig:"CREDENTIALS"`
	Timeout        string `toml:"timeout" envconfig:"TIMEOUT"`
	LogLevel       string `toml:"log_level" envconfig:"LOG_LEVEL"`
}

// ClientHome returns ~/.churchai
func ClientHome() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating home directory")
	}
	return filepath.Join(home, clientHomeDirName), nil
}

// LoadClientConfig reads the profile at path (or ~/.churchai/config.toml when path is empty).
// A missing profile is not an error.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		APIURL:   "http://localhost:8000/api",
		Store:    StoreFile,
		Timeout:  "30s",
		LogLevel: "warn",
	}

	if path == "" {
		home, err := ClientHome()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, clientConfigFile)
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "error parsing client config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "error reading client config %s", path)
	}

	// Unset variables leave the profile values in place
	if err := envconfig.Process(clientEnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "error getting client configuration from environment")
	}

	switch cfg.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return nil, errors.Errorf("unknown credential store %q", cfg.Store)
	}
	return cfg, nil
}

// TimeoutDuration returns the request timeout, defaulting to 30s when unset or invalid.
func (c *ClientConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ResolveCredentialPath returns CredentialPath, or the backend's default location under ~/.churchai.
func (c *ClientConfig) ResolveCredentialPath() (string, error) {
	if c.CredentialPath != "" {
		return homedir.Expand(c.CredentialPath)
	}
	home, err := ClientHome()
	if err != nil {
		return "", err
	}
	if c.Store == StoreSQLite {
		return filepath.Join(home, "credentials.db"), nil
	}
	return filepath.Join(home, "credentials.json"), nil
}
