// Package config resolves the library's external configuration: a TOML file
// with defaults, overridden by environment variables. Secrets (storage keys)
// usually arrive via the environment; a .env file is honored when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration tree.
type Config struct {
	API      APIConfig      `toml:"api"`
	Identity IdentityConfig `toml:"identity"`
	Storage  StorageConfig  `toml:"storage"`
	Ledger   LedgerConfig   `toml:"ledger"`
}

// APIConfig locates the document metadata API.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// IdentityConfig locates the identity provider and the local token cache.
type IdentityConfig struct {
	AuthURL   string `toml:"auth_url"`
	ClientID  string `toml:"client_id"`
	TokenPath string `toml:"token_path"`
}

// StorageConfig holds the object-store endpoint and credentials.
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// LedgerConfig locates the local upload-attempt ledger. An empty path
// disables attempt recording.
type LedgerConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Identity: IdentityConfig{
			ClientID:  "minedocs",
			TokenPath: defaultTokenPath(),
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			Bucket: "mine-documents",
		},
	}
}

// defaultTokenPath places the token cache under the user's home directory.
func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minedocs/token.json"
	}

	return filepath.Join(home, ".minedocs", "token.json")
}

// Load reads and parses a TOML config file, applies environment overrides,
// and validates the result. Unknown keys are fatal — silently ignoring a
// typo in a config file leads to hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise starts from
// defaults. Environment overrides and validation apply either way, so a
// fully env-configured deployment needs no file at all.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)

		if err := Validate(cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	return Load(path)
}

// Validate checks the resolved configuration for the fields every deployment
// needs. Storage credentials are not required here — public-read deployments
// may rely on ambient AWS credential resolution.
func Validate(cfg *Config) error {
	var missing []string

	if cfg.API.BaseURL == "" {
		missing = append(missing, "api.base_url")
	}

	if cfg.Identity.AuthURL == "" {
		missing = append(missing, "identity.auth_url")
	}

	if cfg.Storage.Bucket == "" {
		missing = append(missing, "storage.bucket")
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	cfg.Identity.AuthURL = strings.TrimRight(cfg.Identity.AuthURL, "/")

	return nil
}
