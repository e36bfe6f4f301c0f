package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for overrides. Environment wins over the
// config file; secrets normally arrive this way.
const (
	EnvConfig           = "MINEDOCS_CONFIG"
	EnvAPIBaseURL       = "MINEDOCS_API_URL"
	EnvAuthURL          = "MINEDOCS_AUTH_URL"
	EnvClientID         = "MINEDOCS_CLIENT_ID"
	EnvTokenPath        = "MINEDOCS_TOKEN_PATH"
	EnvStorageEndpoint  = "MINEDOCS_STORAGE_ENDPOINT"
	EnvStorageRegion    = "MINEDOCS_STORAGE_REGION"
	EnvStorageBucket    = "MINEDOCS_STORAGE_BUCKET"
	EnvStorageAccessKey = "MINEDOCS_STORAGE_ACCESS_KEY"
	EnvStorageSecretKey = "MINEDOCS_STORAGE_SECRET_KEY"
	EnvLedgerPath       = "MINEDOCS_LEDGER_PATH"
)

// LoadDotenv loads a .env file from the working directory into the process
// environment, if one exists. Existing variables are never overwritten.
func LoadDotenv() {
	_ = godotenv.Load()
}

// ConfigPath resolves the config file path: MINEDOCS_CONFIG or the default.
func ConfigPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}

	return "minedocs.toml"
}

// applyEnvOverrides replaces config fields with any environment values set.
func applyEnvOverrides(cfg *Config) {
	setIfPresent(EnvAPIBaseURL, &cfg.API.BaseURL)
	setIfPresent(EnvAuthURL, &cfg.Identity.AuthURL)
	setIfPresent(EnvClientID, &cfg.Identity.ClientID)
	setIfPresent(EnvTokenPath, &cfg.Identity.TokenPath)
	setIfPresent(EnvStorageEndpoint, &cfg.Storage.Endpoint)
	setIfPresent(EnvStorageRegion, &cfg.Storage.Region)
	setIfPresent(EnvStorageBucket, &cfg.Storage.Bucket)
	setIfPresent(EnvStorageAccessKey, &cfg.Storage.AccessKey)
	setIfPresent(EnvStorageSecretKey, &cfg.Storage.SecretKey)
	setIfPresent(EnvLedgerPath, &cfg.Ledger.Path)
}

func setIfPresent(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
