// Package config loads environment-based configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the server.
type Config struct {
	// Environment controls log format ("production" or "development").
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8000"`

	// ServerURL is the external URL clients use to reach this server.
	// It is the OAuth issuer identifier.
	ServerURL string `env:"SERVER_URL"`

	// CFBDAPIKey authenticates requests to the College Football Data API.
	CFBDAPIKey string `env:"CFB_API_KEY"`

	// CFBDBaseURL overrides the upstream API base URL. Mainly for tests.
	CFBDBaseURL string `env:"CFB_API_BASE_URL" envDefault:"https://apinext.collegefootballdata.com"`

	// StaticBearerToken, when set, is accepted by the bearer gate in
	// addition to tokens issued through the OAuth flow. Used for
	// deployments where the token is provisioned out of band.
	StaticBearerToken string `env:"STATIC_BEARER_TOKEN"`

	// TokenStorePath is the bbolt database file holding issued tokens.
	TokenStorePath string `env:"TOKEN_STORE_PATH"`

	// RedisURL is the response cache backend address. Empty disables
	// caching entirely.
	RedisURL string `env:"REDIS_URL"`

	// TTLPolicyFile optionally overrides per-endpoint cache lifetimes.
	TTLPolicyFile string `env:"TTL_POLICY_FILE"`

	// LogLevel controls log verbosity (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the API key to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.TokenStorePath == "" {
		cfg.TokenStorePath = defaultTokenStorePath()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Resolve the token store path to an absolute path so the location
	// does not depend on the working directory at startup.
	absPath, err := filepath.Abs(cfg.TokenStorePath)
	if err != nil {
		return nil, fmt.Errorf("resolving token store path: %w", err)
	}

	cfg.TokenStorePath = absPath

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CFBDAPIKey == "" {
		return fmt.Errorf("CFB_API_KEY is required")
	}

	if c.ServerURL == "" {
		return fmt.Errorf("SERVER_URL is required")
	}

	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	c.CFBDBaseURL = strings.TrimRight(c.CFBDBaseURL, "/")

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// defaultTokenStorePath returns ~/.cfbd-mcp/tokens.db, falling back to
// the working directory when the home directory cannot be determined.
func defaultTokenStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tokens.db"
	}

	return filepath.Join(home, ".cfbd-mcp", "tokens.db")
}
