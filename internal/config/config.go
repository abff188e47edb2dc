// Package config loads runtime settings for the web client and the reference
// backend.
package config

import (
	"time"
)

// EnvPrefix is the prefix for every environment override.
const EnvPrefix = "HRPULSE_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

type Config struct {
	// Web client.
	ClientAddr   string        `koanf:"client_addr"`
	APIBaseURL   string        `koanf:"api_base_url"`
	APITimeout   time.Duration `koanf:"api_timeout"`
	CookieSecure bool          `koanf:"cookie_secure"`

	// SessionMaxAge is how long the token cookie survives browser restarts.
	SessionMaxAge time.Duration `koanf:"session_max_age"`

	// Reference backend.
	APIAddr       string `koanf:"api_addr"`
	DBPath        string `koanf:"db_path"`
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	JWTSecret     string `koanf:"jwt_secret"`
	SeedPath      string `koanf:"seed_path"`

	LogLevel     string        `koanf:"log_level"`
	LogFormat    string        `koanf:"log_format"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// New returns the defaults. APITimeout is zero, meaning backend calls are
// bounded only by the incoming request.
func New() *Config {
	return &Config{
		ClientAddr:    ":3000",
		APIBaseURL:    "http://localhost:5000",
		SessionMaxAge: 30 * 24 * time.Hour,
		APIAddr:       ":5000",
		DBPath:        "data/hrpulse.db",
		AdminUsername: "admin",
		LogLevel:      "info",
		LogFormat:     "text",
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  30 * time.Second,
	}
}
