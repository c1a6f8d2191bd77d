package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Port           string
	DBPath         string
	DBBusyTimeout  time.Duration
	SessionTimeout time.Duration
	CookieSecure   bool
	Debug          bool
	// TrustedProxy takes the client IP from X-Forwarded-For set by a proxy
	// on a private or loopback address instead of the TCP peer
	TrustedProxy bool

	LogLevel  string
	LogFormat string

	TLSEnabled bool
	TLSCertDir string

	LoginMaxAttempts int
	LoginWindow      time.Duration
	LoginBlock       time.Duration
}

// envPrefix is prepended to every key, e.g. BIRTHDAY_PORT
const envPrefix = "BIRTHDAY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./users.db")
	v.SetDefault("db_busy_timeout", 10*time.Second)
	v.SetDefault("session_timeout", 24*time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("debug", false)
	v.SetDefault("trusted_proxy", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("tls_enabled", false)
	v.SetDefault("tls_cert_dir", "./certs")
	v.SetDefault("login_max_attempts", 5)
	v.SetDefault("login_window", 15*time.Minute)
	v.SetDefault("login_block", 15*time.Minute)
}

// Load reads configuration from defaults, an optional .env file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetString("port"),
		DBPath:           v.GetString("db_path"),
		DBBusyTimeout:    v.GetDuration("db_busy_timeout"),
		SessionTimeout:   v.GetDuration("session_timeout"),
		CookieSecure:     v.GetBool("cookie_secure"),
		Debug:            v.GetBool("debug"),
		TrustedProxy:     v.GetBool("trusted_proxy"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		TLSEnabled:       v.GetBool("tls_enabled"),
		TLSCertDir:       v.GetString("tls_cert_dir"),
		LoginMaxAttempts: v.GetInt("login_max_attempts"),
		LoginWindow:      v.GetDuration("login_window"),
		LoginBlock:       v.GetDuration("login_block"),
	}

	// Ensure absolute path
	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		if abs, err := filepath.Abs(cfg.DBPath); err == nil {
			cfg.DBPath = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: port is required")
	case c.DBPath == "":
		return errors.New("config: db path is required")
	case c.DBBusyTimeout <= 0:
		return errors.New("config: db busy timeout must be positive")
	case c.SessionTimeout <= 0:
		return errors.New("config: session timeout must be positive")
	case c.LoginMaxAttempts <= 0:
		return errors.New("config: login max attempts must be positive")
	case c.LoginWindow <= 0 || c.LoginBlock <= 0:
		return errors.New("config: login window and block must be positive")
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}
