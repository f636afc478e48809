package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

// Config holds application configuration sourced from environment variables,
// an optional .env file and an optional config file.
type Config struct {
	Env            string `mapstructure:"app_env"`
	AdminEmail     string `mapstructure:"admin_email"`
	AdminPassword  string `mapstructure:"admin_password"`
	SessionSecret  string `mapstructure:"session_secret"`
	DBPath         string `mapstructure:"db_path"`
	Port           string `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	Currency       string `mapstructure:"currency"`
	CompanyName    string `mapstructure:"company_name"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

var defaults = map[string]any{
	"app_env":         envDev,
	"admin_email":     "",
	"admin_password":  "",
	"session_secret":  "",
	"db_path":         "./dev.db",
	"port":            "8080",
	"log_level":       "info",
	"currency":        "AUD",
	"company_name":    "QuoteCraft",
	"metrics_enabled": true,
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == envDev
}

// Load reads .env, CONFIG_FILE (when set) and the environment, in increasing
// order of precedence, and returns a populated Config.
func Load() (Config, error) {
	// Local dev convenience; production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != envDev && cfg.Env != envProd {
		return Config{}, fmt.Errorf("app_env must be %q or %q, got %q", envDev, envProd, cfg.Env)
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required outside dev")
		}
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg, nil
}
