package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"inventory-server-go/internal/platform/errors"
)

const defaultConfigFile = ".config.yaml"

// Loader assembles configuration from defaults, an optional YAML file and
// environment overrides, in that order.
type Loader struct {
	useDotEnv bool
	source    string
}

// NewLoader creates a loader that reads .config.yaml from the working
// directory when present.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithSource overrides the configuration file path (useful for tests).
func (l *Loader) WithSource(path string) *Loader {
	if path != "" {
		l.source = path
	}
	return l
}

// Result captures the loaded configuration and its origin path. Path is empty
// when the configuration came from defaults and environment only.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// Missing .env is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.source
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.load",
				fmt.Sprintf("failed to parse %s", path), err)
		}
	case explicit:
		return nil, errors.Wrap(errors.KindConfig, "config.load",
			fmt.Sprintf("failed to read %s", path), err)
	default:
		path = ""
	}

	l.applyEnv(cfg)

	if cfg.Auth.Store.Expiry == 0 {
		cfg.Auth.Store.Expiry = cfg.Auth.RefreshTTL
	}

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		cfg.CORS.AllowedOrigin = v
	}
	if v := os.Getenv("WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Dir = filepath.Dir(v)
		cfg.Database.File = filepath.Base(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Auth.Store.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Auth.Store.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New(errors.KindConfig, "config.validate",
			fmt.Sprintf("invalid server port %d", cfg.Server.Port))
	}
	if strings.TrimSpace(cfg.CORS.AllowedOrigin) == "" {
		return errors.New(errors.KindConfig, "config.validate",
			"allowed origin is required: set ALLOWED_ORIGIN or cors.allowed_origin")
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return errors.New(errors.KindConfig, "config.validate",
			"auth secret must not be empty")
	}
	// "database" and "" are sqlite aliases, normalized during bootstrap.
	switch cfg.Auth.Store.Type {
	case "memory", "redis", "sqlite", "database", "":
	default:
		return errors.New(errors.KindConfig, "config.validate",
			fmt.Sprintf("unknown auth store type %q", cfg.Auth.Store.Type))
	}
	return nil
}
