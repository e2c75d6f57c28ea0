package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Web      WebConfig      `yaml:"web"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

// WebConfig controls static asset serving for the bundled web frontend.
type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// CORSConfig is the single source for the response header set: the envelope
// builder and the CORS middleware both read it, so success responses, error
// responses and preflight answers can never diverge.
type CORSConfig struct {
	// AllowedOrigin has no default. It must come from the environment or the
	// config file; startup fails without it.
	AllowedOrigin    string        `yaml:"allowed_origin"`
	AllowedMethods   string        `yaml:"allowed_methods"`
	AllowedHeaders   string        `yaml:"allowed_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
}

type DatabaseConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

type AuthConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	Store      StoreConfig   `yaml:"store"`
}

type StoreConfig struct {
	Type    string          `yaml:"type"`
	Expiry  time.Duration   `yaml:"expiry"`
	Cleanup time.Duration   `yaml:"cleanup"`
	Redis   AuthRedisStore  `yaml:"redis,omitempty"`
	SQLite  AuthSQLiteStore `yaml:"sqlite,omitempty"`
	Memory  AuthMemoryStore `yaml:"memory,omitempty"`
}

type AuthRedisStore struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type AuthSQLiteStore struct {
	DSN string `yaml:"dsn,omitempty"`
}

type AuthMemoryStore struct {
	Cleanup time.Duration `yaml:"cleanup"`
}
