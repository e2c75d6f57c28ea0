package config

import (
	"time"
)

// DefaultConfig returns the baseline configuration. Every field here is a
// real default except CORS.AllowedOrigin, which is deliberately empty: the
// allowed origin must be provided by the environment or the config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "inventory-server",
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "web/dist",
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		CORS: CORSConfig{
			AllowedOrigin:    "",
			AllowedMethods:   "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders:   "Content-Type, Authorization",
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		},
		Database: DatabaseConfig{
			Dir:  "data",
			File: "inventory.db",
		},
		Auth: AuthConfig{
			Secret:     "inventory_jwt_secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Store: StoreConfig{
				Type:    "sqlite",
				Expiry:  7 * 24 * time.Hour,
				Cleanup: time.Hour,
				Memory: AuthMemoryStore{
					Cleanup: time.Hour,
				},
			},
		},
	}
}
