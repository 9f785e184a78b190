package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds selectable via config. Exactly one backend is constructed per
// process; transactional is the default.
const (
	StoreTransactional = "transactional"
	StoreRemote        = "remote"
	StoreEphemeral     = "ephemeral"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Kind string `yaml:"kind"`
	} `yaml:"store"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Remote struct {
		URL string `yaml:"url"`
	} `yaml:"remote"`
	Cache struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"cache"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// StoreKind normalizes the configured backend kind, defaulting to the
// transactional store.
func (c Config) StoreKind() string {
	kind := strings.ToLower(strings.TrimSpace(c.Store.Kind))
	if kind == "" {
		return StoreTransactional
	}
	return kind
}

// RemoteURL returns the configured remote deployment URL, falling back to
// the REMOTE_STORE_URL environment variable.
func (c Config) RemoteURL() string {
	if c.Remote.URL != "" {
		return c.Remote.URL
	}
	return os.Getenv("REMOTE_STORE_URL")
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
