// Package config loads the runtime configuration.
//
// Values are layered: defaults in code, then an optional YAML file, then
// BUML_* environment variables. Command-line flags are applied last by the
// caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/buml/internal/logging"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "BUML_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	// Dist registers the URL tool variants instead of the in-process ones.
	Dist      bool   `yaml:"dist" env:"DIST"`
	Transport string `yaml:"transport" env:"TRANSPORT"`
	Port      int    `yaml:"port" env:"PORT"`

	Log   LogConfig   `yaml:"log" envPrefix:"LOG_"`
	Store StoreConfig `yaml:"store" envPrefix:"STORE_"`
	Host  HostConfig  `yaml:"host" envPrefix:"HOST_"`

	// OutputDir is where in-process generators write by default.
	OutputDir     string        `yaml:"output_dir" env:"OUTPUT_DIR"`
	ValidateSQL   bool          `yaml:"validate_sql" env:"VALIDATE_SQL"`
	RDFBaseIRI    string        `yaml:"rdf_base_iri" env:"RDF_BASE_IRI"`
	RemoteTimeout time.Duration `yaml:"remote_timeout" env:"REMOTE_TIMEOUT"`
	Metrics       bool          `yaml:"metrics" env:"METRICS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// StoreConfig selects where the active model lives.
type StoreConfig struct {
	Backend string      `yaml:"backend" env:"BACKEND"`
	Key     string      `yaml:"key" env:"KEY"`
	Path    string      `yaml:"path" env:"PATH"`
	Redis   RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
	// EncryptionKeys are base64 AES-256 keys; the first encrypts, the rest
	// only decrypt. Empty stores tokens in the clear.
	EncryptionKeys []string `yaml:"encryption_keys" env:"ENCRYPTION_KEYS" envSeparator:","`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
	// LockTTL bounds how long a crashed replica can hold a model lock.
	LockTTL time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

// HostConfig configures "buml host".
type HostConfig struct {
	Port          int  `yaml:"port" env:"PORT"`
	ValidateToken bool `yaml:"validate_token" env:"VALIDATE_TOKEN"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Transport: "stdio",
		Port:      8080,
		Log:       LogConfig{Level: "info", Format: logging.FormatText},
		Store: StoreConfig{
			Backend: StoreMemory,
			Key:     "active",
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "buml:",
				LockTTL: 30 * time.Second,
			},
		},
		Host:          HostConfig{Port: 9090, ValidateToken: true},
		OutputDir:     ".",
		ValidateSQL:   true,
		RemoteTimeout: 30 * time.Second,
		Metrics:       true,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// not empty) and the process environment.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// load takes an explicit environment for tests; nil means os.Environ.
func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decodeYAML(f, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Transport {
	case "stdio", "sse", "http":
	default:
		return fmt.Errorf("invalid transport %q (expected stdio, sse or http)", c.Transport)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Host.Port <= 0 || c.Host.Port > 65535 {
		return fmt.Errorf("invalid host port %d", c.Host.Port)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid store backend %q (expected memory, file or redis)", c.Store.Backend)
	}
	if c.Store.Backend == StoreRedis && c.Store.Redis.Addr == "" {
		return errors.New("redis store requires an address")
	}
	if c.RemoteTimeout < 0 {
		return fmt.Errorf("invalid remote timeout %s", c.RemoteTimeout)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Log.Format)
	}
	return nil
}

// Logger builds the logger described by c.Log, writing to w.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, c.Log.Format)
}
