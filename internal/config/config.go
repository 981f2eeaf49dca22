// Package config loads the objectstore command configuration from a YAML
// file, an optional .env file and OBJECTSTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "OBJECTSTORE"

// DefaultPath is the config file read when no path is given.
const DefaultPath = "objectstore.yaml"

// ErrInvalidServer reports an unusable server section.
var ErrInvalidServer = errors.New("invalid server configuration")

// Config is the full command configuration.
type Config struct {
	Store  storetypes.Config `mapstructure:"store"`
	Server ServerConfig      `mapstructure:"server"`
	Log    LogConfig         `mapstructure:"log"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"store.access_key_id":      "",
	"store.secret_key":         "",
	"store.bucket":             "",
	"store.max_batch_size":     storetypes.DefaultMaxBatchSize,
	"store.upload_concurrency": storetypes.DefaultUploadConcurrency,
	"store.region":             storetypes.DefaultRegion,
	"store.endpoint":           "",
	"store.provider":           string(storetypes.ProviderAWS),
	"store.use_path_style":     false,
	"store.credentials_secret": "",
	"server.addr":              ":8080",
	"server.allowed_origins":   []string{"*"},
	"server.read_timeout":      "15s",
	"server.write_timeout":     "60s",
	"server.shutdown_timeout":  "30s",
	"server.max_upload_bytes":  int64(64 << 20),
	"log.level":                "info",
}

// ResolvePath returns path, else $OBJECTSTORE_CONFIG, else DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the configuration. A missing config file is not an error when
// path was not given explicitly; values then come from the environment and
// the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := New()
	v.SetConfigFile(ResolvePath(path))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if !missing || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return Unmarshal(v)
}

// New returns a viper instance with the defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Unmarshal decodes and validates the configuration held by v.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the store and server sections.
func Validate(c *Config) error {
	if err := c.Store.WithDefaults().Validate(); err != nil {
		return err
	}
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: addr is required", ErrInvalidServer)
	case c.Server.ShutdownTimeout < 0:
		return fmt.Errorf("%w: shutdown timeout cannot be negative", ErrInvalidServer)
	case c.Server.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max upload bytes must be positive", ErrInvalidServer)
	}
	return nil
}
