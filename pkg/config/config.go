// Package config loads modelgraph settings from a TOML file and the
// environment.
//
// Settings are resolved in this order, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file given to [Load], if any
//  3. MODELGRAPH_* environment variables
//
// [LoadDotEnv] copies a .env file into the environment first, so values in
// .env behave exactly like exported variables.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/store"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Environment variables read by [Load].
const (
	EnvLogLevel        = "MODELGRAPH_LOG_LEVEL"
	EnvStoreBackend    = "MODELGRAPH_STORE_BACKEND"
	EnvRedisAddr       = "MODELGRAPH_REDIS_ADDR"
	EnvRedisPassword   = "MODELGRAPH_REDIS_PASSWORD"
	EnvRedisDB         = "MODELGRAPH_REDIS_DB"
	EnvRedisPrefix     = "MODELGRAPH_REDIS_PREFIX"
	EnvNATSURL         = "MODELGRAPH_NATS_URL"
	EnvMetricsTextfile = "MODELGRAPH_METRICS_TEXTFILE"
	EnvModels          = "MODELGRAPH_MODELS"          // comma separated
	EnvTransformations = "MODELGRAPH_TRANSFORMATIONS" // comma separated
	EnvRegistrySkip    = "MODELGRAPH_REGISTRY_SKIP"   // comma separated
)

// Config is the complete modelgraph configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Store    StoreConfig    `toml:"store"`
	Events   EventsConfig   `toml:"events"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Registry RegistryConfig `toml:"registry"`

	// Models are registered at start-up as one source named "config".
	Models []string `toml:"models"`
	// Transformations are files or directories loaded at start-up.
	Transformations []string `toml:"transformations"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type StoreConfig struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

type EventsConfig struct {
	NATSURL string `toml:"nats_url"` // empty = events disabled
}

type MetricsConfig struct {
	Textfile string `toml:"textfile"` // empty = metrics not written
}

type RegistryConfig struct {
	Skip []string `toml:"skip"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Backend: BackendMemory, RedisPrefix: store.DefaultRedisPrefix},
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// Load builds the configuration from the defaults, the TOML file at path
// (skipped when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Log.Level = envOrDefault(EnvLogLevel, c.Log.Level)
	c.Store.Backend = envOrDefault(EnvStoreBackend, c.Store.Backend)
	c.Store.RedisAddr = envOrDefault(EnvRedisAddr, c.Store.RedisAddr)
	c.Store.RedisPassword = envOrDefault(EnvRedisPassword, c.Store.RedisPassword)
	c.Store.RedisPrefix = envOrDefault(EnvRedisPrefix, c.Store.RedisPrefix)
	c.Events.NATSURL = envOrDefault(EnvNATSURL, c.Events.NATSURL)
	c.Metrics.Textfile = envOrDefault(EnvMetricsTextfile, c.Metrics.Textfile)
	c.Models = envListOrDefault(EnvModels, c.Models)
	c.Transformations = envListOrDefault(EnvTransformations, c.Transformations)
	c.Registry.Skip = envListOrDefault(EnvRegistrySkip, c.Registry.Skip)

	if v := os.Getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvRedisDB)
		}
		c.Store.RedisDB = db
	}
	return nil
}

// Validate rejects unknown log levels and store backends, a redis backend
// without address and models that do not parse.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_addr is required for the redis backend")
		}
		if c.Store.RedisDB < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_db must not be negative")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want %s or %s)",
			c.Store.Backend, BackendMemory, BackendRedis)
	}
	if c.Events.NATSURL != "" {
		if err := errors.ValidateURL(c.Events.NATSURL, "nats", "tls"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "events.nats_url")
		}
	}
	if _, err := c.ParsedModels(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return lvl, nil
}

// ParsedModels parses Models in order.
func (c *Config) ParsedModels() ([]model.ModelDescription, error) {
	out := make([]model.ModelDescription, 0, len(c.Models))
	for _, s := range c.Models {
		m, err := model.ParseModel(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "models: %q", s)
		}
		out = append(out, m)
	}
	return out, nil
}

// RedisOptions returns the store settings for [store.NewRedisStore].
func (c *Config) RedisOptions() store.RedisOptions {
	return store.RedisOptions{
		Addr:     c.Store.RedisAddr,
		Password: c.Store.RedisPassword,
		DB:       c.Store.RedisDB,
		Prefix:   c.Store.RedisPrefix,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envListOrDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
