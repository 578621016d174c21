// Package config loads the proxy configuration from defaults, an optional
// YAML file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Sternrassler/pokedex-proxy/pkg/auth"
	"github.com/Sternrassler/pokedex-proxy/pkg/batch"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pokedex-proxy/config.yaml",
}

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// User store backends.
const (
	StoreMemory   = "memory"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	Pokemon  PokemonConfig  `koanf:"pokemon"`
	Store    StoreConfig    `koanf:"store"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  logging.Config `koanf:"logging"`
	Batch    batch.Config   `koanf:"batch"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// UpstreamConfig points at PokeAPI.
type UpstreamConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"required,url"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

// ClientConfig converts to the upstream client configuration.
func (u UpstreamConfig) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   u.BaseURL,
		UserAgent: u.UserAgent,
		Timeout:   u.Timeout,
	}
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=redis memory"`
	RedisURL   string `koanf:"redis_url" validate:"required_if=Backend redis"`
	Prefix     string `koanf:"prefix"`
	MemorySize int    `koanf:"memory_size" validate:"gte=0"`
}

// PokemonConfig holds data-proxy settings.
type PokemonConfig struct {
	Language         string            `koanf:"language" validate:"required"`
	FallbackLanguage string            `koanf:"fallback_language" validate:"required"`
	TTL              pokemon.TTLPolicy `koanf:"ttl"`
}

// ServiceConfig converts to the pokemon service configuration.
func (p PokemonConfig) ServiceConfig() pokemon.Config {
	return pokemon.Config{
		TTL:              p.TTL,
		Language:         p.Language,
		FallbackLanguage: p.FallbackLanguage,
	}
}

// StoreConfig selects where user accounts live.
type StoreConfig struct {
	Backend   string         `koanf:"backend" validate:"oneof=memory badger postgres"`
	BadgerDir string         `koanf:"badger_dir"`
	Postgres  PostgresConfig `koanf:"postgres"`
}

// PostgresConfig describes the user database. DSN wins over the
// individual fields when set.
type PostgresConfig struct {
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// ConnString returns the connection string for pgx.
func (p PostgresConfig) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + strconv.Itoa(p.Port),
		Path:   "/" + p.Name,
	}
	if p.SSLMode != "" {
		u.RawQuery = "sslmode=" + p.SSLMode
	}
	return u.String()
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret" validate:"required"`
	TokenExpiry time.Duration `koanf:"token_expiry" validate:"gt=0"`
	BcryptCost  int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Upstream: UpstreamConfig{
			BaseURL:   client.DefaultBaseURL,
			UserAgent: "pokedex-proxy/1.0",
			Timeout:   30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			Prefix:     "pokedex:",
			MemorySize: 4096,
		},
		Pokemon: PokemonConfig{
			Language:         "es",
			FallbackLanguage: "en",
			TTL:              pokemon.DefaultTTLPolicy(),
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Auth: AuthConfig{
			TokenExpiry: 24 * time.Hour,
			BcryptCost:  10,
		},
		Logging: logging.Config{Level: logging.LevelInfo},
		Batch:   batch.DefaultConfig(),
	}
}

// Load builds the configuration. Precedence, lowest first: defaults,
// config file, .env file, environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Existing environment variables are not overridden by .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Logging.Output = os.Stderr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", auth.MinSecretLength)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive as comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf paths. Unknown
// variables are dropped so the process environment cannot inject keys.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"port":                    "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":            "server.cors_origins",
	"pokeapi_base_url":        "upstream.base_url",
	"pokeapi_user_agent":      "upstream.user_agent",
	"pokeapi_timeout":         "upstream.timeout",
	"cache_backend":           "cache.backend",
	"redis_url":               "cache.redis_url",
	"cache_prefix":            "cache.prefix",
	"cache_memory_size":       "cache.memory_size",
	"flavor_language":         "pokemon.language",
	"flavor_fallback":         "pokemon.fallback_language",
	"cache_ttl_default":       "pokemon.ttl.default",
	"cache_ttl_list":          "pokemon.ttl.list",
	"cache_ttl_raw_detail":    "pokemon.ttl.raw_detail",
	"cache_ttl_detail":        "pokemon.ttl.detail",
	"cache_ttl_species":       "pokemon.ttl.species",
	"cache_ttl_evolution":     "pokemon.ttl.evolution",
	"cache_ttl_types":         "pokemon.ttl.types",
	"cache_ttl_type_members":  "pokemon.ttl.type_members",
	"user_store":              "store.backend",
	"badger_dir":              "store.badger_dir",
	"database_url":            "store.postgres.dsn",
	"db_host":                 "store.postgres.host",
	"db_port":                 "store.postgres.port",
	"db_user":                 "store.postgres.user",
	"db_username":             "store.postgres.user",
	"db_password":             "store.postgres.password",
	"db_name":                 "store.postgres.name",
	"db_sslmode":              "store.postgres.sslmode",
	"jwt_secret":              "auth.jwt_secret",
	"jwt_expires_in":          "auth.token_expiry",
	"bcrypt_cost":             "auth.bcrypt_cost",
	"log_level":               "logging.level",
	"log_pretty":              "logging.pretty",
	"batch_max_concurrency":   "batch.max_concurrency",
	"batch_timeout":           "batch.timeout",
}

// envTransformFunc transforms environment variable names to koanf paths:
//   - PORT -> server.port
//   - REDIS_URL -> cache.redis_url
//   - DB_HOST -> store.postgres.host
//   - JWT_SECRET -> auth.jwt_secret
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
