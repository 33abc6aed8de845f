// Package config loads storefront settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Cart backends.
const (
	CartMemory = "memory"
	CartRedis  = "redis"
)

const minSecretLen = 32

type Config struct {
	Service  string `yaml:"service"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	Dev      bool   `yaml:"dev"`

	Session SessionConfig `yaml:"session"`
	Admin   AdminConfig   `yaml:"admin"`
	Storage StorageConfig `yaml:"storage"`
	Cart    CartConfig    `yaml:"cart"`
	Notify  NotifyConfig  `yaml:"notify"`

	MetricsToken string `yaml:"metrics_token"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Secure bool          `yaml:"secure_cookie"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type StorageConfig struct {
	Backend     string        `yaml:"backend"`
	Timeout     time.Duration `yaml:"timeout"`
	DataDir     string        `yaml:"data_dir"`
	DatabaseURL string        `yaml:"database_url"`
	SQLitePath  string        `yaml:"sqlite_path"`
	S3          S3Config      `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

type CartConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type NotifyConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	Channel   string        `yaml:"channel"`
	Timeout   time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		Service:  "storefront",
		Port:     "8080",
		LogLevel: "info",
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Admin: AdminConfig{
			Username: "admin",
		},
		Storage: StorageConfig{
			Backend:    BackendFile,
			Timeout:    3 * time.Second,
			DataDir:    "data",
			SQLitePath: "data/freshbasket.db",
			S3:         S3Config{Region: "us-east-1"},
		},
		Cart: CartConfig{
			Backend: CartMemory,
			TTL:     7 * 24 * time.Hour,
		},
		Notify: NotifyConfig{
			Channel: "freshbasket:orders",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads CONFIG_FILE (when set) and then applies environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(k string, dst *string) {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(k string, dst *time.Duration) {
		if v := getenv(k); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", k, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(k string, dst *bool) {
		if v := getenv(k); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", k, err))
				return
			}
			*dst = b
		}
	}

	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	boolean("DEV_MODE", &c.Dev)

	str("SESSION_SECRET", &c.Session.Secret)
	dur("SESSION_TTL", &c.Session.TTL)
	boolean("SESSION_SECURE_COOKIE", &c.Session.Secure)

	str("ADMIN_USERNAME", &c.Admin.Username)
	str("ADMIN_PASSWORD", &c.Admin.Password)

	str("STORAGE_BACKEND", &c.Storage.Backend)
	dur("STORAGE_TIMEOUT", &c.Storage.Timeout)
	str("DATA_DIR", &c.Storage.DataDir)
	str("DATABASE_URL", &c.Storage.DatabaseURL)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("S3_BUCKET", &c.Storage.S3.Bucket)
	str("AWS_REGION", &c.Storage.S3.Region)
	str("S3_ENDPOINT", &c.Storage.S3.Endpoint)
	str("S3_PREFIX", &c.Storage.S3.Prefix)

	str("CART_BACKEND", &c.Cart.Backend)
	str("REDIS_ADDR", &c.Cart.RedisAddr)
	dur("CART_TTL", &c.Cart.TTL)

	str("NOTIFY_REDIS_ADDR", &c.Notify.RedisAddr)
	str("NOTIFY_CHANNEL", &c.Notify.Channel)
	dur("NOTIFY_TIMEOUT", &c.Notify.Timeout)

	str("METRICS_TOKEN", &c.MetricsToken)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.OTLPEndpoint)

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error

	if !c.Dev && len(c.Session.Secret) < minSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET is required and must be at least %d chars", minSecretLen))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Storage.Timeout <= 0 {
		errs = append(errs, errors.New("storage timeout must be positive"))
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Cart.Backend {
	case CartMemory:
	case CartRedis:
		if c.Cart.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis cart backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cart backend %q", c.Cart.Backend))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
