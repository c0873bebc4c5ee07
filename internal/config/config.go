package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MATCHER"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Instrument InstrumentConfig `mapstructure:"instrument"`
	Book       BookConfig       `mapstructure:"book"`
	Store      StoreConfig      `mapstructure:"store"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Log        LogConfig        `mapstructure:"log"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	GRPCAddr string `mapstructure:"grpc_addr"`
}

type InstrumentConfig struct {
	Symbol string `mapstructure:"symbol"`
}

type BookConfig struct {
	SnapshotDepth  int `mapstructure:"snapshot_depth"`
	OrderRetention int `mapstructure:"order_retention"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	PostgresURL string `mapstructure:"postgres_url"`
	PebblePath  string `mapstructure:"pebble_path"`
}

// CacheConfig configures the Redis snapshot cache. An empty RedisAddr keeps
// snapshots in process memory.
type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// KafkaConfig enables the signal publisher when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Buffer  int      `mapstructure:"buffer"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// RateLimitConfig is the minimum spacing between two requests of one
// client. Zero disables the limiter.
type RateLimitConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverPebble   = "pebble"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", ":9090")
	v.SetDefault("instrument.symbol", "BTC-USD")
	v.SetDefault("book.snapshot_depth", 50)
	v.SetDefault("book.order_retention", 100000)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.postgres_url", "")
	v.SetDefault("store.pebble_path", "data/trades")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "arbitrage-signals")
	v.SetDefault("kafka.buffer", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("ratelimit.interval", time.Duration(0))
}

// Load reads configuration from the optional YAML file at path, a .env file
// in the working directory and MATCHER_* environment variables, in rising
// order of precedence. DATABASE_URL is accepted for store.postgres_url.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("store.postgres_url", envPrefix+"_STORE_POSTGRES_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Instrument.Symbol == "" {
		errs = append(errs, errors.New("instrument.symbol is required"))
	}
	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr is required"))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			errs = append(errs, errors.New("store.postgres_url (or DATABASE_URL) is required for the postgres driver"))
		}
	case DriverPebble:
		if c.Store.PebblePath == "" {
			errs = append(errs, errors.New("store.pebble_path is required for the pebble driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, postgres, pebble", c.Store.Driver))
	}
	if c.Book.SnapshotDepth < 0 {
		errs = append(errs, errors.New("book.snapshot_depth must be >= 0"))
	}
	if c.Book.OrderRetention < 0 {
		errs = append(errs, errors.New("book.order_retention must be >= 0"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when kafka.brokers is set"))
	}
	if c.Kafka.Buffer <= 0 {
		errs = append(errs, errors.New("kafka.buffer must be > 0"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
