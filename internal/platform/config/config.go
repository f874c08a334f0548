// Package config loads service configuration from an optional YAML file and
// environment variables. Environment values win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the full service configuration.
type Config struct {
	Server   Server         `yaml:"server"`
	Store    Store          `yaml:"store"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	StaticDir       string        `yaml:"static_dir"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Port is the listening port without host, used in the root banner.
func (s Server) Port() string {
	if i := strings.LastIndex(s.Addr, ":"); i >= 0 {
		return s.Addr[i+1:]
	}
	return s.Addr
}

type Store struct {
	Driver string `yaml:"driver"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig enables lifecycle events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic"`
	Partitions  int32    `yaml:"partitions"`
	CreateTopic bool     `yaml:"create_topic"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":3000",
			StaticDir:       "public",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{Driver: DriverMemory},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost/CRMdb",
			Database:       "CRMdb",
			Collection:     "contacts",
			ConnectTimeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:      "crm.contacts",
			Partitions: 3,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CRM_CONFIG (if set), then environment overrides.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv("CRM_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString(&cfg.Server.Addr, getenv("CRM_ADDR"))
	if port := getenv("PORT"); port != "" && getenv("CRM_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	setString(&cfg.Server.StaticDir, getenv("CRM_STATIC_DIR"))
	setString(&cfg.Store.Driver, getenv("CRM_STORE"))
	setString(&cfg.Mongo.URI, getenv("MONGO_URI"))
	setString(&cfg.Mongo.Database, getenv("MONGO_DATABASE"))
	setString(&cfg.Mongo.Collection, getenv("MONGO_COLLECTION"))
	setString(&cfg.Postgres.DSN, getenv("DATABASE_URL"))
	setString(&cfg.Redis.URL, getenv("REDIS_URL"))
	setString(&cfg.Kafka.Topic, getenv("KAFKA_TOPIC"))
	setString(&cfg.Log.Level, getenv("LOG_LEVEL"))
	setString(&cfg.Log.Format, getenv("LOG_FORMAT"))

	if brokers := getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	if v := getenv("KAFKA_CREATE_TOPIC"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KAFKA_CREATE_TOPIC: %w", err)
		}
		cfg.Kafka.CreateTopic = b
	}
	if v := getenv("CRM_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CRM_REQUEST_TIMEOUT: %w", err)
		}
		cfg.Server.RequestTimeout = d
	}
	return nil
}

// Validate rejects unknown drivers and missing connection settings for the
// selected driver.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("mongo store requires uri, database and collection")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres store requires DATABASE_URL")
		}
	case DriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis store requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka brokers configured without a topic")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
