package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Telemetry exporters.
const (
	ExporterOTLP = "otlp"
	ExporterNone = "none"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0" json:"host"`
	Port            string        `env:"SERVER_PORT" envDefault:"3030" json:"port"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s" json:"shutdown_timeout"`
	// CORSOrigins is passed to the fiber cors middleware as is.
	CORSOrigins string `env:"SERVER_CORS_ORIGINS" envDefault:"*" json:"cors_origins"`
	// RateLimit is the number of requests per minute allowed from one
	// client IP. Zero disables limiting.
	RateLimit int `env:"SERVER_RATE_LIMIT" envDefault:"0" json:"rate_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// MongoConfig holds the client and database settings.
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI" json:"-"`
	Database       string        `env:"MONGODB_DATABASE" envDefault:"shop" json:"database"`
	AppName        string        `env:"MONGODB_APP_NAME" envDefault:"mongo-tracing" json:"app_name"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s" json:"connect_timeout"`
	MaxPoolSize    uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100" json:"max_pool_size"`
	MinPoolSize    uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"0" json:"min_pool_size"`
	// CommandMonitoring adds driver-level command spans beneath the
	// collection spans.
	CommandMonitoring bool `env:"MONGODB_COMMAND_MONITORING" envDefault:"false" json:"command_monitoring"`
}

// TelemetryConfig holds the OpenTelemetry export settings.
type TelemetryConfig struct {
	ServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"mongo-tracing" json:"service_name"`
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION" envDefault:"dev" json:"service_version"`
	Exporter       string        `env:"OTEL_EXPORTER" envDefault:"none" json:"exporter"`
	Endpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317" json:"endpoint"`
	Insecure       bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true" json:"insecure"`
	ExportInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL" envDefault:"15s" json:"export_interval"`
}

// OrdersConfig holds the orders module settings.
type OrdersConfig struct {
	Collection    string `env:"ORDERS_COLLECTION" envDefault:"orders" json:"collection"`
	EnsureIndexes bool   `env:"ORDERS_ENSURE_INDEXES" envDefault:"true" json:"ensure_indexes"`
	// WatchEnabled opens a change stream for websocket watchers. It needs a
	// replica set or sharded cluster.
	WatchEnabled bool `env:"ORDERS_WATCH_ENABLED" envDefault:"true" json:"watch_enabled"`
}

// RedisConfig holds the settings of the Redis instance that keeps change
// feed checkpoints. Without it the feed starts at the end of the stream on
// every restart.
type RedisConfig struct {
	Enabled       bool          `env:"REDIS_ENABLED" envDefault:"false" json:"enabled"`
	Addr          string        `env:"REDIS_ADDR" envDefault:"localhost:6379" json:"addr"`
	Password      string        `env:"REDIS_PASSWORD" json:"-"`
	DB            int           `env:"REDIS_DB" envDefault:"0" json:"db"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10" json:"pool_size"`
	EnableTLS     bool          `env:"REDIS_TLS" envDefault:"false" json:"tls"`
	KeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"mongo-tracing" json:"key_prefix"`
	CheckpointTTL time.Duration `env:"REDIS_CHECKPOINT_TTL" envDefault:"168h" json:"checkpoint_ttl"`
}

// AuthConfig holds the bearer token settings. With auth disabled every
// route is public.
type AuthConfig struct {
	Enabled   bool          `env:"AUTH_ENABLED" envDefault:"false" json:"enabled"`
	JWTSecret string        `env:"AUTH_JWT_SECRET" json:"-"`
	Issuer    string        `env:"AUTH_JWT_ISSUER" envDefault:"mongo-tracing" json:"issuer"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h" json:"token_ttl"`
}

// minJWTSecretLen is the HS256 key size in bytes.
const minJWTSecretLen = 32

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" json:"level"`
	Format string `env:"LOG_FORMAT" envDefault:"text" json:"format"`
}

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Mongo     MongoConfig     `json:"mongo"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Orders    OrdersConfig    `json:"orders"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	Log       LogConfig       `json:"log"`
}

// LoadConfig reads an optional .env file, then parses and validates the
// environment.
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load(dotenvFiles...)

	cfg := &Config{}
	sections := []struct {
		name   string
		target interface{}
	}{
		{"server", &cfg.Server},
		{"mongo", &cfg.Mongo},
		{"telemetry", &cfg.Telemetry},
		{"orders", &cfg.Orders},
		{"redis", &cfg.Redis},
		{"auth", &cfg.Auth},
		{"log", &cfg.Log},
	}
	for _, section := range sections {
		if err := env.Parse(section.target); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration from environment: %w", section.name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI environment variable is not set")
	}
	if c.Mongo.Database == "" {
		return errors.New("MONGODB_DATABASE must not be empty")
	}
	if c.Mongo.MinPoolSize > c.Mongo.MaxPoolSize {
		return fmt.Errorf("MONGODB_MIN_POOL_SIZE (%d) exceeds MONGODB_MAX_POOL_SIZE (%d)", c.Mongo.MinPoolSize, c.Mongo.MaxPoolSize)
	}
	if c.Orders.Collection == "" {
		return errors.New("ORDERS_COLLECTION must not be empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR must be set when REDIS_ENABLED is true")
	}
	if c.Auth.Enabled && len(c.Auth.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters when AUTH_ENABLED is true", minJWTSecretLen)
	}
	switch strings.ToLower(c.Telemetry.Exporter) {
	case ExporterOTLP, ExporterNone:
	default:
		return fmt.Errorf("OTEL_EXPORTER must be %q or %q, got %q", ExporterOTLP, ExporterNone, c.Telemetry.Exporter)
	}
	return nil
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "3030",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     "*",
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017", // Default for local development
			Database:       "shop",
			AppName:        "mongo-tracing",
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "mongo-tracing",
			ServiceVersion: "dev",
			Exporter:       ExporterNone,
			Endpoint:       "localhost:4317",
			Insecure:       true,
			ExportInterval: 15 * time.Second,
		},
		Orders: OrdersConfig{
			Collection:    "orders",
			EnsureIndexes: true,
			WatchEnabled:  true,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			PoolSize:      10,
			KeyPrefix:     "mongo-tracing",
			CheckpointTTL: 168 * time.Hour,
		},
		Auth: AuthConfig{
			Issuer:   "mongo-tracing",
			TokenTTL: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
