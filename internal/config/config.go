package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ReadTimeout     int      `yaml:"read_timeout"`
	WriteTimeout    int      `yaml:"write_timeout"`
	IdleTimeout     int      `yaml:"idle_timeout"`
	ShutdownTimeout int      `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`

	// TrustProxyHeaders reads the client address from X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	Migrate  bool   `yaml:"migrate"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RateLimitConfig applies to write routes. RequestsPerSecond 0 disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	CleanupInterval   int     `yaml:"cleanup_interval"`
	ClientIdle        int     `yaml:"client_idle"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "plates",
			Password: "plates",
			Database: "plates",
			SSLMode:  "disable",
			MaxConns: 10,
			Migrate:  true,
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			Exchange: "plate_notifications",
		},
		Log:       LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40, CleanupInterval: 60, ClientIdle: 600},
	}
}

// Load reads the YAML file at path over the defaults, then applies .env and
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse yaml: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("PLATES_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PLATES_PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnvAsSlice("PLATES_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.TrustProxyHeaders = getEnvAsBool("PLATES_TRUST_PROXY_HEADERS", c.Server.TrustProxyHeaders)

	c.Database.Driver = getEnv("PLATES_DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("PLATES_DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("PLATES_DB_PORT", c.Database.Port)
	c.Database.User = getEnv("PLATES_DB_USER", c.Database.User)
	c.Database.Password = getEnv("PLATES_DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("PLATES_DB_NAME", c.Database.Database)
	c.Database.Migrate = getEnvAsBool("PLATES_DB_MIGRATE", c.Database.Migrate)

	c.RabbitMQ.Enabled = getEnvAsBool("PLATES_RABBITMQ_ENABLED", c.RabbitMQ.Enabled)
	c.RabbitMQ.Host = getEnv("PLATES_RABBITMQ_HOST", c.RabbitMQ.Host)
	c.RabbitMQ.Port = getEnvAsInt("PLATES_RABBITMQ_PORT", c.RabbitMQ.Port)
	c.RabbitMQ.User = getEnv("PLATES_RABBITMQ_USER", c.RabbitMQ.User)
	c.RabbitMQ.Password = getEnv("PLATES_RABBITMQ_PASSWORD", c.RabbitMQ.Password)

	c.Log.Level = getEnv("PLATES_LOG_LEVEL", c.Log.Level)

	c.RateLimit.RequestsPerSecond = getEnvAsFloat("PLATES_RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = getEnvAsInt("PLATES_RATE_LIMIT_BURST", c.RateLimit.Burst)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("database host and name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q (must be postgres or memory)", c.Database.Driver)
	}

	if c.RabbitMQ.Enabled && (c.RabbitMQ.Host == "" || c.RabbitMQ.Exchange == "") {
		return fmt.Errorf("rabbitmq host and exchange are required when rabbitmq is enabled")
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 {
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate limit burst must be at least 1 when requests_per_second is set")
		}
		if c.RateLimit.CleanupInterval <= 0 || c.RateLimit.ClientIdle <= 0 {
			return fmt.Errorf("rate limit cleanup_interval and client_idle must be positive")
		}
	}
	return nil
}

// DSN is the pgx keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// MigrateURL is the golang-migrate pgx5 database URL.
func (d DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// URL is the AMQP connection URL.
func (r RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(r.User, r.Password),
		Host:   fmt.Sprintf("%s:%d", r.Host, r.Port),
		Path:   "/",
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
