// Package config holds the service configuration read from the environment
// and the domain constants shared across packages.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Database is the subset of configuration needed to reach PostgreSQL.
// The admin CLI loads only this part.
type Database struct {
	URL string `env:"DATABASE_URL,required,notEmpty"`
}

// Redis is the event bus and rate limiter connection. The admin CLI loads
// it to announce operator changes to connected clients.
type Redis struct {
	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// Config is the full server configuration.
type Config struct {
	Database
	Redis

	AppEnv   string `env:"APP_ENV"   envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RoomTokenSecret string        `env:"ROOM_TOKEN_SECRET,required,notEmpty"`
	RoomTokenTTL    time.Duration `env:"ROOM_TOKEN_TTL"    envDefault:"12h"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX"    envDefault:"20"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimitWindow)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings.
func LoadDatabase() (*Database, error) {
	loadDotEnv()

	var db Database
	if err := env.Parse(&db); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &db, nil
}

// LoadRedis reads only the Redis settings.
func LoadRedis() (*Redis, error) {
	loadDotEnv()

	var r Redis
	if err := env.Parse(&r); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &r, nil
}

// ConfigureLogger applies format and level to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	if c.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, _ := logrus.ParseLevel(c.LogLevel)
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Error loading .env file")
	}
}
