package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI        string        `env:"MONGO_URI,required=true"`
	DBName          string        `env:"DB_NAME,default=batepapo"`
	Addr            string        `env:"ADDR,default=:5000"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	StaleAfter      time.Duration `env:"STALE_AFTER,default=10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be greater than 0")
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("STALE_AFTER must be greater than 0")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be greater than 0")
	}
	return nil
}

// SlogLevel translates the LOG_LEVEL string into a slog level, defaulting to
// Info for anything unrecognized.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
