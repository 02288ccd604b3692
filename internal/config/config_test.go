package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("batepapo", cfg.DBName)
	req.Equal(":5000", cfg.Addr)
	req.Equal(15*time.Second, cfg.SweepInterval)
	req.Equal(10*time.Second, cfg.StaleAfter)
	req.Equal(5*time.Second, cfg.ShutdownTimeout)
	req.Equal(slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("STALE_AFTER", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(time.Minute, cfg.SweepInterval)
	req.Equal(30*time.Second, cfg.StaleAfter)
	req.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }, true},
		{"negative staleness", func(c *Config) { c.StaleAfter = -time.Second }, true},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				MongoURI:        "mongodb://localhost:27017",
				SweepInterval:   15 * time.Second,
				StaleAfter:      10 * time.Second,
				ShutdownTimeout: 5 * time.Second,
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
