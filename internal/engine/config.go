package engine

import (
	"time"

	"github.com/smallbiznis/scolara/internal/config"
)

// Config controls engine intervals, job selection and per-rule locking.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	LockTTL     time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  5 * time.Minute,
		LockTTL:     2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(app config.Config) Config {
	cfg := DefaultConfig()
	if app.EngineRunInterval != "" {
		if interval, err := time.ParseDuration(app.EngineRunInterval); err == nil && interval > 0 {
			cfg.RunInterval = interval
		}
	}
	cfg.EnabledJobs = app.EngineEnabledJobs
	return cfg
}
