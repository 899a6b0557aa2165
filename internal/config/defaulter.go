package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SeverityThresholds classifies a defaulter. Amounts are in currency minor
// units; a student crosses a level when either bound is exceeded.
type SeverityThresholds struct {
	CriticalDays   int   `mapstructure:"criticalDays"`
	CriticalAmount int64 `mapstructure:"criticalAmount"`
	HighDays       int   `mapstructure:"highDays"`
	HighAmount     int64 `mapstructure:"highAmount"`
}

type DefaulterConfig struct {
	Thresholds SeverityThresholds `mapstructure:"thresholds"`
	RecentDays int                `mapstructure:"recentDays"`
}

func DefaultDefaulterConfig() DefaulterConfig {
	return DefaulterConfig{
		Thresholds: SeverityThresholds{
			CriticalDays:   45,
			CriticalAmount: 50_000,
			HighDays:       30,
			HighAmount:     30_000,
		},
		RecentDays: 7,
	}
}

// DefaulterConfigHolder exposes the current defaulter classification config
// and hot-reloads it when the file changes.
type DefaulterConfigHolder struct {
	current atomic.Value // holds DefaulterConfig
}

func NewDefaulterConfigHolder(log *zap.Logger) (*DefaulterConfigHolder, error) {
	log = log.Named("defaulter.config")
	v := viper.New()

	v.SetConfigName("defaulter")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/scolara/config")
	v.AddConfigPath("/etc/scolara")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SCOLARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDefaulterConfig()
		v.SetDefault("defaulter.thresholds", defaults.Thresholds)
		v.SetDefault("defaulter.recentDays", defaults.RecentDays)
	}

	var cfg DefaulterConfig
	if err := v.UnmarshalKey("defaulter", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateDefaulterConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DefaulterConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DefaulterConfig
		if err := v.UnmarshalKey("defaulter", &updated); err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		updated = updated.withDefaults()
		if err := validateDefaulterConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DefaulterConfigHolder) Get() DefaulterConfig {
	return h.current.Load().(DefaulterConfig)
}

// NewStaticDefaulterConfigHolder wraps a fixed config without file watching.
func NewStaticDefaulterConfigHolder(cfg DefaulterConfig) *DefaulterConfigHolder {
	holder := &DefaulterConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (c DefaulterConfig) withDefaults() DefaulterConfig {
	defaults := DefaultDefaulterConfig()
	if c.Thresholds.CriticalDays <= 0 {
		c.Thresholds.CriticalDays = defaults.Thresholds.CriticalDays
	}
	if c.Thresholds.CriticalAmount <= 0 {
		c.Thresholds.CriticalAmount = defaults.Thresholds.CriticalAmount
	}
	if c.Thresholds.HighDays <= 0 {
		c.Thresholds.HighDays = defaults.Thresholds.HighDays
	}
	if c.Thresholds.HighAmount <= 0 {
		c.Thresholds.HighAmount = defaults.Thresholds.HighAmount
	}
	if c.RecentDays <= 0 {
		c.RecentDays = defaults.RecentDays
	}
	return c
}

func validateDefaulterConfig(cfg DefaulterConfig) error {
	if cfg.Thresholds.HighDays >= cfg.Thresholds.CriticalDays {
		return errors.New("defaulter.thresholds: highDays must be below criticalDays")
	}
	if cfg.Thresholds.HighAmount >= cfg.Thresholds.CriticalAmount {
		return errors.New("defaulter.thresholds: highAmount must be below criticalAmount")
	}
	return nil
}
