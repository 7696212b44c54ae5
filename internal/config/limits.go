package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LimitsConfig caps what a single API call may ask of the store. It is
// operator-tunable at runtime, unlike the environment-driven Config.
type LimitsConfig struct {
	// MaxPageSize clamps the per-request list limit.
	MaxPageSize int `mapstructure:"maxPageSize"`
	// MaxExtendBlocks caps a single TTL extension.
	MaxExtendBlocks int64 `mapstructure:"maxExtendBlocks"`
}

func DefaultLimitsConfig() LimitsConfig {
	return LimitsConfig{
		MaxPageSize:     100,
		MaxExtendBlocks: 1_000_000,
	}
}

// LimitsHolder hands out the current limits and swaps them atomically
// when the config file changes on disk.
type LimitsHolder struct {
	current atomic.Value // holds LimitsConfig
}

func NewLimitsHolder() (*LimitsHolder, error) {
	v := viper.New()

	v.SetConfigName("chainvoice")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/chainvoice")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHAINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLimitsConfig()
	v.SetDefault("limits.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("limits.maxExtendBlocks", defaults.MaxExtendBlocks)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine, defaults apply.
	}

	var cfg LimitsConfig
	if err := v.UnmarshalKey("limits", &cfg); err != nil {
		return nil, err
	}
	if err := validateLimitsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &LimitsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated LimitsConfig
		if err := v.UnmarshalKey("limits", &updated); err != nil {
			zap.L().Warn("limits reload failed", zap.Error(err))
			return
		}
		if err := validateLimitsConfig(updated); err != nil {
			zap.L().Warn("invalid limits config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("limits config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *LimitsHolder) Get() LimitsConfig {
	return h.current.Load().(LimitsConfig)
}

func validateLimitsConfig(cfg LimitsConfig) error {
	if cfg.MaxPageSize <= 0 {
		return errors.New("limits.maxPageSize must be positive")
	}
	if cfg.MaxExtendBlocks <= 0 {
		return errors.New("limits.maxExtendBlocks must be positive")
	}
	return nil
}
