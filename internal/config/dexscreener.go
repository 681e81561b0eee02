package config

import (
	"errors"
	"time"
)

type DexscreenerConfig struct {
	BaseURL           string        `mapstructure:"base-url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute"`
	MaxRetries        int           `mapstructure:"max-retries"`
	RetryDelay        time.Duration `mapstructure:"retry-delay"`
}

func (cfg *DexscreenerConfig) Validate() error {
	if cfg.BaseURL == "" {
		return errors.New("dexscreener base-url must be set")
	}

	if cfg.Timeout <= 0 {
		return errors.New("dexscreener timeout must be positive")
	}

	if cfg.RequestsPerMinute <= 0 {
		return errors.New("dexscreener requests-per-minute must be positive")
	}

	if cfg.MaxRetries <= 0 {
		return errors.New("dexscreener max-retries must be positive")
	}

	if cfg.RetryDelay <= 0 {
		return errors.New("dexscreener retry-delay must be positive")
	}

	return nil
}
