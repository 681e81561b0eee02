package config

import (
	"errors"
	"time"
)

type MonitorConfig struct {
	ScanInterval      time.Duration `mapstructure:"scan-interval"`
	MilestoneInterval time.Duration `mapstructure:"milestone-interval"`
	ActorInterval     time.Duration `mapstructure:"actor-interval"`
	CleanupInterval   time.Duration `mapstructure:"cleanup-interval"`

	MinLiquidityUsd float64       `mapstructure:"min-liquidity-usd"`
	InitialLookback time.Duration `mapstructure:"initial-lookback"`
	BatchSize       int           `mapstructure:"batch-size"`
	RetentionWindow time.Duration `mapstructure:"retention-window"`

	TokenMaxAge        time.Duration `mapstructure:"token-max-age"`
	MilestonePageLimit int64         `mapstructure:"milestone-page-limit"`
	TopActorsLimit     int64         `mapstructure:"top-actors-limit"`
}

func (cfg *MonitorConfig) Validate() error {
	if cfg.ScanInterval <= 0 {
		return errors.New("scan-interval must be positive")
	}

	if cfg.MilestoneInterval <= 0 {
		return errors.New("milestone-interval must be positive")
	}

	if cfg.ActorInterval <= 0 {
		return errors.New("actor-interval must be positive")
	}

	if cfg.CleanupInterval <= 0 {
		return errors.New("cleanup-interval must be positive")
	}

	if cfg.MinLiquidityUsd < 0 {
		return errors.New("min-liquidity-usd must not be negative")
	}

	if cfg.InitialLookback <= 0 {
		return errors.New("initial-lookback must be positive")
	}

	if cfg.BatchSize <= 0 {
		return errors.New("batch-size must be positive")
	}

	if cfg.RetentionWindow <= 0 {
		return errors.New("retention-window must be positive")
	}

	if cfg.TokenMaxAge <= 0 {
		return errors.New("token-max-age must be positive")
	}

	if cfg.MilestonePageLimit <= 0 {
		return errors.New("milestone-page-limit must be positive")
	}

	if cfg.TopActorsLimit <= 0 {
		return errors.New("top-actors-limit must be positive")
	}

	return nil
}
