package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Db          DbConfig          `mapstructure:"db"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Dexscreener DexscreenerConfig `mapstructure:"dexscreener"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Telegram.Validate(); err != nil {
		return err
	}
	if err := cfg.Dexscreener.Validate(); err != nil {
		return err
	}
	if err := cfg.Monitor.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}

// New returns a fully parsed and validated Config object from the given file path
func New(cfgFile string) (*Config, error) {
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", cfgFile, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
