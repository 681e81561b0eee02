package config

import (
	"errors"
	"time"
)

type TelegramConfig struct {
	BotToken    string        `mapstructure:"bot-token"`
	AlertChatID int64         `mapstructure:"alert-chat-id"`
	SendDelay   time.Duration `mapstructure:"send-delay"`
}

func (cfg *TelegramConfig) Validate() error {
	if cfg.BotToken == "" {
		return errors.New("telegram bot token must be set")
	}

	if cfg.AlertChatID == 0 {
		return errors.New("telegram alert chat id must be set")
	}

	if cfg.SendDelay <= 0 {
		return errors.New("telegram send-delay must be positive")
	}

	return nil
}
