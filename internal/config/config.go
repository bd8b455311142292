package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Admin
	OwnerID  int64   `env:"OWNER_ID,required"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Ledger
	MinWithdraw int64 `env:"MIN_WITHDRAW" envDefault:"100"`

	// When set, every interaction requires membership in all active
	// sponsors, not just task checks.
	RequireSponsors bool `env:"REQUIRE_SPONSORS" envDefault:"false"`

	// Server
	Port int `env:"PORT" envDefault:"10000"`

	// Telegram logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicTaskReward   int   `env:"LOG_TOPIC_TASK_REWARD"`
	LogTopicWithdrawal   int   `env:"LOG_TOPIC_WITHDRAWAL"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// IsAdmin reports whether the identity is in the static admin set.
// The durable admin table is checked separately; this covers the owner
// and env-configured admins before the store is reachable.
func (c *Config) IsAdmin(telegramID int64) bool {
	if telegramID == c.OwnerID {
		return true
	}
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
