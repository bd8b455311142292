package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const MaxMessageLen = 4096

// Sender delivers outbound notifications. The core never assumes
// delivery succeeded; a failed send is logged and reported, not retried.
type Sender struct {
	bot *bot.Bot
}

func NewSender(b *bot.Bot) *Sender {
	return &Sender{bot: b}
}

// Notify sends a plain-text message to a user identity.
func (s *Sender) Notify(ctx context.Context, tgID int64, text string) error {
	if len([]rune(text)) > MaxMessageLen {
		text = string([]rune(text)[:MaxMessageLen-3]) + "..."
	}
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: tgID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// NotifyMarkdown sends a Markdown message, falling back to plain text if
// Telegram rejects the markup.
func (s *Sender) NotifyMarkdown(ctx context.Context, tgID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    tgID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		slog.Warn("markdown send failed, falling back to plain text", "error", err)
		return s.Notify(ctx, tgID, text)
	}
	return nil
}
