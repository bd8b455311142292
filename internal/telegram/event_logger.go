package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/goldbot/internal/config"
)

// EventLogger mirrors notable ledger events into a Telegram log chat,
// routed by forum topic. Disabled when no log chat is configured.
type EventLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewEventLogger(b *bot.Bot, cfg *config.Config) *EventLogger {
	return &EventLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeTaskReward   LogType = "taskReward"
	LogTypeWithdrawal   LogType = "withdrawal"
)

func (l *EventLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: l.getTopicID(logType),
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *EventLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *EventLogger) LogRegistration(telegramID int64, name, username string) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s\n*Username:* @%s",
		telegramID, name, username)
	l.Log(LogTypeRegistration, msg)
}

func (l *EventLogger) LogTaskReward(telegramID int64, taskTitle string, reward int64) {
	msg := fmt.Sprintf("💰 *Task Reward*\n\n*User:* `%d`\n*Task:* %s\n*Reward:* %d Gold",
		telegramID, taskTitle, reward)
	l.Log(LogTypeTaskReward, msg)
}

func (l *EventLogger) LogWithdrawalRequest(telegramID int64, publicID string, amount int64, account string) {
	msg := fmt.Sprintf("💸 *Withdrawal Request*\n\n*User:* `%d`\n*Ref:* `%s`\n*Amount:* %d Gold\n*Account:* %s",
		telegramID, publicID, amount, account)
	l.Log(LogTypeWithdrawal, msg)
}

func (l *EventLogger) LogWithdrawalResolved(adminID int64, publicID string, approved bool) {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	msg := fmt.Sprintf("💸 *Withdrawal %s*\n\n*Admin:* `%d`\n*Ref:* `%s`", verdict, adminID, publicID)
	l.Log(LogTypeWithdrawal, msg)
}

func (l *EventLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeTaskReward:
		return l.cfg.LogTopicTaskReward
	case LogTypeWithdrawal:
		return l.cfg.LogTopicWithdrawal
	default:
		return 0
	}
}
