package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/middleware"
	tg "github.com/set-night/goldbot/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	if middleware.IsNewUser(ctx) {
		h.eventLog.LogRegistration(user.TelegramID, user.FirstName, user.Username)
	}

	h.states.Clear(user.TelegramID)
	h.showMenu(ctx, b, update.Message.Chat.ID, user)
}

func (h *Handler) showMenu(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	if h.cfg.RequireSponsors {
		ok, _, err := h.sponsors.RequireAll(ctx, user.TelegramID)
		if err == nil && !ok {
			h.showSponsorGate(ctx, b, chatID)
			return
		}
	}

	text := fmt.Sprintf(
		"👋 Привет, *%s*!\n\n"+
			"Выполняй задания, зарабатывай Gold и выводи его.\n\n"+
			"💰 Баланс: *%d Gold*",
		user.FirstName, user.Balance,
	)

	rows := [][]models.InlineKeyboardButton{
		tg.ButtonRow(
			tg.InlineButton("📋 Задания", "tasks"),
			tg.InlineButton("💸 Вывести", "withdraw"),
		),
		tg.ButtonRow(
			tg.InlineButton("👤 Профиль", "profile"),
			tg.InlineButton("📣 Спонсоры", "check_sponsors"),
		),
	}
	if user.IsAdmin {
		rows = append(rows, tg.ButtonRow(tg.InlineButton("⚙️ Админка", "admin")))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) showProfile(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	// Re-read: the context copy may predate a credit from this same session.
	fresh, err := h.users.Get(ctx, user.TelegramID)
	if err != nil {
		fresh = user
	}

	text := fmt.Sprintf(
		"👤 *Профиль*\n\n"+
			"🆔 ID: `%d`\n"+
			"💰 Баланс: *%d Gold*\n"+
			"✅ Выполнено заданий: %d",
		fresh.TelegramID, fresh.Balance, fresh.CompletedTasks,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(
			tg.ButtonRow(tg.InlineButton("⬅️ Меню", "menu")),
		),
	})
}
