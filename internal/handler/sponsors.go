package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	tg "github.com/set-night/goldbot/internal/telegram"
)

// showSponsorGate renders the join-our-sponsors screen with one URL
// button per active sponsor and a re-check button.
func (h *Handler) showSponsorGate(ctx context.Context, b *bot.Bot, chatID int64) {
	sponsors, err := h.sponsors.ListActive(ctx)
	if err != nil {
		slog.Error("list active sponsors", "error", err)
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, sp := range sponsors {
		rows = append(rows, tg.ButtonRow(tg.URLButton("📢 "+sp.Title, sp.Link())))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("✅ Проверить подписку", "check_sponsors")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "📣 Для доступа к боту подпишитесь на наших спонсоров:",
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) checkSponsors(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, chatID int64, user *domain.User) {
	ok, missing, err := h.sponsors.RequireAll(ctx, user.TelegramID)
	if err != nil {
		slog.Error("check sponsors", "error", err)
		h.answer(ctx, b, cb.ID, "", false)
		return
	}

	if !ok {
		h.answer(ctx, b, cb.ID, "❌ Вы не подписаны: "+missing.Title, true)
		h.showSponsorGate(ctx, b, chatID)
		return
	}

	h.answer(ctx, b, cb.ID, "✅ Подписка подтверждена!", false)
	h.showMenu(ctx, b, chatID, user)
}
