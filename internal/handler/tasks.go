package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/metrics"
	tg "github.com/set-night/goldbot/internal/telegram"
)

func (h *Handler) showTasks(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	tasks, err := h.tasks.Available(ctx, user.ID)
	if err != nil {
		slog.Error("list available tasks", "error", err)
		return
	}

	if len(tasks) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📋 Нет доступных заданий. Загляните позже!",
			ReplyMarkup: tg.InlineKeyboard(
				tg.ButtonRow(tg.InlineButton("⬅️ Меню", "menu")),
			),
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 *Доступные задания:*\n\n")

	var rows [][]models.InlineKeyboardButton
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("• *%s* — %d Gold\n", t.Title, t.Reward))
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(t.Title, fmt.Sprintf("task:%d", t.ID)),
		))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("⬅️ Меню", "menu")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) showTask(ctx context.Context, b *bot.Bot, chatID, taskID int64) {
	task, err := h.tasks.Open(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Задание недоступно.",
			})
			return
		}
		slog.Error("open task", "error", err, "task_id", taskID)
		return
	}

	text := fmt.Sprintf("📋 *%s*\n\n%s\n\nНаграда: *%d Gold*\n\nПодпишитесь на канал и нажмите проверку:",
		task.Title, task.Description, task.Reward)

	sp := domain.Sponsor{ChannelRef: task.ChannelRef}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(
			tg.ButtonRow(tg.URLButton("📢 Перейти", sp.Link())),
			tg.ButtonRow(tg.InlineButton("✅ Проверить", fmt.Sprintf("task_check:%d", task.ID))),
		),
	})
}

func (h *Handler) checkTask(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, chatID int64, user *domain.User, taskID int64) {
	task, err := h.tasks.AttemptCompletion(ctx, user, taskID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			h.answer(ctx, b, cb.ID, "Задание недоступно", true)
		case errors.Is(err, domain.ErrNotSubscribed):
			h.answer(ctx, b, cb.ID, "Вы не подписаны на канал!", true)
		case errors.Is(err, domain.ErrTaskAlreadyDone):
			h.answer(ctx, b, cb.ID, "Вы уже выполнили это задание", true)
		default:
			slog.Error("attempt completion", "error", err, "task_id", taskID, "user_id", user.ID)
			h.eventLog.LogError(err, fmt.Sprintf("task check %d by %d", taskID, user.TelegramID))
			h.answer(ctx, b, cb.ID, "Что-то пошло не так, попробуйте позже", true)
		}
		return
	}

	metrics.TaskCompletions.Inc()
	h.answer(ctx, b, cb.ID, "", false)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✅ Задание выполнено! Начислено *%d Gold*", task.Reward),
		ParseMode: models.ParseModeMarkdownV1,
	})

	h.eventLog.LogTaskReward(user.TelegramID, task.Title, task.Reward)
}
