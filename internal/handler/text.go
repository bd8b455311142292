package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/fsm"
	"github.com/set-night/goldbot/internal/metrics"
	"github.com/set-night/goldbot/internal/middleware"
	"github.com/set-night/goldbot/internal/storage"
)

// HandleText routes free text: a user mid-flow feeds the conversation
// state machine, everyone else gets a short hint.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	st := h.states.Get(user.TelegramID)

	switch st.Step {
	case fsm.StepIdle:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Используйте /start для открытия меню.",
		})

	case fsm.StepWithdrawAmount:
		h.handleWithdrawAmount(ctx, b, chatID, user, text)
	case fsm.StepWithdrawAccount:
		h.handleWithdrawAccount(ctx, b, chatID, user, text, st)

	case fsm.StepBroadcastText:
		h.handleBroadcastText(ctx, b, chatID, user, text)

	case fsm.StepSponsorRef:
		h.handleSponsorRef(ctx, b, chatID, user, text)

	case fsm.StepTaskTitle:
		h.handleTaskTitle(ctx, b, chatID, user, text)
	case fsm.StepTaskReward:
		h.handleTaskReward(ctx, b, chatID, user, text, st)
	case fsm.StepTaskChannel:
		h.handleTaskChannel(ctx, b, chatID, user, text, st)

	case fsm.StepBalanceTarget:
		h.handleBalanceTarget(ctx, b, chatID, user, text)
	case fsm.StepBalanceDelta:
		h.handleBalanceDelta(ctx, b, chatID, user, text, st)
	}
}

// startFlow enters a multi-step flow. An in-progress flow is replaced
// (last-write-wins) with a short notice about the discarded input.
func (h *Handler) startFlow(ctx context.Context, b *bot.Bot, chatID, tgID int64, st fsm.State) {
	if abandoned := h.states.Start(tgID, st); abandoned {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "ℹ️ Предыдущий незавершённый ввод отменён.",
		})
	}
}

func parseAmount(text string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return n, nil
}

func (h *Handler) finishWithdraw(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, amount int64, account string) {
	w, err := h.withdrawals.Request(ctx, user.ID, amount, account)
	if err != nil {
		h.states.Clear(user.TelegramID)
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrInvalidAmount):
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Недостаточно Gold для этой суммы. Начните заново: /start",
			})
		default:
			slog.Error("create withdrawal", "error", err, "user_id", user.ID)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Что-то пошло не так, попробуйте позже.",
			})
		}
		return
	}

	h.states.Clear(user.TelegramID)
	metrics.WithdrawalsCreated.Inc()

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf(
			"✅ Заявка на вывод *%d Gold* создана!\n\nНомер заявки: `%s`\nОжидайте решения администратора.",
			w.Amount, w.PublicID),
		ParseMode: models.ParseModeMarkdownV1,
	})

	h.eventLog.LogWithdrawalRequest(user.TelegramID, w.PublicID.String(), w.Amount, w.Account)
}

func (h *Handler) handleBroadcastText(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}
	if text == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Текст рассылки не может быть пустым. Введите текст:",
		})
		return
	}

	h.states.Clear(user.TelegramID)

	sent, failed, err := h.broadcasts.Send(ctx, text)
	if err != nil {
		slog.Error("broadcast", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось запустить рассылку.",
		})
		return
	}

	metrics.BroadcastMessages.WithLabelValues("sent").Add(float64(sent))
	metrics.BroadcastMessages.WithLabelValues("failed").Add(float64(failed))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("📢 Рассылка завершена: отправлено %d, ошибок %d.", sent, failed),
	})
}

func (h *Handler) handleSponsorRef(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}

	ref, title, ok := strings.Cut(text, " ")
	if !ok || !validChannelRef(ref) || strings.TrimSpace(title) == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Формат: `@канал Название` или `-100123456789 Название`. Попробуйте ещё раз:",
		})
		return
	}

	sp, err := h.sponsors.Add(ctx, ref, strings.TrimSpace(title))
	if err != nil {
		slog.Error("create sponsor", "error", err)
		return
	}

	h.states.Clear(user.TelegramID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Спонсор «%s» добавлен (#%d).", sp.Title, sp.ID),
	})
}

func (h *Handler) handleTaskTitle(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}
	if text == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Название не может быть пустым. Введите название задания:",
		})
		return
	}

	// First line is the title, the rest becomes the description.
	title, description, _ := strings.Cut(text, "\n")
	h.states.Set(user.TelegramID, fsm.State{
		Step:            fsm.StepTaskReward,
		TaskTitle:       strings.TrimSpace(title),
		TaskDescription: strings.TrimSpace(description),
	})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "💰 Введите награду в Gold (целое число):",
	})
}

func (h *Handler) handleTaskReward(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string, st fsm.State) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}

	reward, err := parseAmount(text)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Награда должна быть положительным целым числом. Введите награду:",
		})
		return
	}

	st.Step = fsm.StepTaskChannel
	st.TaskReward = reward
	h.states.Set(user.TelegramID, st)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📢 Введите канал задания (@имя или id чата):",
	})
}

func (h *Handler) handleTaskChannel(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string, st fsm.State) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}

	if !validChannelRef(text) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Укажите @имя канала или числовой id чата:",
		})
		return
	}

	task, err := h.tasks.Create(ctx, storage.NewTask{
		Title:       st.TaskTitle,
		Description: st.TaskDescription,
		Reward:      st.TaskReward,
		ChannelRef:  text,
	})
	if err != nil {
		slog.Error("create task", "error", err)
		return
	}

	h.states.Clear(user.TelegramID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✅ Задание «%s» создано (#%d, награда %d Gold).", task.Title, task.ID, task.Reward),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleBalanceTarget(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}

	target, err := strconv.ParseInt(text, 10, 64)
	if err != nil || target <= 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Введите Telegram ID пользователя (число):",
		})
		return
	}

	if _, err := h.users.Get(ctx, target); err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Пользователь не найден. Введите Telegram ID:",
		})
		return
	}

	h.states.Set(user.TelegramID, fsm.State{Step: fsm.StepBalanceDelta, BalanceTarget: target})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "💰 Введите изменение баланса (например 500 или -200):",
	})
}

func (h *Handler) handleBalanceDelta(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string, st fsm.State) {
	if !user.IsAdmin {
		h.states.Clear(user.TelegramID)
		return
	}

	delta, err := strconv.ParseInt(text, 10, 64)
	if err != nil || delta == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Введите ненулевое целое число:",
		})
		return
	}

	newBalance, err := h.users.AdjustBalance(ctx, st.BalanceTarget, delta, user.TelegramID)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Баланс не может стать отрицательным. Введите другое число:",
			})
			return
		}
		slog.Error("adjust balance", "error", err, "target", st.BalanceTarget)
		h.states.Clear(user.TelegramID)
		return
	}

	h.states.Clear(user.TelegramID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Баланс пользователя %d изменён на %+d, теперь: %d Gold.", st.BalanceTarget, delta, newBalance),
	})

	_ = h.sender.Notify(ctx, st.BalanceTarget, fmt.Sprintf("💰 Ваш баланс изменён администратором: %+d Gold.", delta))
}

// validChannelRef accepts @usernames and numeric chat ids.
func validChannelRef(ref string) bool {
	if strings.HasPrefix(ref, "@") {
		return len(ref) > 1 && !strings.ContainsAny(ref[1:], " \t\n")
	}
	_, err := strconv.ParseInt(ref, 10, 64)
	return err == nil
}
