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
	tg "github.com/set-night/goldbot/internal/telegram"
)

func (h *Handler) handleAdminCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !user.IsAdmin {
		return
	}

	h.showAdminMenu(ctx, b, update.Message.Chat.ID)
}

func (h *Handler) showAdminMenu(ctx context.Context, b *bot.Bot, chatID int64) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⚙️ *Админ-панель*",
		ParseMode: models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(
			tg.ButtonRow(
				tg.InlineButton("📊 Статистика", "a_stats"),
				tg.InlineButton("💸 Заявки", "a_w"),
			),
			tg.ButtonRow(
				tg.InlineButton("📣 Спонсоры", "a_sponsors"),
				tg.InlineButton("📋 Задания", "a_tasks"),
			),
			tg.ButtonRow(
				tg.InlineButton("💰 Баланс", "a_balance"),
				tg.InlineButton("📢 Рассылка", "a_broadcast"),
			),
		),
	})
}

func (h *Handler) showStats(ctx context.Context, b *bot.Bot, chatID int64) {
	st, err := h.users.Stats(ctx)
	if err != nil {
		slog.Error("load stats", "error", err)
		return
	}

	text := fmt.Sprintf(
		"📊 *Статистика*\n\n"+
			"👥 *Пользователи:*\n"+
			"Всего: %d\n"+
			"Сегодня: %d\n"+
			"За неделю: %d\n"+
			"Забанено: %d\n\n"+
			"💰 *Gold:*\n"+
			"На балансах: %d\n"+
			"Выплачено: %d\n"+
			"Выполнено заданий: %d\n\n"+
			"💸 *Заявки на вывод:*\n"+
			"В ожидании: %d (на %d Gold)",
		st.TotalUsers, st.UsersToday, st.UsersThisWeek, st.BannedUsers,
		st.TotalBalance, st.PaidOutAmount, st.CompletedTasks,
		st.PendingWithdrawals, st.PendingAmount,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) showPendingWithdrawals(ctx context.Context, b *bot.Bot, chatID int64) {
	pending, err := h.withdrawals.ListPending(ctx)
	if err != nil {
		slog.Error("list pending withdrawals", "error", err)
		return
	}

	if len(pending) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "💸 Нет заявок в ожидании.",
		})
		return
	}

	for _, w := range pending {
		owner := "?"
		if u, err := h.users.GetByID(ctx, w.UserID); err == nil {
			owner = fmt.Sprintf("%d (@%s)", u.TelegramID, u.Username)
		}

		text := fmt.Sprintf(
			"💸 *Заявка* `%s`\n\n"+
				"Пользователь: %s\n"+
				"Сумма: *%d Gold*\n"+
				"Счёт: `%s`\n"+
				"Создана: %s",
			w.PublicID, owner, w.Amount, w.Account, w.CreatedAt.Format("2006-01-02 15:04"),
		)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdownV1,
			ReplyMarkup: tg.InlineKeyboard(
				tg.ButtonRow(
					tg.InlineButton("✅ Одобрить", fmt.Sprintf("a_w_ok:%d", w.ID)),
					tg.InlineButton("❌ Отклонить", fmt.Sprintf("a_w_no:%d", w.ID)),
				),
			),
		})
	}
}

func (h *Handler) resolveWithdrawal(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, chatID int64, admin *domain.User, id int64, approve bool) {
	w, err := h.withdrawals.Resolve(ctx, id, admin.TelegramID, approve, "")
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyResolved):
			h.answer(ctx, b, cb.ID, "Заявка уже обработана", true)
		case errors.Is(err, domain.ErrWithdrawalNotFound):
			h.answer(ctx, b, cb.ID, "Заявка не найдена", true)
		default:
			slog.Error("resolve withdrawal", "error", err, "id", id)
			h.eventLog.LogError(err, fmt.Sprintf("resolve withdrawal %d", id))
			h.answer(ctx, b, cb.ID, "Что-то пошло не так", true)
		}
		return
	}

	decision := "rejected"
	verdict := "❌ Заявка отклонена, Gold возвращён пользователю."
	userNote := fmt.Sprintf("❌ Ваша заявка на вывод *%d Gold* отклонена. Gold возвращён на баланс.", w.Amount)
	if approve {
		decision = "approved"
		verdict = "✅ Заявка одобрена."
		userNote = fmt.Sprintf("✅ Ваша заявка на вывод *%d Gold* одобрена!", w.Amount)
	}

	metrics.WithdrawalsResolved.WithLabelValues(decision).Inc()
	h.answer(ctx, b, cb.ID, "", false)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   verdict,
	})

	// Ledger change is committed; user notification is best effort.
	if u, err := h.users.GetByID(ctx, w.UserID); err == nil {
		if err := h.sender.NotifyMarkdown(ctx, u.TelegramID, userNote); err != nil {
			slog.Warn("withdrawal outcome notification failed", "tg_id", u.TelegramID, "error", err)
		}
	}

	h.eventLog.LogWithdrawalResolved(admin.TelegramID, w.PublicID.String(), approve)
}

func (h *Handler) showAdminSponsors(ctx context.Context, b *bot.Bot, chatID int64) {
	sponsors, err := h.sponsors.List(ctx)
	if err != nil {
		slog.Error("list sponsors", "error", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("📣 *Спонсоры:*\n\n")

	var rows [][]models.InlineKeyboardButton
	for _, sp := range sponsors {
		mark := "🔴"
		if sp.IsActive {
			mark = "🟢"
		}
		sb.WriteString(fmt.Sprintf("%s #%d *%s* — `%s`\n", mark, sp.ID, sp.Title, sp.ChannelRef))
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("%s %s", mark, sp.Title), fmt.Sprintf("a_sponsor_off:%d", sp.ID)),
		))
	}
	if len(sponsors) == 0 {
		sb.WriteString("пока нет\n")
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ Добавить", "a_sponsor_add")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) startSponsorAdd(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	h.startFlow(ctx, b, chatID, user.TelegramID, fsm.State{Step: fsm.StepSponsorRef})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📣 Отправьте спонсора в формате: `@канал Название`",
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) toggleSponsor(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, chatID, id int64) {
	sponsors, err := h.sponsors.List(ctx)
	if err != nil {
		slog.Error("list sponsors", "error", err)
		return
	}

	for _, sp := range sponsors {
		if sp.ID == id {
			if err := h.sponsors.SetActive(ctx, id, !sp.IsActive); err != nil {
				slog.Error("toggle sponsor", "error", err, "id", id)
			}
			h.answer(ctx, b, cb.ID, "", false)
			h.showAdminSponsors(ctx, b, chatID)
			return
		}
	}
	h.answer(ctx, b, cb.ID, "Спонсор не найден", true)
}

func (h *Handler) showAdminTasks(ctx context.Context, b *bot.Bot, chatID int64) {
	tasks, err := h.tasks.List(ctx)
	if err != nil {
		slog.Error("list tasks", "error", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 *Задания:*\n\n")

	var rows [][]models.InlineKeyboardButton
	for _, t := range tasks {
		mark := "🔴"
		if t.IsActive {
			mark = "🟢"
		}
		sb.WriteString(fmt.Sprintf("%s #%d *%s* — %d Gold — `%s`\n", mark, t.ID, t.Title, t.Reward, t.ChannelRef))
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("%s %s", mark, t.Title), fmt.Sprintf("a_task_off:%d", t.ID)),
		))
	}
	if len(tasks) == 0 {
		sb.WriteString("пока нет\n")
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ Добавить", "a_task_add")))

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) startTaskAdd(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	h.startFlow(ctx, b, chatID, user.TelegramID, fsm.State{Step: fsm.StepTaskTitle})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📋 Введите название задания (описание — со второй строки):",
	})
}

func (h *Handler) toggleTask(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, chatID, id int64) {
	tasks, err := h.tasks.List(ctx)
	if err != nil {
		slog.Error("list tasks", "error", err)
		return
	}

	for _, t := range tasks {
		if t.ID == id {
			if err := h.tasks.SetActive(ctx, id, !t.IsActive); err != nil {
				slog.Error("toggle task", "error", err, "id", id)
			}
			h.answer(ctx, b, cb.ID, "", false)
			h.showAdminTasks(ctx, b, chatID)
			return
		}
	}
	h.answer(ctx, b, cb.ID, "Задание не найдено", true)
}

func (h *Handler) startBalanceAdjust(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	h.startFlow(ctx, b, chatID, user.TelegramID, fsm.State{Step: fsm.StepBalanceTarget})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "💰 Введите Telegram ID пользователя:",
	})
}

func (h *Handler) startBroadcast(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	h.startFlow(ctx, b, chatID, user.TelegramID, fsm.State{Step: fsm.StepBroadcastText})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📢 Введите текст рассылки:",
	})
}

// handlePromote processes /promote <tg_id>; only the owner manages the
// admin set.
func (h *Handler) handlePromote(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleRoleChange(ctx, b, update, true)
}

func (h *Handler) handleDemote(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleRoleChange(ctx, b, update, false)
}

func (h *Handler) handleRoleChange(ctx context.Context, b *bot.Bot, update *models.Update, promote bool) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || user.TelegramID != h.cfg.OwnerID {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.Fields(update.Message.Text)
	if len(parts) != 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("Использование: %s <telegram_id>", parts[0]),
		})
		return
	}

	target, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Некорректный Telegram ID.",
		})
		return
	}

	if promote {
		err = h.users.Promote(ctx, target)
	} else {
		err = h.users.Demote(ctx, target)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Пользователь не найден.",
			})
			return
		}
		slog.Error("change admin role", "error", err, "target", target)
		return
	}

	verdict := "снят с роли администратора"
	if promote {
		verdict = "назначен администратором"
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Пользователь %d %s.", target, verdict),
	})
}

// handleBan processes /ban <tg_id>; bans drop every future update from
// the user at the middleware.
func (h *Handler) handleBan(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBanToggle(ctx, b, update, true)
}

func (h *Handler) handleUnban(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleBanToggle(ctx, b, update, false)
}

func (h *Handler) handleBanToggle(ctx context.Context, b *bot.Bot, update *models.Update, banned bool) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil || !user.IsAdmin {
		return
	}

	chatID := update.Message.Chat.ID
	parts := strings.Fields(update.Message.Text)
	if len(parts) != 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("Использование: %s <telegram_id>", parts[0]),
		})
		return
	}

	target, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Некорректный Telegram ID.",
		})
		return
	}

	if err := h.users.SetBanned(ctx, target, banned); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Пользователь не найден.",
			})
			return
		}
		slog.Error("set banned", "error", err, "target", target)
		return
	}

	verdict := "разбанен"
	if banned {
		verdict = "забанен"
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Пользователь %d %s.", target, verdict),
	})
}
