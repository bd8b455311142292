package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/fsm"
	tg "github.com/set-night/goldbot/internal/telegram"
)

func (h *Handler) startWithdraw(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User) {
	fresh, err := h.users.Get(ctx, user.TelegramID)
	if err != nil {
		fresh = user
	}

	min := h.withdrawals.MinWithdraw()
	if fresh.Balance < min {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("❌ Недостаточно Gold. Минимальная сумма вывода — *%d*, у вас *%d*.", min, fresh.Balance),
			ParseMode: models.ParseModeMarkdownV1,
			ReplyMarkup: tg.InlineKeyboard(
				tg.ButtonRow(tg.InlineButton("📋 К заданиям", "tasks")),
			),
		})
		return
	}

	h.startFlow(ctx, b, chatID, user.TelegramID, fsm.State{Step: fsm.StepWithdrawAmount})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("💸 Введите сумму вывода (от *%d* до *%d* Gold):", min, fresh.Balance),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

// handleWithdrawAmount is the AwaitingWithdrawAmount step: a valid amount
// advances to the account step, anything else re-prompts in place.
func (h *Handler) handleWithdrawAmount(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	amount, err := parseAmount(text)
	min := h.withdrawals.MinWithdraw()
	if err != nil || amount < min {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Некорректная сумма. Введите целое число от %d:", min),
		})
		return
	}

	fresh, ferr := h.users.Get(ctx, user.TelegramID)
	if ferr == nil && amount > fresh.Balance {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Недостаточно Gold: доступно %d. Введите другую сумму:", fresh.Balance),
		})
		return
	}

	h.states.Set(user.TelegramID, fsm.State{Step: fsm.StepWithdrawAccount, WithdrawAmount: amount})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "💳 Введите счёт для вывода:",
	})
}

// handleWithdrawAccount is the final withdraw step: it performs the
// pessimistic debit and creates the pending request.
func (h *Handler) handleWithdrawAccount(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, account string, st fsm.State) {
	if account == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Счёт не может быть пустым. Введите счёт:",
		})
		return
	}

	h.finishWithdraw(ctx, b, chatID, user, st.WithdrawAmount, account)
}
