package handler

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/middleware"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypePrefix, h.handleAdminCommand)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ban", bot.MatchTypePrefix, h.handleBan)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unban", bot.MatchTypePrefix, h.handleUnban)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/promote", bot.MatchTypePrefix, h.handlePromote)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/demote", bot.MatchTypePrefix, h.handleDemote)

	// Single dispatch point for every button press; the token vocabulary
	// is closed and malformed tokens are acknowledged without effect.
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.handleCallback)
}

func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		h.answer(ctx, b, cb.ID, "", false)
		return
	}

	var chatID int64
	if msg := cb.Message.Message; msg != nil {
		chatID = msg.Chat.ID
	}
	if chatID == 0 {
		chatID = user.TelegramID
	}

	action, err := ParseAction(cb.Data)
	if err != nil {
		if errors.Is(err, ErrBadAction) {
			h.answer(ctx, b, cb.ID, "", false)
			return
		}
		return
	}

	// Non-admins pressing admin buttons are acknowledged and ignored; the
	// admin surface leaks nothing.
	if action.IsAdminAction() && !user.IsAdmin {
		h.answer(ctx, b, cb.ID, "", false)
		return
	}

	switch action.Kind {
	case ActionMenu:
		h.answer(ctx, b, cb.ID, "", false)
		h.showMenu(ctx, b, chatID, user)
	case ActionProfile:
		h.answer(ctx, b, cb.ID, "", false)
		h.showProfile(ctx, b, chatID, user)
	case ActionTasks:
		h.answer(ctx, b, cb.ID, "", false)
		h.showTasks(ctx, b, chatID, user)
	case ActionTaskOpen:
		h.answer(ctx, b, cb.ID, "", false)
		h.showTask(ctx, b, chatID, action.ID)
	case ActionTaskCheck:
		h.checkTask(ctx, b, cb, chatID, user, action.ID)
	case ActionWithdraw:
		h.answer(ctx, b, cb.ID, "", false)
		h.startWithdraw(ctx, b, chatID, user)
	case ActionCheckSponsors:
		h.checkSponsors(ctx, b, cb, chatID, user)
	case ActionAdmin:
		h.answer(ctx, b, cb.ID, "", false)
		h.showAdminMenu(ctx, b, chatID)
	case ActionAdminStats:
		h.answer(ctx, b, cb.ID, "", false)
		h.showStats(ctx, b, chatID)
	case ActionAdminWithdrawals:
		h.answer(ctx, b, cb.ID, "", false)
		h.showPendingWithdrawals(ctx, b, chatID)
	case ActionAdminApprove:
		h.resolveWithdrawal(ctx, b, cb, chatID, user, action.ID, true)
	case ActionAdminReject:
		h.resolveWithdrawal(ctx, b, cb, chatID, user, action.ID, false)
	case ActionAdminSponsors:
		h.answer(ctx, b, cb.ID, "", false)
		h.showAdminSponsors(ctx, b, chatID)
	case ActionAdminSponsorAdd:
		h.answer(ctx, b, cb.ID, "", false)
		h.startSponsorAdd(ctx, b, chatID, user)
	case ActionAdminSponsorToggle:
		h.toggleSponsor(ctx, b, cb, chatID, action.ID)
	case ActionAdminTasks:
		h.answer(ctx, b, cb.ID, "", false)
		h.showAdminTasks(ctx, b, chatID)
	case ActionAdminTaskAdd:
		h.answer(ctx, b, cb.ID, "", false)
		h.startTaskAdd(ctx, b, chatID, user)
	case ActionAdminTaskToggle:
		h.toggleTask(ctx, b, cb, chatID, action.ID)
	case ActionAdminBalance:
		h.answer(ctx, b, cb.ID, "", false)
		h.startBalanceAdjust(ctx, b, chatID, user)
	case ActionAdminBroadcast:
		h.answer(ctx, b, cb.ID, "", false)
		h.startBroadcast(ctx, b, chatID, user)
	}
}

// answer acknowledges a callback query, optionally with an alert popup.
func (h *Handler) answer(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}
