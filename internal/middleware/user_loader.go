package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/service"
	"github.com/set-night/goldbot/internal/storage"
)

type ctxKey string

const (
	UserKey    ctxKey = "user"
	newUserKey ctxKey = "newUser"
)

// GetUser extracts the loaded user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// IsNewUser reports whether this update caused the user row to be created.
func IsNewUser(ctx context.Context) bool {
	created, ok := ctx.Value(newUserKey).(bool)
	return ok && created
}

// StaticAdmins is the env-configured admin set, consulted alongside the
// durable admin table.
type StaticAdmins interface {
	IsAdmin(telegramID int64) bool
}

// UserLoader returns middleware that finds or creates the user, drops
// updates from banned users, resolves the admin flag and puts the user
// into context.
func UserLoader(userService *service.UserService, store storage.Store, cfg StaticAdmins) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			user, created, err := userService.FindOrCreate(ctx, from.ID, from.FirstName, from.Username)
			if err != nil || user == nil {
				next(ctx, b, update)
				return
			}

			if user.IsBanned {
				return
			}

			if cfg.IsAdmin(user.TelegramID) {
				user.IsAdmin = true
			} else if ok, err := store.IsAdmin(ctx, user.TelegramID); err == nil && ok {
				user.IsAdmin = true
			}

			ctx = context.WithValue(ctx, UserKey, user)
			ctx = context.WithValue(ctx, newUserKey, created)
			next(ctx, b, update)
		}
	}
}
