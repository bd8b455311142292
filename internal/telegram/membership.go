package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const membershipTimeout = 5 * time.Second

// MembershipChecker answers subscription checks via GetChatMember.
// It fails closed: a transport error, an unknown chat, or a timeout all
// count as not a member.
type MembershipChecker struct {
	bot *bot.Bot
}

func NewMembershipChecker(b *bot.Bot) *MembershipChecker {
	return &MembershipChecker{bot: b}
}

func (c *MembershipChecker) IsMember(ctx context.Context, channelRef string, tgID int64) bool {
	ctx, cancel := context.WithTimeout(ctx, membershipTimeout)
	defer cancel()

	member, err := c.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: channelRef,
		UserID: tgID,
	})
	if err != nil || member == nil {
		slog.Debug("membership check failed closed", "channel", channelRef, "tg_id", tgID, "error", err)
		return false
	}

	switch {
	case member.Member != nil:
		return true
	case member.Administrator != nil, member.Owner != nil:
		return true
	case member.Restricted != nil:
		return member.Restricted.IsMember
	default:
		// left, banned or unknown
		return false
	}
}
