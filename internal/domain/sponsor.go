package domain

import "time"

// Sponsor is an external channel whose membership gates bot usage
// and task visibility.
type Sponsor struct {
	ID         int64
	ChannelRef string // chat id or @username, as accepted by the Bot API
	Title      string
	IsActive   bool
	CreatedAt  time.Time
}

// Link returns a t.me URL for @username refs, or the raw ref otherwise.
func (s *Sponsor) Link() string {
	if len(s.ChannelRef) > 0 && s.ChannelRef[0] == '@' {
		return "https://t.me/" + s.ChannelRef[1:]
	}
	return s.ChannelRef
}
