package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/set-night/goldbot/internal/storage"
)

// Notifier delivers a plain-text message to a user, best effort.
type Notifier interface {
	Notify(ctx context.Context, tgID int64, text string) error
}

type BroadcastService struct {
	store    storage.Store
	notifier Notifier
}

func NewBroadcastService(store storage.Store, notifier Notifier) *BroadcastService {
	return &BroadcastService{store: store, notifier: notifier}
}

const broadcastConcurrency = 10

// Send fans the text out to every known non-banned user. Delivery is best
// effort; partial failure is reported as counts, never rolled back.
func (s *BroadcastService) Send(ctx context.Context, text string) (sent, failed int, err error) {
	ids, err := s.store.ListUserTelegramIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}

	var okCount, failCount atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(broadcastConcurrency)

	for _, tgID := range ids {
		tgID := tgID
		g.Go(func() error {
			if err := s.notifier.Notify(ctx, tgID, text); err != nil {
				slog.Debug("broadcast delivery failed", "tg_id", tgID, "error", err)
				failCount.Add(1)
			} else {
				okCount.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()
	return int(okCount.Load()), int(failCount.Load()), nil
}
