package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/set-night/goldbot/internal/storage/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	seen   map[int64]int
	failOn map[int64]bool
}

func (n *recordingNotifier) Notify(_ context.Context, tgID int64, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen == nil {
		n.seen = make(map[int64]int)
	}
	n.seen[tgID]++
	if n.failOn[tgID] {
		return errors.New("blocked by user")
	}
	return nil
}

func TestBroadcastReachesEveryUserOnce(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for tgID := int64(1); tgID <= 25; tgID++ {
		seedUser(t, store, tgID)
	}

	n := &recordingNotifier{}
	sent, failed, err := NewBroadcastService(store, n).Send(ctx, "привет")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 25 || failed != 0 {
		t.Fatalf("expected 25 sent / 0 failed, got %d / %d", sent, failed)
	}
	for tgID := int64(1); tgID <= 25; tgID++ {
		if n.seen[tgID] != 1 {
			t.Fatalf("user %d notified %d times", tgID, n.seen[tgID])
		}
	}
}

func TestBroadcastCountsFailures(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for tgID := int64(1); tgID <= 5; tgID++ {
		seedUser(t, store, tgID)
	}

	n := &recordingNotifier{failOn: map[int64]bool{2: true, 4: true}}
	sent, failed, err := NewBroadcastService(store, n).Send(ctx, "привет")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 3 || failed != 2 {
		t.Fatalf("expected 3 sent / 2 failed, got %d / %d", sent, failed)
	}
}

func TestBroadcastSkipsBannedUsers(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedUser(t, store, 1)
	seedUser(t, store, 2)
	if err := store.SetBanned(ctx, 2, true); err != nil {
		t.Fatal(err)
	}

	n := &recordingNotifier{}
	sent, _, err := NewBroadcastService(store, n).Send(ctx, "привет")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 sent, got %d", sent)
	}
	if n.seen[2] != 0 {
		t.Fatal("banned user must not be notified")
	}
}
