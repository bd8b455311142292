package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
	"github.com/set-night/goldbot/internal/storage/memory"
)

// gateFunc adapts a func to the Membership interface and records the
// channel refs it was asked about.
type gateFunc struct {
	member func(channelRef string, tgID int64) bool
	asked  []string
}

func (g *gateFunc) IsMember(_ context.Context, channelRef string, tgID int64) bool {
	g.asked = append(g.asked, channelRef)
	if g.member == nil {
		return true
	}
	return g.member(channelRef, tgID)
}

func seedUser(t *testing.T, store *memory.Store, tgID int64) *domain.User {
	t.Helper()
	u, _, err := store.FindOrCreateUser(context.Background(), tgID, "Test", "test")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAttemptCompletionCreditsReward(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)

	svc := NewTaskService(store, &gateFunc{})
	task, err := svc.Create(ctx, storage.NewTask{Title: "join", Reward: 50, ChannelRef: "@channel"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.AttemptCompletion(ctx, u, task.ID)
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if got.Reward != 50 {
		t.Fatalf("expected reward 50, got %d", got.Reward)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 50 {
		t.Fatalf("expected balance 50, got %d", after.Balance)
	}
}

func TestAttemptCompletionIsIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)

	svc := NewTaskService(store, &gateFunc{})
	task, _ := svc.Create(ctx, storage.NewTask{Title: "join", Reward: 50, ChannelRef: "@channel"})

	if _, err := svc.AttemptCompletion(ctx, u, task.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AttemptCompletion(ctx, u, task.ID); !errors.Is(err, domain.ErrTaskAlreadyDone) {
		t.Fatalf("expected ErrTaskAlreadyDone, got %v", err)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 50 {
		t.Fatalf("expected single credit of 50, got %d", after.Balance)
	}
}

func TestAttemptCompletionNotSubscribedMutatesNothing(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)

	gate := &gateFunc{member: func(string, int64) bool { return false }}
	svc := NewTaskService(store, gate)
	task, _ := svc.Create(ctx, storage.NewTask{Title: "join", Reward: 50, ChannelRef: "@channel"})

	if _, err := svc.AttemptCompletion(ctx, u, task.ID); !errors.Is(err, domain.ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 0 || after.CompletedTasks != 0 {
		t.Fatalf("expected no mutation, got balance=%d completed=%d", after.Balance, after.CompletedTasks)
	}

	// The task stays available for a later retry.
	avail, _ := svc.Available(ctx, u.ID)
	if len(avail) != 1 {
		t.Fatalf("expected task still available, got %d tasks", len(avail))
	}
}

func TestAttemptCompletionInactiveTask(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)

	gate := &gateFunc{}
	svc := NewTaskService(store, gate)
	task, _ := svc.Create(ctx, storage.NewTask{Title: "join", Reward: 50, ChannelRef: "@channel"})
	if err := svc.SetActive(ctx, task.ID, false); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AttemptCompletion(ctx, u, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if len(gate.asked) != 0 {
		t.Fatalf("gate must not be consulted for an inactive task, asked %v", gate.asked)
	}
}

func TestCreateRejectsNonPositiveReward(t *testing.T) {
	svc := NewTaskService(memory.New(), &gateFunc{})
	for _, reward := range []int64{0, -5} {
		if _, err := svc.Create(context.Background(), storage.NewTask{Title: "x", Reward: reward, ChannelRef: "@c"}); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("reward %d: expected ErrInvalidAmount, got %v", reward, err)
		}
	}
}
