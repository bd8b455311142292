package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage/memory"
)

func TestRequestBelowMinimum(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)
	store.AdjustBalance(ctx, 100, 200, "seed")

	svc := NewWithdrawalService(store, 100)
	if _, err := svc.Request(ctx, u.ID, 99, "acc"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 200 {
		t.Fatalf("rejected request must not debit, balance=%d", after.Balance)
	}
}

func TestRequestDebitsUpFront(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)
	store.AdjustBalance(ctx, 100, 150, "seed")

	svc := NewWithdrawalService(store, 100)
	w, err := svc.Request(ctx, u.ID, 120, "card 1234")
	if err != nil {
		t.Fatal(err)
	}
	if w.Status != domain.WithdrawalPending {
		t.Fatalf("expected pending, got %s", w.Status)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 30 {
		t.Fatalf("expected balance 30 after debit, got %d", after.Balance)
	}

	got, err := svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PublicID != w.PublicID || got.Amount != 120 {
		t.Fatalf("lookup mismatch: %+v vs %+v", got, w)
	}

	// The remaining 30 cannot fund a second minimum-size request.
	if _, err := svc.Request(ctx, u.ID, 100, "card 1234"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestResolveApproveKeepsDebit(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)
	store.AdjustBalance(ctx, 100, 100, "seed")

	svc := NewWithdrawalService(store, 100)
	w, _ := svc.Request(ctx, u.ID, 100, "acc")

	resolved, err := svc.Resolve(ctx, w.ID, 9, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != domain.WithdrawalApproved {
		t.Fatalf("expected approved, got %s", resolved.Status)
	}
	if resolved.ProcessedBy == nil || *resolved.ProcessedBy != 9 {
		t.Fatalf("expected processed_by 9, got %v", resolved.ProcessedBy)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 0 {
		t.Fatalf("approval must keep the debit, balance=%d", after.Balance)
	}

	pending, _ := svc.ListPending(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d", len(pending))
	}
}

func TestResolveRejectRefunds(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)
	store.AdjustBalance(ctx, 100, 100, "seed")

	svc := NewWithdrawalService(store, 100)
	w, _ := svc.Request(ctx, u.ID, 100, "acc")

	resolved, err := svc.Resolve(ctx, w.ID, 9, false, "реквизиты не найдены")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != domain.WithdrawalRejected {
		t.Fatalf("expected rejected, got %s", resolved.Status)
	}
	if resolved.Comment != "реквизиты не найдены" {
		t.Fatalf("comment not kept: %q", resolved.Comment)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 100 {
		t.Fatalf("expected full refund, balance=%d", after.Balance)
	}
}

func TestResolveTwiceFails(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u := seedUser(t, store, 100)
	store.AdjustBalance(ctx, 100, 100, "seed")

	svc := NewWithdrawalService(store, 100)
	w, _ := svc.Request(ctx, u.ID, 100, "acc")

	if _, err := svc.Resolve(ctx, w.ID, 9, false, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Resolve(ctx, w.ID, 9, false, ""); !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	after, _ := store.GetUser(ctx, 100)
	if after.Balance != 100 {
		t.Fatalf("duplicate reject must not refund twice, balance=%d", after.Balance)
	}
}

func TestResolveUnknownWithdrawal(t *testing.T) {
	svc := NewWithdrawalService(memory.New(), 100)
	if _, err := svc.Resolve(context.Background(), 404, 9, true, ""); !errors.Is(err, domain.ErrWithdrawalNotFound) {
		t.Fatalf("expected ErrWithdrawalNotFound, got %v", err)
	}
}
