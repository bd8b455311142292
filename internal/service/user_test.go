package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage/memory"
)

func TestAdjustBalanceRejectsZeroDelta(t *testing.T) {
	store := memory.New()
	seedUser(t, store, 100)

	svc := NewUserService(store)
	if _, err := svc.AdjustBalance(context.Background(), 100, 0, 9); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAdjustBalanceAppliesSignedDelta(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedUser(t, store, 100)

	svc := NewUserService(store)
	if bal, err := svc.AdjustBalance(ctx, 100, 70, 9); err != nil || bal != 70 {
		t.Fatalf("credit: balance=%d err=%v", bal, err)
	}
	if bal, err := svc.AdjustBalance(ctx, 100, -20, 9); err != nil || bal != 50 {
		t.Fatalf("debit: balance=%d err=%v", bal, err)
	}
	if _, err := svc.AdjustBalance(ctx, 100, -100, 9); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestAdjustBalanceUnknownUser(t *testing.T) {
	svc := NewUserService(memory.New())
	if _, err := svc.AdjustBalance(context.Background(), 404, 10, 9); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
