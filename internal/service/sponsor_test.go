package service

import (
	"context"
	"testing"

	"github.com/set-night/goldbot/internal/storage/memory"
)

func TestRequireAllNoSponsors(t *testing.T) {
	svc := NewSponsorService(memory.New(), &gateFunc{member: func(string, int64) bool { return false }})
	ok, missing, err := svc.RequireAll(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || missing != nil {
		t.Fatalf("empty sponsor set must pass, got ok=%v missing=%+v", ok, missing)
	}
}

func TestRequireAllReturnsFirstMiss(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.CreateSponsor(ctx, "@first", "Первый")
	store.CreateSponsor(ctx, "@second", "Второй")

	gate := &gateFunc{member: func(ref string, _ int64) bool { return ref == "@first" }}
	svc := NewSponsorService(store, gate)

	ok, missing, err := svc.RequireAll(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected gate to fail")
	}
	if missing == nil || missing.ChannelRef != "@second" {
		t.Fatalf("expected @second as the missing sponsor, got %+v", missing)
	}
}

func TestRequireAllShortCircuits(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.CreateSponsor(ctx, "@first", "Первый")
	store.CreateSponsor(ctx, "@second", "Второй")
	store.CreateSponsor(ctx, "@third", "Третий")

	gate := &gateFunc{member: func(ref string, _ int64) bool { return ref == "@first" }}
	svc := NewSponsorService(store, gate)

	if ok, _, _ := svc.RequireAll(ctx, 100); ok {
		t.Fatal("expected gate to fail")
	}
	want := []string{"@first", "@second"}
	if len(gate.asked) != len(want) {
		t.Fatalf("expected checks %v, got %v", want, gate.asked)
	}
	for i := range want {
		if gate.asked[i] != want[i] {
			t.Fatalf("expected checks %v, got %v", want, gate.asked)
		}
	}
}

func TestRequireAllSkipsInactive(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	sp, _ := store.CreateSponsor(ctx, "@dead", "Закрытый")
	store.SetSponsorActive(ctx, sp.ID, false)

	gate := &gateFunc{member: func(string, int64) bool { return false }}
	svc := NewSponsorService(store, gate)

	ok, missing, err := svc.RequireAll(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || missing != nil {
		t.Fatalf("inactive sponsor must not gate, got ok=%v missing=%+v", ok, missing)
	}
	if len(gate.asked) != 0 {
		t.Fatalf("gate must not be consulted for inactive sponsors, asked %v", gate.asked)
	}
}
