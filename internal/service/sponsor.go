package service

import (
	"context"
	"fmt"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

// Membership decides whether a user currently belongs to a channel.
// Implementations must fail closed: any transport error counts as
// not a member, never as a failure of the calling operation.
type Membership interface {
	IsMember(ctx context.Context, channelRef string, tgID int64) bool
}

type SponsorService struct {
	store storage.Store
	gate  Membership
}

func NewSponsorService(store storage.Store, gate Membership) *SponsorService {
	return &SponsorService{store: store, gate: gate}
}

func (s *SponsorService) Add(ctx context.Context, channelRef, title string) (*domain.Sponsor, error) {
	return s.store.CreateSponsor(ctx, channelRef, title)
}

func (s *SponsorService) List(ctx context.Context) ([]domain.Sponsor, error) {
	return s.store.ListSponsors(ctx)
}

func (s *SponsorService) ListActive(ctx context.Context) ([]domain.Sponsor, error) {
	return s.store.ListActiveSponsors(ctx)
}

func (s *SponsorService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetSponsorActive(ctx, id, active)
}

// RequireAll reports whether the user belongs to every active sponsor.
// Sponsors are checked in insertion order and the first miss short-circuits;
// it is returned so the caller can point the user at the right channel.
func (s *SponsorService) RequireAll(ctx context.Context, tgID int64) (bool, *domain.Sponsor, error) {
	sponsors, err := s.store.ListActiveSponsors(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("list active sponsors: %w", err)
	}
	for i := range sponsors {
		if !s.gate.IsMember(ctx, sponsors[i].ChannelRef, tgID) {
			return false, &sponsors[i], nil
		}
	}
	return true, nil, nil
}
