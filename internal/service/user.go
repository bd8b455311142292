package service

import (
	"context"
	"fmt"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// FindOrCreate loads the user by telegram id, creating the row on first
// interaction. The second return value reports whether the user is new.
func (s *UserService) FindOrCreate(ctx context.Context, tgID int64, firstName, username string) (*domain.User, bool, error) {
	u, created, err := s.store.FindOrCreateUser(ctx, tgID, firstName, username)
	if err != nil {
		return nil, false, fmt.Errorf("find or create user: %w", err)
	}
	return u, created, nil
}

func (s *UserService) Get(ctx context.Context, tgID int64) (*domain.User, error) {
	return s.store.GetUser(ctx, tgID)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) SetBanned(ctx context.Context, tgID int64, banned bool) error {
	return s.store.SetBanned(ctx, tgID, banned)
}

// AdjustBalance applies a signed admin delta and returns the new balance.
func (s *UserService) AdjustBalance(ctx context.Context, tgID int64, delta int64, adminTgID int64) (int64, error) {
	if delta == 0 {
		return 0, domain.ErrInvalidAmount
	}
	return s.store.AdjustBalance(ctx, tgID, delta, fmt.Sprintf("admin adjustment by %d", adminTgID))
}

// Promote grants the admin role. The owner row is seeded at startup and
// never granted here.
func (s *UserService) Promote(ctx context.Context, tgID int64) error {
	if _, err := s.store.GetUser(ctx, tgID); err != nil {
		return err
	}
	return s.store.UpsertAdmin(ctx, tgID, domain.RoleAdmin)
}

// Demote revokes the admin role; the owner cannot be demoted.
func (s *UserService) Demote(ctx context.Context, tgID int64) error {
	return s.store.RemoveAdmin(ctx, tgID)
}

func (s *UserService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.store.Stats(ctx)
}
