package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/goldbot/internal/domain"
)

const sponsorColumns = `id, channel_ref, title, is_active, created_at`

func scanSponsors(rows pgx.Rows) ([]domain.Sponsor, error) {
	defer rows.Close()
	var out []domain.Sponsor
	for rows.Next() {
		var sp domain.Sponsor
		if err := rows.Scan(&sp.ID, &sp.ChannelRef, &sp.Title, &sp.IsActive, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sponsor: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *Store) CreateSponsor(ctx context.Context, channelRef, title string) (*domain.Sponsor, error) {
	var sp domain.Sponsor
	err := s.db.QueryRow(ctx, `
		INSERT INTO sponsors (channel_ref, title)
		VALUES ($1, $2)
		RETURNING `+sponsorColumns, channelRef, title).
		Scan(&sp.ID, &sp.ChannelRef, &sp.Title, &sp.IsActive, &sp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create sponsor: %w", err)
	}
	return &sp, nil
}

func (s *Store) ListSponsors(ctx context.Context) ([]domain.Sponsor, error) {
	rows, err := s.db.Query(ctx, `SELECT `+sponsorColumns+` FROM sponsors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return scanSponsors(rows)
}

// ListActiveSponsors returns active sponsors in insertion order, which is
// the order membership checks run in.
func (s *Store) ListActiveSponsors(ctx context.Context) ([]domain.Sponsor, error) {
	rows, err := s.db.Query(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active sponsors: %w", err)
	}
	return scanSponsors(rows)
}

func (s *Store) SetSponsorActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE sponsors SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set sponsor active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSponsorNotFound
	}
	return nil
}
