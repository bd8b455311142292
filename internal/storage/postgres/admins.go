package postgres

import (
	"context"
	"fmt"

	"github.com/set-night/goldbot/internal/domain"
)

func (s *Store) IsAdmin(ctx context.Context, tgID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE tg_id = $1)`, tgID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}

func (s *Store) UpsertAdmin(ctx context.Context, tgID int64, role domain.AdminRole) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO admins (tg_id, role)
		VALUES ($1, $2)
		ON CONFLICT (tg_id) DO UPDATE SET role = EXCLUDED.role`, tgID, string(role))
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

func (s *Store) RemoveAdmin(ctx context.Context, tgID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM admins WHERE tg_id = $1 AND role <> 'owner'`, tgID)
	if err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	var st domain.Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE created_at >= date_trunc('day', now())),
			count(*) FILTER (WHERE created_at >= date_trunc('week', now())),
			count(*) FILTER (WHERE is_banned),
			COALESCE(sum(balance), 0),
			COALESCE(sum(completed_tasks), 0)
		FROM users`).
		Scan(&st.TotalUsers, &st.UsersToday, &st.UsersThisWeek, &st.BannedUsers,
			&st.TotalBalance, &st.CompletedTasks)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE status = 'pending'),
			COALESCE(sum(amount) FILTER (WHERE status = 'pending'), 0),
			COALESCE(sum(amount) FILTER (WHERE status = 'approved'), 0)
		FROM withdrawals`).
		Scan(&st.PendingWithdrawals, &st.PendingAmount, &st.PaidOutAmount)
	if err != nil {
		return nil, fmt.Errorf("withdrawal stats: %w", err)
	}

	return &st, nil
}
