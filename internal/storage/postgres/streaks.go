package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
)

func hasSunsetSince(ctx context.Context, q querier, userID uuid.UUID, since, until time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM sunsets
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
	)`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, since, until).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sunsets for user: %w", err)
	}
	return exists, nil
}

func getStreak(ctx context.Context, q querier, userID uuid.UUID) (*streak.Streak, error) {
	query := `
	SELECT user_id, current_streak, longest_streak, created_at, updated_at
	FROM streaks
	WHERE user_id = $1`

	st := &streak.Streak{}
	err := q.QueryRow(ctx, query, userID).Scan(
		&st.UserID,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return st, nil
}

func (t *txStore) InsertSunset(ctx context.Context, s *sunset.Sunset) error {
	query := `
	INSERT INTO sunsets (id, user_id, image_url, caption, location, rating, visibility, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := t.q.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.ImageURL,
		s.Caption,
		s.Location,
		s.Rating,
		string(s.Visibility),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sunset: %w", err)
	}
	return nil
}

func (t *txStore) InsertStreak(ctx context.Context, st *streak.Streak) (bool, error) {
	query := `
	INSERT INTO streaks (user_id, current_streak, longest_streak, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id) DO NOTHING`

	tag, err := t.q.Exec(ctx, query, st.UserID, st.CurrentStreak, st.LongestStreak, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert streak: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txStore) SwapStreak(ctx context.Context, prevUpdatedAt time.Time, st *streak.Streak) (bool, error) {
	query := `
	UPDATE streaks
	SET current_streak = $2, longest_streak = $3, updated_at = $4
	WHERE user_id = $1 AND updated_at = $5`

	tag, err := t.q.Exec(ctx, query, st.UserID, st.CurrentStreak, st.LongestStreak, st.UpdatedAt, prevUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update streak: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
