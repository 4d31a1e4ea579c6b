package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
)

func hasSunsetSince(ctx context.Context, q querier, userID uuid.UUID, since, until time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM sunsets
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?
	)`

	var exists bool
	if err := q.QueryRowContext(ctx, query, userID, micro(since), micro(until)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sunsets for user: %w", err)
	}
	return exists, nil
}

func getStreak(ctx context.Context, q querier, userID uuid.UUID) (*streak.Streak, error) {
	query := `
	SELECT user_id, current_streak, longest_streak, created_at, updated_at
	FROM streaks
	WHERE user_id = ?`

	st := &streak.Streak{}
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&st.UserID,
		&st.CurrentStreak,
		&st.LongestStreak,
		microTime{&st.CreatedAt},
		microTime{&st.UpdatedAt},
	)
	if errors.Is(err, sql.ErrNoRows) {
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
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.q.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.ImageURL,
		s.Caption,
		s.Location,
		s.Rating,
		string(s.Visibility),
		micro(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sunset: %w", err)
	}
	return nil
}

func (t *txStore) InsertStreak(ctx context.Context, st *streak.Streak) (bool, error) {
	query := `
	INSERT INTO streaks (user_id, current_streak, longest_streak, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO NOTHING`

	res, err := t.q.ExecContext(ctx, query, st.UserID, st.CurrentStreak, st.LongestStreak, micro(st.CreatedAt), micro(st.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to insert streak: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *txStore) SwapStreak(ctx context.Context, prevUpdatedAt time.Time, st *streak.Streak) (bool, error) {
	query := `
	UPDATE streaks
	SET current_streak = ?, longest_streak = ?, updated_at = ?
	WHERE user_id = ? AND updated_at = ?`

	res, err := t.q.ExecContext(ctx, query, st.CurrentStreak, st.LongestStreak, micro(st.UpdatedAt), st.UserID, micro(prevUpdatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to update streak: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
