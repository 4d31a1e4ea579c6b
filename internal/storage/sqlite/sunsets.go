package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/sunset"
)

const sunsetSelect = `
	SELECT
		s.id, s.user_id, s.image_url, s.caption, s.location, s.rating, s.visibility, s.created_at,
		(SELECT COUNT(*) FROM likes l WHERE l.sunset_id = s.id) AS like_count,
		(SELECT COUNT(*) FROM comments c WHERE c.sunset_id = s.id) AS comment_count,
		u.id, u.name, u.email, u.avatar_url
	FROM sunsets s
	JOIN users u ON u.id = s.user_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSunset(row scanner) (*sunset.Sunset, error) {
	s := &sunset.Sunset{User: &sunset.Author{}}
	var visibility string
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.ImageURL,
		&s.Caption,
		&s.Location,
		&s.Rating,
		&visibility,
		microTime{&s.CreatedAt},
		&s.LikeCount,
		&s.CommentCount,
		&s.User.ID,
		&s.User.Name,
		&s.User.Email,
		&s.User.Avatar,
	)
	if err != nil {
		return nil, err
	}
	s.Visibility = sunset.Visibility(visibility)
	return s, nil
}

func collectSunsets(rows *sql.Rows) ([]*sunset.Sunset, error) {
	defer rows.Close()

	sunsets := []*sunset.Sunset{}
	for rows.Next() {
		s, err := scanSunset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sunset: %w", err)
		}
		sunsets = append(sunsets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sunsets: %w", err)
	}
	return sunsets, nil
}

func (s *Store) GetSunset(ctx context.Context, id uuid.UUID) (*sunset.Sunset, error) {
	out, err := scanSunset(s.db.QueryRowContext(ctx, sunsetSelect+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sunset: %w", err)
	}
	return out, nil
}

func (s *Store) ListSunsetsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*sunset.Sunset, error) {
	query := sunsetSelect + `
	WHERE s.user_id = ?
	ORDER BY s.created_at DESC, s.id DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sunsets: %w", err)
	}
	return collectSunsets(rows)
}

func (s *Store) CountSunsetsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sunsets WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count sunsets: %w", err)
	}
	return total, nil
}

func (s *Store) ListPublicSunsets(ctx context.Context, limit int) ([]*sunset.Sunset, error) {
	query := sunsetSelect + `
	WHERE s.visibility = 'public'
	ORDER BY s.created_at DESC, s.id DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public sunsets: %w", err)
	}
	return collectSunsets(rows)
}

func (s *Store) DeleteSunset(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE sunset_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE sunset_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sunsets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sunset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

func (s *Store) ListLikes(ctx context.Context, sunsetIDs []uuid.UUID) ([]sunset.Like, error) {
	likes := []sunset.Like{}
	if len(sunsetIDs) == 0 {
		return likes, nil
	}

	in, args := inClause(sunsetIDs)
	query := `
	SELECT l.sunset_id, l.user_id, l.created_at, u.name, u.email, u.avatar_url
	FROM likes l
	JOIN users u ON u.id = l.user_id
	WHERE l.sunset_id IN ` + in + `
	ORDER BY l.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l sunset.Like
		a := &sunset.Author{}
		if err := rows.Scan(&l.SunsetID, &l.UserID, microTime{&l.CreatedAt}, &a.Name, &a.Email, &a.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		a.ID = l.UserID
		l.User = a
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (s *Store) ToggleLike(ctx context.Context, userID, sunsetID uuid.UUID, now time.Time) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND sunset_id = ?`, userID, sunsetID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to remove like: %w", err)
	}

	liked := false
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO likes (user_id, sunset_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, sunset_id) DO NOTHING`, userID, sunsetID, micro(now))
		if err != nil {
			return false, 0, fmt.Errorf("failed to add like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE sunset_id = ?`, sunsetID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit like: %w", err)
	}
	return liked, count, nil
}

func (s *Store) InsertComment(ctx context.Context, c *sunset.Comment) error {
	query := `
	INSERT INTO comments (id, sunset_id, user_id, body, created_at)
	VALUES (?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, c.ID, c.SunsetID, c.UserID, c.Body, micro(c.CreatedAt)); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func collectComments(rows *sql.Rows) ([]sunset.Comment, error) {
	defer rows.Close()

	comments := []sunset.Comment{}
	for rows.Next() {
		var c sunset.Comment
		a := &sunset.Author{}
		if err := rows.Scan(&c.ID, &c.SunsetID, &c.UserID, &c.Body, microTime{&c.CreatedAt}, &a.Name, &a.Email, &a.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		a.ID = c.UserID
		c.User = a
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

func (s *Store) ListComments(ctx context.Context, sunsetID uuid.UUID) ([]sunset.Comment, error) {
	query := `
	SELECT c.id, c.sunset_id, c.user_id, c.body, c.created_at, u.name, u.email, u.avatar_url
	FROM comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.sunset_id = ?
	ORDER BY c.created_at ASC, c.id ASC`

	rows, err := s.db.QueryContext(ctx, query, sunsetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return collectComments(rows)
}

func (s *Store) ListRecentComments(ctx context.Context, sunsetIDs []uuid.UUID, perSunset int) ([]sunset.Comment, error) {
	if len(sunsetIDs) == 0 || perSunset <= 0 {
		return []sunset.Comment{}, nil
	}

	in, args := inClause(sunsetIDs)
	query := `
	SELECT id, sunset_id, user_id, body, created_at, name, email, avatar_url
	FROM (
		SELECT c.id, c.sunset_id, c.user_id, c.body, c.created_at, u.name, u.email, u.avatar_url,
			ROW_NUMBER() OVER (PARTITION BY c.sunset_id ORDER BY c.created_at DESC, c.id DESC) AS rn
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.sunset_id IN ` + in + `
	) ranked
	WHERE rn <= ?
	ORDER BY sunset_id, created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, append(args, perSunset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent comments: %w", err)
	}
	return collectComments(rows)
}
