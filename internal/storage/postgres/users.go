package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/user"
)

const userColumns = `id, clerk_id, email, name, avatar_url, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	var hash *string
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Name,
		&u.AvatarURL,
		&hash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	return u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (id, clerk_id, email, name, avatar_url, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.Exec(ctx, query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Name,
		u.AvatarURL,
		nullable(u.PasswordHash),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	u, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.getUser(ctx, "clerk_id = $1", clerkID)
}

func (s *Store) UpdateUserByClerkID(ctx context.Context, clerkID string, name string, avatarURL *string) (*user.User, error) {
	query := `
	UPDATE users
	SET name = $2, avatar_url = $3, updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID, name, avatarURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *Store) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
