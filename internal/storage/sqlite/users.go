package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/user"
)

const userColumns = `id, clerk_id, email, name, avatar_url, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*user.User, error) {
	u := &user.User{}
	var hash sql.NullString
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Name,
		&u.AvatarURL,
		&hash,
		microTime{&u.CreatedAt},
		microTime{&u.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash.String
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (id, clerk_id, email, name, avatar_url, password_hash, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	hash := sql.NullString{String: u.PasswordHash, Valid: u.PasswordHash != ""}
	_, err := s.db.ExecContext(ctx, query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Name,
		u.AvatarURL,
		hash,
		micro(u.CreatedAt),
		micro(u.UpdatedAt),
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

	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.getUser(ctx, "clerk_id = ?", clerkID)
}

func (s *Store) UpdateUserByClerkID(ctx context.Context, clerkID string, name string, avatarURL *string) (*user.User, error) {
	query := `
	UPDATE users
	SET name = ?, avatar_url = ?, updated_at = ?
	WHERE clerk_id = ?`

	res, err := s.db.ExecContext(ctx, query, name, avatarURL, micro(time.Now()), clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, storage.ErrNotFound
	}
	return s.GetUserByClerkID(ctx, clerkID)
}

func (s *Store) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE clerk_id = ?`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
