// Package sqlite implements storage.Store on an embedded SQLite database.
// Timestamps are stored as UTC unix microseconds.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/streak"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens the database at path. Use ":memory:" for a throwaway store.
// A single connection keeps writers serialized and in-memory data alive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users(
			id TEXT PRIMARY KEY,
			clerk_id TEXT UNIQUE,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT,
			password_hash TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sunsets(
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL,
			caption TEXT,
			location TEXT,
			rating INTEGER CHECK(rating BETWEEN 1 AND 5),
			visibility TEXT NOT NULL DEFAULT 'public' CHECK(visibility IN ('public','private')),
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sunsets_user_created ON sunsets(user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS likes(
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sunset_id TEXT NOT NULL REFERENCES sunsets(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			PRIMARY KEY(user_id, sunset_id)
		);`,
		`CREATE TABLE IF NOT EXISTS comments(
			id TEXT PRIMARY KEY,
			sunset_id TEXT NOT NULL REFERENCES sunsets(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_sunset_created ON comments(sunset_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS streaks(
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			current_streak INTEGER NOT NULL DEFAULT 0 CHECK(current_streak >= 0),
			longest_streak INTEGER NOT NULL DEFAULT 0 CHECK(longest_streak >= 0),
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS device_tokens(
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			platform TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) HasSunsetSince(ctx context.Context, userID uuid.UUID, since, until time.Time) (bool, error) {
	return hasSunsetSince(ctx, s.db, userID, since, until)
}

func (s *Store) GetStreak(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	return getStreak(ctx, s.db, userID)
}

type txStore struct {
	q *sql.Tx
}

func (t *txStore) HasSunsetSince(ctx context.Context, userID uuid.UUID, since, until time.Time) (bool, error) {
	return hasSunsetSince(ctx, t.q, userID, since, until)
}

func (t *txStore) GetStreak(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	return getStreak(ctx, t.q, userID)
}

// microTime scans an INTEGER unix-microsecond column into a time.Time.
type microTime struct {
	dst *time.Time
}

func (m microTime) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*m.dst = time.UnixMicro(v).UTC()
	case nil:
		*m.dst = time.Time{}
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func micro(t time.Time) int64 {
	return t.UnixMicro()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// inClause returns "(?,?,...)" and the matching args for ids.
func inClause(ids []uuid.UUID) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id.String()
	}
	return "(" + strings.Join(marks, ",") + ")", args
}
