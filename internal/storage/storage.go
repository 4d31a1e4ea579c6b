// Package storage defines the persistence contract shared by the Postgres
// and SQLite drivers.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/streak"
	"sunsetCompanionAPI/internal/sunset"
	"sunsetCompanionAPI/internal/user"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Queries are the reads available both on the store and inside a
// transaction.
type Queries interface {
	// HasSunsetSince reports whether userID created a sunset in [since, until].
	HasSunsetSince(ctx context.Context, userID uuid.UUID, since, until time.Time) (bool, error)
	// GetStreak returns nil without error when the user has no streak yet.
	GetStreak(ctx context.Context, userID uuid.UUID) (*streak.Streak, error)
}

// Tx is the write path of a sunset post and its streak update.
type Tx interface {
	Queries
	InsertSunset(ctx context.Context, s *sunset.Sunset) error
	// InsertStreak creates the first streak record. It reports false
	// without error when a record for the user already exists.
	InsertStreak(ctx context.Context, st *streak.Streak) (bool, error)
	// SwapStreak overwrites the record only if its updated_at still equals
	// prevUpdatedAt, reporting whether the write happened.
	SwapStreak(ctx context.Context, prevUpdatedAt time.Time, st *streak.Streak) (bool, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	UpdateUserByClerkID(ctx context.Context, clerkID string, name string, avatarURL *string) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

type SunsetStore interface {
	GetSunset(ctx context.Context, id uuid.UUID) (*sunset.Sunset, error)
	ListSunsetsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*sunset.Sunset, error)
	CountSunsetsByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ListPublicSunsets(ctx context.Context, limit int) ([]*sunset.Sunset, error)
	// DeleteSunset removes the sunset with its likes and comments.
	DeleteSunset(ctx context.Context, id uuid.UUID) error

	ListLikes(ctx context.Context, sunsetIDs []uuid.UUID) ([]sunset.Like, error)
	ToggleLike(ctx context.Context, userID, sunsetID uuid.UUID, now time.Time) (bool, int, error)

	InsertComment(ctx context.Context, c *sunset.Comment) error
	ListComments(ctx context.Context, sunsetID uuid.UUID) ([]sunset.Comment, error)
	// ListRecentComments returns at most perSunset newest comments for each
	// sunset, newest first.
	ListRecentComments(ctx context.Context, sunsetIDs []uuid.UUID, perSunset int) ([]sunset.Comment, error)
}

type DeviceStore interface {
	UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
}

type Store interface {
	Queries
	UserStore
	SunsetStore
	DeviceStore

	// InTx runs fn in one transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close()
}
