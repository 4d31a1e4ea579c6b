package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/storage/postgres"
	"sunsetCompanionAPI/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, dbURL)
		require.NoError(t, err)

		s := postgres.New(pool)
		require.NoError(t, s.Migrate(ctx))
		_, err = pool.Exec(ctx, `TRUNCATE users, sunsets, likes, comments, streaks, device_tokens CASCADE`)
		require.NoError(t, err)

		t.Cleanup(s.Close)
		return s
	})
}
