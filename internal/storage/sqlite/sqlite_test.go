package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/storage/sqlite"
	"sunsetCompanionAPI/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := sqlite.Open(":memory:")
		require.NoError(t, err)
		require.NoError(t, s.Migrate(context.Background()))
		t.Cleanup(s.Close)
		return s
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}
