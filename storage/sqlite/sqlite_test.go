package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)

	_, err = s.GetItem(ctx, storage.KeyUserID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SetItem(ctx, storage.KeyUserID, "u1"))
	require.NoError(t, s.SetItem(ctx, storage.KeyUserID, "u2"))
	require.NoError(t, s.SetItem(ctx, storage.KeyRefreshToken, "r2"))

	v, err := s.GetItem(ctx, storage.KeyUserID)
	require.NoError(t, err)
	require.Equal(t, "u2", v)
	require.NoError(t, s.Close())

	t.Run("survives reopen", func(t *testing.T) {
		reopened, err := sqlite.Open(ctx, path)
		require.NoError(t, err)
		t.Cleanup(func() { reopened.Close() })

		v, err := reopened.GetItem(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "r2", v)

		require.NoError(t, reopened.Clear(ctx))
		_, err = reopened.GetItem(ctx, storage.KeyRefreshToken)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
