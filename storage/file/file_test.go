package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/storage/file"
	"github.com/stretchr/testify/require"
)

func TestStore_Plain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := file.Open(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())

	_, err = s.GetItem(ctx, storage.KeyUserID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SetItem(ctx, storage.KeyUserID, "u1"))
	require.NoError(t, s.SetItem(ctx, storage.KeyRefreshToken, "r1"))

	t.Run("survives reopen", func(t *testing.T) {
		reopened, err := file.Open(path)
		require.NoError(t, err)

		v, err := reopened.GetItem(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "r1", v)
	})

	t.Run("file is private", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("clear persists", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx))

		reopened, err := file.Open(path)
		require.NoError(t, err)
		_, err = reopened.GetItem(ctx, storage.KeyUserID)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := file.Open(path, file.WithPassphrase("correct horse"))
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, storage.KeyRefreshToken, "secret-refresh-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-refresh-token")

	t.Run("right passphrase", func(t *testing.T) {
		reopened, err := file.Open(path, file.WithPassphrase("correct horse"))
		require.NoError(t, err)
		v, err := reopened.GetItem(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "secret-refresh-token", v)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := file.Open(path, file.WithPassphrase("battery staple"))
		require.ErrorIs(t, err, file.ErrDecrypt)
	})

	t.Run("no passphrase", func(t *testing.T) {
		_, err := file.Open(path)
		require.ErrorIs(t, err, file.ErrPassphraseRequired)
	})
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := file.Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[file.Open] decode")
}
