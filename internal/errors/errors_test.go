package errors_test

import (
	"io"
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, errors.Wrapf(nil, "context %d", 1))
	})

	t.Run("wraps with context", func(t *testing.T) {
		err := errors.Wrapf(io.EOF, "[Store.Get] key %s", "userId")
		require.EqualError(t, err, "[Store.Get] key userId: EOF")
		require.True(t, errors.Is(err, io.EOF))
	})
}
