package session_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/claims"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Unix()
	c := &claims.Claims{Exp: exp, Sub: "u1"}

	s := session.NewStore()
	current, loggedIn := s.Snapshot()
	require.False(t, loggedIn)
	require.True(t, current.IsZero())
	require.Nil(t, s.Claims())

	t.Run("first set transitions", func(t *testing.T) {
		require.True(t, s.Set("t1", "u1", c))
		require.True(t, s.LoggedIn())
		require.Equal(t, "t1", s.AccessToken())

		current, _ := s.Snapshot()
		require.Equal(t, "u1", current.UserID)
		require.Equal(t, exp*1000, current.ExpiresAtMillis())
		require.Equal(t, exp*1000, current.ExpiresAt.UnixMilli())
	})

	t.Run("refresh is silent", func(t *testing.T) {
		require.False(t, s.Set("t2", "u1", &claims.Claims{Exp: exp + 300}))
		require.Equal(t, "t2", s.AccessToken())
		require.Equal(t, exp+300, s.Claims().Exp)
	})

	t.Run("reset", func(t *testing.T) {
		require.True(t, s.Reset())
		require.False(t, s.LoggedIn())
		require.Empty(t, s.AccessToken())
		require.Nil(t, s.Claims())
		require.False(t, s.Reset())
	})
}
