package session

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/claims"
)

// Session is the in-memory view of the authenticated user. The refresh token
// lives only in persistent storage.
type Session struct {
	AccessToken string         // Short-lived access token (JWT)
	UserID      string         // Authenticated principal
	ExpiresAt   time.Time      // Derived from Claims.Exp
	Claims      *claims.Claims // Decoded from AccessToken
}

// ExpiresAtMillis returns the expiry in milliseconds since epoch, or 0 for an
// empty session.
func (s Session) ExpiresAtMillis() int64 {
	if s.Claims == nil {
		return 0
	}
	return s.Claims.ExpiresAtMillis()
}

// IsZero reports whether the session holds no credentials.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.UserID == "" && s.Claims == nil
}

// Store holds the current session and the logged-in flag. Only the session
// manager writes to it; readers may call from any goroutine.
type Store struct {
	current  Session
	loggedIn bool
	lock     sync.RWMutex
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the session contents and marks it logged in. It reports whether
// this was a transition from logged out.
func (s *Store) Set(accessToken, userID string, c *claims.Claims) (becameLoggedIn bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current = Session{
		AccessToken: accessToken,
		UserID:      userID,
		ExpiresAt:   time.UnixMilli(c.ExpiresAtMillis()),
		Claims:      c,
	}
	becameLoggedIn = !s.loggedIn
	s.loggedIn = true
	return becameLoggedIn
}

// Reset empties the session. It reports whether the session was logged in.
func (s *Store) Reset() (wasLoggedIn bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	wasLoggedIn = s.loggedIn
	s.current = Session{}
	s.loggedIn = false
	return wasLoggedIn
}

// Snapshot returns a copy of the session and whether it is logged in.
func (s *Store) Snapshot() (Session, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current, s.loggedIn
}

func (s *Store) LoggedIn() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loggedIn
}

func (s *Store) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.AccessToken
}

func (s *Store) Claims() *claims.Claims {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.Claims
}
