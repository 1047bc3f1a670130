package storage

import (
	"context"
	"errors"
)

// Keys under which the session manager persists refresh credentials. They are
// always written together and cleared together.
const (
	KeyUserID       = "userId"
	KeyRefreshToken = "refreshToken"
)

// ErrNotFound is returned by GetItem when the key has no value.
var ErrNotFound = errors.New("not found")

// Store is a durable key/value store that survives process restarts.
type Store interface {
	// GetItem returns the value stored under key, or ErrNotFound
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, replacing any previous value
	SetItem(ctx context.Context, key, value string) error

	// Clear removes every key
	Clear(ctx context.Context) error
}
