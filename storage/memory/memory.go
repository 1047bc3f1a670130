package memory

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is an in-memory storage.Store. Values do not survive the process, so it
// is mostly useful in tests and for sessions that must not be persisted.
type Store struct {
	items map[string]string
	lock  sync.RWMutex
}

func New() *Store {
	return &Store{
		items: make(map[string]string),
	}
}

// NewWithItems creates a store pre-populated with items.
func NewWithItems(items map[string]string) *Store {
	s := New()
	for k, v := range items {
		s.items[k] = v
	}
	return s
}

func (s *Store) GetItem(_ context.Context, key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.items[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.items[key] = value
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.items = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.items)
}
