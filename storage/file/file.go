// Package file provides a storage.Store persisted as a single JSON document on
// disk, optionally sealed with a passphrase-derived key.
package file

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/storage"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	fileVersion = 1
	saltLength  = 16

	// argon2id parameters for deriving the sealing key
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4

	defaultAppDir   = "go-auth-client"
	defaultFileName = "session.json"
)

var (
	ErrPassphraseRequired = errors.New("store is encrypted and no passphrase was given")
	ErrDecrypt            = errors.New("unable to decrypt store, wrong passphrase or corrupt file")
)

var _ storage.Store = (*Store)(nil)

// envelope is the on-disk format. Items is set for plain stores, Salt/Nonce/Sealed
// for encrypted ones.
type envelope struct {
	Version int               `json:"version"`
	Items   map[string]string `json:"items,omitempty"`
	Salt    []byte            `json:"salt,omitempty"`
	Nonce   []byte            `json:"nonce,omitempty"`
	Sealed  []byte            `json:"sealed,omitempty"`
}

// Store keeps every item in memory and rewrites the whole file on each change.
// It assumes it is the only writer of the file.
type Store struct {
	path  string
	items map[string]string
	salt  []byte
	key   []byte
	lock  sync.RWMutex

	passphrase []byte
}

type Option func(*Store)

// WithPassphrase encrypts the file at rest with a key derived from passphrase.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		if passphrase != "" {
			s.passphrase = []byte(passphrase)
		}
	}
}

// DefaultPath returns the per-user location used when no path is configured.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("[file.DefaultPath] os.UserConfigDir: %w", err)
	}
	return filepath.Join(dir, defaultAppDir, defaultFileName), nil
}

// OpenDefault opens the store at DefaultPath.
func OpenDefault(options ...Option) (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path, options...)
}

// Open loads the store at path, creating its directory if needed. A missing
// file is an empty store; the file is only written on the first change.
func Open(path string, options ...Option) (*Store, error) {
	s := &Store{
		path:  path,
		items: make(map[string]string),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[file.Open] create directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.initKey(nil); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("[file.Open] read %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("[file.Open] decode %s: %w", path, err)
	}

	if env.Sealed == nil {
		if env.Items != nil {
			s.items = env.Items
		}
		if err := s.initKey(nil); err != nil {
			return nil, err
		}
		return s, nil
	}

	if s.passphrase == nil {
		return nil, ErrPassphraseRequired
	}
	if err := s.initKey(env.Salt); err != nil {
		return nil, err
	}
	items, err := s.open(env.Nonce, env.Sealed)
	if err != nil {
		return nil, err
	}
	s.items = items
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
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

	previous, had := s.items[key]
	s.items[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.items[key] = previous
		} else {
			delete(s.items, key)
		}
		return fmt.Errorf("[file.SetItem] %w", err)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	previous := s.items
	s.items = make(map[string]string)
	if err := s.flush(); err != nil {
		s.items = previous
		return fmt.Errorf("[file.Clear] %w", err)
	}
	return nil
}

func (s *Store) initKey(salt []byte) error {
	if s.passphrase == nil {
		return nil
	}
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("[file.initKey] rand.Read: %w", err)
		}
	}
	s.salt = salt
	s.key = argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
	return nil
}

func (s *Store) open(nonce, sealed []byte) (map[string]string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[file.open] chacha20poly1305.NewX: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	items := make(map[string]string)
	if err := json.Unmarshal(plain, &items); err != nil {
		return nil, ErrDecrypt
	}
	return items, nil
}

// flush writes the current items to a temporary file and renames it over the
// store file. Must be called with the write lock held.
func (s *Store) flush() error {
	env := envelope{Version: fileVersion}

	if s.key == nil {
		env.Items = s.items
	} else {
		plain, err := json.Marshal(s.items)
		if err != nil {
			return err
		}
		aead, err := chacha20poly1305.NewX(s.key)
		if err != nil {
			return err
		}
		nonce := make([]byte, aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return err
		}
		env.Salt = s.salt
		env.Nonce = nonce
		env.Sealed = aead.Seal(nil, nonce, plain, nil)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
