package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-client/claims"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/rs/zerolog"
)

// Config holds the settings recognised at construction.
type Config struct {
	// Endpoint is the base URL of the auth service (required).
	Endpoint string

	// Storage persists refresh credentials across restarts. Defaults to a file
	// store in the user's config directory.
	Storage storage.Store
}

// SessionManagerOption defines a function type to modify the SessionManager instance.
type SessionManagerOption func(*SessionManager)

// WithTransport replaces the HTTP transport built from Config.Endpoint.
func WithTransport(t transport.Transport) SessionManagerOption {
	return func(m *SessionManager) {
		m.transport = t
	}
}

// WithDecoder sets the access token decoder. Defaults to claims.JWTDecoder.
func WithDecoder(d claims.Decoder) SessionManagerOption {
	return func(m *SessionManager) {
		m.decoder = d
	}
}

// WithObserver registers the auth state observer before auto-login starts, so
// the transition it produces is never missed. OnAuthStateChanged can replace it
// later.
func WithObserver(observer Observer) SessionManagerOption {
	return func(m *SessionManager) {
		m.observer = observer
	}
}

func WithLogger(logger zerolog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

// WithRenewInterval sets the period between background renewals.
func WithRenewInterval(interval time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		m.renewInterval = interval
	}
}

func WithMetrics(mt *metrics.Metrics) SessionManagerOption {
	return func(m *SessionManager) {
		m.metrics = mt
	}
}

// WithContext sets the parent of the context used for auto-login and
// background renewal. Cancelling it has the same effect as Close.
func WithContext(ctx context.Context) SessionManagerOption {
	return func(m *SessionManager) {
		m.baseCtx = ctx
	}
}
