package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/authmodel"
	"github.com/jrsteele09/go-auth-client/claims"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/renewal"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/storage/file"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Observer is notified on every logged-out/logged-in transition. It receives the
// token response that established the session, or nil on logout.
type Observer func(tr *authmodel.TokenResponse)

// SessionManager keeps a single user session authenticated. It is the only
// writer of the in-memory session and of the persisted refresh credentials, and
// the only owner of the renewal schedule.
//
// Every establishment and every logout advances an epoch. A renewal records the
// epoch before it suspends on storage or the network and discards its outcome
// if the epoch has moved, so it can neither resurrect a session that was logged
// out nor tear down one that was established after it started.
type SessionManager struct {
	endpoint      string
	transport     transport.Transport
	storage       storage.Store
	decoder       claims.Decoder
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	renewInterval time.Duration

	store     *session.Store
	scheduler *renewal.Scheduler

	// lock guards epoch, observer and pending, and serialises transitions,
	// including the storage writes that belong to them.
	lock       sync.Mutex
	epoch      uint64
	observer   Observer
	pending    []*authmodel.TokenResponse
	delivering bool

	baseCtx context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	ready   chan struct{}
}

// establishMode controls how establish treats the epoch and the schedule.
type establishMode struct {
	guarded bool   // discard if the epoch moved away from epoch
	epoch   uint64 // epoch observed when the renewal started
	restart bool   // restart the schedule even if it is already running
}

// New creates a SessionManager and starts auto-login in the background. Use
// Ready or WaitReady to learn when the initial auth state is known, and
// WithObserver to be notified of the transition auto-login may produce.
func New(cfg Config, options ...SessionManagerOption) (*SessionManager, error) {
	if _, err := transport.ParseEndpoint(cfg.Endpoint); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidEndpoint, "[auth.New] %v", err)
	}

	m := &SessionManager{
		endpoint:      cfg.Endpoint,
		storage:       cfg.Storage,
		logger:        log.Logger.With().Str("component", "auth").Logger(),
		renewInterval: renewal.DefaultInterval,
		store:         session.NewStore(),
		baseCtx:       context.Background(),
		ready:         make(chan struct{}),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.storage == nil {
		fs, err := file.OpenDefault()
		if err != nil {
			return nil, errors.Wrapf(err, "[auth.New] open default storage")
		}
		m.storage = fs
	}
	if m.transport == nil {
		t, err := transport.NewHTTP(cfg.Endpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "[auth.New] transport")
		}
		m.transport = t
	}
	if m.decoder == nil {
		m.decoder = claims.NewJWTDecoder()
	}

	m.scheduler = renewal.New(m.renewInterval, m.renewTick)
	m.ctx, m.cancel = context.WithCancel(m.baseCtx)

	go m.autoLogin()
	return m, nil
}

// Ready is closed once auto-login has resolved, successfully or not.
func (m *SessionManager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until auto-login has resolved or ctx is done.
func (m *SessionManager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops background renewal. The session and the persisted credentials are
// left as they are, so a later SessionManager can auto-login from them. After
// Close, Login returns ErrClosed and Renew reports false without side effects.
// Logout still works.
func (m *SessionManager) Close() error {
	m.cancel()
	m.scheduler.Stop()
	return nil
}

// OnAuthStateChanged registers the observer, replacing any previous one. Only
// the latest registration is notified; nil unregisters. A transition that was
// already delivered is not replayed, so register through WithObserver to
// observe auto-login.
func (m *SessionManager) OnAuthStateChanged(observer Observer) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.observer = observer
}

// Login exchanges credentials for a session. Transport errors are returned
// unchanged and leave the current session untouched.
func (m *SessionManager) Login(ctx context.Context, username, password string) error {
	if m.ctx.Err() != nil {
		return errors.Wrapf(errors.ErrClosed, "[SessionManager.Login]")
	}

	resp, err := m.transport.Request(ctx, http.MethodPost, PathLogin, authmodel.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		m.metrics.Login(metrics.ResultFailure)
		return err
	}

	tr, err := decodeTokenResponse(resp)
	if err != nil {
		m.metrics.Login(metrics.ResultFailure)
		return errors.Wrapf(err, "[SessionManager.Login]")
	}

	if err := m.establish(ctx, tr, establishMode{restart: true}); err != nil {
		m.metrics.Login(metrics.ResultFailure)
		return errors.Wrapf(err, "[SessionManager.Login]")
	}
	m.metrics.Login(metrics.ResultSuccess)
	return nil
}

// Register creates an account and returns the service's response body. It does
// not log in.
func (m *SessionManager) Register(ctx context.Context, username, password string, registerData any) (json.RawMessage, error) {
	return m.passthrough(ctx, PathRegister, authmodel.RegisterRequest{
		Username:     username,
		Password:     password,
		RegisterData: registerData,
	})
}

// ActivateAccount confirms an account with the secret token sent to the user.
func (m *SessionManager) ActivateAccount(ctx context.Context, secretToken string) (json.RawMessage, error) {
	return m.passthrough(ctx, PathActivateAccount, authmodel.ActivateAccountRequest{
		SecretToken: secretToken,
	})
}

// SetNewPassword resets the password using a secret token.
func (m *SessionManager) SetNewPassword(ctx context.Context, secretToken, password string) (json.RawMessage, error) {
	return m.passthrough(ctx, PathNewPassword, authmodel.NewPasswordRequest{
		SecretToken: secretToken,
		Password:    password,
	})
}

// Logout clears the session, the persisted credentials and the renewal
// schedule. It always returns false, the "not authenticated" result.
func (m *SessionManager) Logout(ctx context.Context) bool {
	m.lock.Lock()
	m.logoutLocked(ctx)
	m.lock.Unlock()

	m.deliver()
	return false
}

// Renew exchanges the persisted refresh token for a new access token. Any
// failure logs the session out; the error is never returned. It reports whether
// the session is still established by this call.
func (m *SessionManager) Renew(ctx context.Context) bool {
	if m.ctx.Err() != nil {
		return false
	}

	m.lock.Lock()
	epoch := m.epoch
	userID, refreshToken, err := m.readCredentials(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("no persisted credentials, logging out")
		m.logoutLocked(ctx)
		m.lock.Unlock()
		m.deliver()
		return false
	}
	m.lock.Unlock()

	resp, err := m.transport.Request(ctx, http.MethodPost, PathRefreshToken, authmodel.RefreshRequest{
		UserID:       userID,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return m.failRenewal(ctx, epoch, err)
	}

	tr, err := decodeTokenResponse(resp)
	if err != nil {
		return m.failRenewal(ctx, epoch, err)
	}

	err = m.establish(ctx, tr, establishMode{guarded: true, epoch: epoch})
	switch {
	case errors.Is(err, errors.ErrStaleRenewal), errors.Is(err, errors.ErrClosed):
		m.metrics.Renewal(metrics.ResultStale)
		m.logger.Debug().Err(err).Uint64("epoch", epoch).Msg("discarding renewal")
		return false
	case err != nil:
		return m.failRenewal(ctx, epoch, err)
	}

	m.metrics.Renewal(metrics.ResultSuccess)
	return true
}

// IsAuthenticated reports whether a session is established. It never does I/O.
func (m *SessionManager) IsAuthenticated() bool {
	return m.store.LoggedIn()
}

// Claims returns the claims of the current access token, or nil.
func (m *SessionManager) Claims() *claims.Claims {
	return m.store.Claims()
}

// AccessToken returns the current access token, or "" when logged out.
func (m *SessionManager) AccessToken() string {
	return m.store.AccessToken()
}

// Session returns a copy of the current session and whether it is logged in.
func (m *SessionManager) Session() (session.Session, bool) {
	return m.store.Snapshot()
}

// Endpoint returns the configured auth service base URL.
func (m *SessionManager) Endpoint() string {
	return m.endpoint
}

func (m *SessionManager) autoLogin() {
	defer close(m.ready)

	if m.Renew(m.ctx) {
		current, _ := m.store.Snapshot()
		m.logger.Info().Str("user_id", current.UserID).Msg("session restored from storage")
		return
	}
	m.logger.Debug().Msg("no session restored")
}

func (m *SessionManager) renewTick(ctx context.Context) {
	m.Renew(ctx)
}

// establish makes tr the active session, following the same steps for login,
// auto-login and renewal: decode, persist, update memory, notify on transition.
func (m *SessionManager) establish(ctx context.Context, tr *authmodel.TokenResponse, mode establishMode) error {
	c, err := m.decoder.Decode(ctx, tr.AccessToken)
	if err != nil {
		return errors.Wrapf(err, "[SessionManager.establish] decode access token")
	}

	m.lock.Lock()
	if mode.guarded && mode.epoch != m.epoch {
		m.lock.Unlock()
		return errors.ErrStaleRenewal
	}
	if m.ctx.Err() != nil {
		m.lock.Unlock()
		return errors.ErrClosed
	}

	if err := m.persist(ctx, tr); err != nil {
		// Storage no longer matches any session, so tear the session down.
		m.logoutLocked(ctx)
		m.lock.Unlock()
		m.deliver()
		return errors.Wrapf(err, "[SessionManager.establish] persist credentials")
	}

	m.epoch++
	becameLoggedIn := m.store.Set(tr.AccessToken, tr.UserID.String(), c)
	if mode.restart || !m.scheduler.Running() {
		m.scheduler.Start(m.ctx)
	}
	if becameLoggedIn {
		payload := *tr
		m.pending = append(m.pending, &payload)
		m.metrics.LoggedIn()
	}
	epoch := m.epoch
	m.lock.Unlock()

	m.logger.Debug().
		Str("user_id", tr.UserID.String()).
		Uint64("epoch", epoch).
		Bool("transition", becameLoggedIn).
		Time("expires_at", c.ExpiresAt()).
		Msg("session established")

	m.deliver()
	return nil
}

// failRenewal turns a renewal error into a logout unless the renewal was
// cancelled or overtaken by another transition.
func (m *SessionManager) failRenewal(ctx context.Context, epoch uint64, cause error) bool {
	if ctx.Err() != nil {
		m.metrics.Renewal(metrics.ResultStale)
		m.logger.Debug().Err(cause).Msg("renewal cancelled")
		return false
	}

	m.lock.Lock()
	if epoch != m.epoch {
		m.lock.Unlock()
		m.metrics.Renewal(metrics.ResultStale)
		m.logger.Debug().Err(cause).Uint64("epoch", epoch).Msg("discarding stale renewal failure")
		return false
	}
	m.metrics.Renewal(metrics.ResultFailure)
	m.logger.Warn().Err(cause).Msg("renewal failed, logging out")
	m.logoutLocked(ctx)
	m.lock.Unlock()

	m.deliver()
	return false
}

// logoutLocked resets every part of the session. Must be called with lock held.
func (m *SessionManager) logoutLocked(ctx context.Context) {
	m.epoch++
	wasLoggedIn := m.store.Reset()
	if err := m.storage.Clear(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear persisted credentials")
	}
	m.scheduler.Stop()

	if wasLoggedIn {
		m.pending = append(m.pending, nil)
		m.metrics.LoggedOut()
		m.logger.Info().Uint64("epoch", m.epoch).Msg("logged out")
	}
}

// persist replaces the stored credentials with those of tr. Must be called with
// lock held.
func (m *SessionManager) persist(ctx context.Context, tr *authmodel.TokenResponse) error {
	if err := m.storage.Clear(ctx); err != nil {
		return err
	}
	if err := m.storage.SetItem(ctx, storage.KeyRefreshToken, tr.RefreshToken); err != nil {
		return err
	}
	return m.storage.SetItem(ctx, storage.KeyUserID, tr.UserID.String())
}

// readCredentials loads the persisted user ID and refresh token. Must be called
// with lock held.
func (m *SessionManager) readCredentials(ctx context.Context) (userID, refreshToken string, err error) {
	userID, err = m.storage.GetItem(ctx, storage.KeyUserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn().Err(err).Msg("failed to read persisted user id")
	}
	refreshToken, err2 := m.storage.GetItem(ctx, storage.KeyRefreshToken)
	if err2 != nil && !errors.Is(err2, storage.ErrNotFound) {
		m.logger.Warn().Err(err2).Msg("failed to read persisted refresh token")
	}
	if userID == "" || refreshToken == "" {
		return "", "", errors.ErrMissingCredentials
	}
	return userID, refreshToken, nil
}

// deliver hands queued transitions to the observer in the order they happened.
// A call made while another delivery is running (including from inside the
// observer) leaves its notification to that delivery.
func (m *SessionManager) deliver() {
	m.lock.Lock()
	if m.delivering {
		m.lock.Unlock()
		return
	}
	m.delivering = true

	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		observer := m.observer
		m.lock.Unlock()

		if observer != nil {
			observer(next)
		} else {
			m.logger.Debug().Msg("no auth state change observer")
		}

		m.lock.Lock()
	}

	m.delivering = false
	m.lock.Unlock()
}

func (m *SessionManager) passthrough(ctx context.Context, path string, body any) (json.RawMessage, error) {
	resp, err := m.transport.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

func decodeTokenResponse(resp *transport.Response) (*authmodel.TokenResponse, error) {
	var tr authmodel.TokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, err
	}
	if err := tr.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}
	return &tr, nil
}
