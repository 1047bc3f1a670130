package auth

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/transport"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*SessionManager)(nil)

// Token implements oauth2.TokenSource with the current access token. It never
// triggers a renewal; that is left to the background schedule.
func (m *SessionManager) Token() (*oauth2.Token, error) {
	current, loggedIn := m.store.Snapshot()
	if !loggedIn {
		return nil, errors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: current.AccessToken,
		TokenType:   "Bearer",
		Expiry:      current.ExpiresAt,
	}, nil
}

// HTTPClient returns a client that sends the current access token as a Bearer
// header on every request. The token is read per request, so renewals and
// logouts take effect immediately. Requests made while logged out fail with
// ErrNotAuthenticated.
func (m *SessionManager) HTTPClient() *http.Client {
	base := http.DefaultTransport
	var jar http.CookieJar
	if ht, ok := m.transport.(*transport.HTTPTransport); ok {
		if rt := ht.Client().Transport; rt != nil {
			base = rt
		}
		jar = ht.Client().Jar
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: m,
			Base:   base,
		},
		Jar: jar,
	}
}
