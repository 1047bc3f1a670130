package config

import "time"

const (
	endpointVar      = "AUTH_ENDPOINT"
	renewIntervalVar = "RENEW_INTERVAL"
	decoderVar       = "TOKEN_DECODER"
	issuerVar        = "TOKEN_ISSUER"
	usernameVar      = "AUTH_USERNAME"
	passwordVar      = "AUTH_PASSWORD"

	DecoderJWT  = "jwt"
	DecoderOIDC = "oidc"

	defaultRenewInterval = 5 * time.Minute
)

type Session struct {
	values *FileValues
}

var _ SessionConfig = Session{}

func (s Session) GetEndpoint() string {
	return lookup(endpointVar, s.values.Session.Endpoint, "http://localhost:8080")
}

// GetRenewInterval parses a Go duration such as "5m". Invalid or non-positive
// values yield the 5 minute default.
func (s Session) GetRenewInterval() time.Duration {
	raw := lookup(renewIntervalVar, s.values.Session.RenewInterval, "")
	if raw == "" {
		return defaultRenewInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultRenewInterval
	}
	return d
}

// GetDecoder returns "jwt" or "oidc".
func (s Session) GetDecoder() string {
	return lookup(decoderVar, s.values.Session.Decoder, DecoderJWT)
}

func (s Session) GetIssuer() string {
	return lookup(issuerVar, s.values.Session.Issuer, "")
}

func (s Session) GetUsername() string {
	return lookup(usernameVar, s.values.Session.Username, "")
}

func (s Session) GetPassword() string {
	return lookup(passwordVar, s.values.Session.Password, "")
}
