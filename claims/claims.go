package claims

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// Claims is the structured record decoded from an access token. Only Exp is
// required; the remaining registered claims are filled when present.
type Claims struct {
	Exp   int64          `json:"exp"`             // Expiry, seconds since epoch
	Iat   int64          `json:"iat,omitempty"`   // Issued at, seconds since epoch
	Sub   string         `json:"sub,omitempty"`   // Subject
	Iss   string         `json:"iss,omitempty"`   // Issuer
	Roles []string       `json:"roles,omitempty"` // Roles assigned to the user
	Raw   map[string]any `json:"-"`               // Every claim as decoded
}

// ExpiresAt returns the expiry as a time.
func (c *Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// ExpiresAtMillis returns the expiry in milliseconds since epoch.
func (c *Claims) ExpiresAtMillis() int64 {
	return c.Exp * 1000
}

// Decoder parses an opaque access token into claims. Implementations do not
// validate signatures.
type Decoder interface {
	Decode(ctx context.Context, token string) (*Claims, error)
}

// fromMap builds Claims from a raw claim set, converting numeric claims the way
// encoding/json produces them.
func fromMap(raw map[string]any) (*Claims, error) {
	exp, ok := numericClaim(raw["exp"])
	if !ok {
		return nil, errors.ErrMissingExpiry
	}
	iat, _ := numericClaim(raw["iat"])
	sub, _ := raw["sub"].(string)
	iss, _ := raw["iss"].(string)

	return &Claims{
		Exp:   exp,
		Iat:   iat,
		Sub:   sub,
		Iss:   iss,
		Roles: utils.ToStringSlice(raw["roles"]),
		Raw:   raw,
	}, nil
}

func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return parsed, err == nil
	}
	return 0, false
}
