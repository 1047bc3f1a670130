package authmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TokenResponse is returned by both /auth/login and /auth/refetch-token.
// It is also the payload handed to the auth state observer.
type TokenResponse struct {
	// AccessToken is the short-lived JWT proving the current authentication.
	AccessToken string `json:"accessToken"`

	// RefreshToken is the long-lived opaque credential exchanged for a new
	// access token. It is persisted, never kept in the in-memory session.
	RefreshToken string `json:"refreshToken"`

	// UserID identifies the authenticated principal.
	UserID UserID `json:"userId"`
}

// Validate reports whether the response carries everything needed to
// establish a session.
func (tr *TokenResponse) Validate() error {
	switch {
	case tr.AccessToken == "":
		return fmt.Errorf("token response missing accessToken")
	case tr.RefreshToken == "":
		return fmt.Errorf("token response missing refreshToken")
	case tr.UserID == "":
		return fmt.Errorf("token response missing userId")
	}
	return nil
}

// UserID is the string form of a user identifier. Services may send it as a
// JSON string or a JSON number.
type UserID string

func (u UserID) String() string {
	return string(u)
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("userId must be a string or number: %w", err)
	}
	*u = UserID(n.String())
	return nil
}
