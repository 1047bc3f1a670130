package claims

import (
	"context"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

var _ Decoder = JWTDecoder{}

// JWTDecoder reads the payload of a JWT without verifying its signature.
type JWTDecoder struct{}

func NewJWTDecoder() JWTDecoder {
	return JWTDecoder{}
}

func (JWTDecoder) Decode(_ context.Context, token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.ErrInvalidToken
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "[JWTDecoder.Decode] %v", err)
	}

	mapClaims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "[JWTDecoder.Decode] error extracting claims")
	}

	c, err := fromMap(mapClaims)
	if err != nil {
		return nil, errors.Wrapf(err, "[JWTDecoder.Decode]")
	}
	return c, nil
}
