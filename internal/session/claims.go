package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoAccessToken is returned by Claims when nobody is signed in.
var ErrNoAccessToken = errors.New("session: no access token")

// AccessClaims is what the client can read from its own access token. The
// signature is NOT verified; the values are for display only.
type AccessClaims struct {
	UserID    string
	TokenType string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token's exp is at or before now.
func (c AccessClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Claims decodes the current access token without verifying it.
func (s *Store) Claims() (AccessClaims, error) {
	access, ok := s.Access()
	if !ok {
		return AccessClaims{}, ErrNoAccessToken
	}
	return ParseClaims(access)
}

// ParseClaims decodes a JWT access token without verifying its signature.
func ParseClaims(token string) (AccessClaims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return AccessClaims{}, fmt.Errorf("session: parse access token: %w", err)
	}

	var c AccessClaims
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	switch v := mc["user_id"].(type) {
	case string:
		c.UserID = v
	case float64:
		c.UserID = fmt.Sprintf("%.0f", v)
	}
	if tt, ok := mc["token_type"].(string); ok {
		c.TokenType = tt
	}
	return c, nil
}
