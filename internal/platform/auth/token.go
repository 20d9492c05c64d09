package auth

import (
	"context"
	"time"
)

const RoleAdmin = "admin"

// Claims is the identity carried inside an access token.
type Claims struct {
	TokenID string `json:"jti,omitempty"`
	UserID  string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
}

type Token struct {
	Raw       string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	Claims    Claims    `json:"claims"`
}

func (t *Token) IsAdmin() bool { return t != nil && t.Claims.Role == RoleAdmin }

// Expired reports whether the token is past (or within skew of) its expiry.
// Tokens without an expiry never expire.
func (t *Token) Expired(now time.Time, skew time.Duration) bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(t.ExpiresAt)
}

// TokenSource yields the bearer credential for outbound calls.
// A nil token with a nil error means there is no signed-in session.
// forceRefresh bypasses any cached credential.
type TokenSource interface {
	Token(ctx context.Context, forceRefresh bool) (*Token, error)
}

type staticToken struct {
	tok *Token
}

// StaticToken wraps a raw bearer string. An empty string yields no token.
// The claims are decoded without verification for display only.
func StaticToken(raw string) TokenSource {
	if raw == "" {
		return &staticToken{}
	}
	tok, err := ParseUnverified(raw)
	if err != nil {
		tok = &Token{Raw: raw}
	}
	return &staticToken{tok: tok}
}

func (s *staticToken) Token(ctx context.Context, forceRefresh bool) (*Token, error) {
	return s.tok, nil
}
