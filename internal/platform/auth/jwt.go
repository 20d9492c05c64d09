package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *jwtClaims) toToken(raw string) *Token {
	tok := &Token{
		Raw: raw,
		Claims: Claims{
			TokenID: c.ID,
			UserID:  c.Subject,
			Email:   c.Email,
			Name:    c.Name,
			Role:    c.Role,
		},
	}
	if c.ExpiresAt != nil {
		tok.ExpiresAt = c.ExpiresAt.Time
	}
	return tok
}

// Signer issues and verifies HS256 access tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue signs a fresh token for the given claims. A new jti is generated when TokenID is empty.
func (s *Signer) Issue(c Claims) (*Token, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("missing subject")
	}
	if c.TokenID == "" {
		c.TokenID = uuid.NewString()
	}
	now := s.now()
	jc := &jwtClaims{
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return jc.toToken(raw), nil
}

// Verify checks signature and expiry.
func (s *Signer) Verify(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	jc := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(raw, jc, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(jc.Subject); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return jc.toToken(raw), nil
}

// ParseUnverified decodes claims without checking the signature.
// Clients use it to read expiry and role from a token they were handed.
func ParseUnverified(raw string) (*Token, error) {
	jc := &jwtClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, jc); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return jc.toToken(raw), nil
}
