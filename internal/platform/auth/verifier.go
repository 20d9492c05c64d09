package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RevocationChecker reports whether a token id has been revoked server-side.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Verifier checks inbound bearer tokens and caches positive results briefly,
// so the revocation lookup is not paid on every request.
type Verifier struct {
	signer  *Signer
	revoked RevocationChecker
	cache   *expirable.LRU[string, *Token]
}

func NewVerifier(signer *Signer, revoked RevocationChecker, size int, ttl time.Duration) *Verifier {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Verifier{
		signer:  signer,
		revoked: revoked,
		cache:   expirable.NewLRU[string, *Token](size, nil, ttl),
	}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*Token, error) {
	if tok, ok := v.cache.Get(raw); ok {
		if !tok.Expired(v.signer.now(), 0) {
			return tok, nil
		}
		v.cache.Remove(raw)
	}
	tok, err := v.signer.Verify(raw)
	if err != nil {
		return nil, err
	}
	if v.revoked != nil && tok.Claims.TokenID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, tok.Claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}
	v.cache.Add(raw, tok)
	return tok, nil
}

// Forget drops a token from the cache; call it after revoking.
func (v *Verifier) Forget(raw string) {
	v.cache.Remove(raw)
}
