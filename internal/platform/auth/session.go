package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

// ErrSessionRevoked is returned by a Refresher when the server no longer honours the current token.
var ErrSessionRevoked = errors.New("session revoked")

// Refresher exchanges the current token for a fresh one carrying up-to-date claims.
type Refresher interface {
	Refresh(ctx context.Context, current *Token) (*Token, error)
}

type RefresherFunc func(ctx context.Context, current *Token) (*Token, error)

func (f RefresherFunc) Refresh(ctx context.Context, current *Token) (*Token, error) {
	return f(ctx, current)
}

// Session is the signed-in state of one client. It is the single place where the
// current identity lives; observers are told whenever it changes.
type Session struct {
	mu        sync.Mutex
	log       *logger.Logger
	store     SessionStore
	refresher Refresher
	skew      time.Duration
	now       func() time.Time

	loaded  bool
	current *Token

	nextSub int
	subs    map[int]func(*Claims)
}

func NewSession(store SessionStore, refresher Refresher, log *logger.Logger) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{
		log:       log.With("component", "AuthSession"),
		store:     store,
		refresher: refresher,
		skew:      30 * time.Second,
		now:       time.Now,
		subs:      map[int]func(*Claims){},
	}
}

// SetRefresher installs the refresher after construction, for clients that need the session to build it.
func (s *Session) SetRefresher(r Refresher) {
	s.mu.Lock()
	s.refresher = r
	s.mu.Unlock()
}

// Subscribe registers fn for identity changes; nil means signed out.
// fn is called once immediately with the current identity.
func (s *Session) Subscribe(fn func(*Claims)) func() {
	s.mu.Lock()
	s.loadLocked()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	cur := claimsOf(s.current)
	s.mu.Unlock()

	fn(cur)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Current returns the identity of the signed-in user, or nil.
func (s *Session) Current() *Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return claimsOf(s.current)
}

func (s *Session) SignIn(tok *Token) error {
	if tok == nil || tok.Raw == "" {
		return fmt.Errorf("empty token")
	}
	s.mu.Lock()
	s.loaded = true
	s.current = tok
	err := s.store.Save(tok)
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, claimsOf(tok))
	return err
}

func (s *Session) SignOut() error {
	s.mu.Lock()
	s.loaded = true
	s.current = nil
	err := s.store.Clear()
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, nil)
	return err
}

// Token returns the current bearer token, refreshing it when forced or near expiry.
// With no session, or an expired token that cannot be refreshed, it returns (nil, nil).
func (s *Session) Token(ctx context.Context, forceRefresh bool) (*Token, error) {
	s.mu.Lock()
	s.loadLocked()
	cur := s.current
	refresher := s.refresher
	now := s.now()
	s.mu.Unlock()

	if cur == nil {
		return nil, nil
	}
	expired := cur.Expired(now, s.skew)
	if !forceRefresh && !expired {
		return cur, nil
	}
	if refresher == nil {
		if expired {
			s.log.Info("session expired, signing out")
			_ = s.SignOut()
			return nil, nil
		}
		return cur, nil
	}

	fresh, err := refresher.Refresh(ctx, cur)
	if err != nil {
		if errors.Is(err, ErrSessionRevoked) || errors.Is(err, ErrInvalidToken) {
			s.log.Info("session no longer valid, signing out")
			_ = s.SignOut()
			return nil, nil
		}
		if !cur.Expired(s.now(), 0) {
			s.log.Warn("token refresh failed, using cached token", "error", err)
			return cur, nil
		}
		// Keep the stored session for a later retry, but proceed without a credential now.
		s.log.Warn("token refresh failed and cached token expired, proceeding without credential", "error", err)
		return nil, nil
	}
	if fresh == nil || fresh.Raw == "" {
		_ = s.SignOut()
		return nil, nil
	}
	if err := s.SignIn(fresh); err != nil {
		s.log.Warn("persist refreshed token failed", "error", err)
	}
	return fresh, nil
}

func (s *Session) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	tok, err := s.store.Load()
	if err != nil {
		s.log.Warn("load session failed", "error", err)
		return
	}
	s.current = tok
}

func (s *Session) snapshotLocked() []func(*Claims) {
	out := make([]func(*Claims), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(*Claims), c *Claims) {
	for _, fn := range subs {
		fn(c)
	}
}

func claimsOf(t *Token) *Claims {
	if t == nil {
		return nil
	}
	c := t.Claims
	return &c
}
