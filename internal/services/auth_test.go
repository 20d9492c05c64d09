package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	"github.com/yungbote/trustlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/trustlens-backend/internal/domain/user"
	pkgerrors "github.com/yungbote/trustlens-backend/internal/pkg/errors"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
)

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tokens := repos.NewUserTokenRepo(db, log)
	signer := auth.NewSigner("test-secret", time.Hour)
	verifier := auth.NewVerifier(signer, tokens, 64, time.Minute)
	return NewAuthService(db, log, repos.NewUserRepo(db, log), tokens, signer, verifier)
}

func TestRegisterValidatesAndRejectsDuplicates(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	bad := [][3]string{
		{"", "a@example.com", "password1"},
		{"Ann", "not-an-email", "password1"},
		{"Ann", "a@example.com", "short"},
	}
	for _, in := range bad {
		if _, err := svc.RegisterUser(ctx, in[0], in[1], in[2]); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("%v: expected invalid argument, got %v", in, err)
		}
	}

	u, err := svc.RegisterUser(ctx, "Ann", "  Ann@Example.com ", "password1")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if u.Email != "ann@example.com" || u.Role != user.RoleUser || u.Password == "password1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	_, err = svc.RegisterUser(ctx, "Ann", "ann@example.com", "password1")
	if !errors.Is(err, pkgerrors.ErrConflict) || !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginRefreshLogout(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.RegisterUser(ctx, "Ann", "ann@example.com", "password1"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	if _, _, err := svc.LoginUser(ctx, "ann@example.com", "wrong-pass"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	tok, u, err := svc.LoginUser(ctx, "ANN@example.com", "password1")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if tok.Raw == "" || tok.Claims.Email != "ann@example.com" || tok.Claims.UserID != u.ID.String() {
		t.Fatalf("token claims: %+v", tok.Claims)
	}

	reqCtx, err := svc.SetContextFromToken(ctx, tok.Raw)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(reqCtx)
	if rd == nil || rd.UserID != u.ID || rd.Role != user.RoleUser {
		t.Fatalf("request data: %+v", rd)
	}
	me, err := svc.Me(reqCtx)
	if err != nil || me.ID != u.ID {
		t.Fatalf("Me: %v %v", me, err)
	}

	fresh, err := svc.RefreshUser(reqCtx)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if fresh.Claims.TokenID == tok.Claims.TokenID {
		t.Fatalf("refresh reused token id")
	}
	if _, err := svc.SetContextFromToken(ctx, tok.Raw); err == nil {
		t.Fatalf("old token still valid after refresh")
	}

	freshCtx, err := svc.SetContextFromToken(ctx, fresh.Raw)
	if err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
	if err := svc.LogoutUser(freshCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, fresh.Raw); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("token valid after logout: %v", err)
	}
}

func TestEnsureAdminPromotes(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "", "admin@trustlens.com", "password1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := svc.EnsureAdmin(ctx, "", "admin@trustlens.com", "password1"); err != nil {
		t.Fatalf("EnsureAdmin (again): %v", err)
	}
	tok, _, err := svc.LoginUser(ctx, "admin@trustlens.com", "password1")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if !tok.IsAdmin() {
		t.Fatalf("admin role missing from token: %+v", tok.Claims)
	}
	if err := svc.EnsureAdmin(ctx, "", "", ""); err != nil {
		t.Fatalf("empty bootstrap should be a no-op: %v", err)
	}
}

func TestPruneExpiredTokens(t *testing.T) {
	svc := newTestAuthService(t)
	if _, err := svc.PruneExpiredTokens(context.Background()); err != nil {
		t.Fatalf("PruneExpiredTokens: %v", err)
	}
}
