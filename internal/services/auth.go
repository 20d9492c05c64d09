package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/trustlens-backend/internal/data/repos"
	types "github.com/yungbote/trustlens-backend/internal/domain"
	"github.com/yungbote/trustlens-backend/internal/domain/user"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/trustlens-backend/internal/pkg/errors"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const minPasswordLen = 8

var (
	ErrEmailTaken         = errors.New("Email already registered")
	ErrBadCredentials     = errors.New("Incorrect email or password")
	errMissingRequestData = errors.New("no request data in context")
)

type AuthService interface {
	RegisterUser(ctx context.Context, name, email, password string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*auth.Token, *types.User, error)
	RefreshUser(ctx context.Context) (*auth.Token, error)
	LogoutUser(ctx context.Context) error
	Me(ctx context.Context) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	EnsureAdmin(ctx context.Context, name, email, password string) error
	PruneExpiredTokens(ctx context.Context) (int64, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	signer        *auth.Signer
	verifier      *auth.Verifier
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	signer *auth.Signer,
	verifier *auth.Verifier,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		signer:        signer,
		verifier:      verifier,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", pkgerrors.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, pkgerrors.ErrInvalidArgument)
	}
	return nil
}

func (as *authService) RegisterUser(ctx context.Context, name, email, password string) (*types.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     user.RoleUser,
		Verified: true,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %w", ErrEmailTaken, pkgerrors.ErrConflict)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*auth.Token, *types.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadCredentials, pkgerrors.ErrUnauthorized)
	}
	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, nil, fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadCredentials, pkgerrors.ErrUnauthorized)
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadCredentials, pkgerrors.ErrUnauthorized)
	}

	var tok *auth.Token
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := as.issue(dbctx.Context{Ctx: ctx, Tx: tx}, u)
		if err != nil {
			return err
		}
		tok = t
		return nil
	})
	if err != nil {
		as.log.Warn("login token issue failed", "user_id", u.ID, "error", err)
		return nil, nil, err
	}
	as.log.Info("user logged in", "user_id", u.ID)
	return tok, u, nil
}

// RefreshUser re-issues a token with the user's current claims and revokes the one in use.
func (as *authService) RefreshUser(ctx context.Context) (*auth.Token, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: %w", errMissingRequestData, pkgerrors.ErrUnauthorized)
	}

	var tok *auth.Token
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{rd.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return fmt.Errorf("user %s: %w", rd.UserID, pkgerrors.ErrUnauthorized)
		}
		if err := as.revoke(dbc, rd.TokenID); err != nil {
			return err
		}
		t, err := as.issue(dbc, users[0])
		if err != nil {
			return err
		}
		tok = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.verifier.Forget(rd.TokenString)
	return tok, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("%w: %w", errMissingRequestData, pkgerrors.ErrUnauthorized)
	}
	if err := as.revoke(dbctx.Context{Ctx: ctx}, rd.TokenID); err != nil {
		return err
	}
	as.verifier.Forget(rd.TokenString)
	as.log.Info("user logged out", "user_id", rd.UserID)
	return nil
}

func (as *authService) Me(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: %w", errMissingRequestData, pkgerrors.ErrUnauthorized)
	}
	users, err := as.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", rd.UserID, pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

// SetContextFromToken verifies a bearer token and attaches its claims as RequestData.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tok, err := as.verifier.Verify(ctx, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("%w: %w", err, pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(tok.Claims.UserID)
	if err != nil {
		return ctx, fmt.Errorf("%w: %w", auth.ErrInvalidToken, pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tok.Raw,
		TokenID:     tok.Claims.TokenID,
		UserID:      userID,
		Email:       tok.Claims.Email,
		Name:        tok.Claims.Name,
		Role:        tok.Claims.Role,
	}), nil
}

// EnsureAdmin creates the bootstrap admin, or promotes an existing account with that email.
func (as *authService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	users, err := as.userRepo.GetByEmails(dbc, []string{email})
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if len(users) > 0 {
		if users[0].Role == user.RoleAdmin {
			return nil
		}
		as.log.Info("promoting bootstrap admin", "user_id", users[0].ID)
		return as.userRepo.UpdateRole(dbc, users[0].ID, user.RoleAdmin)
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin User"
	}
	u, err := as.RegisterUser(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return as.userRepo.UpdateRole(dbc, u.ID, user.RoleAdmin)
}

func (as *authService) PruneExpiredTokens(ctx context.Context) (int64, error) {
	return as.userTokenRepo.DeleteExpired(dbctx.Context{Ctx: ctx}, as.now())
}

func (as *authService) GetAccessTTL() time.Duration { return as.signer.TTL() }

func (as *authService) issue(dbc dbctx.Context, u *types.User) (*auth.Token, error) {
	tok, err := as.signer.Issue(auth.Claims{
		UserID: u.ID.String(),
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	jti, err := uuid.Parse(tok.Claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("token id: %w", err)
	}
	row := &types.UserToken{ID: jti, UserID: u.ID, ExpiresAt: tok.ExpiresAt.UTC()}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return tok, nil
}

func (as *authService) revoke(dbc dbctx.Context, tokenID string) error {
	jti, err := uuid.Parse(tokenID)
	if err != nil {
		return nil
	}
	if err := as.userTokenRepo.RevokeByIDs(dbc, []uuid.UUID{jti}, as.now()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
