package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/http/middleware"
	"github.com/yungbote/trustlens-backend/internal/http/response"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        any       `json:"user,omitempty"`
}

func (ah *AuthHandler) tokenBody(tok *auth.Token, user any) tokenResponse {
	return tokenResponse{
		AccessToken: tok.Raw,
		TokenType:   "bearer",
		ExpiresIn:   int(ah.authService.GetAccessTTL().Seconds()),
		ExpiresAt:   tok.ExpiresAt,
		User:        user,
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.RespondError(c, http.StatusConflict, "email_taken", services.ErrEmailTaken)
			return
		}
		response.RespondAPIError(c, "registration_failed", err)
		return
	}
	response.RespondCreated(c, user)
}

// Login accepts a JSON body {email,password} or an OAuth2 password form {username,password}.
func (ah *AuthHandler) Login(c *gin.Context) {
	var email, password string
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		email, password = req.Email, req.Password
	} else {
		email = c.PostForm("username")
		if email == "" {
			email = c.PostForm("email")
		}
		password = c.PostForm("password")
	}

	tok, user, err := ah.authService.LoginUser(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", services.ErrBadCredentials)
			return
		}
		response.RespondAPIError(c, "login_failed", err)
		return
	}
	if err := saveSessionToken(c, tok.Raw); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "session_failed", errors.New("failed to create session"))
		return
	}
	response.RespondOK(c, ah.tokenBody(tok, user))
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	tok, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, "refresh_failed", err)
		return
	}
	if err := saveSessionToken(c, tok.Raw); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "session_failed", errors.New("failed to update session"))
		return
	}
	response.RespondOK(c, ah.tokenBody(tok, nil))
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondAPIError(c, "logout_failed", err)
		return
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Clear()
		_ = session.Save()
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, "me_failed", err)
		return
	}
	response.RespondOK(c, user)
}

func saveSessionToken(c *gin.Context, raw string) error {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	session := sessions.Default(c)
	session.Set(middleware.SessionTokenKey, raw)
	return session.Save()
}
