package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/trustlens-backend/internal/domain/user"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
)

func withUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id, Role: role})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestRateLimiterPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2, nil)
	alice, bob := uuid.New(), uuid.New()

	serve := func(id uuid.UUID) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(withUser(id, user.RoleUser), rl.Middleware())
		r.POST("/api/analyze", func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := serve(alice); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rec.Code)
		}
	}
	rec := serve(alice)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("retry-after: %q", rec.Header().Get("Retry-After"))
	}
	if rec := serve(bob); rec.Code != http.StatusOK {
		t.Fatalf("limits must be per user, got %d", rec.Code)
	}
}

func TestRateLimiterSweepDropsIdle(t *testing.T) {
	rl := NewRateLimiter(10, 1, nil)
	rl.get("user:a")
	rl.sweep(time.Now().Add(5 * time.Minute))
	if len(rl.limiters) != 1 {
		t.Fatalf("fresh limiter swept")
	}
	rl.sweep(time.Now().Add(11 * time.Minute))
	if len(rl.limiters) != 0 {
		t.Fatalf("idle limiter kept")
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := &AuthMiddleware{}
	cases := map[string]int{user.RoleAdmin: http.StatusOK, user.RoleUser: http.StatusForbidden}
	for role, want := range cases {
		r := gin.New()
		r.Use(withUser(uuid.New(), role), am.RequireRole(user.RoleAdmin))
		r.GET("/api/admin/analytics", func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics", nil))
		if rec.Code != want {
			t.Fatalf("role %s: got=%d want=%d", role, rec.Code, want)
		}
	}
}
