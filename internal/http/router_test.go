package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/yungbote/trustlens-backend/internal/domain"
	moddomain "github.com/yungbote/trustlens-backend/internal/domain/moderation"
	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/domain/user"
	httpH "github.com/yungbote/trustlens-backend/internal/http/handlers"
	httpMW "github.com/yungbote/trustlens-backend/internal/http/middleware"
	"github.com/yungbote/trustlens-backend/internal/observability"
	pkgerrors "github.com/yungbote/trustlens-backend/internal/pkg/errors"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
	"github.com/yungbote/trustlens-backend/internal/services"
	"github.com/yungbote/trustlens-backend/internal/services/analytics"
	"github.com/yungbote/trustlens-backend/internal/services/trust"
	"gorm.io/gorm"
)

var (
	userID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	adminID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeAuth struct{}

func (fakeAuth) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	if email == "taken@example.com" {
		return nil, fmt.Errorf("%w: %w", services.ErrEmailTaken, pkgerrors.ErrConflict)
	}
	return &domain.User{ID: uuid.New(), Email: email, Name: name, Role: user.RoleUser}, nil
}

func (fakeAuth) LoginUser(ctx context.Context, email, password string) (*auth.Token, *domain.User, error) {
	if password != "password1" {
		return nil, nil, fmt.Errorf("%w: %w", services.ErrBadCredentials, pkgerrors.ErrUnauthorized)
	}
	return &auth.Token{Raw: "user-token", ExpiresAt: time.Now().Add(time.Hour)}, &domain.User{ID: userID, Email: email}, nil
}

func (fakeAuth) RefreshUser(ctx context.Context) (*auth.Token, error) {
	return &auth.Token{Raw: "user-token-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeAuth) LogoutUser(ctx context.Context) error { return nil }

func (fakeAuth) Me(ctx context.Context) (*domain.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	return &domain.User{ID: rd.UserID, Email: rd.Email, Role: rd.Role, Verified: true, CreatedAt: time.Now().Add(-72 * time.Hour)}, nil
}

func (fakeAuth) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	switch tokenString {
	case "user-token", "user-token-2":
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: tokenString, UserID: userID, Email: "u@example.com", Role: user.RoleUser}), nil
	case "admin-token":
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: tokenString, UserID: adminID, Email: "a@example.com", Role: user.RoleAdmin}), nil
	}
	return ctx, auth.ErrInvalidToken
}

func (fakeAuth) EnsureAdmin(ctx context.Context, name, email, password string) error { return nil }
func (fakeAuth) PruneExpiredTokens(ctx context.Context) (int64, error)               { return 0, nil }
func (fakeAuth) GetAccessTTL() time.Duration                                         { return time.Hour }

type fakeAnalyzer struct {
	err      error
	lastMeta review.Metadata
	lastTok  string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, sub review.Submission, token string, observers ...trust.Observer) (*trust.Outcome, error) {
	f.lastMeta = sub.Metadata
	f.lastTok = token
	if f.err != nil {
		return nil, f.err
	}
	return &trust.Outcome{
		Result:     review.AnalysisResult{TrustScore: 0.92, PredictedLabel: review.LabelGenuine, Explanation: "Our analysis suggests this review is likely genuine because..."},
		Prediction: &review.Prediction{Label: review.LabelGenuine, TrustScore: 0.92},
	}, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	items []*review.HistoryItem
}

func (f *fakeRecorder) RecordAsync(uid uuid.UUID, sub review.Submission, res review.AnalysisResult, pred *review.Prediction) *review.HistoryItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := review.NewHistoryItem(uid, sub, res, nil)
	f.items = append(f.items, it)
	return it
}

func (f *fakeRecorder) Wait() {}

func (f *fakeRecorder) List(ctx context.Context, uid uuid.UUID, limit int) ([]*review.HistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, nil
}

type fakeModeration struct {
	item *moddomain.Item
}

func (f *fakeModeration) List(ctx context.Context, status *moddomain.Status, limit int) ([]*moddomain.Item, error) {
	return []*moddomain.Item{f.item}, nil
}

func (f *fakeModeration) Approve(ctx context.Context, id, reviewer uuid.UUID) (*moddomain.Item, error) {
	if f.item.Status != moddomain.StatusPending {
		return nil, fmt.Errorf("already decided: %w", pkgerrors.ErrConflict)
	}
	f.item.Status = moddomain.StatusApproved
	return f.item, nil
}

func (f *fakeModeration) Reject(ctx context.Context, id, reviewer uuid.UUID) (*moddomain.Item, error) {
	return f.Approve(ctx, id, reviewer)
}

func (f *fakeModeration) Flag(ctx context.Context, tx *gorm.DB, reviewer string, item *review.HistoryItem) (*moddomain.Item, error) {
	return nil, nil
}

func (f *fakeModeration) Seed(ctx context.Context) (int, error) { return 0, nil }

type fakeAnalytics struct{}

func (fakeAnalytics) Report(ctx context.Context) (*analytics.Report, error) {
	return &analytics.Report{Classification: analytics.Classification{Genuine: 3, Fake: 1}}, nil
}

type harness struct {
	engine   *gin.Engine
	analyzer *fakeAnalyzer
	recorder *fakeRecorder
}

func newHarness(t *testing.T, rateBurst int) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, _ := logger.New("test")
	as := fakeAuth{}
	an := &fakeAnalyzer{}
	rec := &fakeRecorder{}
	mod := &fakeModeration{item: &moddomain.Item{ID: uuid.New(), Credibility: 82, Status: moddomain.StatusPending}}
	engine := NewRouter(RouterConfig{
		Log:               log,
		Metrics:           observability.New(),
		SessionSecret:     "0123456789abcdef0123456789abcdef",
		SessionMaxAge:     3600,
		AuthHandler:       httpH.NewAuthHandler(as),
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, as),
		RateLimiter:       httpMW.NewRateLimiter(1, rateBurst, nil),
		AnalysisHandler:   httpH.NewAnalysisHandler(an, rec, as, review.Metadata{Verified: true, AccountAgeDays: 30}),
		ModerationHandler: httpH.NewModerationHandler(mod),
		AnalyticsHandler:  httpH.NewAnalyticsHandler(fakeAnalytics{}),
		HealthHandler:     httpH.NewHealthHandler(nil),
		ExposeMetrics:     true,
	})
	return &harness{engine: engine, analyzer: an, recorder: rec}
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

const scenarioBody = `{"reviewText":"Used it for a month, battery is great, screen is gorgeous...","productOrService":"AstroBook Pro","platform":"amazon"}`

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error.Message
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, 5)
	for _, path := range []string{"/healthz", "/healthcheck"} {
		if rec := h.do(nethttp.MethodGet, path, "", ""); rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: %d %q", path, rec.Code, rec.Body.String())
		}
	}
	if rec := h.do(nethttp.MethodGet, "/metrics", "", ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestAnalyzeRequiresAuth(t *testing.T) {
	h := newHarness(t, 5)
	rec := h.do(nethttp.MethodPost, "/api/analyze", "", scenarioBody)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
	if rec = h.do(nethttp.MethodPost, "/api/analyze", "forged", scenarioBody); rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("forged token status: %d", rec.Code)
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	h := newHarness(t, 5)
	rec := h.do(nethttp.MethodPost, "/api/analyze", "user-token", scenarioBody)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
	var item review.HistoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.TrustScore != 0.92 || item.PredictedLabel != review.LabelGenuine || item.ID == uuid.Nil || item.Timestamp.IsZero() {
		t.Fatalf("item: %+v", item)
	}
	if h.analyzer.lastTok != "user-token" {
		t.Fatalf("token not forwarded: %q", h.analyzer.lastTok)
	}
	if !h.analyzer.lastMeta.Verified || h.analyzer.lastMeta.AccountAgeDays != 3 {
		t.Fatalf("metadata not derived from account: %+v", h.analyzer.lastMeta)
	}

	rec = h.do(nethttp.MethodGet, "/api/history", "user-token", "")
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "AstroBook Pro") {
		t.Fatalf("history: %d %s", rec.Code, rec.Body.String())
	}
	if rec = h.do(nethttp.MethodGet, "/api/history?limit=abc", "user-token", ""); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad limit: %d", rec.Code)
	}
}

func TestAnalyzeMapsTrustErrors(t *testing.T) {
	h := newHarness(t, 5)
	h.analyzer.err = &trust.Error{Kind: trust.KindPredictionRejected, Message: "model overloaded", Err: errors.New("503")}
	rec := h.do(nethttp.MethodPost, "/api/analyze", "user-token", scenarioBody)
	if rec.Code != nethttp.StatusBadGateway || errorMessage(t, rec) != "model overloaded" {
		t.Fatalf("rejected: %d %s", rec.Code, rec.Body.String())
	}

	h.analyzer.err = &trust.Error{Kind: trust.KindInvalid, Message: "Please select a platform."}
	rec = h.do(nethttp.MethodPost, "/api/analyze", "user-token", scenarioBody)
	if rec.Code != nethttp.StatusBadRequest || errorMessage(t, rec) != "Please select a platform." {
		t.Fatalf("invalid: %d %s", rec.Code, rec.Body.String())
	}
	if len(h.recorder.items) != 0 {
		t.Fatalf("failed analyses must not be recorded")
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	h := newHarness(t, 1)
	if rec := h.do(nethttp.MethodPost, "/api/analyze", "user-token", scenarioBody); rec.Code != nethttp.StatusOK {
		t.Fatalf("first: %d", rec.Code)
	}
	rec := h.do(nethttp.MethodPost, "/api/analyze", "user-token", scenarioBody)
	if rec.Code != nethttp.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("second: %d", rec.Code)
	}
	if rec := h.do(nethttp.MethodPost, "/api/analyze", "admin-token", scenarioBody); rec.Code != nethttp.StatusOK {
		t.Fatalf("other user limited: %d", rec.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t, 5)
	if rec := h.do(nethttp.MethodGet, "/api/admin/moderation", "user-token", ""); rec.Code != nethttp.StatusForbidden {
		t.Fatalf("non-admin moderation: %d", rec.Code)
	}
	rec := h.do(nethttp.MethodGet, "/api/admin/moderation?status=pending", "admin-token", "")
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"band":"high"`) {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(nethttp.MethodGet, "/api/admin/moderation?status=maybe", "admin-token", ""); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad status: %d", rec.Code)
	}

	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	path := "/api/admin/moderation/" + list.Items[0].ID + "/approve"
	if rec := h.do(nethttp.MethodPost, path, "admin-token", ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(nethttp.MethodPost, path, "admin-token", ""); rec.Code != nethttp.StatusConflict {
		t.Fatalf("second approve: %d", rec.Code)
	}
	if rec := h.do(nethttp.MethodPost, "/api/admin/moderation/not-a-uuid/reject", "admin-token", ""); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}
	if rec := h.do(nethttp.MethodGet, "/api/admin/analytics", "admin-token", ""); rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"genuine":3`) {
		t.Fatalf("analytics: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t, 5)
	rec := h.do(nethttp.MethodPost, "/api/register", "", `{"name":"Ann","email":"ann@example.com","password":"password1"}`)
	if rec.Code != nethttp.StatusCreated || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(nethttp.MethodPost, "/api/register", "", `{"name":"Ann","email":"taken@example.com","password":"password1"}`)
	if rec.Code != nethttp.StatusConflict || errorMessage(t, rec) != "Email already registered" {
		t.Fatalf("duplicate: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(nethttp.MethodPost, "/api/login", "", `{"email":"ann@example.com","password":"nope"}`)
	if rec.Code != nethttp.StatusUnauthorized || errorMessage(t, rec) != "Incorrect email or password" {
		t.Fatalf("bad login: %d %s", rec.Code, rec.Body.String())
	}

	form := httptest.NewRequest(nethttp.MethodPost, "/api/token", strings.NewReader("username=ann%40example.com&password=password1"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.engine.ServeHTTP(rec, form)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"token_type":"bearer"`) {
		t.Fatalf("form login: %d %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login did not set a session cookie")
	}
	me := httptest.NewRequest(nethttp.MethodGet, "/api/me", nil)
	for _, ck := range cookies {
		me.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	h.engine.ServeHTTP(rec, me)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "u@example.com") {
		t.Fatalf("cookie auth: %d %s", rec.Code, rec.Body.String())
	}
}
