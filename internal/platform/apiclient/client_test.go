package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, ts auth.TokenSource) *Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(srv.URL, srv.Client(), ts, log)
}

type recordedRequest struct {
	auth        string
	contentType string
	body        string
}

func recorder(status int, respBody string, seen *recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*seen = recordedRequest{auth: r.Header.Get("Authorization"), contentType: r.Header.Get("Content-Type"), body: string(b)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
}

func TestCallAttachesBearerAndJSON(t *testing.T) {
	var seen recordedRequest
	srv := recorder(http.StatusOK, `{"ok":true}`, &seen)
	defer srv.Close()

	c := newTestClient(t, srv, auth.StaticToken("tok-123"))
	raw, err := c.Call(context.Background(), http.MethodPost, "/api/v1/predict", map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("body: %s", raw)
	}
	if seen.auth != "Bearer tok-123" {
		t.Fatalf("auth header: %q", seen.auth)
	}
	if seen.contentType != "application/json" {
		t.Fatalf("content-type: %q", seen.contentType)
	}
	var sent map[string]string
	if err := json.Unmarshal([]byte(seen.body), &sent); err != nil || sent["text"] != "hi" {
		t.Fatalf("sent body: %s", seen.body)
	}
}

func TestCallWithoutTokenSendsNoHeader(t *testing.T) {
	var seen recordedRequest
	srv := recorder(http.StatusOK, `{}`, &seen)
	defer srv.Close()

	c := newTestClient(t, srv, auth.StaticToken(""))
	if _, err := c.Call(context.Background(), http.MethodGet, "/users/me", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if seen.auth != "" {
		t.Fatalf("expected no auth header, got %q", seen.auth)
	}

	c = newTestClient(t, srv, auth.StaticToken("tok"))
	if _, err := c.Call(context.Background(), http.MethodGet, "/public", nil, WithoutAuth()); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if seen.auth != "" {
		t.Fatalf("WithoutAuth should skip header, got %q", seen.auth)
	}
}

func TestCallMultipartKeepsContentType(t *testing.T) {
	var seen recordedRequest
	srv := recorder(http.StatusOK, `{}`, &seen)
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("review", "hello")
	_ = mw.Close()

	c := newTestClient(t, srv, nil)
	if _, err := c.Call(context.Background(), http.MethodPost, "/upload", Multipart{ContentType: mw.FormDataContentType(), Reader: &buf}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.HasPrefix(seen.contentType, "multipart/form-data; boundary=") {
		t.Fatalf("content-type: %q", seen.contentType)
	}

	form := url.Values{"username": {"a@b.c"}, "password": {"pw"}}
	if _, err := c.Call(context.Background(), http.MethodPost, "/token", form); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if seen.contentType != "application/x-www-form-urlencoded" {
		t.Fatalf("form content-type: %q", seen.contentType)
	}
}

func TestCallNoContentReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw, err := newTestClient(t, srv, nil).Call(context.Background(), http.MethodDelete, "/x", nil)
	if err != nil || raw != nil {
		t.Fatalf("expected (nil,nil), got raw=%s err=%v", raw, err)
	}
}

func TestCallErrorMessages(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusBadRequest, `{"detail":"Text too short"}`, "Text too short"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","text"],"msg":"field required"},{"msg":"bad lang"}]}`, "field required; bad lang"},
		{http.StatusUnauthorized, `{"error":{"message":"invalid token","code":"unauthorized"}}`, "invalid token"},
		{http.StatusInternalServerError, `<html>oops</html>`, "HTTP error! status: 500"},
		{http.StatusBadGateway, ``, "HTTP error! status: 502"},
	}
	for _, tc := range cases {
		var seen recordedRequest
		srv := recorder(tc.status, tc.body, &seen)
		_, err := newTestClient(t, srv, nil).Call(context.Background(), http.MethodPost, "/api/v1/predict", map[string]any{})
		srv.Close()

		var re *RequestError
		if !errors.As(err, &re) {
			t.Fatalf("status %d: expected RequestError, got %v", tc.status, err)
		}
		if re.Status != tc.status || re.Message != tc.want {
			t.Fatalf("status %d: got status=%d message=%q want %q", tc.status, re.Status, re.Message, tc.want)
		}
	}
}

func TestCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, nil)
	srv.Close()

	_, err := c.Call(context.Background(), http.MethodGet, "/health", nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	var re *RequestError
	if errors.As(err, &re) {
		t.Fatalf("transport failure must not look like a RequestError")
	}
}

type forcingSource struct{ forced []bool }

func (f *forcingSource) Token(ctx context.Context, force bool) (*auth.Token, error) {
	f.forced = append(f.forced, force)
	return &auth.Token{Raw: "t"}, nil
}

func TestDecodeAndForceRefresh(t *testing.T) {
	var seen recordedRequest
	srv := recorder(http.StatusOK, `{"email":"a@b.c","role":"admin"}`, &seen)
	defer srv.Close()

	src := &forcingSource{}
	c := newTestClient(t, srv, src)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Decode(context.Background(), http.MethodGet, "/api/me", nil, &me, WithForceRefresh()); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if me.Role != "admin" {
		t.Fatalf("decoded: %+v", me)
	}
	if len(src.forced) != 1 || !src.forced[0] {
		t.Fatalf("force flag not passed: %v", src.forced)
	}
}
