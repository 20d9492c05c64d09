package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/httpx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const maxResponseBytes = 8 << 20

// Multipart is sent verbatim with its own Content-Type (boundary included).
type Multipart struct {
	ContentType string
	Reader      io.Reader
}

type callOptions struct {
	includeAuth  bool
	forceRefresh bool
	tokens       auth.TokenSource
	headers      http.Header
}

type CallOption func(*callOptions)

// WithoutAuth skips the credential lookup and sends no Authorization header.
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.includeAuth = false }
}

// WithForceRefresh asks the token source for a fresh credential for this call.
func WithForceRefresh() CallOption {
	return func(o *callOptions) { o.forceRefresh = true }
}

// WithTokenSource overrides the client's token source for one call.
func WithTokenSource(ts auth.TokenSource) CallOption {
	return func(o *callOptions) { o.tokens = ts }
}

func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Client sends authenticated JSON requests to one base URL.
// It never retries; callers decide what a failure means.
type Client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenSource
}

func New(baseURL string, httpClient *http.Client, tokens auth.TokenSource, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = httpx.NewClient(30 * time.Second)
	}
	return &Client{
		log:        log.With("service", "APIClient"),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Call performs one request. A 204 yields (nil, nil); other 2xx yield the raw body.
// Non-2xx responses fail with *RequestError and transport failures with *TransportError.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, opts ...CallOption) (json.RawMessage, error) {
	o := callOptions{includeAuth: true, tokens: c.tokens}
	for _, opt := range opts {
		opt(&o)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range o.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if o.includeAuth && o.tokens != nil {
		tok, err := o.tokens.Token(ctx, o.forceRefresh)
		if err != nil {
			return nil, fmt.Errorf("get credential: %w", err)
		}
		if tok != nil && tok.Raw != "" {
			req.Header.Set("Authorization", "Bearer "+tok.Raw)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("request done",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// Decode calls and unmarshals the body into out. A 204 leaves out untouched.
func (c *Client) Decode(ctx context.Context, method, endpoint string, body, out any, opts ...CallOption) error {
	raw, err := c.Call(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case Multipart:
		return b.Reader, b.ContentType, nil
	case *Multipart:
		return b.Reader, b.ContentType, nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(buf), "application/json", nil
	}
}
