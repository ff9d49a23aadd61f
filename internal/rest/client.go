// Package rest implements the HTTP side of the hospital API contract:
// request construction with conditional bearer auth, response decoding that
// tolerates both list shapes the server emits, and an error taxonomy that
// separates transport failures, application rejections, and malformed bodies.
package rest

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

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/session"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// Kind classifies a request failure.
type Kind int

const (
	// KindTransport means the request never reached the server or no
	// response came back.
	KindTransport Kind = iota + 1
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindDecode means a 2xx response carried a body that could not be
	// decoded into the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing the client boundary. Message holds
// the server-supplied reason when one was parseable, else a generic fallback.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody is the failure shape the server is expected to send. Some
// endpoints use "error", others "errors"; both are accepted.
type errorBody struct {
	Error  string          `json:"error"`
	Errors json.RawMessage `json:"errors"`
}

// failureMessage extracts a human-readable reason from a non-2xx body.
// Unparseable bodies fall back to a generic message rather than crashing the
// handler path.
func failureMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if len(eb.Errors) > 0 {
			var list []string
			if err := json.Unmarshal(eb.Errors, &list); err == nil && len(list) > 0 {
				return strings.Join(list, "; ")
			}
			var single string
			if err := json.Unmarshal(eb.Errors, &single); err == nil && single != "" {
				return single
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithGetRetries sets how many times an idempotent GET is retried after a
// transport failure or a 5xx answer. Mutations are never retried.
func WithGetRetries(n int) Option {
	return func(c *Client) { c.getRetries = n }
}

// WithRetryDelay sets the pause between GET retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithLogger attaches a logger for request-level logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client issues JSON requests against one API base URL, attaching the
// session's bearer token when one is present.
type Client struct {
	base       *url.URL
	http       *http.Client
	sess       *session.Session
	logger     zerolog.Logger
	getRetries int
	retryDelay time.Duration
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: 10 * time.Second},
		sess:       sess,
		logger:     zerolog.Nop(),
		getRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// endpoint joins the base URL with a resource path and optional query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// newRequest builds a JSON request. The Authorization header is attached only
// when the session holds a token; it is omitted entirely, never sent empty.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.sess.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// retryable reports whether a GET may be attempted again.
func retryable(err *Error) bool {
	if err.Kind == KindTransport {
		return true
	}
	return err.Kind == KindStatus && err.StatusCode >= 500
}

// do executes a request and decodes a 2xx body into out (when out is
// non-nil). GETs are retried a bounded number of times; everything else runs
// exactly once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	rawURL := c.endpoint(path, query)

	attempts := 1
	if method == http.MethodGet {
		attempts += c.getRetries
	}

	var lastErr *Error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return &Error{Kind: KindTransport, Message: ctx.Err().Error(), Err: ctx.Err()}
			}
			c.logger.Debug().Str("method", method).Str("url", rawURL).Int("attempt", attempt+1).Msg("retrying request")
		}

		lastErr = c.doOnce(ctx, method, rawURL, body, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, body, out any) *Error {
	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Str("method", method).Str("url", rawURL).Err(err).Msg("request failed")
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Message:    failureMessage(resp.StatusCode, data),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

// Get issues a GET and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body, decoding any response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body. Partial field-only bodies such as
// map[string]any{"status": "resolved"} are accepted by some endpoints.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
