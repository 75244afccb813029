// Package remote is the HTTP client for the authoritative FocusForge
// server: account operations, session lifecycle, and snapshot persistence.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/focusforge/internal/domain/progress"
)

const (
	defaultTimeout = 5 * time.Second
	// beaconTimeout caps the unload-time flush: send and don't wait
	// around for a slow server while the process is exiting.
	beaconTimeout = 2 * time.Second

	// SessionCookie carries the server-issued session token.
	SessionCookie = "session_token"
)

// Client talks to the FocusForge server. Safe for use from the tracker
// goroutine and the flush worker concurrently.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout caps each remote call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithToken seeds a previously issued session token, e.g. one restored
// from disk before calling Resume.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username string            `json:"username"`
	Progress progress.Snapshot `json:"progress"`
}

type persistRequest struct {
	Progress progress.Snapshot `json:"progress"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Register creates an account. The server does not log the account in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/register", credentialsRequest{Username: username, Password: password})
	return err
}

// Login authenticates and returns the server-held snapshot. On success
// the client holds the issued session token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (progress.Snapshot, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/login", credentialsRequest{Username: username, Password: password})
	if err != nil {
		return progress.DefaultSnapshot(), err
	}
	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return progress.DefaultSnapshot(), fmt.Errorf("decode login response: %w", err)
	}
	return progress.Sanitize(resp.Progress), nil
}

// Resume attempts to pick up an existing session from the held token.
func (c *Client) Resume(ctx context.Context) (string, progress.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/session", nil)
	if err != nil {
		return "", progress.DefaultSnapshot(), err
	}
	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", progress.DefaultSnapshot(), fmt.Errorf("decode session response: %w", err)
	}
	return resp.Username, progress.Sanitize(resp.Progress), nil
}

// Logout ends the server session and clears the held token regardless of
// the call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil)
	c.setToken("")
	return err
}

// Persist writes the full snapshot to the server. Idempotent; callers
// are expected to swallow the error.
func (c *Client) Persist(ctx context.Context, snap progress.Snapshot) error {
	_, err := c.do(ctx, http.MethodPost, "/api/progress", persistRequest{Progress: snap})
	return err
}

// Beacon is the unload-time flush: a short-deadline persist to the beacon
// route whose outcome is ignored, so data in flight at shutdown still has
// a chance to land.
func (c *Client) Beacon(snap progress.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()
	_, _ = c.do(ctx, http.MethodPost, "/api/progress/beacon", persistRequest{Progress: snap})
}

// do performs one API call, translating HTTP failures to sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie {
			c.setToken(cookie.Value)
		}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, translateStatus(resp.StatusCode, buf.Bytes())
	}
	return buf.Bytes(), nil
}

func translateStatus(status int, body []byte) error {
	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch status {
	case http.StatusUnauthorized:
		if apiErr.Code == "no_session" {
			return ErrNoSession
		}
		return ErrInvalidCredentials
	case http.StatusConflict:
		return ErrUserExists
	case http.StatusBadRequest:
		return ErrInvalidInput
	}
	if apiErr.Message != "" {
		return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Message)
	}
	return fmt.Errorf("%w: status %d", ErrUnavailable, status)
}
