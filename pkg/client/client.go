package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tarasboiko2005/AirportAPI/internal/logging"
	"github.com/tarasboiko2005/AirportAPI/internal/session"
)

const (
	refreshPath = "/api/token/refresh/"
	maxErrBody  = 1 << 20 // 1 MB
)

// Client is the SkyPort API client. Every call goes through the request
// pipeline: it carries the stored access token, and a 401 triggers one
// refresh-and-retry before the session is torn down.
type Client struct {
	baseURL    string
	store      *session.Store
	httpClient *http.Client
	refreshes  singleflight.Group
	onEnded    func()
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// OnSessionEnded registers the hook run after a terminal authorization
// failure has cleared the session. It is how callers get sent back to login.
func OnSessionEnded(fn func()) Option {
	return func(c *Client) { c.onEnded = fn }
}

// New creates a new API client over the given session store.
func New(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logging.With("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the store the client reads credentials from.
func (c *Client) Session() *session.Store {
	return c.store
}

// request is one logical API call. It is re-dispatched verbatim on retry.
type request struct {
	method  string
	path    string
	body    []byte
	retried bool
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// doRequest runs a call through the authenticated pipeline.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	req := &request{method: method, path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		req.body = data
	}

	token, _ := c.store.Access()
	for {
		err := c.send(ctx, req, token, out)
		if err == nil || !IsUnauthorized(err) || req.retried {
			return err
		}
		req.retried = true

		token, err = c.recoverAccess(ctx, token, err)
		if err != nil {
			return err
		}
		c.log.Debug().Str("path", req.path).Msg("retrying with refreshed access token")
	}
}

// recoverAccess returns an access token to retry with after stale was
// rejected, or the terminal error to surface.
func (c *Client) recoverAccess(ctx context.Context, stale string, original error) (string, error) {
	// Another request refreshed while this one was in flight.
	if cur, ok := c.store.Access(); ok && cur != stale {
		return cur, nil
	}

	refresh, ok := c.store.Refresh()
	if !ok {
		c.log.Info().Msg("unauthorized without refresh token, ending session")
		c.endSession()
		return "", fmt.Errorf("%w: %w", ErrSessionEnded, original)
	}

	// Concurrent callers holding the same refresh token share one refresh.
	// The shared call is detached from any single caller's cancellation.
	ch := c.refreshes.DoChan(refresh, func() (any, error) {
		return c.refreshAndStore(context.WithoutCancel(ctx), refresh)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("%w: %w", ErrSessionEnded, original)
		}
		return res.Val.(string), nil
	}
}

// refreshAndStore mints a new access token. Any failure ends the session.
func (c *Client) refreshAndStore(ctx context.Context, refresh string) (string, error) {
	access, err := c.RefreshAccess(ctx, refresh)
	if err != nil {
		c.log.Warn().Err(err).Msg("token refresh failed, ending session")
		c.endSession()
		return "", err
	}
	stored, err := c.store.UpdateAccess(access)
	if err != nil {
		// The new token was not kept; the old one is already rejected.
		c.log.Error().Err(err).Msg("store refreshed token, ending session")
		c.endSession()
		return "", fmt.Errorf("store refreshed token: %w", err)
	}
	if !stored {
		// Signed out while the refresh was in flight.
		return "", ErrSessionEnded
	}
	return access, nil
}

func (c *Client) endSession() {
	if err := c.store.Clear(); err != nil {
		c.log.Error().Err(err).Msg("clear session")
	}
	if c.onEnded != nil {
		c.onEnded()
	}
}

// send dispatches req once. It never intercepts errors; callers that must
// bypass the pipeline (login, refresh) use it directly.
func (c *Client) send(ctx context.Context, req *request, token string, out any) error {
	target, err := c.resolve(req.path)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if req.body != nil {
		reqBody = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Bool("retry", req.retried).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return parseHTTPError(resp.StatusCode, respBody)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// resolve maps an API path to a URL. Absolute URLs (pagination links) are
// accepted only when they point at the configured API, so the bearer token
// never leaves it.
func (c *Client) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, c.baseURL+"/") {
			return "", fmt.Errorf("refusing to follow link outside %s: %s", c.baseURL, path)
		}
		return path, nil
	}
	return c.baseURL + path, nil
}
