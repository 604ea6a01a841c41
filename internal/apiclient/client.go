// Package apiclient is the shared HTTP transport to the contacts backend.
// It attaches the stored bearer token to every request and drops that token
// when the backend answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contactbook/internal/storage"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-Id"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Storage    storage.Storage
	Logger     zerolog.Logger
	Metrics    *metrics.Set
	HTTPClient *http.Client
}

// Client is safe for concurrent use. Its configuration is fixed at
// construction; only the unauthorized hooks may be added later.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    storage.Storage
	log        zerolog.Logger
	metrics    *metrics.Set

	hooksMu        sync.RWMutex
	onUnauthorized []func()
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	st := opts.Storage
	if st == nil {
		st = storage.NewMemory()
	}
	set := opts.Metrics
	if set == nil {
		set = metrics.NewSet()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		storage:    st,
		log:        opts.Logger,
		metrics:    set,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized registers fn to run after any 401 answer.
func (c *Client) OnUnauthorized(fn func()) {
	if fn == nil {
		return
	}
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// doJSON sends payload (if any) to path and decodes a 2xx body into out (if
// any). route is the path pattern used as the metrics label.
func (c *Client) doJSON(ctx context.Context, method, route, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	hadToken := c.attachToken(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, route, "error", start)
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("api request failed")
		return fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()
	c.observe(method, route, strconv.Itoa(resp.StatusCode), start)

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Bool("bearer", hadToken).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("api request")

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			c.handleUnauthorized(ctx)
		case http.StatusForbidden:
			c.log.Warn().Str("method", method).Str("path", path).Msg("access forbidden")
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) attachToken(req *http.Request) bool {
	token, ok, err := c.storage.Get(req.Context(), storage.TokenKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("read bearer token")
		return false
	}
	if !ok || token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

// handleUnauthorized runs on every 401. Hooks decide for themselves whether
// there is a session to end.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.storage.Remove(ctx, storage.TokenKey); err != nil {
		c.log.Warn().Err(err).Msg("remove bearer token")
	}
	c.hooksMu.RLock()
	hooks := append([]func(){}, c.onUnauthorized...)
	c.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func decodeError(resp *http.Response) *APIError {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	msg := strings.TrimSpace(errResp.Message)
	if msg == "" {
		msg = strings.TrimSpace(errResp.Error)
	}
	if msg == "" {
		msg = resp.Status
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
