// client/client.go

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailhq/console/cache"
	"github.com/retailhq/console/calllog"
	console_errors "github.com/retailhq/console/errors"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/model"
	"github.com/retailhq/console/util"
)

// TokenSource supplies the bearer token for outbound requests. Refresh is
// invoked once on a 401 when auto-refresh is enabled; the refresh protocol
// itself lives outside this module.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for pre-issued tokens with no refresh
// protocol behind them.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func (s StaticToken) Refresh(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: no refresh endpoint configured", console_errors.ErrTokenExpired)
}

// RequestOptions tune a single call.
type RequestOptions struct {
	Body          any
	Query         url.Values
	CacheTTL      time.Duration // >0 caches GET responses for this long
	NoAutoRefresh bool          // skip the one-shot token refresh on 401
}

// Client is the authenticated request function for the remote admin API.
// Every call is reported to the call logger; GET responses are optionally
// memoized in the response cache; successful mutations publish a
// resource-change event so stale cached reads get invalidated.
type Client struct {
	baseURL    string
	storeID    string
	branchID   string
	sessionID  string
	httpClient *http.Client

	mu         sync.RWMutex
	userID     string
	tokens     TokenSource
	cache      cache.ResponseCache
	log        *calllog.Logger
	bus        *util.EventBus
	maxRetries uint64
}

func New(baseURL, storeID, branchID string, tokens TokenSource, responseCache cache.ResponseCache, callLog *calllog.Logger, bus *util.EventBus) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		storeID:    storeID,
		branchID:   branchID,
		sessionID:  uuid.NewString(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		cache:      responseCache,
		log:        callLog,
		bus:        bus,
		maxRetries: 3,
	}
}

// SetUserID attaches the signed-in user to subsequent log entries. Called
// by the session provider once the user is known, possibly while other
// goroutines are mid-request.
func (c *Client) SetUserID(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

func (c *Client) currentUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*model.APIResponse, error) {
	return c.Do(ctx, http.MethodGet, path, opts)
}

func (c *Client) Post(ctx context.Context, path string, opts RequestOptions) (*model.APIResponse, error) {
	return c.Do(ctx, http.MethodPost, path, opts)
}

func (c *Client) Put(ctx context.Context, path string, opts RequestOptions) (*model.APIResponse, error) {
	return c.Do(ctx, http.MethodPut, path, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts RequestOptions) (*model.APIResponse, error) {
	return c.Do(ctx, http.MethodDelete, path, opts)
}

// Do issues one authenticated request and returns the parsed envelope.
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions) (*model.APIResponse, error) {
	requestPath := path
	if len(opts.Query) > 0 {
		requestPath += "?" + opts.Query.Encode()
	}
	fullURL := c.baseURL + requestPath

	cacheable := method == http.MethodGet && opts.CacheTTL > 0 && c.cache != nil
	// Keyed by path, not full URL, so invalidation by resource prefix works.
	cacheKey := cacheKeyFor(method, requestPath)

	if cacheable {
		if raw, ok := c.cache.Get(ctx, cacheKey); ok {
			var env model.APIResponse
			if err := json.Unmarshal(raw, &env); err == nil {
				logger.Debug("Response cache hit", zap.String("key", cacheKey))
				return &env, nil
			}
			// A corrupt entry is dropped and the request dials out.
			logger.Warn("Dropping unreadable cache entry", zap.String("key", cacheKey))
		}
	}

	var bodyBytes []byte
	if opts.Body != nil {
		var err error
		bodyBytes, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	userID := c.currentUserID()
	c.log.LogRequest(method, fullURL, nil, bodyBytes, userID, c.sessionID)

	start := time.Now()
	resp, respBody, err := c.send(ctx, method, fullURL, bodyBytes)
	duration := time.Since(start)
	if err != nil {
		c.log.LogError(method, fullURL, err.Error(), userID, c.sessionID)
		return nil, err
	}

	c.log.LogResponse(method, fullURL, resp.StatusCode, flattenHeaders(resp.Header), respBody, duration, userID, c.sessionID)

	if resp.StatusCode == http.StatusUnauthorized && !opts.NoAutoRefresh && c.tokens != nil {
		if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
			return nil, fmt.Errorf("%w: token refresh failed: %v", console_errors.ErrUnauthorized, refreshErr)
		}
		retry := opts
		retry.NoAutoRefresh = true
		return c.Do(ctx, method, path, retry)
	}

	var env model.APIResponse
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", console_errors.ErrInvalidResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &env, console_errors.ErrUnauthorized
	}
	if resp.StatusCode >= 400 || !env.Success {
		message := env.Message
		if message == "" {
			message = resp.Status
		}
		return &env, fmt.Errorf("%w: %s", console_errors.ErrRequestFailed, message)
	}

	if cacheable {
		if raw, err := json.Marshal(&env); err == nil {
			if err := c.cache.Set(ctx, cacheKey, raw, opts.CacheTTL); err != nil {
				logger.Warn("Failed to cache response", zap.Error(err), zap.String("key", cacheKey))
			}
		}
	}

	if c.bus != nil && method != http.MethodGet {
		resource := resourceFor(path)
		c.bus.Publish(ctx, util.Event{
			Type:     resource + "." + eventVerb(method),
			Resource: resource,
		})
	}

	return &env, nil
}

// send performs the HTTP exchange, retrying transport-level failures with
// exponential backoff. HTTP error statuses are never retried here.
func (c *Client) send(ctx context.Context, method, fullURL string, body []byte) (*http.Response, []byte, error) {
	var resp *http.Response
	var respBody []byte

	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.storeID != "" {
			req.Header.Set("X-Store-ID", c.storeID)
		}
		if c.branchID != "" {
			req.Header.Set("X-Branch-ID", c.branchID)
		}
		if c.tokens != nil {
			token, err := c.tokens.Token(ctx)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("failed to obtain token: %w", err))
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer r.Body.Close()

		respBody, err = io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", console_errors.ErrRequestFailed, err)
	}
	return resp, respBody, nil
}

func cacheKeyFor(method, requestPath string) string {
	return method + " " + requestPath
}

// InvalidationKeyPrefix is the cache key prefix covering every cached GET
// for a resource collection.
func InvalidationKeyPrefix(resource string) string {
	return http.MethodGet + " /" + resource
}

// resourceFor extracts the collection name from an API path like
// "/products/42" so invalidation can target it.
func resourceFor(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func eventVerb(method string) string {
	switch method {
	case http.MethodPost:
		return "created"
	case http.MethodDelete:
		return "deleted"
	default:
		return "updated"
	}
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for key := range h {
		out[key] = h.Get(key)
	}
	return out
}
