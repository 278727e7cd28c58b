package source

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/cache"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/httputil"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/observability"
)

// Endpoint paths served by a visualize server.
const (
	VisualizePath = "/api/visualize"
	HealthPath    = "/health"
	PrewarmPath   = "/external/health/gpt-3d-visualizer"
)

// Client timeouts.
const (
	RequestTimeout = 10 * time.Second
	PrewarmTimeout = 5 * time.Second
)

// HTTP fetches token streams from a visualize server.
type HTTP struct {
	baseURL  string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithCache caches raw responses in c for ttl (zero: no expiry).
func WithCache(c cache.Cache, ttl time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) HTTPOption {
	return func(h *HTTP) { h.logger = l }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.attempts = attempts
		h.delay = delay
	}
}

// WithTimeout bounds each visualize request. The default is RequestTimeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.timeout = d }
}

// NewHTTP creates a source for the server at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	h := &HTTP{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{},
		cache:    cache.NewNullCache(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		attempts: 3,
		delay:    500 * time.Millisecond,
		timeout:  RequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if h.cache == nil {
		h.cache = cache.NewNullCache()
	}
	if h.client == nil {
		h.client = &http.Client{}
	}
	h.attempts = max(h.attempts, 1)
	if h.timeout <= 0 {
		h.timeout = RequestTimeout
	}
	return h, nil
}

// Name returns "http".
func (h *HTTP) Name() string { return "http" }

// BaseURL returns the server URL without a trailing slash.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Fetch posts input to the server, serving repeated inputs from the cache.
func (h *HTTP) Fetch(ctx context.Context, input string) (*Result, error) {
	return observe(ctx, h.Name(), input, func() (*Result, error) {
		text, err := errors.NormalizeInput(input)
		if err != nil {
			return nil, err
		}

		key := cache.VisualizeKey(h.baseURL, text)
		if data, ok, err := h.cache.Get(ctx, key); err != nil {
			h.logger.Warn("cache read failed", "err", err)
		} else if ok {
			if resp, err := DecodeResponse(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "visualize")
				h.logger.Debug("visualize cache hit", "tokens", len(resp.Tokens))
				res := resp.Result()
				res.Cached = true
				return res, nil
			}
			_ = h.cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "visualize")

		var body []byte
		err = httputil.Retry(ctx, h.attempts, h.delay, func() error {
			var err error
			body, err = h.post(ctx, text)
			if err != nil {
				h.logger.Debug("visualize attempt failed", "err", err)
			}
			return err
		})
		if err != nil {
			return nil, err
		}

		resp, err := DecodeResponse(body)
		if err != nil {
			return nil, err
		}
		if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
			h.logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "visualize", len(body))
		}
		return resp.Result(), nil
	})
}

func (h *HTTP) post(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(Request{InputText: text})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+VisualizePath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return h.do(ctx, req)
}

func (h *HTTP) do(ctx context.Context, req *http.Request) ([]byte, error) {
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, transportError(req.URL, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", req.URL.Path)}
	}
	return body, nil
}

func transportError(u *url.URL, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "%s timed out", u.Path)}
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request %s", u.Path)}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Health queries the server health endpoint once, without retries.
func (h *HTTP) Health(ctx context.Context) (*HealthStatus, error) {
	body, err := h.get(ctx, HealthPath, RequestTimeout)
	if err != nil {
		return nil, err
	}
	var hs HealthStatus
	if err := json.Unmarshal(body, &hs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode health response")
	}
	return &hs, nil
}

// Prewarm wakes a cold server by hitting its prewarm endpoint. It is best
// effort: failures are logged at debug level and returned for callers that
// care.
func (h *HTTP) Prewarm(ctx context.Context) error {
	_, err := h.get(ctx, PrewarmPath, PrewarmTimeout)
	if err != nil {
		h.logger.Debug("prewarm failed", "url", h.baseURL+PrewarmPath, "err", err)
		return err
	}
	h.logger.Debug("prewarm ok", "url", h.baseURL+PrewarmPath)
	return nil
}

func (h *HTTP) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return h.do(ctx, req)
}
