// Package client provides the request pipeline in front of the Lenta retail
// API: URL building, response classification and transparent caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/lenta-assistant/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public Lenta site.
	DefaultBaseURL = "https://lenta.com"

	// DefaultUserAgent mimics the mobile browser the API is served to.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 12_0 like Mac OS X) " +
		"AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/69.0.3497.105 Mobile/15E148 Safari/605.1"

	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 30 * time.Second
)

// Prometheus metrics for Lenta API requests.
var (
	lentaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lenta_requests_total",
		Help: "Total Lenta API requests by operation and status",
	}, []string{"operation", "status"})

	lentaRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lenta_request_duration_seconds",
		Help:    "Lenta API request duration in seconds by operation",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	lentaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lenta_errors_total",
		Help: "Total Lenta API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents non-200 statuses below 500.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Request describes one logical call to the API.
type Request struct {
	// Operation names the call for metrics and logs (e.g., "cities")
	Operation string

	// Method is the HTTP method (default GET)
	Method string

	// Endpoint is the API method path, e.g. "v1/stores/0007"
	Endpoint string

	// Query parameters
	Query map[string]string

	// Body is sent as JSON
	Body map[string]any

	// TTL enables caching when positive. Only GET responses are written.
	TTL time.Duration
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r Request) operation() string {
	if r.Operation == "" {
		return strings.ToLower(r.method())
	}
	return r.Operation
}

// Client is the Lenta API request pipeline.
type Client struct {
	httpClient *http.Client
	cache      cache.Backend
	config     Config
	logger     zerolog.Logger
	inflight   singleflight.Group
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the site; requests go to {BaseURL}/api/{endpoint}
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout for a single upstream call
	Timeout time.Duration

	// Cache backend (nil disables caching)
	Cache cache.Backend

	// CoalesceRequests lets concurrent identical cacheable GETs share one upstream call
	CoalesceRequests bool

	// HTTPClient overrides the default client (Timeout is then ignored)
	HTTPClient *http.Client
}

// DefaultConfig returns the production configuration with the given cache.
func DefaultConfig(backend cache.Backend) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Cache:     backend,
	}
}

// New creates a new Lenta API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		config:     cfg,
		logger:     log.With().Str("component", "lenta-client").Logger(),
	}, nil
}

// URL returns the absolute URL of an API endpoint.
func (c *Client) URL(endpoint string) string {
	return c.config.BaseURL + "/api/" + strings.TrimLeft(endpoint, "/")
}

// Do runs req through the pipeline and returns the compacted JSON result.
//
// A cached value is returned without a network call when req.TTL is positive.
// Backend failures degrade to a miss on read and are swallowed on write.
// Upstream failures surface as *ClientError, *ServerError or *TransportError.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.method()
	operation := req.operation()
	target := c.URL(req.Endpoint)
	key := cache.Key{Method: method, URL: target, Query: req.Query, Body: req.Body}.String()

	startTime := time.Now()
	defer func() {
		lentaRequestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check Cache
	if req.TTL > 0 && c.cache != nil {
		if value, ok := c.cacheGet(ctx, key); ok {
			c.logger.Debug().Str("operation", operation).Str("key", key).Msg("Cache hit")
			lentaRequestsTotal.WithLabelValues(operation, "cached").Inc()
			return value, nil
		}
		c.logger.Debug().Str("operation", operation).Str("key", key).Msg("Cache miss")
	}

	// Step 2: Fetch, optionally sharing the call with identical in-flight requests
	if c.config.CoalesceRequests && method == http.MethodGet && req.TTL > 0 {
		// The shared call outlives any single caller; each caller stops
		// waiting on its own context.
		ch := c.inflight.DoChan(key, func() (any, error) {
			fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
			defer cancel()
			return c.fetch(fetchCtx, method, target, key, operation, req)
		})
		select {
		case <-ctx.Done():
			lentaRequestsTotal.WithLabelValues(operation, "network_error").Inc()
			return nil, &TransportError{URL: target, Err: ctx.Err()}
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			if res.Shared {
				c.logger.Debug().Str("operation", operation).Msg("Shared in-flight request")
			}
			value := res.Val.(json.RawMessage)
			return append(json.RawMessage(nil), value...), nil
		}
	}

	return c.fetch(ctx, method, target, key, operation, req)
}

// fetch performs the network call, classifies the response and stores
// successful GET results.
func (c *Client) fetch(ctx context.Context, method, target, key, operation string, req Request) (json.RawMessage, error) {
	c.logger.Debug().
		Str("operation", operation).
		Str("method", method).
		Str("url", target).
		Msg("Executing Lenta request")

	resp, err := c.execute(ctx, method, target, req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		lentaErrorsTotal.WithLabelValues(string(errClass)).Inc()
		lentaRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
		return nil, &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		lentaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		lentaRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		return nil, &TransportError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	lentaRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		errClass := c.classifyError(resp, nil)
		lentaErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Lenta request error")

		if errClass == ErrorClassServer {
			return nil, &ServerError{StatusCode: resp.StatusCode, URL: target}
		}
		return nil, &ClientError{StatusCode: resp.StatusCode, Message: extractMessage(body), URL: target}
	}

	value := compactJSON(body)

	// Step 3: Update Cache on success
	if req.TTL > 0 && method == http.MethodGet && c.cache != nil {
		if err := c.cache.Set(ctx, key, value, req.TTL); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
		} else {
			c.logger.Debug().Str("key", key).Dur("ttl", req.TTL).Msg("Cached response")
		}
	}

	return value, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) (json.RawMessage, bool) {
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache get error")
		}
		return nil, false
	}
	return value, true
}

func (c *Client) execute(ctx context.Context, method, target string, req Request) (*http.Response, error) {
	if len(req.Query) > 0 {
		values := url.Values{}
		for name, value := range req.Query {
			values.Set(name, value)
		}
		target += "?" + values.Encode()
	}

	var body io.Reader
	if method != http.MethodGet || len(req.Body) > 0 {
		payload := req.Body
		if payload == nil {
			payload = map[string]any{}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(httpReq)
}

// classifyError categorizes a failure for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		c.logger.Debug().Str("class", string(ErrorClassNetwork)).Msg("Error classified")
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 500:
		c.logger.Debug().Str("class", string(ErrorClassServer)).Msg("Error classified")
		return ErrorClassServer
	case resp.StatusCode != http.StatusOK:
		c.logger.Debug().Str("class", string(ErrorClassClient)).Msg("Error classified")
		return ErrorClassClient
	default:
		return ""
	}
}

// compactJSON returns body without insignificant whitespace, or an empty
// object when body is not a JSON document.
func compactJSON(body []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(buf.Bytes())
}

// extractMessage returns the "message" string of an error body, if any.
func extractMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch m := payload.Message.(type) {
	case nil:
		return ""
	case string:
		return m
	default:
		raw, _ := json.Marshal(m)
		return string(raw)
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the configured backend, nil when caching is disabled.
func (c *Client) Cache() cache.Backend {
	return c.cache
}
