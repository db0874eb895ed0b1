// Package client provides the HTTP transport for the Metal Archives site:
// one GET per call, raw bytes back, classified errors, no retries.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/cache"
	"github.com/Sternrassler/metal-archives-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the site every URL template is resolved against.
const DefaultBaseURL = "https://www.metal-archives.com"

// Prometheus metrics for transport operations.
var (
	maRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_requests_total",
		Help: "Total Metal Archives requests by endpoint and status",
	}, []string{"endpoint", "status"})

	maRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ma_request_duration_seconds",
		Help:    "Metal Archives request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	maErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_errors_total",
		Help: "Total transport errors by class",
	}, []string{"class"})
)

// Client performs GET requests against the site. It is safe for
// concurrent use by many paged managers.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the site, used by Get for relative paths and by callers
	// resolving URL templates.
	BaseURL string

	// User-Agent header (REQUIRED). The site refuses anonymous scrapers.
	UserAgent string

	// Timeout per request.
	Timeout time.Duration

	// Redis enables the shared cooldown tracker. Optional.
	Redis *redis.Client

	// EnableCache turns on the Redis response cache. Requires Redis.
	EnableCache bool

	// CacheTTL applies to cached responses without an Expires header.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		CacheTTL:  cache.DefaultTTL,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.EnableCache && cfg.Redis == nil {
		return nil, fmt.Errorf("response cache requires a redis client")
	}

	logger := log.With().Str("component", "ma-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}

	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	if cfg.EnableCache {
		manager, err := cache.NewManager(cfg.Redis, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("create cache manager: %w", err)
		}
		c.cache = manager
	}

	return c, nil
}

// BaseURL returns the normalized site base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get fetches rawURL and returns the response body. A path starting with
// "/" is resolved against the configured base URL.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.config.BaseURL + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Class: ErrorClassClient, Err: fmt.Errorf("create request: %w", err)}
	}

	return c.Do(req)
}

// Do executes req once and returns the body of a 2xx response.
// Every failure is a *TransportError.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL)
	rawURL := req.URL.String()

	startTime := time.Now()
	defer func() {
		maRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Cooldown gate
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			// Redis trouble must not take the site down with it.
			c.logger.Warn().Err(err).Msg("Cooldown check failed - sending request anyway")
		} else if !allowed {
			maRequestsTotal.WithLabelValues(endpoint, "blocked").Inc()
			maErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, &TransportError{URL: rawURL, Class: ErrorClassRateLimit, Err: ErrRequestBlocked}
		}
	}

	// Step 2: Cache lookup and conditional headers
	var cacheKey cache.Key
	var cached *cache.Entry
	if c.cache != nil {
		cacheKey = cache.KeyFromURL(req.URL)
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil {
			cached = entry
			if cache.ShouldMakeConditionalRequest(entry) {
				cache.AddConditionalHeaders(req, entry)
				c.logger.Debug().Str("endpoint", endpoint).Str("etag", entry.ETag).Msg("Making conditional request")
			} else {
				c.logger.Debug().Str("endpoint", endpoint).Msg("Serving page from cache")
				maRequestsTotal.WithLabelValues(endpoint, "cached").Inc()
				return entry.Body, nil
			}
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Executing request")

	// Step 3: One attempt, no retries
	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classifyNetworkError(err)
		maErrorsTotal.WithLabelValues(string(class)).Inc()
		maRequestsTotal.WithLabelValues(endpoint, string(class)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Str("error_class", string(class)).Msg("HTTP request failed")
		return nil, &TransportError{URL: rawURL, Class: class, Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)

	// Step 4: Cooldown bookkeeping
	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cooldown state")
		}
	}

	// Step 5: 304 served from cache
	if resp.StatusCode == http.StatusNotModified && cached != nil {
		maRequestsTotal.WithLabelValues(endpoint, status).Inc()
		cache.NotModifiedResponses.Inc()

		var expires time.Time
		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" {
			expires, _ = http.ParseTime(expiresStr)
		}
		if _, err := c.cache.Refresh(ctx, cacheKey, expires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache TTL")
		}

		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		return cached.Body, nil
	}

	// Step 6: Non-success statuses
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		maErrorsTotal.WithLabelValues(string(class)).Inc()
		maRequestsTotal.WithLabelValues(endpoint, status).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Request error")

		return nil, &TransportError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Class:      class,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		class := classifyNetworkError(err)
		maErrorsTotal.WithLabelValues(string(class)).Inc()
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode, Class: class, Err: fmt.Errorf("read body: %w", err)}
	}

	maRequestsTotal.WithLabelValues(endpoint, status).Inc()

	// Step 7: Store on success
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry := cache.NewEntry(resp.Header, body, c.cache.DefaultTTL())
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().Str("endpoint", endpoint).Dur("ttl", entry.TTL()).Msg("Cached response")
		}
	}

	return body, nil
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

// classifyStatus maps a non-success status to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// classifyNetworkError separates deadlines from other connectivity errors.
func classifyNetworkError(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// endpointLabel keeps metric cardinality bounded: the first two path
// segments, e.g. "/archives/ajax-band-list".
func endpointLabel(u *url.URL) string {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 2 {
		segments = segments[:2]
	}
	return "/" + strings.Join(segments, "/")
}
