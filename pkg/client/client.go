// Package client provides the resilient HTTP transport used for all calls to
// the upstream case-search site: a global admission gate, a politeness delay,
// retry with exponential backoff, and captcha detection.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jagriti_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jagriti_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jagriti_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jagriti_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jagriti_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	captchaDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jagriti_captcha_detected_total",
		Help: "Total number of captcha challenge pages detected",
	})
)

// browserHeaders is the fixed header set presented on every request. The
// upstream site serves a degraded page to clients that do not look like a
// browser.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"DNT":             "1",
	"Connection":      "keep-alive",
}

// Config holds the transport configuration.
type Config struct {
	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt; the
	// attempt budget is MaxRetries+1.
	MaxRetries int

	// BackoffBase is the first retry wait.
	BackoffBase time.Duration

	// BackoffFactor is the exponential multiplier between waits.
	BackoffFactor float64

	// BackoffMax caps the retry wait.
	BackoffMax time.Duration

	// ConcurrencyLimit caps simultaneous in-flight calls across all callers.
	ConcurrencyLimit int64

	// DelayMin and DelayMax bound the uniform random politeness delay taken
	// before every call.
	DelayMin time.Duration
	DelayMax time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		BackoffBase:      500 * time.Millisecond,
		BackoffFactor:    2.0,
		BackoffMax:       30 * time.Second,
		ConcurrencyLimit: 5,
		DelayMin:         200 * time.Millisecond,
		DelayMax:         800 * time.Millisecond,
	}
}

// Client performs rate-limited, retried, captcha-aware HTTP calls.
type Client struct {
	httpClient *http.Client
	gate       *semaphore.Weighted
	config     Config
	logger     zerolog.Logger
}

// New creates a transport client. The admission gate is owned by the returned
// instance; share one Client to share the gate.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.ConcurrencyLimit <= 0 {
		return nil, fmt.Errorf("concurrency limit must be > 0 (got %d)", cfg.ConcurrencyLimit)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.BackoffFactor < 1 {
		return nil, fmt.Errorf("backoff factor must be >= 1 (got %g)", cfg.BackoffFactor)
	}
	if cfg.DelayMax < cfg.DelayMin {
		return nil, fmt.Errorf("delay max %v is below delay min %v", cfg.DelayMax, cfg.DelayMin)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		gate:   semaphore.NewWeighted(cfg.ConcurrencyLimit),
		config: cfg,
		logger: logger,
	}, nil
}

// Get performs one logical GET against rawURL and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil)
}

// PostForm performs one logical form POST against rawURL and returns the
// response body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, form)
}

// do runs the full call pipeline: admission gate, politeness delay, then
// attempts with exponential backoff between them.
func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, wrapContextErr(err)
	}
	defer c.gate.Release(1)

	delay := politenessDelay(c.config.DelayMin, c.config.DelayMax)
	if delay > 0 {
		c.logger.Debug().Str("endpoint", endpoint).Dur("delay", delay).Msg("Politeness delay")
	}
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}

	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDuration(c.config.BackoffBase, c.config.BackoffFactor, c.config.BackoffMax, attempt-1)
			retriesTotal.WithLabelValues(string(lastClass)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Str("error_class", string(lastClass)).
				Msg("Retrying request after backoff")
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		body, class, err := c.attempt(ctx, method, rawURL, form, endpoint)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return body, nil
		}

		if !shouldRetry(class) {
			return nil, err
		}

		lastErr = err
		lastClass = class
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Error().
		Str("endpoint", endpoint).
		Int("attempts", c.config.MaxRetries+1).
		Str("error_class", string(lastClass)).
		Msg("Retry attempts exhausted")

	if lastClass == ErrorClassTimeout {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, c.config.MaxRetries+1, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUpstreamUnavailable, c.config.MaxRetries+1, lastErr)
}

// attempt performs a single HTTP exchange and classifies its outcome.
func (c *Client) attempt(ctx context.Context, method, rawURL string, form url.Values, endpoint string) ([]byte, ErrorClass, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, ErrorClassClient, fmt.Errorf("create request: %w", err)
	}

	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classifyError(err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Str("error_class", string(class)).Msg("HTTP request failed")
		return nil, class, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, ErrorClassNetwork, fmt.Errorf("read response body: %w", err)
	}

	// A challenge page can arrive with any status. Terminal either way.
	if containsCaptchaMarker(body) {
		captchaDetectedTotal.Inc()
		errorsTotal.WithLabelValues(string(ErrorClassCaptcha)).Inc()
		requestsTotal.WithLabelValues(endpoint, "captcha").Inc()
		c.logger.Warn().Str("endpoint", endpoint).Msg("Captcha detected in upstream response")
		return nil, ErrorClassCaptcha, fmt.Errorf("%w: %s %s", ErrCaptchaRequired, method, rawURL)
	}

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")
		return nil, class, &UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
	}

	return body, "", nil
}

// endpointLabel reduces a URL to its path for metric labels, keeping
// cardinality bounded.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}
