// Package client provides the batched query engine for the tabular data
// service: request planning, retried HTTP fetches, error classification,
// result assembly, overflow detection and call memoization.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/tabquery-client/pkg/cache"
	"github.com/Sternrassler/tabquery-client/pkg/logging"
	"github.com/Sternrassler/tabquery-client/pkg/params"
	"github.com/Sternrassler/tabquery-client/pkg/ratelimit"
	"github.com/Sternrassler/tabquery-client/pkg/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Version is reported in the client-info header.
const Version = "0.1.0"

// Wire protocol constants.
const (
	// APIPrefix precedes every endpoint path.
	APIPrefix = "/data/v1"

	// RowCountHeader carries the number of rows in a response.
	RowCountHeader = "row-count"

	// SourceHeader carries the principal name.
	SourceHeader = "SOURCE"

	// ClientInfoHeader carries client metadata.
	ClientInfoHeader = "CLIENT-INFO"

	// OverflowProbe is appended to a query to fetch the second page.
	OverflowProbe = "&pagenum=2"

	// InvalidPrincipal is sent when no principal is configured.
	InvalidPrincipal = "invalid_user"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_requests_total",
		Help: "Total HTTP requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tabquery_request_duration_seconds",
		Help:    "Call duration in seconds by endpoint, all chunks included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_errors_total",
		Help: "Total service errors by category",
	}, []string{"category"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	batchedCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_batched_calls_total",
		Help: "Total calls split into several requests by endpoint",
	}, []string{"endpoint"})

	overflowProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_overflow_probes_total",
		Help: "Total overflow probe requests by endpoint",
	}, []string{"endpoint"})

	overflowUnprobedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabquery_overflow_unprobed_total",
		Help: "Batched chunks that reached the page cap without an overflow probe",
	}, []string{"endpoint"})
)

// Client is the query engine.
// It is safe for concurrent use; each call runs its requests sequentially.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      TokenProvider
	cache       cache.Store
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the service root, e.g. "https://host:port"
	BaseURL string

	// Tokens supplies the bearer credential (REQUIRED)
	Tokens TokenProvider

	// Principal is sent in the SOURCE header (default: "invalid_user")
	Principal string

	// Cache memoizes calls (default: cache.Noop)
	Cache cache.Store

	// Redis, when set, shares the quota cooldown between clients
	Redis *redis.Client

	// HTTPClient overrides the default client built from Timeout
	HTTPClient *http.Client

	// Timeout bounds each HTTP attempt
	Timeout time.Duration

	// Retry on transport errors
	MaxAttempts   int
	RetryInterval time.Duration

	// Batching
	BatchSize      int  // List length above which a parameter is split
	StrictBatching bool // Reject calls with several oversized lists

	// PageCap is the service's maximum rows per response
	PageCap int

	// Rate Limiting
	RateLimit         float64       // Requests per second, 0 disables pacing
	RateLimitCooldown time.Duration // Refuse requests this long after a -11 response, 0 disables
}

// DefaultConfig returns a configuration matching the service's documented limits.
func DefaultConfig(tokens TokenProvider) Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Tokens:            tokens,
		Principal:         InvalidPrincipal,
		Cache:             cache.Noop{},
		Timeout:           60 * time.Second,
		MaxAttempts:       5,
		RetryInterval:     2 * time.Second,
		BatchSize:         params.DefaultBatchSize,
		PageCap:           100000,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.MaxAttempts)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %v)", cfg.Timeout)
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch_size must be >= 1 (got %d)", cfg.BatchSize)
	}

	if cfg.PageCap < 1 {
		return nil, fmt.Errorf("page_cap must be >= 1 (got %d)", cfg.PageCap)
	}

	if cfg.Principal == "" {
		cfg.Principal = InvalidPrincipal
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}

	logger := logging.NewLogger("tabquery-client")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     cfg.Tokens,
		cache:      cfg.Cache,
		rateLimiter: ratelimit.NewTracker(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit,
			Cooldown:          cfg.RateLimitCooldown,
		}, cfg.Redis, logger),
		config: cfg,
		logger: logger,
	}, nil
}

// Call runs one query and decodes the result.
//
// A nil fields uses ep.Fields. The cache is consulted before any request and
// updated after a successful decode. Requests run sequentially and the first
// failure aborts the call.
func (c *Client) Call(ctx context.Context, ep Endpoint, fields []string, args ...params.Param) (*table.Table, error) {
	if fields == nil {
		fields = ep.Fields
	}

	plan, err := c.plan(ep, fields, args)
	if err != nil {
		return nil, err
	}

	key := cache.NewCallKey(ep.Name, append([]string{"field=" + strings.Join(fields, ",")}, plan.Signature...))

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		c.logger.Debug().Str("endpoint", ep.Name).Msg("Cache hit")
		return table.Decode(string(data), fields, ep.StringColumns)
	case !errors.Is(err, cache.ErrCacheMiss):
		c.logger.Warn().Err(err).Str("endpoint", ep.Name).Msg("Cache get error")
	}

	csvText, err := c.execute(ctx, ep, plan)
	if err != nil {
		return nil, err
	}

	tbl, err := table.Decode(csvText, fields, ep.StringColumns)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, []byte(csvText)); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", ep.Name).Msg("Failed to cache result")
	}

	return tbl, nil
}

// Raw runs one query and returns the assembled CSV without decoding or caching.
func (c *Client) Raw(ctx context.Context, ep Endpoint, fields []string, args ...params.Param) (string, error) {
	if fields == nil {
		fields = ep.Fields
	}

	plan, err := c.plan(ep, fields, args)
	if err != nil {
		return "", err
	}
	return c.execute(ctx, ep, plan)
}

func (c *Client) plan(ep Endpoint, fields []string, args []params.Param) (*params.Plan, error) {
	plan, err := params.BuildPlan(ep.Path, fields, args, params.PlanOptions{
		BatchSize: c.config.BatchSize,
		Strict:    c.config.StrictBatching,
	})
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", ep.Name, err)
	}
	return plan, nil
}

// execute fetches every query of plan in order and assembles the bodies.
func (c *Client) execute(ctx context.Context, ep Endpoint, plan *params.Plan) (string, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(ep.Name).Observe(time.Since(startTime).Seconds())
	}()

	if plan.Batched() {
		batchedCallsTotal.WithLabelValues(ep.Name).Inc()
	}

	bodies := make([]string, 0, len(plan.Queries))
	for i, query := range plan.Queries {
		res, err := c.fetch(ctx, ep, query)
		if err != nil {
			return "", c.chunkError(plan, i, err)
		}

		body, err := c.validate(ctx, ep, res)
		if err != nil {
			return "", c.chunkError(plan, i, err)
		}

		if !plan.Batched() {
			if err := c.checkOverflow(ctx, ep, query, res); err != nil {
				return "", err
			}
		} else if res.RowCount >= c.config.PageCap {
			overflowUnprobedTotal.WithLabelValues(ep.Name).Inc()
			c.logger.Warn().
				Str("endpoint", ep.Name).
				Int("chunk", i+1).
				Int("row_count", res.RowCount).
				Msg("Batched chunk reached the page cap and may be truncated")
		}

		bodies = append(bodies, body)
	}

	return Assemble(bodies), nil
}

func (c *Client) chunkError(plan *params.Plan, i int, err error) error {
	if !plan.Batched() {
		return err
	}
	return fmt.Errorf("chunk %d/%d of %s: %w", i+1, len(plan.Queries), plan.BatchParam, err)
}

// validate classifies a response body and records failures.
func (c *Client) validate(ctx context.Context, ep Endpoint, res *FetchResult) (string, error) {
	body, err := Classify(res.Body)
	if err == nil {
		return body, nil
	}

	var se *ServerError
	if errors.As(err, &se) {
		se.StatusCode = res.StatusCode
		errorsTotal.WithLabelValues(string(se.Category)).Inc()
		if se.Category == CategoryRateLimited {
			if markErr := c.rateLimiter.MarkExhausted(ctx); markErr != nil {
				c.logger.Warn().Err(markErr).Msg("Failed to record quota exhaustion")
			}
		}
	}

	c.logger.Warn().
		Err(err).
		Str("endpoint", ep.Name).
		Int("status", res.StatusCode).
		Msg("Service returned an error")
	return "", err
}

// FetchResult is the outcome of one HTTP round trip.
type FetchResult struct {
	StatusCode int
	Body       string
	RowCount   int
}

// fetch performs one GET of query, retrying transport errors.
// HTTP 400 fails immediately with CategoryInvalidParameter; every other
// status is returned for body classification.
func (c *Client) fetch(ctx context.Context, ep Endpoint, query string) (*FetchResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	target := c.baseURL + APIPrefix + query

	c.logger.Debug().
		Str("endpoint", ep.Name).
		Str("query", query).
		Msg("Executing request")

	var result *FetchResult
	var errClass ErrorClass

	retryCfg := RetryConfig{MaxAttempts: c.config.MaxAttempts, Interval: c.config.RetryInterval}
	err = retryWithInterval(ctx, retryCfg, c.logger, func(attempt int) error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			errClass = ErrorClassClient
			return c.waitError(ctx, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			errClass = ErrorClassClient
			return fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req, token, ep.Module)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug().Err(err).Str("endpoint", ep.Name).Int("attempt", attempt).Msg("HTTP request failed")
			requestsTotal.WithLabelValues(ep.Name, "network_error").Inc()
			errClass = ErrorClassNetwork
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			requestsTotal.WithLabelValues(ep.Name, "network_error").Inc()
			errClass = ErrorClassNetwork
			return fmt.Errorf("read response body: %w", err)
		}

		requestsTotal.WithLabelValues(ep.Name, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusBadRequest {
			errClass = ErrorClassClient
			errorsTotal.WithLabelValues(string(CategoryInvalidParameter)).Inc()
			return &ServerError{
				Category:   CategoryInvalidParameter,
				Message:    CategoryInvalidParameter.Message(),
				Body:       string(body),
				StatusCode: resp.StatusCode,
			}
		}

		result = &FetchResult{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RowCount:   c.parseRowCount(resp.Header),
		}
		return nil
	}, func(error) ErrorClass {
		return errClass
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// waitError maps a refusal from the rate limiter onto the client's error types.
// A quota cooldown reports as a RateLimited ServerError wrapping
// ratelimit.ErrQuotaExhausted.
func (c *Client) waitError(ctx context.Context, err error) error {
	if errors.Is(err, ratelimit.ErrQuotaExhausted) {
		errorsTotal.WithLabelValues(string(CategoryRateLimited)).Inc()
		return &ServerError{
			Category: CategoryRateLimited,
			Message:  CategoryRateLimited.Message(),
			Err:      err,
		}
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}
	return err
}

func (c *Client) setHeaders(req *http.Request, token, module string) {
	req.Close = true
	req.Header.Set("Connection", "close")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(SourceHeader, c.config.Principal)
	req.Header.Set(ClientInfoHeader, fmt.Sprintf("go/%s;sdk/%s;module/%s", runtime.Version(), Version, module))
}

// parseRowCount reads the row-count header, defaulting to 0.
func (c *Client) parseRowCount(h http.Header) int {
	v := h.Get(RowCountHeader)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		c.logger.Warn().Str("value", v).Msg("Malformed row-count header")
		return 0
	}
	return n
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
