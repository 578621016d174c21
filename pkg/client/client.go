// Package client provides the PokeAPI HTTP client used by the data-proxy
// service. It performs a single GET per call and classifies failures into
// UpstreamError values; caching and shaping live in other packages.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public PokeAPI v2 root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Prometheus metrics for upstream requests.
var (
	pokeapiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by resource and status",
	}, []string{"resource", "status"})

	pokeapiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	pokeapiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by kind",
	}, []string{"kind"})
)

// Client issues GET requests against PokeAPI.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to relative paths, e.g. "https://pokeapi.co/api/v2".
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single request when HTTPClient is nil.
	Timeout time.Duration

	// HTTPClient overrides the transport (tests, custom proxies).
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration for the public PokeAPI.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "pokeapi-client").Logger(),
	}, nil
}

// ResolveURL turns a resource path into the absolute URL that is requested
// and used as cache key. Absolute URLs (as found in upstream payloads) are
// returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get fetches path and returns the raw JSON body. Exactly one attempt is
// made; any failure is returned as *UpstreamError.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	url := c.ResolveURL(path)
	resource := "external"
	if rel, ok := strings.CutPrefix(url, c.config.BaseURL); ok {
		resource = resourceName(rel)
	}

	startTime := time.Now()
	defer func() {
		pokeapiRequestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(resource, &UpstreamError{
			Kind:    KindUnexpected,
			Path:    path,
			Message: "create request",
			Err:     err,
		})
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", url).
		Msg("Executing PokeAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pokeapiRequestsTotal.WithLabelValues(resource, "network_error").Inc()
		return nil, c.fail(resource, &UpstreamError{
			Kind:    KindUnreachable,
			Path:    path,
			Message: "pokemon API is not reachable",
			Err:     err,
		})
	}
	defer resp.Body.Close()

	pokeapiRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.fail(resource, &UpstreamError{
			Kind:       KindHTTPStatus,
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    "error from external pokemon API",
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(resource, &UpstreamError{
			Kind:    KindUnreachable,
			Path:    path,
			Message: "read response body",
			Err:     err,
		})
	}

	return body, nil
}

// fail records metrics and logs for a failed call.
func (c *Client) fail(resource string, err *UpstreamError) *UpstreamError {
	pokeapiErrorsTotal.WithLabelValues(string(err.Kind)).Inc()

	event := c.logger.Warn()
	if err.Kind != KindHTTPStatus {
		event = c.logger.Error()
	}
	event.Err(err.Err).
		Str("path", err.Path).
		Str("resource", resource).
		Str("kind", string(err.Kind)).
		Int("status", err.HTTPStatus()).
		Msg("PokeAPI request failed")

	return err
}

// resourceName reduces a path to its first segment so metric labels stay
// bounded ("/pokemon/25/" -> "pokemon").
func resourceName(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
