package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/openapi"
)

const (
	DefaultBaseURL      = "http://localhost:5000"
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	breakerName         = "recommender"
)

// BreakerConfig tunes the circuit breaker. The breaker trips once at least
// MinRequests calls were seen in the interval and the transport failure ratio
// reaches FailureRatio.
type BreakerConfig struct {
	Enabled      bool
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
}

// Config describes how to reach the recommender service.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
	Breaker      BreakerConfig
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Breaker: BreakerConfig{
			Enabled:      true,
			MinRequests:  5,
			FailureRatio: 0.6,
			Interval:     time.Minute,
			OpenTimeout:  30 * time.Second,
			HalfOpenMax:  1,
		},
	}
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept as
// provided.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for failures and breaker transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers an Observer for call outcomes.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithCatalog overrides the endpoint catalog (defaults to the embedded
// contract).
func WithCatalog(catalog *openapi.Catalog) Option {
	return func(c *Client) {
		if catalog != nil {
			c.catalog = catalog
		}
	}
}

// Client issues recommendation requests.
type Client struct {
	cfg      Config
	http     *http.Client
	catalog  *openapi.Catalog
	breaker  *gobreaker.CircuitBreaker[[]string]
	logger   zerolog.Logger
	observer Observer
}

// New validates cfg and constructs a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logging.WithComponent("client"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.catalog == nil {
		catalog, err := openapi.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("client: load contract: %w", err)
		}
		c.catalog = catalog
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, c.logger, c.observer)
	}
	return c, nil
}

// BaseURL reports the configured service base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// URL returns the request URL a Recommend call would use.
func (c *Client) URL(method model.Method, identifier string) (string, error) {
	endpoint, err := c.catalog.Endpoint(method)
	if err != nil {
		return "", err
	}
	return endpoint.URL(c.cfg.BaseURL, identifier), nil
}

// Recommend requests recommendations for identifier using method. The
// returned slice preserves the service's order.
func (c *Client) Recommend(ctx context.Context, method model.Method, identifier string) ([]string, error) {
	target, err := c.URL(method, identifier)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var recommendations []string
	if c.breaker != nil {
		recommendations, err = c.breaker.Execute(func() ([]string, error) {
			return c.do(ctx, target)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
			c.observer.ObserveRequest(method, OutcomeRejected, time.Since(started))
			c.logFailure(ctx, method, OutcomeRejected, err)
			return nil, err
		}
	} else {
		recommendations, err = c.do(ctx, target)
	}

	outcome := classify(err)
	c.observer.ObserveRequest(method, outcome, time.Since(started))
	if err != nil {
		c.logFailure(ctx, method, outcome, err)
		return nil, err
	}
	return recommendations, nil
}

func (c *Client) logFailure(ctx context.Context, method model.Method, outcome Outcome, err error) {
	event := c.logger.Warn().Str("method", string(method)).Str("outcome", string(outcome)).Err(err)
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		event = event.Str("request_id", requestID)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		event = event.Int("status", statusErr.StatusCode)
	}
	event.Msg("recommendation request failed")
}

func (c *Client) do(ctx context.Context, target string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	oversized := int64(len(body)) > c.cfg.MaxBodyBytes

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if oversized {
			return nil, &StatusError{StatusCode: resp.StatusCode}
		}
		return nil, statusError(resp.StatusCode, body)
	}
	if oversized {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrTransport, c.cfg.MaxBodyBytes)
	}
	return decodeRecommendations(body)
}

func statusError(status int, body []byte) error {
	var payload struct {
		Error any `json:"error"`
	}
	out := &StatusError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		if message, ok := payload.Error.(string); ok {
			out.Message = message
		}
	}
	return out
}

func decodeRecommendations(body []byte) ([]string, error) {
	if !json.Valid(bytes.TrimSpace(body)) {
		return nil, fmt.Errorf("%w: malformed response body", ErrTransport)
	}
	var payload struct {
		Recommendations *[]string `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if payload.Recommendations == nil {
		return nil, fmt.Errorf("%w: recommendations field missing", ErrInvalidResponse)
	}
	out := make([]string, len(*payload.Recommendations))
	copy(out, *payload.Recommendations)
	return out, nil
}

func classify(err error) Outcome {
	var statusErr *StatusError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &statusErr):
		return OutcomeServerError
	case errors.Is(err, ErrInvalidResponse):
		return OutcomeInvalidResponse
	default:
		return OutcomeTransportError
	}
}
