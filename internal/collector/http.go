package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"RetailPulse/internal/cache"
	"RetailPulse/internal/metrics"
	"RetailPulse/internal/model"
	"RetailPulse/internal/query"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
)

// BreakerConfig configures the circuit breaker in front of the service.
type BreakerConfig struct {
	Enabled     bool
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerConfig mirrors the settings used for other upstream clients.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:     true,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
	}
}

// HTTPConfig configures an HTTPFetcher.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Proxy   string
	Timeout time.Duration
	Breaker BreakerConfig
}

// HTTPFetcher implements Fetcher against the analytics service's JSON API.
type HTTPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	breaker *gobreaker.CircuitBreaker
	cache   cache.Cache
	logger  *zap.Logger
}

// NewHTTPFetcher creates a fetcher with optional proxy support. A nil cache
// disables memoization.
func NewHTTPFetcher(cfg HTTPConfig, c cache.Cache, logger *zap.Logger) *HTTPFetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	f := &HTTPFetcher{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		Client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cache:  c,
		logger: logger,
	}
	if cfg.Breaker.Enabled {
		f.breaker = newBreaker("analytics", cfg.Breaker, logger)
	}
	return f
}

func newBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	metrics.CircuitBreakerStateGauge.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("service", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.CircuitBreakerStateGauge.WithLabelValues(name).Set(float64(to))
		},
	})
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) FetchKPIs(ctx context.Context, q query.ViewQuery) (model.KPISummary, error) {
	var out model.KPISummary
	err := f.fetch(ctx, q, func(body []byte) (err error) {
		out, err = decodeKPIs(body)
		return err
	})
	return out, err
}

func (f *HTTPFetcher) FetchProfitDiagnostic(ctx context.Context, q query.ViewQuery) (model.ProfitDiagnostic, error) {
	var out model.ProfitDiagnostic
	err := f.fetch(ctx, q, func(body []byte) (err error) {
		out, err = decodeProfitDiagnostic(body)
		return err
	})
	return out, err
}

func (f *HTTPFetcher) FetchDemandForecast(ctx context.Context, q query.ViewQuery) ([]model.ForecastPoint, error) {
	var out []model.ForecastPoint
	err := f.fetch(ctx, q, func(body []byte) (err error) {
		out, err = decodeDemandForecast(body)
		return err
	})
	return out, err
}

// fetch resolves q from the cache or the service and hands the body to
// decode. Only bodies that decode cleanly are stored in the cache. A context
// marked with WithCacheBypass always reaches the service.
func (f *HTTPFetcher) fetch(ctx context.Context, q query.ViewQuery, decode func([]byte) error) error {
	key := q.Key()
	if !CacheBypassed(ctx) {
		if body, ok := f.cached(ctx, key); ok {
			if err := decode(body); err == nil {
				return nil
			}
			f.logger.Debug("cached payload rejected, refetching", zap.String("key", key))
		}
	}

	body, err := f.get(ctx, q)
	if err != nil {
		return err
	}
	if msg, ok := serviceErrorMessage(body); ok {
		return serviceError(q.Endpoint, http.StatusOK, msg)
	}
	if err := decode(body); err != nil {
		return err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, key, body); err != nil {
			f.logger.Warn("cache store failed", zap.String("backend", f.cache.Name()), zap.Error(err))
		}
	}
	return nil
}

func (f *HTTPFetcher) cached(ctx context.Context, key string) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	body, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(f.cache.Name(), "error").Inc()
		f.logger.Warn("cache lookup failed", zap.String("backend", f.cache.Name()), zap.Error(err))
		return nil, false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues(f.cache.Name(), "miss").Inc()
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues(f.cache.Name(), "hit").Inc()
	return body, true
}

type rawResponse struct {
	status int
	body   []byte
}

// get performs the HTTP request. Non-2xx responses come back as service
// errors, carrying the service's message when the body has one.
func (f *HTTPFetcher) get(ctx context.Context, q query.ViewQuery) ([]byte, error) {
	endpoint := f.BaseURL + q.Endpoint
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	start := time.Now()
	resp, err := f.execute(func() (*rawResponse, error) {
		return f.do(ctx, endpoint)
	})
	metrics.AnalyticsRequestDuration.WithLabelValues(q.Endpoint).Observe(time.Since(start).Seconds())

	if resp == nil {
		metrics.AnalyticsRequestsTotal.WithLabelValues(q.Endpoint, "error").Inc()
		if err == nil {
			err = errors.New("empty response")
		}
		return nil, networkError(q.Endpoint, err)
	}
	metrics.AnalyticsRequestsTotal.WithLabelValues(q.Endpoint, strconv.Itoa(resp.status)).Inc()

	if resp.status < 200 || resp.status > 299 {
		msg, ok := serviceErrorMessage(resp.body)
		if !ok {
			msg = fmt.Sprintf("unexpected status %d", resp.status)
		}
		return nil, serviceError(q.Endpoint, resp.status, msg)
	}
	return resp.body, nil
}

// execute routes fn through the circuit breaker when one is configured.
// 5xx responses count as breaker failures but are still returned.
func (f *HTTPFetcher) execute(fn func() (*rawResponse, error)) (*rawResponse, error) {
	if f.breaker == nil {
		return fn()
	}
	var resp *rawResponse
	_, err := f.breaker.Execute(func() (interface{}, error) {
		r, err := fn()
		if err != nil {
			return nil, err
		}
		resp = r
		if r.status >= 500 {
			return nil, fmt.Errorf("status %d", r.status)
		}
		return nil, nil
	})
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func (f *HTTPFetcher) do(ctx context.Context, endpoint string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &rawResponse{status: resp.StatusCode, body: body}, nil
}
