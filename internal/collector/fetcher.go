package collector

import (
	"context"

	"RetailPulse/internal/model"
	"RetailPulse/internal/query"
)

// Fetcher defines the interface for reading the analytics service.
// Every method receives a query built by the query package.
type Fetcher interface {
	FetchKPIs(ctx context.Context, q query.ViewQuery) (model.KPISummary, error)
	FetchProfitDiagnostic(ctx context.Context, q query.ViewQuery) (model.ProfitDiagnostic, error)
	FetchDemandForecast(ctx context.Context, q query.ViewQuery) ([]model.ForecastPoint, error)
	Name() string
}

type bypassCacheKey struct{}

// WithCacheBypass marks ctx so that fetches skip memoized payloads. The fresh
// body is still stored.
func WithCacheBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassCacheKey{}, true)
}

// CacheBypassed reports whether ctx was marked by WithCacheBypass.
func CacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassCacheKey{}).(bool)
	return v
}
