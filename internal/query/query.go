package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"RetailPulse/internal/model"
)

// Analytics service endpoints.
const (
	EndpointKPIs     = "/api/kpis"
	EndpointProfit   = "/api/profit-diagnostic"
	EndpointForecast = "/api/demand-forecast"
)

// DefaultForecastDays is the forecast horizon requested by the forecast view.
const DefaultForecastDays = 90

const dateLayout = "2006-01-02"

// ViewQuery is the request a view issues: an endpoint plus its parameters.
type ViewQuery struct {
	Endpoint string
	Params   map[string]string
}

// Encode renders the parameters as a query string with keys in sorted order.
func (q ViewQuery) Encode() string {
	keys := make([]string, 0, len(q.Params))
	for k := range q.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.Params[k]))
	}
	return b.String()
}

// Key is the canonical identity of the query. Equal inputs always produce an
// equal key, which is what change detection and memoization compare.
func (q ViewQuery) Key() string {
	if len(q.Params) == 0 {
		return q.Endpoint
	}
	return q.Endpoint + "?" + q.Encode()
}

// Values converts the parameters to url.Values.
func (q ViewQuery) Values() url.Values {
	v := make(url.Values, len(q.Params))
	for k, p := range q.Params {
		v.Set(k, p)
	}
	return v
}

// FormatDate truncates t to its UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// BuildKPIQuery builds the KPI request for a date range and region.
func BuildKPIQuery(r model.DateRange, region string) ViewQuery {
	return ViewQuery{
		Endpoint: EndpointKPIs,
		Params: map[string]string{
			"start_date": FormatDate(r.Start),
			"end_date":   FormatDate(r.End),
			"region":     region,
		},
	}
}

// BuildProfitQuery builds the profit-diagnostic request for a date range.
func BuildProfitQuery(r model.DateRange) ViewQuery {
	return ViewQuery{
		Endpoint: EndpointProfit,
		Params: map[string]string{
			"start_date": FormatDate(r.Start),
			"end_date":   FormatDate(r.End),
		},
	}
}

// BuildForecastQuery builds the demand-forecast request. A non-positive days
// selects DefaultForecastDays.
func BuildForecastQuery(region, category, subCategory string, days int) ViewQuery {
	if days <= 0 {
		days = DefaultForecastDays
	}
	return ViewQuery{
		Endpoint: EndpointForecast,
		Params: map[string]string{
			"region":       region,
			"category":     category,
			"sub_category": subCategory,
			"days":         strconv.Itoa(days),
		},
	}
}
