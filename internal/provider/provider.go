// Package provider implements the provider abstraction layer. It defines the
// data categories every upstream source serves, the uniform Result shape each
// fetch returns, the Provider interface, and a priority-ordered registry.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Category is one of the six financial-data kinds.
type Category string

const (
	CategoryOverview  Category = "overview"
	CategoryDividends Category = "dividends"
	CategoryIncome    Category = "income"
	CategoryBalance   Category = "balance"
	CategoryCashFlow  Category = "cashflow"
	CategoryEarnings  Category = "earnings"
)

// Categories lists every category in full-analysis order.
var Categories = []Category{
	CategoryOverview,
	CategoryDividends,
	CategoryIncome,
	CategoryBalance,
	CategoryCashFlow,
	CategoryEarnings,
}

// ParseCategory resolves a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &ErrUnknownCategory{Value: s}
}

// Periodic reports whether the category varies by reporting period.
func (c Category) Periodic() bool {
	return c == CategoryIncome || c == CategoryBalance || c == CategoryCashFlow
}

// CacheType is the cache key component for the category and period,
// e.g. "income" or "income_quarterly".
func (c Category) CacheType(p Period) string {
	if c.Periodic() && p == PeriodQuarterly {
		return string(c) + "_quarterly"
	}
	return string(c)
}

// Period is the reporting period for statement categories.
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// ParsePeriod resolves a period name. Empty input means annual.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "annual":
		return PeriodAnnual, nil
	case "quarterly", "quarter":
		return PeriodQuarterly, nil
	}
	return "", &ErrInvalidPeriod{Value: s}
}

// Status classifies every fetch outcome.
type Status string

const (
	StatusSuccess       Status = "SUCCESS"
	StatusNoData        Status = "NO_DATA"
	StatusRateLimited   Status = "RATE_LIMITED"
	StatusProviderError Status = "PROVIDER_ERROR"
)

// Result is the universal return value of a fetch. Data is non-nil if and
// only if Status is SUCCESS; an empty list is a valid success.
type Result struct {
	Status    Status     `json:"status"`
	Data      any        `json:"data"`
	Provider  string     `json:"provider_name,omitempty"`
	Error     string     `json:"error_message,omitempty"`
	CachedAt  *time.Time `json:"cached_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// OK reports whether the result carries data.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess && r.Data != nil
}

// Success wraps found data. A nil data value is reported as NO_DATA so the
// Data/Status invariant always holds.
func Success(provider string, data any) *Result {
	if data == nil {
		return NoData(provider, "empty payload")
	}
	return &Result{Status: StatusSuccess, Data: data, Provider: provider}
}

// NoData reports that the upstream confirmed there is nothing to return.
func NoData(provider, msg string) *Result {
	return &Result{Status: StatusNoData, Provider: provider, Error: msg}
}

// RateLimited reports an upstream quota or frequency limit.
func RateLimited(provider, msg string) *Result {
	return &Result{Status: StatusRateLimited, Provider: provider, Error: msg}
}

// Failure reports any other provider fault.
func Failure(provider, msg string) *Result {
	return &Result{Status: StatusProviderError, Provider: provider, Error: msg}
}

// Failuref is Failure with formatting.
func Failuref(provider, format string, args ...any) *Result {
	return Failure(provider, fmt.Sprintf(format, args...))
}

// Hints carry cross-category values used to compute derived fields.
type Hints struct {
	SharesOutstanding *float64           `json:"shares_outstanding,omitempty"`
	CurrentPrice      *float64           `json:"current_price,omitempty"`
	RevenueByYear     map[string]float64 `json:"revenue_by_year,omitempty"` // fiscal year -> revenue
}

// Request is a single-category fetch request.
type Request struct {
	Category Category
	Symbol   string
	Period   Period
	Hints    Hints
}

// Provider is the interface every upstream source implements. Fetch methods
// never return errors: expected failures are classified into the Result.
type Provider interface {
	Name() string
	Priority() int

	// IsAvailable is false while in cooldown or when today's quota is spent.
	IsAvailable() bool

	// EndpointAvailable is false while the category is paywall-blocked.
	EndpointAvailable(c Category) bool

	Status() ProviderStatus

	FetchOverview(ctx context.Context, symbol string) *Result
	FetchDividends(ctx context.Context, symbol string) *Result
	FetchIncome(ctx context.Context, symbol string, period Period, hints Hints) *Result
	FetchBalance(ctx context.Context, symbol string, period Period) *Result
	FetchCashFlow(ctx context.Context, symbol string, period Period, hints Hints) *Result
	FetchEarnings(ctx context.Context, symbol string) *Result
}

// Dispatch routes a request to the matching fetch method.
func Dispatch(ctx context.Context, p Provider, req Request) *Result {
	switch req.Category {
	case CategoryOverview:
		return p.FetchOverview(ctx, req.Symbol)
	case CategoryDividends:
		return p.FetchDividends(ctx, req.Symbol)
	case CategoryIncome:
		return p.FetchIncome(ctx, req.Symbol, req.Period, req.Hints)
	case CategoryBalance:
		return p.FetchBalance(ctx, req.Symbol, req.Period)
	case CategoryCashFlow:
		return p.FetchCashFlow(ctx, req.Symbol, req.Period, req.Hints)
	case CategoryEarnings:
		return p.FetchEarnings(ctx, req.Symbol)
	}
	return Failure(p.Name(), (&ErrUnknownCategory{Value: string(req.Category)}).Error())
}

// ProviderStatus is a point-in-time snapshot of a provider's health.
type ProviderStatus struct {
	Name                 string     `json:"name"`
	Priority             int        `json:"priority"`
	Available            bool       `json:"available"`
	DailyCalls           int        `json:"daily_calls"`
	DailyLimit           *int       `json:"daily_limit"`
	ExhaustedUntil       *time.Time `json:"exhausted_until"`
	ExhaustedReason      string     `json:"exhausted_reason,omitempty"`
	BlockedEndpointCount int        `json:"blocked_endpoint_count"`
	BlockedEndpoints     []Category `json:"blocked_endpoints,omitempty"`
}

// ErrUnknownCategory is returned for an unrecognized category name.
type ErrUnknownCategory struct {
	Value string
}

func (e *ErrUnknownCategory) Error() string {
	return fmt.Sprintf("unknown data category %q", e.Value)
}

// ErrInvalidPeriod is returned for an unrecognized period name.
type ErrInvalidPeriod struct {
	Value string
}

func (e *ErrInvalidPeriod) Error() string {
	return fmt.Sprintf("invalid period %q: expected annual or quarterly", e.Value)
}
