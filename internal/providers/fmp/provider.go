// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// FMP offers fundamentals, dividend history and earnings via a REST API
// with API key authentication.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/provider"
)

const (
	providerName   = "fmp"
	defaultBaseURL = "https://financialmodelingprep.com/api/v3"
)

// Config configures the FMP provider.
type Config struct {
	APIKey  string
	BaseURL string
	Options provider.Options
	Client  *infra.Client
}

// Provider implements provider.Provider for FMP.
type Provider struct {
	*provider.BaseProvider
	client  *infra.Client
	baseURL string
	apiKey  string
}

// New creates a new FMP provider.
func New(cfg Config, log zerolog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = infra.Default()
	}
	return &Provider{
		BaseProvider: provider.NewBaseProvider(providerName, cfg.Options, log),
		client:       cfg.Client,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
	}
}

// FetchOverview combines the company profile with the quote (shares, P/E,
// EPS) and the latest analyst recommendation. Only the profile is required.
func (p *Provider) FetchOverview(ctx context.Context, symbol string) *provider.Result {
	var profiles []fmpProfile
	if r := p.fetchJSON(ctx, provider.CategoryOverview, symbol, "/profile/"+symbol, nil, &profiles); r != nil {
		return r
	}
	if len(profiles) == 0 || profiles[0].Symbol == "" {
		return provider.NoData(providerName, "no profile for "+symbol)
	}

	var quote *fmpQuote
	var quotes []fmpQuote
	if p.fetchSupplement(ctx, symbol, "/quote/"+symbol, &quotes) && len(quotes) > 0 {
		quote = &quotes[0]
	}

	var rec *fmpRecommendation
	var recs []fmpRecommendation
	if p.fetchSupplement(ctx, symbol, "/analyst-stock-recommendations/"+symbol, &recs) && len(recs) > 0 {
		rec = &recs[0]
	}

	return provider.Success(providerName, mapOverview(profiles[0], quote, rec))
}

// FetchDividends returns the full dividend history, newest first.
func (p *Provider) FetchDividends(ctx context.Context, symbol string) *provider.Result {
	var hist fmpHistoricalDividend
	if r := p.fetchJSON(ctx, provider.CategoryDividends, symbol, "/historical-price-full/stock_dividend/"+symbol, nil, &hist); r != nil {
		return r
	}
	if len(hist.Historical) == 0 {
		return provider.NoData(providerName, "no dividend history for "+symbol)
	}
	return provider.Success(providerName, mapDividends(hist.Historical))
}

// FetchIncome returns income statements for the period.
func (p *Provider) FetchIncome(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var rows []fmpIncomeStatement
	if r := p.fetchJSON(ctx, provider.CategoryIncome, symbol, "/income-statement/"+symbol, periodQuery(period), &rows); r != nil {
		return r
	}
	if len(rows) == 0 {
		return provider.NoData(providerName, "no income statements for "+symbol)
	}
	return provider.Success(providerName, mapIncome(rows, period, hints))
}

// FetchBalance returns balance sheets for the period.
func (p *Provider) FetchBalance(ctx context.Context, symbol string, period provider.Period) *provider.Result {
	var rows []fmpBalanceSheet
	if r := p.fetchJSON(ctx, provider.CategoryBalance, symbol, "/balance-sheet-statement/"+symbol, periodQuery(period), &rows); r != nil {
		return r
	}
	if len(rows) == 0 {
		return provider.NoData(providerName, "no balance sheets for "+symbol)
	}
	return provider.Success(providerName, mapBalance(rows, period))
}

// FetchCashFlow returns cash flow statements for the period.
func (p *Provider) FetchCashFlow(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var rows []fmpCashFlow
	if r := p.fetchJSON(ctx, provider.CategoryCashFlow, symbol, "/cash-flow-statement/"+symbol, periodQuery(period), &rows); r != nil {
		return r
	}
	if len(rows) == 0 {
		return provider.NoData(providerName, "no cash flow statements for "+symbol)
	}
	return provider.Success(providerName, mapCashFlow(rows, period, hints))
}

// FetchEarnings returns reported quarterly EPS with estimates.
func (p *Provider) FetchEarnings(ctx context.Context, symbol string) *provider.Result {
	var rows []fmpEarningsCalendar
	q := url.Values{"limit": {"40"}}
	if r := p.fetchJSON(ctx, provider.CategoryEarnings, symbol, "/historical/earning_calendar/"+symbol, q, &rows); r != nil {
		return r
	}
	data := mapEarnings(symbol, rows)
	if data.Empty() {
		return provider.NoData(providerName, "no earnings history for "+symbol)
	}
	return provider.Success(providerName, data)
}

// --- Shared helpers ---

var _ provider.Provider = (*Provider)(nil)

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func periodQuery(period provider.Period) url.Values {
	if period == provider.PeriodQuarterly {
		return url.Values{"period": {"quarter"}, "limit": {"20"}}
	}
	return url.Values{"limit": {"10"}}
}

// fetchJSON performs one upstream call and decodes the body into dest.
// A non-nil Result means the call failed and has been classified.
func (p *Provider) fetchJSON(ctx context.Context, cat provider.Category, symbol, path string, q url.Values, dest any) *provider.Result {
	if r := p.Guard(ctx, cat); r != nil {
		return r
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("apikey", p.apiKey)

	body, err := p.client.Get(ctx, p.baseURL+path+"?"+q.Encode(), jsonHeaders())
	if err != nil {
		return p.classify(cat, symbol, err)
	}
	if r := p.checkErrorBody(cat, body); r != nil {
		return r
	}
	if isEmptyDocument(body) {
		return provider.NoData(providerName, fmt.Sprintf("no %s data for %s", cat, symbol))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return provider.Failuref(providerName, "parse FMP %s response: %v", cat, err)
	}
	return nil
}

// classify handles FMP's plan-restriction and quota bodies on HTTP errors
// before the generic status rules.
func (p *Provider) classify(cat provider.Category, symbol string, err error) *provider.Result {
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case isPremiumMessage(httpErr.Body):
			p.BlockEndpoint(cat, fmt.Sprintf("HTTP %d: plan restricted", httpErr.StatusCode))
			return provider.Failure(providerName, fmt.Sprintf("premium required for %s", cat))
		case isLimitMessage(httpErr.Body) && httpErr.StatusCode != http.StatusTooManyRequests:
			p.MarkRateLimited("daily limit reached")
			return provider.RateLimited(providerName, "daily limit reached")
		}
	}
	return p.Classify(cat, symbol, err)
}

// checkErrorBody recognizes {"Error Message": ...} bodies served with 2xx.
func (p *Provider) checkErrorBody(cat provider.Category, body []byte) *provider.Result {
	if len(body) == 0 || body[0] != '{' {
		return nil
	}
	var e fmpErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.ErrorMessage == "" {
		return nil
	}

	switch {
	case isLimitMessage(e.ErrorMessage):
		p.MarkRateLimited(e.ErrorMessage)
		return provider.RateLimited(providerName, e.ErrorMessage)
	case isPremiumMessage(e.ErrorMessage):
		p.BlockEndpoint(cat, e.ErrorMessage)
		return provider.Failure(providerName, fmt.Sprintf("premium required for %s", cat))
	case strings.Contains(strings.ToLower(e.ErrorMessage), "invalid api key"):
		p.MarkAuthFailed(e.ErrorMessage)
		return provider.Failure(providerName, e.ErrorMessage)
	}
	return provider.Failure(providerName, e.ErrorMessage)
}

// isEmptyDocument reports a body that carries no records, like the {}
// FMP serves for unknown symbols on some endpoints.
func isEmptyDocument(body []byte) bool {
	switch string(bytes.TrimSpace(body)) {
	case "", "{}", "[]", "null":
		return true
	}
	return false
}

func isLimitMessage(s string) bool {
	return strings.Contains(strings.ToLower(s), "limit reach")
}

func isPremiumMessage(s string) bool {
	msg := strings.ToLower(s)
	return strings.Contains(msg, "exclusive endpoint") ||
		strings.Contains(msg, "subscription") ||
		strings.Contains(msg, "premium")
}

// fetchSupplement performs a best-effort call for optional overview fields.
// Failures leave endpoint state untouched, except an upstream 429 or quota
// message, which exhausts the whole provider.
func (p *Provider) fetchSupplement(ctx context.Context, symbol, path string, dest any) bool {
	if r := p.Guard(ctx, provider.CategoryOverview); r != nil {
		return false
	}
	q := url.Values{"apikey": {p.apiKey}}
	body, err := p.client.Get(ctx, p.baseURL+path+"?"+q.Encode(), jsonHeaders())
	if err != nil {
		var httpErr *infra.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			p.MarkRateLimited("HTTP 429")
		}
		p.Logger().Debug().Err(err).Str("symbol", symbol).Str("path", path).Msg("Optional overview call failed")
		return false
	}
	var e fmpErrorBody
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &e) == nil && e.ErrorMessage != "" {
		if isLimitMessage(e.ErrorMessage) {
			p.MarkRateLimited(e.ErrorMessage)
		}
		return false
	}
	return json.Unmarshal(body, dest) == nil
}
