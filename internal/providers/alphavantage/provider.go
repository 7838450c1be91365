// Package alphavantage implements the Alpha Vantage fundamentals provider.
// Every call goes through the single /query endpoint, selected by the
// function parameter.
//
// Free tier: 25 requests/day.
// Docs: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/provider"
)

const (
	providerName   = "alphavantage"
	defaultBaseURL = "https://www.alphavantage.co"
)

// Config configures the Alpha Vantage provider.
type Config struct {
	APIKey  string
	BaseURL string
	Options provider.Options
	Client  *infra.Client
}

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	*provider.BaseProvider
	client  *infra.Client
	baseURL string
	apiKey  string
}

// New creates a new Alpha Vantage provider.
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

var _ provider.Provider = (*Provider)(nil)

// FetchOverview returns the company overview. Unknown symbols come back as {}.
func (p *Provider) FetchOverview(ctx context.Context, symbol string) *provider.Result {
	var raw avOverview
	if r := p.query(ctx, provider.CategoryOverview, "OVERVIEW", symbol, &raw); r != nil {
		return r
	}
	if raw.Symbol == "" {
		return provider.NoData(providerName, "no overview for "+symbol)
	}
	return provider.Success(providerName, mapOverview(raw))
}

// FetchDividends returns the dividend history, newest first.
func (p *Provider) FetchDividends(ctx context.Context, symbol string) *provider.Result {
	var raw avDividends
	if r := p.query(ctx, provider.CategoryDividends, "DIVIDENDS", symbol, &raw); r != nil {
		return r
	}
	if len(raw.Data) == 0 {
		return provider.NoData(providerName, "no dividend history for "+symbol)
	}
	return provider.Success(providerName, mapDividends(raw.Data))
}

// FetchIncome returns income statements for the period.
func (p *Provider) FetchIncome(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var raw avReports[avIncome]
	if r := p.query(ctx, provider.CategoryIncome, "INCOME_STATEMENT", symbol, &raw); r != nil {
		return r
	}
	rows := pick(raw, period)
	if len(rows) == 0 {
		return provider.NoData(providerName, "no income statements for "+symbol)
	}
	return provider.Success(providerName, mapIncome(rows, period, hints))
}

// FetchBalance returns balance sheets for the period.
func (p *Provider) FetchBalance(ctx context.Context, symbol string, period provider.Period) *provider.Result {
	var raw avReports[avBalance]
	if r := p.query(ctx, provider.CategoryBalance, "BALANCE_SHEET", symbol, &raw); r != nil {
		return r
	}
	rows := pick(raw, period)
	if len(rows) == 0 {
		return provider.NoData(providerName, "no balance sheets for "+symbol)
	}
	return provider.Success(providerName, mapBalance(rows, period))
}

// FetchCashFlow returns cash flow statements for the period.
func (p *Provider) FetchCashFlow(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var raw avReports[avCashFlow]
	if r := p.query(ctx, provider.CategoryCashFlow, "CASH_FLOW", symbol, &raw); r != nil {
		return r
	}
	rows := pick(raw, period)
	if len(rows) == 0 {
		return provider.NoData(providerName, "no cash flow statements for "+symbol)
	}
	return provider.Success(providerName, mapCashFlow(rows, period, hints))
}

// FetchEarnings returns annual and quarterly EPS.
func (p *Provider) FetchEarnings(ctx context.Context, symbol string) *provider.Result {
	var raw avEarnings
	if r := p.query(ctx, provider.CategoryEarnings, "EARNINGS", symbol, &raw); r != nil {
		return r
	}
	data := mapEarnings(symbol, raw)
	if data.Empty() {
		return provider.NoData(providerName, "no earnings history for "+symbol)
	}
	return provider.Success(providerName, data)
}

func pick[T any](raw avReports[T], period provider.Period) []T {
	if period == provider.PeriodQuarterly {
		return raw.QuarterlyReports
	}
	return raw.AnnualReports
}

// query calls one Alpha Vantage function and decodes the body into dest.
// A non-nil Result means the call failed and has been classified.
func (p *Provider) query(ctx context.Context, cat provider.Category, function, symbol string, dest any) *provider.Result {
	if r := p.Guard(ctx, cat); r != nil {
		return r
	}
	q := url.Values{
		"function": {function},
		"symbol":   {symbol},
		"apikey":   {p.apiKey},
	}
	body, err := p.client.Get(ctx, p.baseURL+"/query?"+q.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		return p.Classify(cat, symbol, err)
	}
	if r := p.checkMessage(cat, body); r != nil {
		return r
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return provider.Failuref(providerName, "parse %s response: %v", function, err)
	}
	return nil
}

// checkMessage classifies the Note / Information / Error Message bodies that
// Alpha Vantage serves with HTTP 200.
func (p *Provider) checkMessage(cat provider.Category, body []byte) *provider.Result {
	var msg avMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil
	}
	switch {
	case msg.Information != "" && strings.Contains(strings.ToLower(msg.Information), "premium"):
		p.BlockEndpoint(cat, msg.Information)
		return provider.Failure(providerName, fmt.Sprintf("premium required for %s", cat))
	case msg.Note != "":
		p.MarkRateLimited(msg.Note)
		return provider.RateLimited(providerName, msg.Note)
	case msg.Information != "":
		p.MarkRateLimited(msg.Information)
		return provider.RateLimited(providerName, msg.Information)
	case msg.ErrorMessage != "":
		p.Logger().Warn().Str("category", string(cat)).Str("error", msg.ErrorMessage).Msg("Upstream error")
		return provider.Failure(providerName, msg.ErrorMessage)
	}
	return nil
}
