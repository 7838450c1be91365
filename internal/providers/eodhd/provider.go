// Package eodhd implements the EOD Historical Data provider. Fundamentals
// are served as one large document; the filter parameter narrows it to the
// section each category needs.
//
// Free tier: 20 requests/day, fundamentals require a paid plan (HTTP 402).
// Docs: https://eodhd.com/financial-apis/
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/provider"
)

const (
	providerName   = "eodhd"
	defaultBaseURL = "https://eodhd.com/api"
	exchangeSuffix = ".US"
)

// Section filters for the fundamentals endpoint.
const (
	filterOverview = "General,Highlights,Valuation,SharesStats,Technicals,SplitsDividends,AnalystRatings"
	filterIncome   = "Financials::Income_Statement"
	filterBalance  = "Financials::Balance_Sheet"
	filterCashFlow = "Financials::Cash_Flow"
	filterEarnings = "Earnings"
)

// Config configures the EODHD provider.
type Config struct {
	APIKey  string
	BaseURL string
	Options provider.Options
	Client  *infra.Client
}

// Provider implements provider.Provider for EODHD.
type Provider struct {
	*provider.BaseProvider
	client  *infra.Client
	baseURL string
	apiKey  string
}

// New creates a new EODHD provider.
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

func (p *Provider) FetchOverview(ctx context.Context, symbol string) *provider.Result {
	var raw eodOverview
	found, r := p.fundamentals(ctx, provider.CategoryOverview, symbol, filterOverview, &raw)
	if r != nil {
		return r
	}
	if !found || raw.General.Name == "" {
		return provider.NoData(providerName, "no overview for "+symbol)
	}
	return provider.Success(providerName, mapOverview(symbol, raw))
}

func (p *Provider) FetchDividends(ctx context.Context, symbol string) *provider.Result {
	var rows []eodDividend
	found, r := p.get(ctx, provider.CategoryDividends, symbol, "/div/"+symbol+exchangeSuffix, nil, &rows)
	if r != nil {
		return r
	}
	divs := mapDividends(rows)
	if !found || len(divs) == 0 {
		return provider.NoData(providerName, "no dividend history for "+symbol)
	}
	return provider.Success(providerName, divs)
}

func (p *Provider) FetchIncome(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var raw eodStatements[eodIncome]
	found, r := p.fundamentals(ctx, provider.CategoryIncome, symbol, filterIncome, &raw)
	if r != nil {
		return r
	}
	stmts := mapIncome(raw, period, hints)
	if !found || len(stmts) == 0 {
		return provider.NoData(providerName, "no income statements for "+symbol)
	}
	return provider.Success(providerName, stmts)
}

func (p *Provider) FetchBalance(ctx context.Context, symbol string, period provider.Period) *provider.Result {
	var raw eodStatements[eodBalance]
	found, r := p.fundamentals(ctx, provider.CategoryBalance, symbol, filterBalance, &raw)
	if r != nil {
		return r
	}
	sheets := mapBalance(raw, period)
	if !found || len(sheets) == 0 {
		return provider.NoData(providerName, "no balance sheets for "+symbol)
	}
	return provider.Success(providerName, sheets)
}

func (p *Provider) FetchCashFlow(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	var raw eodStatements[eodCashFlow]
	found, r := p.fundamentals(ctx, provider.CategoryCashFlow, symbol, filterCashFlow, &raw)
	if r != nil {
		return r
	}
	flows := mapCashFlow(raw, period, hints)
	if !found || len(flows) == 0 {
		return provider.NoData(providerName, "no cash flow statements for "+symbol)
	}
	return provider.Success(providerName, flows)
}

func (p *Provider) FetchEarnings(ctx context.Context, symbol string) *provider.Result {
	var raw eodEarnings
	found, r := p.fundamentals(ctx, provider.CategoryEarnings, symbol, filterEarnings, &raw)
	if r != nil {
		return r
	}
	data := mapEarnings(symbol, raw)
	if !found || data.Empty() {
		return provider.NoData(providerName, "no earnings history for "+symbol)
	}
	return provider.Success(providerName, data)
}

func (p *Provider) fundamentals(ctx context.Context, cat provider.Category, symbol, filter string, dest any) (bool, *provider.Result) {
	return p.get(ctx, cat, symbol, "/fundamentals/"+symbol+exchangeSuffix, url.Values{"filter": {filter}}, dest)
}

// get performs one upstream call. found is false when EODHD answered with an
// empty document ({}, [], null or "NA"); a non-nil Result means the call
// failed and has been classified.
func (p *Provider) get(ctx context.Context, cat provider.Category, symbol, path string, q url.Values, dest any) (bool, *provider.Result) {
	if r := p.Guard(ctx, cat); r != nil {
		return false, r
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_token", p.apiKey)
	q.Set("fmt", "json")

	body, err := p.client.Get(ctx, p.baseURL+path+"?"+q.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		return false, p.Classify(cat, symbol, err)
	}
	if isEmptyDocument(body) {
		return false, nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, provider.Failuref(providerName, "parse EODHD %s response: %v", cat, err)
	}
	return true, nil
}

func isEmptyDocument(body []byte) bool {
	switch string(bytes.TrimSpace(body)) {
	case "", "{}", "[]", "null", `"NA"`:
		return true
	}
	return false
}
