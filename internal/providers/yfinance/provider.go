// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public v10 quoteSummary and v8 chart APIs.
//
// Yahoo Finance is a free, no-API-key provider. Its client is blocking and
// has no cancellation, so every call is offloaded to a worker goroutine and
// abandoned if the caller's context ends first.
package yfinance

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/provider"
)

const (
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

const (
	modulesOverview = "price,assetProfile,summaryDetail,defaultKeyStatistics,financialData,recommendationTrend"
	modulesEarnings = "earningsHistory"
)

// Config configures the Yahoo Finance provider.
type Config struct {
	BaseURL string
	Options provider.Options
	Client  *infra.Client
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	*provider.BaseProvider
	session *session
}

// New creates a new YFinance provider.
func New(cfg Config, log zerolog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = infra.Default()
	}
	return &Provider{
		BaseProvider: provider.NewBaseProvider(providerName, cfg.Options, log),
		session:      &session{client: cfg.Client, baseURL: strings.TrimRight(cfg.BaseURL, "/")},
	}
}

var _ provider.Provider = (*Provider)(nil)

// session is the blocking Yahoo client. Calls run to completion or to the
// HTTP client timeout.
type session struct {
	client  *infra.Client
	baseURL string
}

func (s *session) get(path string, q url.Values) ([]byte, error) {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Mozilla/5.0 (compatible; divlens)",
	}
	return s.client.Get(context.Background(), s.baseURL+path+"?"+q.Encode(), headers)
}

func (p *Provider) FetchOverview(ctx context.Context, symbol string) *provider.Result {
	res, r := p.quoteSummary(ctx, provider.CategoryOverview, symbol, modulesOverview)
	if r != nil {
		return r
	}
	if res.Price == nil && res.SummaryDetail == nil {
		return provider.NoData(providerName, "no overview for "+symbol)
	}
	return provider.Success(providerName, mapOverview(symbol, *res))
}

func (p *Provider) FetchDividends(ctx context.Context, symbol string) *provider.Result {
	q := url.Values{"range": {"max"}, "interval": {"1mo"}, "events": {"div"}}
	var resp yfChartDividendResponse
	if r := p.call(ctx, provider.CategoryDividends, symbol, "/v8/finance/chart/"+url.PathEscape(symbol), q, &resp); r != nil {
		return r
	}
	if r := checkError(resp.Chart.Error, symbol); r != nil {
		return r
	}
	if len(resp.Chart.Result) == 0 {
		return provider.NoData(providerName, "no chart for "+symbol)
	}
	divs := mapDividends(resp.Chart.Result[0])
	if len(divs) == 0 {
		return provider.NoData(providerName, "no dividend history for "+symbol)
	}
	return provider.Success(providerName, divs)
}

func (p *Provider) FetchIncome(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	module := "incomeStatementHistory"
	if period == provider.PeriodQuarterly {
		module = "incomeStatementHistoryQuarterly"
	}
	res, r := p.quoteSummary(ctx, provider.CategoryIncome, symbol, module)
	if r != nil {
		return r
	}
	c := res.IncomeStatementHistory
	if period == provider.PeriodQuarterly {
		c = res.IncomeStatementHistoryQuarterly
	}
	rows := c.Statements()
	if len(rows) == 0 {
		return provider.NoData(providerName, "no income statements for "+symbol)
	}
	return provider.Success(providerName, mapIncome(rows, period, hints))
}

func (p *Provider) FetchBalance(ctx context.Context, symbol string, period provider.Period) *provider.Result {
	module := "balanceSheetHistory"
	if period == provider.PeriodQuarterly {
		module = "balanceSheetHistoryQuarterly"
	}
	res, r := p.quoteSummary(ctx, provider.CategoryBalance, symbol, module)
	if r != nil {
		return r
	}
	c := res.BalanceSheetHistory
	if period == provider.PeriodQuarterly {
		c = res.BalanceSheetHistoryQuarterly
	}
	rows := c.Statements()
	if len(rows) == 0 {
		return provider.NoData(providerName, "no balance sheets for "+symbol)
	}
	return provider.Success(providerName, mapBalance(rows, period))
}

func (p *Provider) FetchCashFlow(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	module := "cashflowStatementHistory"
	if period == provider.PeriodQuarterly {
		module = "cashflowStatementHistoryQuarterly"
	}
	res, r := p.quoteSummary(ctx, provider.CategoryCashFlow, symbol, module)
	if r != nil {
		return r
	}
	c := res.CashflowStatementHistory
	if period == provider.PeriodQuarterly {
		c = res.CashflowStatementHistoryQuarterly
	}
	rows := c.Statements()
	if len(rows) == 0 {
		return provider.NoData(providerName, "no cash flow statements for "+symbol)
	}
	return provider.Success(providerName, mapCashFlow(rows, period, hints))
}

func (p *Provider) FetchEarnings(ctx context.Context, symbol string) *provider.Result {
	res, r := p.quoteSummary(ctx, provider.CategoryEarnings, symbol, modulesEarnings)
	if r != nil {
		return r
	}
	data := mapEarnings(symbol, res.EarningsHistory)
	if data.Empty() {
		return provider.NoData(providerName, "no earnings history for "+symbol)
	}
	return provider.Success(providerName, data)
}

// quoteSummary fetches the given modules and returns the first result.
func (p *Provider) quoteSummary(ctx context.Context, cat provider.Category, symbol, modules string) (*yfQuoteSummaryResult, *provider.Result) {
	var resp yfQuoteSummaryResponse
	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	if r := p.call(ctx, cat, symbol, path, url.Values{"modules": {modules}}, &resp); r != nil {
		return nil, r
	}
	if r := checkError(resp.QuoteSummary.Error, symbol); r != nil {
		return nil, r
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, provider.NoData(providerName, "no quote summary for "+symbol)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// call runs one blocking request on a worker goroutine and decodes the body.
// A non-nil Result means the call failed and has been classified.
func (p *Provider) call(ctx context.Context, cat provider.Category, symbol, path string, q url.Values, dest any) *provider.Result {
	if r := p.Guard(ctx, cat); r != nil {
		return r
	}
	body, err := infra.Offload(ctx, func() ([]byte, error) {
		return p.session.get(path, q)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return provider.Failure(providerName, err.Error())
		}
		return p.Classify(cat, symbol, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return provider.Failuref(providerName, "parse %s response: %v", cat, err)
	}
	return nil
}

// checkError maps an error object embedded in a 2xx body.
func checkError(e *yfError, symbol string) *provider.Result {
	if e == nil {
		return nil
	}
	if strings.EqualFold(e.Code, "Not Found") {
		return provider.NoData(providerName, "symbol not found: "+symbol)
	}
	return provider.Failure(providerName, coalesce(e.Description, e.Code))
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
