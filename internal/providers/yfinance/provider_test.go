package yfinance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := provider.DefaultOptions()
	opts.MinCallInterval = 0
	opts.Priority = 3
	return New(Config{BaseURL: srv.URL, Options: opts}, zerolog.Nop())
}

// byModules serves quoteSummary bodies keyed by the modules parameter.
func byModules(bodies map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("modules")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchOverview(t *testing.T) {
	p := newTestProvider(t, byModules(map[string]string{modulesOverview: `{"quoteSummary":{"result":[{
		"price":{"longName":"Apple Inc.","shortName":"Apple","exchangeName":"NasdaqGS","currency":"USD",
			"regularMarketPrice":{"raw":190.5,"fmt":"190.50"},"marketCap":{"raw":2950000000000}},
		"assetProfile":{"sector":"Technology","industry":"Consumer Electronics","country":"United States"},
		"summaryDetail":{"dividendRate":{"raw":1.0},"dividendYield":{"raw":0.0052},"payoutRatio":{"raw":0.1493},
			"beta":{"raw":1.264},"trailingPE":{"raw":29.6},"exDividendDate":{"raw":1715299200},
			"fiftyTwoWeekLow":{"raw":164.08},"fiftyTwoWeekHigh":{"raw":199.62}},
		"defaultKeyStatistics":{"sharesOutstanding":{"raw":15334099968},"trailingEps":{"raw":6.43},"priceToBook":{}},
		"financialData":{"targetMeanPrice":{"raw":204.19},"debtToEquity":{"raw":140.97},"profitMargins":{"raw":0.26}},
		"recommendationTrend":{"trend":[{"period":"-1m","strongBuy":1,"buy":1,"hold":1,"sell":1,"strongSell":1},
			{"period":"0m","strongBuy":11,"buy":21,"hold":6,"sell":0,"strongSell":0}]}}],"error":null}}`}))

	r := p.FetchOverview(context.Background(), "AAPL")
	require.Equal(t, provider.StatusSuccess, r.Status, r.Error)
	ov := r.Data.(*models.CompanyOverview)

	assert.Equal(t, "Apple Inc.", ov.Name)
	assert.Equal(t, 190.5, *ov.CurrentPrice)
	assert.Equal(t, 15334099968.0, *ov.SharesOutstanding)
	assert.Equal(t, 0.52, *ov.DividendYield)
	assert.Equal(t, 14.93, *ov.PayoutRatio)
	assert.Equal(t, 1.26, *ov.Beta)
	assert.Equal(t, 1.41, *ov.DebtToEquity)
	assert.Equal(t, 26.0, *ov.ProfitMargin)
	assert.Equal(t, "2024-05-10", ov.ExDividendDate)
	assert.Nil(t, ov.PriceToBook, "empty {} is absent")
	assert.Equal(t, 38, ov.AnalystRatings.Total(), "current month wins")
}

func TestFetchOverviewNotFound(t *testing.T) {
	p := newTestProvider(t, byModules(nil))
	r := p.FetchOverview(context.Background(), "ZZZZ")
	assert.Equal(t, provider.StatusNoData, r.Status)
	assert.True(t, p.IsAvailable())
}

func TestEmbeddedNotFoundErrorIsNoData(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"No fundamentals data found"}}}`))
	})
	r := p.FetchEarnings(context.Background(), "ZZZZ")
	assert.Equal(t, provider.StatusNoData, r.Status)
}

func TestFetchDividends(t *testing.T) {
	var gotPath, gotEvents string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEvents = r.URL.Query().Get("events")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"KO","currency":"USD"},
			"events":{"dividends":{
				"1701302400":{"amount":0.46,"date":1701302400},
				"1710374400":{"amount":0.485,"date":1710374400}}}}],"error":null}}`))
	})

	r := p.FetchDividends(context.Background(), "KO")
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "/v8/finance/chart/KO", gotPath)
	assert.Equal(t, "div", gotEvents)

	divs := r.Data.([]models.DividendRecord)
	require.Len(t, divs, 2)
	assert.Equal(t, "2024-03-14", divs[0].ExDate)
	assert.Equal(t, 0.485, divs[0].Amount)
	assert.Equal(t, "USD", divs[0].Currency)
}

func TestFetchDividendsWithoutEventsIsNoData(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"BRK-B"}}],"error":null}}`))
	})
	r := p.FetchDividends(context.Background(), "BRKB")
	assert.Equal(t, provider.StatusNoData, r.Status)
	assert.Nil(t, r.Data)
}

func TestFetchStatements(t *testing.T) {
	p := newTestProvider(t, byModules(map[string]string{
		"incomeStatementHistory": `{"quoteSummary":{"result":[{"incomeStatementHistory":{"incomeStatementHistory":[
			{"endDate":{"raw":1696032000,"fmt":"2023-09-30"},"totalRevenue":{"raw":1000},"costOfRevenue":{"raw":550},"netIncome":{"raw":250}},
			{"endDate":{"raw":1664496000,"fmt":"2022-09-30"},"totalRevenue":{"raw":800},"netIncome":{"raw":200}}]}}]}}`,
		"balanceSheetHistoryQuarterly": `{"quoteSummary":{"result":[{"balanceSheetHistoryQuarterly":{"balanceSheetStatements":[
			{"endDate":{"raw":1711843200},"totalCurrentAssets":{"raw":150},"totalCurrentLiabilities":{"raw":100},
			 "longTermDebt":{"raw":90},"shortLongTermDebt":{"raw":10},"totalStockholderEquity":{"raw":50}}]}}]}}`,
		"cashflowStatementHistory": `{"quoteSummary":{"result":[{"cashflowStatementHistory":{"cashflowStatements":[
			{"endDate":{"fmt":"2023-09-30"},"totalCashFromOperatingActivities":{"raw":300},"capitalExpenditures":{"raw":-50},"dividendsPaid":{"raw":-60}}]}}]}}`,
	}))

	r := p.FetchIncome(context.Background(), "AAPL", provider.PeriodAnnual, provider.Hints{SharesOutstanding: utils.Float(50)})
	require.Equal(t, provider.StatusSuccess, r.Status)
	income := r.Data.([]models.IncomeStatement)
	require.Len(t, income, 2)
	assert.Equal(t, "2023-09-30", income[0].FiscalDateEnding)
	assert.Equal(t, 450.0, income[0].GrossProfit)
	assert.Equal(t, 25.0, *income[0].RevenueGrowth)
	assert.Equal(t, 5.0, *income[0].EPS)

	r = p.FetchBalance(context.Background(), "AAPL", provider.PeriodQuarterly)
	require.Equal(t, provider.StatusSuccess, r.Status)
	b := r.Data.([]models.BalanceSheet)[0]
	assert.Equal(t, "2024-03-31", b.FiscalDateEnding)
	assert.Equal(t, 100.0, b.TotalDebt)
	assert.Equal(t, 2.0, *b.DebtToEquity)

	r = p.FetchCashFlow(context.Background(), "AAPL", provider.PeriodAnnual, provider.Hints{
		RevenueByYear: provider.RevenueByYear(income),
	})
	require.Equal(t, provider.StatusSuccess, r.Status)
	cf := r.Data.([]models.CashFlow)[0]
	assert.Equal(t, 250.0, cf.FreeCashFlow)
	assert.Equal(t, 25.0, *cf.FCFMargin)

	r = p.FetchIncome(context.Background(), "AAPL", provider.PeriodQuarterly, provider.Hints{})
	assert.Equal(t, provider.StatusNoData, r.Status)
}

func TestFetchEarnings(t *testing.T) {
	p := newTestProvider(t, byModules(map[string]string{modulesEarnings: `{"quoteSummary":{"result":[{"earningsHistory":{"history":[
		{"epsActual":{"raw":1.53},"epsEstimate":{"raw":1.5},"epsDifference":{"raw":0.03},"surprisePercent":{"raw":0.02},"quarter":{"raw":1711843200}},
		{"epsActual":{},"epsEstimate":{"raw":1.35},"quarter":{"raw":1719705600}}]}}]}}`}))

	r := p.FetchEarnings(context.Background(), "AAPL")
	require.Equal(t, provider.StatusSuccess, r.Status)
	e := r.Data.(*models.EarningsData)
	require.Len(t, e.Quarterly, 1)
	assert.Equal(t, "2024-03-31", e.Quarterly[0].FiscalDateEnding)
	assert.Equal(t, 2.0, *e.Quarterly[0].SurprisePercentage)
	assert.Empty(t, e.Annual)
}

func TestRateLimitCoolsDown(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	r := p.FetchOverview(context.Background(), "AAPL")
	assert.Equal(t, provider.StatusRateLimited, r.Status)
	assert.False(t, p.IsAvailable())

	r = p.FetchDividends(context.Background(), "AAPL")
	assert.Equal(t, provider.StatusRateLimited, r.Status)
	assert.Equal(t, 1, calls)
}

func TestCancelledContextAbandonsCall(t *testing.T) {
	release := make(chan struct{})
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := p.FetchOverview(ctx, "AAPL")
	assert.Equal(t, provider.StatusProviderError, r.Status)
	assert.True(t, p.IsAvailable(), "caller timeout is not an upstream fault")
}

func TestNoDailyLimit(t *testing.T) {
	p := newTestProvider(t, byModules(nil))
	assert.Nil(t, p.Status().DailyLimit)
}
