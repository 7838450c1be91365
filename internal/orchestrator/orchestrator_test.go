package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// stub is a scripted provider that counts calls per category and records
// the hints it receives.
type stub struct {
	*provider.BaseProvider
	respond func(s *stub, req provider.Request) *provider.Result

	mu    sync.Mutex
	calls map[provider.Category]int
	hints map[provider.Category]provider.Hints
}

func newStub(name string, priority int, clk *clock, respond func(s *stub, req provider.Request) *provider.Result) *stub {
	opts := provider.DefaultOptions()
	opts.Priority = priority
	opts.MinCallInterval = 0
	opts.Clock = clk.Now
	return &stub{
		BaseProvider: provider.NewBaseProvider(name, opts, zerolog.Nop()),
		respond:      respond,
		calls:        make(map[provider.Category]int),
		hints:        make(map[provider.Category]provider.Hints),
	}
}

// handle goes through the real quota and cooldown path before responding.
func (s *stub) handle(ctx context.Context, req provider.Request) *provider.Result {
	if r := s.Guard(ctx, req.Category); r != nil {
		return r
	}
	s.mu.Lock()
	s.calls[req.Category]++
	s.hints[req.Category] = req.Hints
	s.mu.Unlock()
	return s.respond(s, req)
}

func (s *stub) Calls(c provider.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[c]
}

func (s *stub) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.calls {
		n += v
	}
	return n
}

func (s *stub) Hints(c provider.Category) provider.Hints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hints[c]
}

func (s *stub) FetchOverview(ctx context.Context, symbol string) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryOverview, Symbol: symbol})
}

func (s *stub) FetchDividends(ctx context.Context, symbol string) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryDividends, Symbol: symbol})
}

func (s *stub) FetchIncome(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryIncome, Symbol: symbol, Period: period, Hints: hints})
}

func (s *stub) FetchBalance(ctx context.Context, symbol string, period provider.Period) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryBalance, Symbol: symbol, Period: period})
}

func (s *stub) FetchCashFlow(ctx context.Context, symbol string, period provider.Period, hints provider.Hints) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryCashFlow, Symbol: symbol, Period: period, Hints: hints})
}

func (s *stub) FetchEarnings(ctx context.Context, symbol string) *provider.Result {
	return s.handle(ctx, provider.Request{Category: provider.CategoryEarnings, Symbol: symbol})
}

// sampleData returns a well-formed payload for every category.
func sampleData(c provider.Category, symbol string) any {
	switch c {
	case provider.CategoryOverview:
		return &models.CompanyOverview{
			Symbol:            symbol,
			Name:              symbol + " Inc.",
			SharesOutstanding: utils.Float(100),
			CurrentPrice:      utils.Float(50),
			DividendYield:     utils.Float(3),
			AnalystRatings:    models.Ratings{Buy: 3, Hold: 1},
		}
	case provider.CategoryDividends:
		return []models.DividendRecord{
			{ExDate: "2024-03-14", Amount: 0.5},
			{ExDate: "2023-12-14", Amount: 0.5},
			{ExDate: "2023-09-14", Amount: 0.45},
		}
	case provider.CategoryIncome:
		return []models.IncomeStatement{
			{FiscalDateEnding: "2023-12-31", TotalRevenue: 1100},
			{FiscalDateEnding: "2022-12-31", TotalRevenue: 1000},
		}
	case provider.CategoryBalance:
		return []models.BalanceSheet{{FiscalDateEnding: "2023-12-31", DebtToEquity: utils.Float(0.4)}}
	case provider.CategoryCashFlow:
		return []models.CashFlow{{FiscalDateEnding: "2023-12-31", FreeCashFlow: 300, DividendsPaid: -100}}
	case provider.CategoryEarnings:
		return &models.EarningsData{Symbol: symbol, Annual: []models.AnnualEarnings{{FiscalDateEnding: "2023-12-31", ReportedEPS: 2}}}
	}
	return nil
}

func succeed(s *stub, req provider.Request) *provider.Result {
	return provider.Success(s.Name(), sampleData(req.Category, req.Symbol))
}

func fail(s *stub, _ provider.Request) *provider.Result {
	return provider.Failure(s.Name(), "upstream 500")
}

type fixture struct {
	orch  *Orchestrator
	store *cache.Store
	clock *clock
}

func newFixture(t *testing.T, providers ...provider.Provider) *fixture {
	t.Helper()
	return newFixtureWithClock(t, &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}, providers...)
}

func newFixtureWithClock(t *testing.T, clk *clock, providers ...provider.Provider) *fixture {
	t.Helper()
	store, err := cache.NewStore(afero.NewMemMapFs(), cache.Config{Enabled: true, Dir: "/cache", MaxMemoryEntries: 64},
		zerolog.Nop(), cache.WithClock(clk.Now))
	require.NoError(t, err)

	o := New(provider.NewRegistry(providers...), store, Config{NegativeTTLHours: 1}, zerolog.Nop())
	o.now = clk.Now
	return &fixture{orch: o, store: store, clock: clk}
}

func dividends(symbol string) provider.Request {
	return provider.Request{Category: provider.CategoryDividends, Symbol: symbol}
}

func TestPriorityOrderAndCaching(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	b := newStub("b", 1, clk, succeed)
	f := newFixtureWithClock(t, clk, b, a)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "a", r.Provider)
	assert.Equal(t, 1, a.Calls(provider.CategoryDividends))
	assert.Zero(t, b.TotalCalls())

	r = f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, cacheSource, r.Provider)
	require.NotNil(t, r.CachedAt)
	require.NotNil(t, r.ExpiresAt)
	assert.Equal(t, 48*time.Hour, r.ExpiresAt.Sub(*r.CachedAt))
	assert.Len(t, r.Data.([]models.DividendRecord), 3)
	assert.Equal(t, 1, a.Calls(provider.CategoryDividends), "served from cache")
}

func TestNoDataTerminatesFallback(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	primary := newStub("primary", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		return provider.NoData(s.Name(), "no dividends for "+req.Symbol)
	})
	secondary := newStub("secondary", 1, clk, func(s *stub, req provider.Request) *provider.Result {
		return provider.Success(s.Name(), sampleData(req.Category, req.Symbol))
	})
	f := newFixtureWithClock(t, clk, primary, secondary)

	r := f.orch.Fetch(context.Background(), dividends("AAPL"))
	assert.Equal(t, provider.StatusNoData, r.Status)
	assert.Equal(t, "primary", r.Provider)
	assert.Nil(t, r.Data)
	assert.Equal(t, 1, primary.Calls(provider.CategoryDividends))
	assert.Zero(t, secondary.TotalCalls(), "a later provider is never consulted after NO_DATA")
	assert.Zero(t, f.store.Stats().Writes, "NO_DATA is not cached")
}

func TestNegativeCacheShortCircuit(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, fail)
	b := newStub("b", 1, clk, func(s *stub, _ provider.Request) *provider.Result {
		return provider.RateLimited(s.Name(), "quota")
	})
	f := newFixtureWithClock(t, clk, a, b)

	r := f.orch.Fetch(context.Background(), dividends("T"))
	assert.Equal(t, provider.StatusProviderError, r.Status)
	assert.Contains(t, r.Error, "all providers exhausted")
	assert.Nil(t, r.Data)
	assert.Equal(t, int64(1), f.store.Stats().Writes)

	r = f.orch.Fetch(context.Background(), dividends("T"))
	assert.Equal(t, provider.StatusProviderError, r.Status)
	assert.Equal(t, cacheSource, r.Provider)
	assert.Equal(t, 1, a.TotalCalls())
	assert.Equal(t, 1, b.TotalCalls())
	assert.Equal(t, int64(1), f.store.Stats().Writes)

	f.clock.Advance(61 * time.Minute)
	f.orch.Fetch(context.Background(), dividends("T"))
	assert.Equal(t, 2, a.TotalCalls(), "negative entry expired")
}

func TestNegativeCacheIsPerKey(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	calls := 0
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		calls++
		if req.Period == provider.PeriodQuarterly {
			return provider.Failure(s.Name(), "quarterly unsupported")
		}
		return succeed(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	q := f.orch.Fetch(context.Background(), provider.Request{Category: provider.CategoryIncome, Symbol: "KO", Period: provider.PeriodQuarterly})
	assert.Equal(t, provider.StatusProviderError, q.Status)

	r := f.orch.Fetch(context.Background(), provider.Request{Category: provider.CategoryIncome, Symbol: "KO"})
	assert.Equal(t, provider.StatusSuccess, r.Status, "annual key is unaffected")
	assert.Equal(t, 2, calls)
}

func TestExhaustedProviderIsSkippedUntilCooldownEnds(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, _ provider.Request) *provider.Result {
		s.MarkRateLimited("HTTP 429")
		return provider.RateLimited(s.Name(), "rate limited (HTTP 429)")
	})
	b := newStub("b", 1, clk, succeed)
	f := newFixtureWithClock(t, clk, a, b)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "b", r.Provider)
	assert.Equal(t, 1, a.TotalCalls())

	r = f.orch.Fetch(context.Background(), dividends("PEP"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, 1, a.TotalCalls(), "exhausted provider not invoked")

	f.clock.Advance(61 * time.Minute)
	f.orch.Fetch(context.Background(), dividends("MO"))
	assert.Equal(t, 2, a.TotalCalls(), "eligible again after cooldown")
}

func TestEndpointBlockIsScoped(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		if req.Category == provider.CategoryBalance {
			s.BlockEndpoint(provider.CategoryBalance, "HTTP 402")
			return provider.Failure(s.Name(), "premium subscription required for balance")
		}
		return succeed(s, req)
	})
	b := newStub("b", 1, clk, succeed)
	f := newFixtureWithClock(t, clk, a, b)

	r := f.orch.Fetch(context.Background(), provider.Request{Category: provider.CategoryBalance, Symbol: "KO"})
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "b", r.Provider)

	r = f.orch.Fetch(context.Background(), provider.Request{Category: provider.CategoryBalance, Symbol: "PEP"})
	assert.Equal(t, "b", r.Provider)
	assert.Equal(t, 1, a.Calls(provider.CategoryBalance), "blocked endpoint skipped")

	r = f.orch.Fetch(context.Background(), provider.Request{Category: provider.CategoryOverview, Symbol: "KO"})
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "a", r.Provider, "other endpoints stay usable")
}

func TestPanickingProviderFallsThrough(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(*stub, provider.Request) *provider.Result { panic("boom") })
	b := newStub("b", 1, clk, succeed)
	f := newFixtureWithClock(t, clk, a, b)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "b", r.Provider)
}

func TestSuccessWithoutDataBecomesNoData(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, _ provider.Request) *provider.Result {
		return &provider.Result{Status: provider.StatusSuccess, Provider: s.Name()}
	})
	f := newFixtureWithClock(t, clk, a)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	assert.Equal(t, provider.StatusNoData, r.Status)
}

func TestEmptyListIsSuccess(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, _ provider.Request) *provider.Result {
		return provider.Success(s.Name(), []models.DividendRecord{})
	})
	f := newFixtureWithClock(t, clk, a)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	cached := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, cached.Status)
	assert.Equal(t, []models.DividendRecord{}, cached.Data)
}

func TestUnencodablePayloadIsReturnedButNotCached(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, _ provider.Request) *provider.Result {
		return provider.Success(s.Name(), make(chan int))
	})
	f := newFixtureWithClock(t, clk, a)

	r := f.orch.Fetch(context.Background(), dividends("KO"))
	require.Equal(t, provider.StatusSuccess, r.Status)
	assert.Equal(t, "a", r.Provider)
	assert.Zero(t, f.store.Stats().Writes)

	f.orch.Fetch(context.Background(), dividends("KO"))
	assert.Equal(t, 2, a.Calls(provider.CategoryDividends))
}

func TestNoProvidersWritesNegativeEntry(t *testing.T) {
	f := newFixture(t)
	r := f.orch.Fetch(context.Background(), dividends("KO"))
	assert.Equal(t, provider.StatusProviderError, r.Status)
	assert.Equal(t, int64(1), f.store.Stats().Writes)
}

func TestCancelledRequestIsNotNegativelyCached(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	f := newFixtureWithClock(t, clk, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := f.orch.Fetch(ctx, dividends("KO"))
	assert.Equal(t, provider.StatusProviderError, r.Status)
	assert.Zero(t, a.TotalCalls())
	assert.Zero(t, f.store.Stats().Writes)
}

func TestFullAnalysisPassesHints(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	f := newFixtureWithClock(t, clk, a)

	fa := f.orch.FetchFullAnalysis(context.Background(), "KO", provider.PeriodAnnual)
	for _, c := range provider.Categories {
		assert.Equal(t, provider.StatusSuccess, fa.Result(c).Status, c)
		assert.Equal(t, 1, a.Calls(c), c)
	}

	income := a.Hints(provider.CategoryIncome)
	require.NotNil(t, income.SharesOutstanding)
	assert.Equal(t, 100.0, *income.SharesOutstanding)

	cf := a.Hints(provider.CategoryCashFlow)
	require.NotNil(t, cf.CurrentPrice)
	assert.Equal(t, 50.0, *cf.CurrentPrice)
	assert.Equal(t, map[string]float64{"2023": 1100, "2022": 1000}, cf.RevenueByYear)
}

func TestFullAnalysisWithoutOverviewHasNoHints(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		if req.Category == provider.CategoryOverview || req.Category == provider.CategoryIncome {
			return fail(s, req)
		}
		return succeed(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	fa := f.orch.FetchFullAnalysis(context.Background(), "KO", "")
	assert.Equal(t, provider.PeriodAnnual, fa.Period)
	assert.Equal(t, provider.StatusProviderError, fa.Result(provider.CategoryOverview).Status)
	assert.Equal(t, provider.StatusSuccess, fa.Result(provider.CategoryCashFlow).Status)

	cf := a.Hints(provider.CategoryCashFlow)
	assert.Nil(t, cf.SharesOutstanding)
	assert.Nil(t, cf.RevenueByYear)
}

func TestFullAnalysisIsolatesPanickingCategory(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		if req.Category == provider.CategoryIncome {
			panic("income parser blew up")
		}
		return succeed(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	fa := f.orch.FetchFullAnalysis(context.Background(), "KO", provider.PeriodAnnual)
	for _, c := range provider.Categories {
		if c == provider.CategoryIncome {
			continue
		}
		assert.Equal(t, provider.StatusSuccess, fa.Result(c).Status, c)
	}
	income := fa.Result(provider.CategoryIncome)
	assert.Equal(t, provider.StatusProviderError, income.Status)
	assert.Nil(t, income.Data)

	// Cash flow still runs after income, only without the revenue hint.
	assert.Equal(t, 1, a.Calls(provider.CategoryCashFlow))
	cf := a.Hints(provider.CategoryCashFlow)
	assert.Nil(t, cf.RevenueByYear)
	require.NotNil(t, cf.CurrentPrice)
	assert.Equal(t, 50.0, *cf.CurrentPrice)
}

func TestAnalyzePartialDegradation(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		switch req.Category {
		case provider.CategoryOverview:
			return succeed(s, req)
		case provider.CategoryDividends:
			return provider.NoData(s.Name(), "no dividends")
		}
		return fail(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	got, err := f.orch.Analyze(context.Background(), "ko", provider.PeriodAnnual, false)
	require.NoError(t, err)
	assert.Equal(t, "KO", got.Symbol)
	require.NotNil(t, got.Overview)
	assert.NotNil(t, got.Dividends)
	assert.Empty(t, got.Dividends)
	assert.NotNil(t, got.Income)
	assert.Empty(t, got.Income)
	assert.Empty(t, got.Balance)
	assert.Empty(t, got.CashFlow)
	require.NotNil(t, got.Earnings)
	assert.True(t, got.Earnings.Empty())
	assert.Nil(t, got.GrowthMetrics)

	require.NotNil(t, got.RiskFactors)
	assert.GreaterOrEqual(t, got.RiskFactors.OverallScore, 0.0)
	require.NotNil(t, got.AnalystSentiment)
	assert.Equal(t, "Strong Buy", got.AnalystSentiment.Consensus)

	assert.Equal(t, "SUCCESS", got.DataFreshness["overview"].Status)
	assert.Equal(t, "NO_DATA", got.DataFreshness["dividends"].Status)
	assert.Equal(t, "PROVIDER_ERROR", got.DataFreshness["income"].Status)
	assert.Len(t, got.DataFreshness, 6)
}

func TestAnalyzeHardFailure(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		if req.Category == provider.CategoryOverview {
			return provider.NoData(s.Name(), "unknown symbol")
		}
		return succeed(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	got, err := f.orch.Analyze(context.Background(), "ZZZZ", provider.PeriodAnnual, false)
	assert.Nil(t, got)
	var missing *MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ZZZZ", missing.Symbol)
	assert.Contains(t, missing.Reason, "unknown symbol")
}

func TestAnalyzeRejectsInvalidTicker(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Analyze(context.Background(), "BRK.B", provider.PeriodAnnual, false)
	var invalid *utils.ErrInvalidTicker
	assert.True(t, errors.As(err, &invalid))
}

func TestAnalyzeFullData(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	f := newFixtureWithClock(t, clk, a)

	got, err := f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, false)
	require.NoError(t, err)
	assert.Len(t, got.Dividends, 3)
	require.NotNil(t, got.DividendMetrics)
	assert.Equal(t, 3.0, *got.DividendMetrics.FCFCoverage)
	assert.Equal(t, 2, got.DividendMetrics.ConsecutiveGrowthYears)
	require.NotNil(t, got.GrowthMetrics)
	assert.Equal(t, "a", got.DataFreshness["cashflow"].Source)
	assert.Equal(t, clk.Now(), got.GeneratedAt)
}

func TestAnalyzeForceRefreshBypassesCache(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	f := newFixtureWithClock(t, clk, a)

	_, err := f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, false)
	require.NoError(t, err)
	_, err = f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, false)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Calls(provider.CategoryOverview), "second analysis served from cache")

	got, err := f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, true)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Calls(provider.CategoryOverview))
	assert.Equal(t, "a", got.DataFreshness["overview"].Source)
}

func TestForceRefreshClearsNegativeEntries(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	healthy := false
	a := newStub("a", 0, clk, func(s *stub, req provider.Request) *provider.Result {
		if !healthy {
			return fail(s, req)
		}
		return succeed(s, req)
	})
	f := newFixtureWithClock(t, clk, a)

	_, err := f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, false)
	require.Error(t, err)

	healthy = true
	_, err = f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, false)
	require.Error(t, err, "negative entry still fresh")

	_, err = f.orch.Analyze(context.Background(), "KO", provider.PeriodAnnual, true)
	require.NoError(t, err)
}

func TestAdminOperations(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	a := newStub("a", 0, clk, succeed)
	f := newFixtureWithClock(t, clk, a)

	f.orch.FetchFullAnalysis(context.Background(), "KO", provider.PeriodAnnual)
	f.orch.FetchFullAnalysis(context.Background(), "PEP", provider.PeriodAnnual)

	st := f.orch.CacheStats()
	assert.Equal(t, 12, st.DiskEntries)
	assert.Equal(t, 2, st.ByType["income"])

	assert.Equal(t, 2, f.orch.ClearCacheCategory(provider.CategoryIncome))
	assert.Equal(t, 5, f.orch.ClearCacheSymbol("KO"))
	assert.Equal(t, 5, f.orch.WarmCache())
	assert.Equal(t, 5, f.orch.ClearCache())
	assert.Zero(t, f.orch.ClearCache())

	statuses := f.orch.ProvidersStatus()
	require.Len(t, statuses, 1)
	assert.Equal(t, "a", statuses[0].Name)
	assert.Equal(t, 12, statuses[0].DailyCalls)
}
