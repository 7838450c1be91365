package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/pkg/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBase(t *testing.T, limit int) (*BaseProvider, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)}
	opts := DefaultOptions()
	opts.DailyLimit = limit
	opts.MinCallInterval = 0
	opts.Clock = clock.Now
	return NewBaseProvider("test", opts, zerolog.Nop()), clock
}

// stubProvider records which fetch method was dispatched.
type stubProvider struct {
	*BaseProvider
	called []string
}

func (s *stubProvider) record(name string) *Result {
	s.called = append(s.called, name)
	return Success(s.Name(), []models.DividendRecord{})
}

func (s *stubProvider) FetchOverview(ctx context.Context, symbol string) *Result {
	return s.record("overview")
}
func (s *stubProvider) FetchDividends(ctx context.Context, symbol string) *Result {
	return s.record("dividends")
}
func (s *stubProvider) FetchIncome(ctx context.Context, symbol string, p Period, h Hints) *Result {
	return s.record("income:" + string(p))
}
func (s *stubProvider) FetchBalance(ctx context.Context, symbol string, p Period) *Result {
	return s.record("balance:" + string(p))
}
func (s *stubProvider) FetchCashFlow(ctx context.Context, symbol string, p Period, h Hints) *Result {
	return s.record("cashflow:" + string(p))
}
func (s *stubProvider) FetchEarnings(ctx context.Context, symbol string) *Result {
	return s.record("earnings")
}

func newStub(name string, priority int) *stubProvider {
	opts := DefaultOptions()
	opts.Priority = priority
	opts.MinCallInterval = 0
	return &stubProvider{BaseProvider: NewBaseProvider(name, opts, zerolog.Nop())}
}

// --- Category / Period ---

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("quotes")
	var unknown *ErrUnknownCategory
	assert.ErrorAs(t, err, &unknown)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAnnual, p)

	p, err = ParsePeriod("quarterly")
	require.NoError(t, err)
	assert.Equal(t, PeriodQuarterly, p)

	_, err = ParsePeriod("monthly")
	var invalid *ErrInvalidPeriod
	assert.ErrorAs(t, err, &invalid)
}

func TestCacheType(t *testing.T) {
	assert.Equal(t, "income", CategoryIncome.CacheType(PeriodAnnual))
	assert.Equal(t, "income_quarterly", CategoryIncome.CacheType(PeriodQuarterly))
	assert.Equal(t, "cashflow_quarterly", CategoryCashFlow.CacheType(PeriodQuarterly))
	assert.Equal(t, "dividends", CategoryDividends.CacheType(PeriodQuarterly))
	assert.Equal(t, "overview", CategoryOverview.CacheType(PeriodAnnual))
}

func TestResultInvariant(t *testing.T) {
	r := Success("p", []models.DividendRecord{})
	assert.Equal(t, StatusSuccess, r.Status)
	assert.True(t, r.OK())

	r = Success("p", nil)
	assert.Equal(t, StatusNoData, r.Status)
	assert.Nil(t, r.Data)

	for _, r := range []*Result{NoData("p", "x"), RateLimited("p", "x"), Failure("p", "x")} {
		assert.Nil(t, r.Data)
		assert.False(t, r.OK())
	}
}

// --- BaseProvider state machine ---

func TestRateLimitCooldownSelfHeals(t *testing.T) {
	b, clock := newTestBase(t, 0)
	require.True(t, b.IsAvailable())

	b.MarkRateLimited("HTTP 429")
	assert.False(t, b.IsAvailable())

	st := b.Status()
	require.NotNil(t, st.ExhaustedUntil)
	assert.Equal(t, "HTTP 429", st.ExhaustedReason)

	clock.Advance(59 * time.Minute)
	assert.False(t, b.IsAvailable())

	clock.Advance(2 * time.Minute)
	assert.True(t, b.IsAvailable())
	assert.Nil(t, b.Status().ExhaustedUntil)
}

func TestAuthCooldownIsLonger(t *testing.T) {
	b, clock := newTestBase(t, 0)
	b.MarkAuthFailed("HTTP 401")

	clock.Advance(23 * time.Hour)
	assert.False(t, b.IsAvailable())

	clock.Advance(time.Hour + time.Second)
	assert.True(t, b.IsAvailable())
}

func TestEndpointBlockIsScoped(t *testing.T) {
	b, clock := newTestBase(t, 0)
	b.BlockEndpoint(CategoryBalance, "premium")

	assert.True(t, b.IsAvailable())
	assert.False(t, b.EndpointAvailable(CategoryBalance))
	assert.True(t, b.EndpointAvailable(CategoryOverview))

	st := b.Status()
	assert.Equal(t, 1, st.BlockedEndpointCount)
	assert.Equal(t, []Category{CategoryBalance}, st.BlockedEndpoints)

	clock.Advance(1441 * time.Minute)
	assert.True(t, b.EndpointAvailable(CategoryBalance))
	assert.Equal(t, 0, b.Status().BlockedEndpointCount)
}

func TestDailyQuotaResetsAtLocalDateRollover(t *testing.T) {
	b, clock := newTestBase(t, 2)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))
	assert.False(t, b.IsAvailable())

	st := b.Status()
	assert.Equal(t, 2, st.DailyCalls)
	require.NotNil(t, st.DailyLimit)
	assert.Equal(t, 2, *st.DailyLimit)

	// 23:00 the same day: still spent.
	clock.Advance(13 * time.Hour)
	assert.False(t, b.IsAvailable())

	// 01:00 the next day.
	clock.Advance(2 * time.Hour)
	assert.True(t, b.IsAvailable())
	assert.Equal(t, 0, b.Status().DailyCalls)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code         int
		want         Status
		available    bool
		endpointOpen bool
	}{
		{http.StatusTooManyRequests, StatusRateLimited, false, true},
		{http.StatusUnauthorized, StatusProviderError, false, true},
		{http.StatusForbidden, StatusProviderError, false, true},
		{http.StatusPaymentRequired, StatusProviderError, true, false},
		{http.StatusNotFound, StatusNoData, true, true},
		{http.StatusInternalServerError, StatusProviderError, true, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			b, _ := newTestBase(t, 0)
			err := fmt.Errorf("wrapped: %w", &infra.HTTPError{StatusCode: tt.code, Status: http.StatusText(tt.code)})
			r := b.Classify(CategoryBalance, "AAPL", err)
			assert.Equal(t, tt.want, r.Status)
			assert.Nil(t, r.Data)
			assert.Equal(t, tt.available, b.IsAvailable())
			assert.Equal(t, tt.endpointOpen, b.EndpointAvailable(CategoryBalance))
		})
	}
}

func TestGuard(t *testing.T) {
	b, _ := newTestBase(t, 0)
	assert.Nil(t, b.Guard(context.Background(), CategoryOverview))

	b.BlockEndpoint(CategoryIncome, "premium")
	r := b.Guard(context.Background(), CategoryIncome)
	require.NotNil(t, r)
	assert.Equal(t, StatusProviderError, r.Status)

	b.MarkRateLimited("note")
	r = b.Guard(context.Background(), CategoryOverview)
	require.NotNil(t, r)
	assert.Equal(t, StatusRateLimited, r.Status)
}

func newSpacedBase(t *testing.T, limit int, interval time.Duration) *BaseProvider {
	t.Helper()
	opts := DefaultOptions()
	opts.DailyLimit = limit
	opts.MinCallInterval = interval
	return NewBaseProvider("spaced", opts, zerolog.Nop())
}

func TestGuardHoldsQuotaUnderConcurrency(t *testing.T) {
	b := newSpacedBase(t, 1, 20*time.Millisecond)
	require.True(t, b.limiter.Allow(), "a call was just made")

	const callers = 4
	results := make(chan *Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- b.Guard(context.Background(), CategoryDividends)
		}()
	}
	wg.Wait()
	close(results)

	admitted, limited := 0, 0
	for r := range results {
		if r == nil {
			admitted++
			continue
		}
		assert.Equal(t, StatusRateLimited, r.Status)
		limited++
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, callers-1, limited)
	assert.Equal(t, 1, b.Status().DailyCalls)
}

func TestGuardRejectsQueuedCallAfterCooldown(t *testing.T) {
	b := newSpacedBase(t, 0, 200*time.Millisecond)
	require.True(t, b.limiter.Allow())

	done := make(chan *Result, 1)
	go func() { done <- b.Guard(context.Background(), CategoryIncome) }()

	time.Sleep(50 * time.Millisecond)
	b.MarkRateLimited("HTTP 429")

	r := <-done
	require.NotNil(t, r, "queued call must not reach the upstream")
	assert.Equal(t, StatusRateLimited, r.Status)
	assert.Zero(t, b.Status().DailyCalls)
}

func TestAcquireRefusesWhenExhausted(t *testing.T) {
	b, _ := newTestBase(t, 1)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	assert.ErrorIs(t, b.Acquire(ctx), ErrExhausted)

	c, _ := newTestBase(t, 0)
	c.MarkRateLimited("note")
	assert.ErrorIs(t, c.Acquire(ctx), ErrExhausted)
	assert.Zero(t, c.Status().DailyCalls)
}

// --- Registry ---

func TestRegistryOrdersByPriority(t *testing.T) {
	reg := NewRegistry(newStub("c", 2), newStub("a", 0), newStub("b", 1))

	var names []string
	for _, p := range reg.Ordered() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	statuses := reg.Statuses()
	require.Len(t, statuses, 3)
	assert.Equal(t, "a", statuses[0].Name)
	assert.Nil(t, statuses[0].DailyLimit)
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	reg := NewRegistry(newStub("a", 0), newStub("b", 1))
	require.NoError(t, reg.Register(newStub("a", 5)))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, "b", reg.Ordered()[0].Name())
	assert.Equal(t, "a", reg.Ordered()[1].Name())
	assert.Equal(t, 5, reg.Ordered()[1].Priority())

	assert.Error(t, reg.Register(newStub("", 0)))
}

func TestDispatch(t *testing.T) {
	s := newStub("s", 0)
	ctx := context.Background()
	for _, c := range Categories {
		r := Dispatch(ctx, s, Request{Category: c, Symbol: "AAPL", Period: PeriodQuarterly})
		assert.Equal(t, StatusSuccess, r.Status)
	}
	assert.Equal(t, []string{
		"overview", "dividends", "income:quarterly", "balance:quarterly", "cashflow:quarterly", "earnings",
	}, s.called)

	r := Dispatch(ctx, s, Request{Category: "bogus"})
	assert.Equal(t, StatusProviderError, r.Status)
}

// --- Codec ---

func TestDecodePayloadKeepsEmptyListsNonNil(t *testing.T) {
	raw, err := EncodePayload([]models.DividendRecord{})
	require.NoError(t, err)

	v, err := DecodePayload(CategoryDividends, raw)
	require.NoError(t, err)
	divs, ok := v.([]models.DividendRecord)
	require.True(t, ok)
	assert.NotNil(t, divs)
	assert.Empty(t, divs)

	v, err = DecodePayload(CategoryIncome, json.RawMessage("null"))
	require.NoError(t, err)
	assert.NotNil(t, v.([]models.IncomeStatement))
}

func TestDecodePayloadTypes(t *testing.T) {
	v, err := DecodePayload(CategoryOverview, json.RawMessage(`{"symbol":"AAPL","name":"Apple Inc."}`))
	require.NoError(t, err)
	ov, ok := v.(*models.CompanyOverview)
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", ov.Name)

	v, err = DecodePayload(CategoryEarnings, json.RawMessage(`{"symbol":"AAPL","annual":[{"fiscal_date_ending":"2023-09-30","reported_eps":6.13}]}`))
	require.NoError(t, err)
	e := v.(*models.EarningsData)
	assert.Len(t, e.Annual, 1)
	assert.NotNil(t, e.Quarterly)

	_, err = DecodePayload(CategoryBalance, json.RawMessage(`{"not":"a list"}`))
	assert.Error(t, err)
}
