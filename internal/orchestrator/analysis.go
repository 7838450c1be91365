package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/divlens/internal/analysis/fundamental"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// MissingDataError is returned by Analyze when the overview could not be
// fetched, so the symbol cannot be analyzed at all.
type MissingDataError struct {
	Symbol string
	Reason string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no overview data for %s: %s", e.Symbol, e.Reason)
}

// FullAnalysis holds one result per category for a symbol.
type FullAnalysis struct {
	Symbol  string
	Period  provider.Period
	Results map[provider.Category]*provider.Result
}

// Result returns the category's result, or a PROVIDER_ERROR placeholder.
func (f *FullAnalysis) Result(c provider.Category) *provider.Result {
	if r, ok := f.Results[c]; ok && r != nil {
		return r
	}
	return provider.Failure("", "not fetched")
}

// FetchFullAnalysis fetches all six categories for a symbol. The overview is
// fetched first because its shares outstanding and price feed later
// derivations. Dividends, income, balance and earnings then run concurrently,
// and cash flow starts as soon as income resolves. A failure or panic in one
// category never affects the others.
func (o *Orchestrator) FetchFullAnalysis(ctx context.Context, symbol string, period provider.Period) *FullAnalysis {
	if period == "" {
		period = provider.PeriodAnnual
	}
	fa := &FullAnalysis{
		Symbol:  symbol,
		Period:  period,
		Results: make(map[provider.Category]*provider.Result, len(provider.Categories)),
	}

	// Phase 1: overview.
	overview := o.isolated(provider.CategoryOverview, func() *provider.Result {
		return o.Fetch(ctx, provider.Request{Category: provider.CategoryOverview, Symbol: symbol})
	})
	fa.Results[provider.CategoryOverview] = overview

	hints := provider.Hints{}
	if ov, ok := overview.Data.(*models.CompanyOverview); ok && overview.OK() {
		hints.SharesOutstanding = ov.SharesOutstanding
		hints.CurrentPrice = ov.CurrentPrice
	}

	// Phase 2: the rest, with cash flow chained after income.
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	set := func(c provider.Category, r *provider.Result) {
		mu.Lock()
		fa.Results[c] = r
		mu.Unlock()
	}
	spawn := func(c provider.Category, fn func() *provider.Result) {
		g.Go(func() error {
			set(c, o.isolated(c, fn))
			return nil
		})
	}

	spawn(provider.CategoryDividends, func() *provider.Result {
		return o.Fetch(ctx, provider.Request{Category: provider.CategoryDividends, Symbol: symbol})
	})
	spawn(provider.CategoryBalance, func() *provider.Result {
		return o.Fetch(ctx, provider.Request{Category: provider.CategoryBalance, Symbol: symbol, Period: period})
	})
	spawn(provider.CategoryEarnings, func() *provider.Result {
		return o.Fetch(ctx, provider.Request{Category: provider.CategoryEarnings, Symbol: symbol})
	})
	g.Go(func() error {
		income := o.isolated(provider.CategoryIncome, func() *provider.Result {
			return o.Fetch(ctx, provider.Request{
				Category: provider.CategoryIncome, Symbol: symbol, Period: period,
				Hints: provider.Hints{SharesOutstanding: hints.SharesOutstanding},
			})
		})
		set(provider.CategoryIncome, income)

		// Phase 3: cash flow.
		cfHints := hints
		if stmts, ok := income.Data.([]models.IncomeStatement); ok && income.OK() {
			cfHints.RevenueByYear = provider.RevenueByYear(stmts)
		}
		set(provider.CategoryCashFlow, o.isolated(provider.CategoryCashFlow, func() *provider.Result {
			return o.Fetch(ctx, provider.Request{
				Category: provider.CategoryCashFlow, Symbol: symbol, Period: period, Hints: cfHints,
			})
		}))
		return nil
	})

	_ = g.Wait()
	return fa
}

// isolated runs fn and turns a panic into a PROVIDER_ERROR result for the
// category.
func (o *Orchestrator) isolated(c provider.Category, fn func() *provider.Result) (r *provider.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error().Str("category", string(c)).Interface("panic", rec).Msg("Category fetch panicked")
			r = provider.Failuref("", "unexpected failure fetching %s: %v", c, rec)
		}
	}()
	if r = fn(); r == nil {
		r = provider.Failuref("", "no result for %s", c)
	}
	return r
}

// Analyze is the caller-level analysis: it validates the ticker, optionally
// clears the symbol's cache, fetches every category and computes the derived
// metrics. It fails with *MissingDataError when the overview is unavailable;
// any other category may be missing.
func (o *Orchestrator) Analyze(ctx context.Context, ticker string, period provider.Period, forceRefresh bool) (*models.StockAnalysis, error) {
	symbol, err := utils.ValidateTicker(ticker)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = provider.PeriodAnnual
	}

	if forceRefresh {
		removed := o.store.ClearSymbol(symbol)
		o.log.Info().Str("symbol", symbol).Int("removed", removed).Msg("Force refresh: cache cleared")
	}

	fa := o.FetchFullAnalysis(ctx, symbol, period)

	ovResult := fa.Result(provider.CategoryOverview)
	ov, ok := ovResult.Data.(*models.CompanyOverview)
	if !ovResult.OK() || !ok {
		reason := ovResult.Error
		if reason == "" {
			reason = string(ovResult.Status)
		}
		return nil, &MissingDataError{Symbol: symbol, Reason: reason}
	}

	a := &models.StockAnalysis{
		Symbol:        symbol,
		Period:        string(period),
		Overview:      ov,
		Dividends:     payload(fa, provider.CategoryDividends, []models.DividendRecord{}),
		Income:        payload(fa, provider.CategoryIncome, []models.IncomeStatement{}),
		Balance:       payload(fa, provider.CategoryBalance, []models.BalanceSheet{}),
		CashFlow:      payload(fa, provider.CategoryCashFlow, []models.CashFlow{}),
		Earnings:      payload(fa, provider.CategoryEarnings, &models.EarningsData{Symbol: symbol, Annual: []models.AnnualEarnings{}, Quarterly: []models.QuarterlyEarnings{}}),
		DataFreshness: freshness(fa),
		GeneratedAt:   o.now().UTC(),
	}

	a.DividendMetrics = fundamental.ComputeDividendMetrics(ov, a.Dividends, a.CashFlow)
	a.RiskFactors = fundamental.ComputeRisk(fundamental.RiskInputsFrom(ov, a.Balance, a.DividendMetrics))
	if len(a.Income) > 0 || len(a.CashFlow) > 0 || !a.Earnings.Empty() {
		a.GrowthMetrics = fundamental.ComputeGrowth(a.Income, a.CashFlow, a.Earnings)
	}
	a.AnalystSentiment = fundamental.ComputeSentiment(ov)

	return a, nil
}

// payload returns the category's typed data, or def when it did not succeed.
func payload[T any](fa *FullAnalysis, c provider.Category, def T) T {
	r := fa.Result(c)
	if !r.OK() {
		return def
	}
	if v, ok := r.Data.(T); ok {
		return v
	}
	return def
}

func freshness(fa *FullAnalysis) map[string]models.DataFreshnessEntry {
	out := make(map[string]models.DataFreshnessEntry, len(provider.Categories))
	for _, c := range provider.Categories {
		r := fa.Result(c)
		out[string(c)] = models.DataFreshnessEntry{
			Status:    string(r.Status),
			Source:    r.Provider,
			CachedAt:  r.CachedAt,
			ExpiresAt: r.ExpiresAt,
			Error:     r.Error,
		}
	}
	return out
}
