package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/config"
	"github.com/seenimoa/divlens/internal/news"
	"github.com/seenimoa/divlens/internal/orchestrator"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeBackend struct {
	mu       sync.Mutex
	fetch    func(provider.Request) *provider.Result
	analyze  func(ticker string, period provider.Period, refresh bool) (*models.StockAnalysis, error)
	requests []provider.Request
	cleared  []string
}

func (f *fakeBackend) Fetch(_ context.Context, req provider.Request) *provider.Result {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.fetch(req)
}

func (f *fakeBackend) Analyze(_ context.Context, ticker string, period provider.Period, refresh bool) (*models.StockAnalysis, error) {
	return f.analyze(ticker, period, refresh)
}

func (f *fakeBackend) ProvidersStatus() []provider.ProviderStatus {
	return []provider.ProviderStatus{
		{Name: "fmp", Priority: 1, Available: false},
		{Name: "yfinance", Priority: 4, Available: true},
	}
}

func (f *fakeBackend) CacheStats() cache.Stats {
	return cache.Stats{Enabled: true, DiskEntries: 7, ByType: map[string]int{"overview": 7}}
}

func (f *fakeBackend) ClearCache() int { f.record("all"); return 9 }

func (f *fakeBackend) ClearCacheCategory(c provider.Category) int {
	f.record("category:" + string(c))
	return 2
}

func (f *fakeBackend) ClearCacheSymbol(symbol string) int {
	f.record("symbol:" + symbol)
	return 5
}

func (f *fakeBackend) WarmCache() int { return 4 }

func (f *fakeBackend) record(s string) {
	f.mu.Lock()
	f.cleared = append(f.cleared, s)
	f.mu.Unlock()
}

type fakeNews struct {
	items []models.Headline
	err   error
	limit int
}

func (f *fakeNews) Headlines(_ context.Context, symbol string, limit int) ([]models.Headline, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if _, err := utils.ValidateTicker(symbol); err != nil {
		return nil, err
	}
	return f.items, nil
}

func testServer(t *testing.T, b *fakeBackend, n Headlines) *Server {
	t.Helper()
	if b.fetch == nil {
		b.fetch = func(provider.Request) *provider.Result {
			return provider.Success("yfinance", &models.CompanyOverview{Symbol: "KO"})
		}
	}
	cfg := &config.Config{}
	cfg.Providers.FMP.APIKey = "fmp-secret-key-123"
	return NewServer(cfg, b, n, "test", zerolog.Nop())
}

func do(t *testing.T, srv *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), "body for %s %s", method, path)
	return rec, resp
}

// ════════════════════════════════════════════════════════════════════
// Health and providers
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t, &fakeBackend{}, nil)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, resp := do(t, srv, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "test", data["version"])
		assert.EqualValues(t, 2, data["providers"])
		assert.EqualValues(t, 1, data["providers_available"])
	}
}

func TestProviders(t *testing.T) {
	rec, resp := do(t, testServer(t, &fakeBackend{}, nil), http.MethodGet, "/api/v1/providers")
	assert.Equal(t, http.StatusOK, rec.Code)
	list := resp.Data.([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "fmp", list[0].(map[string]any)["name"])
}

// ════════════════════════════════════════════════════════════════════
// Data endpoint
// ════════════════════════════════════════════════════════════════════

func TestDataSuccess(t *testing.T) {
	b := &fakeBackend{}
	rec, resp := do(t, testServer(t, b, nil), http.MethodGet, "/api/v1/data/income/ko?period=quarterly")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	require.Len(t, b.requests, 1)
	assert.Equal(t, provider.Request{Category: provider.CategoryIncome, Symbol: "KO", Period: provider.PeriodQuarterly}, b.requests[0])

	result := resp.Data.(map[string]any)
	assert.Equal(t, "SUCCESS", result["status"])
	assert.Equal(t, "yfinance", result["provider_name"])
	assert.NotContains(t, result, "error_message")
}

func TestDataNoDataIs200(t *testing.T) {
	b := &fakeBackend{fetch: func(provider.Request) *provider.Result {
		return provider.NoData("fmp", "symbol not found")
	}}
	rec, resp := do(t, testServer(t, b, nil), http.MethodGet, "/api/v1/data/dividends/AAPL")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	result := resp.Data.(map[string]any)
	assert.Equal(t, "NO_DATA", result["status"])
	assert.Equal(t, "fmp", result["provider_name"])
	assert.Equal(t, "symbol not found", result["error_message"])
	assert.Nil(t, result["data"])
}

func TestDataProviderErrorIs503(t *testing.T) {
	b := &fakeBackend{fetch: func(provider.Request) *provider.Result {
		return provider.Failure("", "all providers exhausted for overview KO")
	}}
	rec, resp := do(t, testServer(t, b, nil), http.MethodGet, "/api/v1/data/overview/KO")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, resp.Error, "exhausted")
}

func TestDataValidation(t *testing.T) {
	b := &fakeBackend{}
	srv := testServer(t, b, nil)
	for _, path := range []string{
		"/api/v1/data/quotes/KO",
		"/api/v1/data/overview/BRK.B",
		"/api/v1/data/overview/TOOLONG",
		"/api/v1/data/income/KO?period=monthly",
	} {
		rec, resp := do(t, srv, http.MethodGet, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.NotEmpty(t, resp.Error, path)
	}
	assert.Empty(t, b.requests, "invalid input never reaches the backend")
}

// ════════════════════════════════════════════════════════════════════
// Analysis endpoint
// ════════════════════════════════════════════════════════════════════

func TestAnalysis(t *testing.T) {
	var gotTicker string
	var gotPeriod provider.Period
	var gotRefresh bool
	b := &fakeBackend{analyze: func(ticker string, period provider.Period, refresh bool) (*models.StockAnalysis, error) {
		gotTicker, gotPeriod, gotRefresh = ticker, period, refresh
		return &models.StockAnalysis{Symbol: "KO", Period: string(period)}, nil
	}}
	rec, resp := do(t, testServer(t, b, nil), http.MethodGet, "/api/v1/analysis/ko?period=quarterly&refresh=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "ko", gotTicker)
	assert.Equal(t, provider.PeriodQuarterly, gotPeriod)
	assert.True(t, gotRefresh)
	assert.Equal(t, "KO", resp.Data.(map[string]any)["symbol"])
}

func TestAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid ticker", &utils.ErrInvalidTicker{Input: "BRK.B"}, http.StatusBadRequest},
		{"missing overview", &orchestrator.MissingDataError{Symbol: "ZZZZ", Reason: "NO_DATA"}, http.StatusNotFound},
		{"wrapped missing overview", fmt.Errorf("analyze: %w", &orchestrator.MissingDataError{Symbol: "ZZZZ"}), http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{analyze: func(string, provider.Period, bool) (*models.StockAnalysis, error) {
				return nil, tt.err
			}}
			rec, resp := do(t, testServer(t, b, nil), http.MethodGet, "/api/v1/analysis/ZZZZ")
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestAnalysisBadQuery(t *testing.T) {
	b := &fakeBackend{analyze: func(string, provider.Period, bool) (*models.StockAnalysis, error) {
		t.Fatal("backend must not be called")
		return nil, nil
	}}
	srv := testServer(t, b, nil)
	rec, _ := do(t, srv, http.MethodGet, "/api/v1/analysis/KO?period=weekly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, srv, http.MethodGet, "/api/v1/analysis/KO?refresh=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// News endpoint
// ════════════════════════════════════════════════════════════════════

func TestNews(t *testing.T) {
	n := &fakeNews{items: []models.Headline{{Title: "Coca-Cola raises dividend", Source: "Yahoo Finance"}}}
	rec, resp := do(t, testServer(t, &fakeBackend{}, n), http.MethodGet, "/api/v1/news/KO?limit=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, n.limit)
	list := resp.Data.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Coca-Cola raises dividend", list[0].(map[string]any)["title"])
}

func TestNewsErrors(t *testing.T) {
	rec, _ := do(t, testServer(t, &fakeBackend{}, nil), http.MethodGet, "/api/v1/news/KO")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "disabled")

	rec, _ = do(t, testServer(t, &fakeBackend{}, &fakeNews{err: news.ErrDisabled}), http.MethodGet, "/api/v1/news/KO")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, testServer(t, &fakeBackend{}, &fakeNews{err: errors.New("feed down")}), http.MethodGet, "/api/v1/news/KO")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = do(t, testServer(t, &fakeBackend{}, &fakeNews{}), http.MethodGet, "/api/v1/news/BRK.B")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, testServer(t, &fakeBackend{}, &fakeNews{}), http.MethodGet, "/api/v1/news/KO?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Cache administration
// ════════════════════════════════════════════════════════════════════

func TestCacheStats(t *testing.T) {
	rec, resp := do(t, testServer(t, &fakeBackend{}, nil), http.MethodGet, "/api/v1/cache/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := resp.Data.(map[string]any)
	assert.EqualValues(t, 7, stats["disk_entries"])
	assert.Equal(t, true, stats["enabled"])
}

func TestCacheAdmin(t *testing.T) {
	b := &fakeBackend{}
	srv := testServer(t, b, nil)

	tests := []struct {
		method, path string
		count        float64
	}{
		{http.MethodDelete, "/api/v1/cache", 9},
		{http.MethodDelete, "/api/v1/cache/category/income", 2},
		{http.MethodDelete, "/api/v1/cache/symbol/ko", 5},
		{http.MethodPost, "/api/v1/cache/warm", 4},
	}
	for _, tt := range tests {
		rec, resp := do(t, srv, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, rec.Code, tt.path)
		assert.Equal(t, tt.count, resp.Data.(map[string]any)["count"], tt.path)
	}
	assert.Equal(t, []string{"all", "category:income", "symbol:KO"}, b.cleared)

	rec, _ := do(t, srv, http.MethodDelete, "/api/v1/cache/category/quotes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/cache/symbol/1234")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, b.cleared, 3)
}

// ════════════════════════════════════════════════════════════════════
// Configuration
// ════════════════════════════════════════════════════════════════════

func TestGetConfigHidesKeys(t *testing.T) {
	srv := testServer(t, &fakeBackend{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/config", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "fmp-secret-key-123")
	assert.Contains(t, rec.Body.String(), `"has_key":true`)
}

func TestGetConfigKeys(t *testing.T) {
	rec, resp := do(t, testServer(t, &fakeBackend{}, nil), http.MethodGet, "/api/v1/config/keys")
	assert.Equal(t, http.StatusOK, rec.Code)
	keys := resp.Data.([]any)
	require.Len(t, keys, 3)
	fmp := keys[0].(map[string]any)
	assert.Equal(t, true, fmp["is_set"])
	assert.Equal(t, "fmp...123", fmp["masked"])
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, &fakeBackend{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/providers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
