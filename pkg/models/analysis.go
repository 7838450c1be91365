package models

import "time"

// RiskLevel is the three-level label derived from the overall risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Consistency labels for dividend payment history.
const (
	ConsistencyExcellent = "Excellent"
	ConsistencyGood      = "Good"
	ConsistencyFair      = "Fair"
	ConsistencyLimited   = "Limited Data"
)

// DividendMetrics summarizes dividend history.
type DividendMetrics struct {
	CurrentYield            *float64 `json:"current_yield,omitempty"` // %
	AnnualDividend          *float64 `json:"annual_dividend,omitempty"`
	PayoutRatio             *float64 `json:"payout_ratio,omitempty"` // %
	AverageDividend         *float64 `json:"average_dividend,omitempty"`
	TotalDividends          float64  `json:"total_dividends"`
	PaymentCount            int      `json:"payment_count"`
	AverageGrowthRate       *float64 `json:"average_growth_rate,omitempty"` // % per record
	ConsecutiveGrowthYears  int      `json:"consecutive_growth_years"`
	FCFCoverage             *float64 `json:"fcf_coverage,omitempty"`
	Consistency             string   `json:"consistency"`
	LatestExDate            string   `json:"latest_ex_date,omitempty"`
}

// RiskFactors holds the six sub-scores (0-100, higher is riskier) and the
// weighted aggregate.
type RiskFactors struct {
	YieldRisk      float64   `json:"yield_risk"`
	PayoutRisk     float64   `json:"payout_risk"`
	ValuationRisk  float64   `json:"valuation_risk"`
	LeverageRisk   float64   `json:"leverage_risk"`
	VolatilityRisk float64   `json:"volatility_risk"`
	CoverageRisk   float64   `json:"coverage_risk"`
	OverallScore   float64   `json:"overall_score"`
	Level          RiskLevel `json:"level"`
	Grade          string    `json:"grade"`
}

// GrowthMetrics holds CAGR percentages at fixed lookback windows.
type GrowthMetrics struct {
	RevenueCAGR3Y  *float64 `json:"revenue_cagr_3y,omitempty"`
	RevenueCAGR5Y  *float64 `json:"revenue_cagr_5y,omitempty"`
	EPSCAGR3Y      *float64 `json:"eps_cagr_3y,omitempty"`
	EPSCAGR5Y      *float64 `json:"eps_cagr_5y,omitempty"`
	FCFCAGR3Y      *float64 `json:"fcf_cagr_3y,omitempty"`
	FCFCAGR5Y      *float64 `json:"fcf_cagr_5y,omitempty"`
	DividendCAGR3Y *float64 `json:"dividend_cagr_3y,omitempty"`
	DividendCAGR5Y *float64 `json:"dividend_cagr_5y,omitempty"`
}

// AnalystSentiment is the consensus derived from rating bucket counts.
type AnalystSentiment struct {
	Ratings      Ratings  `json:"ratings"`
	TotalRatings int      `json:"total_ratings"`
	BuyPercent   float64  `json:"buy_percent"`
	Consensus    string   `json:"consensus"`
	TargetPrice  *float64 `json:"target_price,omitempty"`
	Upside       *float64 `json:"upside,omitempty"` // % vs current price
}

// DataFreshnessEntry reports where one category's data came from.
type DataFreshnessEntry struct {
	Status    string     `json:"status"`
	Source    string     `json:"source,omitempty"` // provider name or "cache"
	CachedAt  *time.Time `json:"cached_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// StockAnalysis is the caller-facing composed analysis of one symbol.
// Failed categories are empty collections, never nil.
type StockAnalysis struct {
	Symbol         string            `json:"symbol"`
	Period         string            `json:"period"`
	Overview       *CompanyOverview  `json:"overview"`
	Dividends      []DividendRecord  `json:"dividends"`
	Income         []IncomeStatement `json:"income"`
	Balance        []BalanceSheet    `json:"balance"`
	CashFlow       []CashFlow        `json:"cashflow"`
	Earnings       *EarningsData     `json:"earnings"`

	DividendMetrics  *DividendMetrics             `json:"dividend_metrics,omitempty"`
	RiskFactors      *RiskFactors                 `json:"risk_factors,omitempty"`
	GrowthMetrics    *GrowthMetrics               `json:"growth_metrics,omitempty"`
	AnalystSentiment *AnalystSentiment            `json:"analyst_sentiment,omitempty"`
	DataFreshness    map[string]DataFreshnessEntry `json:"data_freshness"`
	GeneratedAt      time.Time                    `json:"generated_at"`
}
