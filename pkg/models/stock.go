// Package models defines the core data structures used throughout divlens.
package models

// CompanyOverview is the normalized company profile, valuation and
// dividend snapshot. Optional values are nil when the upstream omits them.
type CompanyOverview struct {
	Symbol      string `json:"symbol"`                // e.g., "AAPL"
	Name        string `json:"name"`                  // e.g., "Apple Inc."
	Description string `json:"description,omitempty"` // business summary
	Exchange    string `json:"exchange,omitempty"`    // e.g., "NASDAQ"
	Currency    string `json:"currency,omitempty"`    // e.g., "USD"
	Country     string `json:"country,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Website     string `json:"website,omitempty"`

	MarketCap         *float64 `json:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	CurrentPrice      *float64 `json:"current_price,omitempty"`
	WeekHigh52        *float64 `json:"week_high_52,omitempty"`
	WeekLow52         *float64 `json:"week_low_52,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`

	PERatio     *float64 `json:"pe_ratio,omitempty"`
	ForwardPE   *float64 `json:"forward_pe,omitempty"`
	PEGRatio    *float64 `json:"peg_ratio,omitempty"`
	PriceToBook *float64 `json:"price_to_book,omitempty"`
	EPS         *float64 `json:"eps,omitempty"`

	DividendPerShare *float64 `json:"dividend_per_share,omitempty"`
	DividendYield    *float64 `json:"dividend_yield,omitempty"` // %
	PayoutRatio      *float64 `json:"payout_ratio,omitempty"`   // %
	ExDividendDate   string   `json:"ex_dividend_date,omitempty"`
	DividendDate     string   `json:"dividend_date,omitempty"`

	ProfitMargin    *float64 `json:"profit_margin,omitempty"`    // %
	ReturnOnEquity  *float64 `json:"return_on_equity,omitempty"` // %
	RevenueTTM      *float64 `json:"revenue_ttm,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`
	FreeCashFlowTTM *float64 `json:"free_cash_flow_ttm,omitempty"`

	AnalystTargetPrice *float64 `json:"analyst_target_price,omitempty"`
	AnalystRatings     Ratings  `json:"analyst_ratings"`
}

// Ratings holds analyst recommendation bucket counts.
type Ratings struct {
	StrongBuy  int `json:"strong_buy"`
	Buy        int `json:"buy"`
	Hold       int `json:"hold"`
	Sell       int `json:"sell"`
	StrongSell int `json:"strong_sell"`
}

// Total returns the number of ratings across all buckets.
func (r Ratings) Total() int {
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

// Headline is a single news item related to a ticker.
type Headline struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Summary     string   `json:"summary,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"` // RFC3339
	Tickers     []string `json:"tickers,omitempty"`
	Tone        float64  `json:"tone"` // -1 negative .. +1 positive
	ToneLabel   string   `json:"tone_label"`
}
