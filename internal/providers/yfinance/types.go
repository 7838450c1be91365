package yfinance

// --- Yahoo Finance API response types ---

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	// Overview modules
	Price                *yfPrice                `json:"price"`
	AssetProfile         *yfAssetProfile         `json:"assetProfile"`
	SummaryDetail        *yfSummaryDetail        `json:"summaryDetail"`
	DefaultKeyStatistics *yfDefaultKeyStatistics `json:"defaultKeyStatistics"`
	FinancialData        *yfFinancialData        `json:"financialData"`
	RecommendationTrend  *yfRecommendationTrend  `json:"recommendationTrend"`

	// Financials modules
	IncomeStatementHistory            *yfStatementContainer `json:"incomeStatementHistory"`
	IncomeStatementHistoryQuarterly   *yfStatementContainer `json:"incomeStatementHistoryQuarterly"`
	BalanceSheetHistory               *yfStatementContainer `json:"balanceSheetHistory"`
	BalanceSheetHistoryQuarterly      *yfStatementContainer `json:"balanceSheetHistoryQuarterly"`
	CashflowStatementHistory          *yfStatementContainer `json:"cashflowStatementHistory"`
	CashflowStatementHistoryQuarterly *yfStatementContainer `json:"cashflowStatementHistoryQuarterly"`

	// Earnings module
	EarningsHistory *yfEarningsHistory `json:"earningsHistory"`
}

// yfStatementContainer holds one statement module. Yahoo names the inner list
// differently per statement type.
type yfStatementContainer struct {
	Income   []map[string]yfFinVal `json:"incomeStatementHistory,omitempty"`
	Balance  []map[string]yfFinVal `json:"balanceSheetStatements,omitempty"`
	CashFlow []map[string]yfFinVal `json:"cashflowStatements,omitempty"`
}

// Statements returns whichever inner list is populated.
func (c *yfStatementContainer) Statements() []map[string]yfFinVal {
	switch {
	case c == nil:
		return nil
	case len(c.Income) > 0:
		return c.Income
	case len(c.Balance) > 0:
		return c.Balance
	default:
		return c.CashFlow
	}
}

// yfFinVal is Yahoo's {raw, fmt} number wrapper. Missing values arrive as {}.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfPrice struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName"`
	LongName           string   `json:"longName"`
	ExchangeName       string   `json:"exchangeName"`
	Currency           string   `json:"currency"`
	RegularMarketPrice yfFinVal `json:"regularMarketPrice"`
	MarketCap          yfFinVal `json:"marketCap"`
}

type yfAssetProfile struct {
	Industry            string `json:"industry"`
	Sector              string `json:"sector"`
	LongBusinessSummary string `json:"longBusinessSummary"`
	Country             string `json:"country"`
	Website             string `json:"website"`
}

type yfSummaryDetail struct {
	MarketCap          yfFinVal `json:"marketCap"`
	FiftyTwoWeekLow    yfFinVal `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh   yfFinVal `json:"fiftyTwoWeekHigh"`
	DividendRate       yfFinVal `json:"dividendRate"`
	DividendYield      yfFinVal `json:"dividendYield"` // fraction
	ExDividendDate     yfFinVal `json:"exDividendDate"`
	PayoutRatio        yfFinVal `json:"payoutRatio"` // fraction
	Beta               yfFinVal `json:"beta"`
	TrailingPE         yfFinVal `json:"trailingPE"`
	ForwardPE          yfFinVal `json:"forwardPE"`
	TrailingAnnualRate yfFinVal `json:"trailingAnnualDividendRate"`
}

type yfDefaultKeyStatistics struct {
	SharesOutstanding yfFinVal `json:"sharesOutstanding"`
	Beta              yfFinVal `json:"beta"`
	PriceToBook       yfFinVal `json:"priceToBook"`
	PegRatio          yfFinVal `json:"pegRatio"`
	TrailingEps       yfFinVal `json:"trailingEps"`
	ForwardPE         yfFinVal `json:"forwardPE"`
}

type yfFinancialData struct {
	CurrentPrice    yfFinVal `json:"currentPrice"`
	TargetMeanPrice yfFinVal `json:"targetMeanPrice"`
	TotalRevenue    yfFinVal `json:"totalRevenue"`
	ProfitMargins   yfFinVal `json:"profitMargins"` // fraction
	ReturnOnEquity  yfFinVal `json:"returnOnEquity"`
	DebtToEquity    yfFinVal `json:"debtToEquity"` // already a percentage
	FreeCashflow    yfFinVal `json:"freeCashflow"`
}

type yfRecommendationTrend struct {
	Trend []struct {
		Period     string `json:"period"` // "0m" is the current month
		StrongBuy  int    `json:"strongBuy"`
		Buy        int    `json:"buy"`
		Hold       int    `json:"hold"`
		Sell       int    `json:"sell"`
		StrongSell int    `json:"strongSell"`
	} `json:"trend"`
}

type yfEarningsHistory struct {
	History []struct {
		EPSActual       yfFinVal `json:"epsActual"`
		EPSEstimate     yfFinVal `json:"epsEstimate"`
		EPSDifference   yfFinVal `json:"epsDifference"`
		SurprisePercent yfFinVal `json:"surprisePercent"` // fraction
		Quarter         yfFinVal `json:"quarter"`         // unix seconds of the fiscal quarter end
	} `json:"history"`
}

// yfChartDividendResponse is the v8 chart response with dividend events.
type yfChartDividendResponse struct {
	Chart struct {
		Result []yfChartDividendResult `json:"result"`
		Error  *yfError                `json:"error"`
	} `json:"chart"`
}

type yfChartDividendResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Events *yfChartEvents `json:"events"`
}

type yfChartEvents struct {
	Dividends map[string]yfDividendEvent `json:"dividends"`
}

type yfDividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
