package models

// Period types for statement categories.
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
)

// IncomeStatement is a single fiscal period income statement.
// Lists of statements are ordered newest first.
type IncomeStatement struct {
	FiscalDateEnding string   `json:"fiscal_date_ending"` // YYYY-MM-DD
	PeriodType       string   `json:"period_type"`        // "annual" or "quarterly"
	Currency         string   `json:"currency,omitempty"`
	TotalRevenue     float64  `json:"total_revenue"`
	CostOfRevenue    float64  `json:"cost_of_revenue"`
	GrossProfit      float64  `json:"gross_profit"`
	OperatingIncome  float64  `json:"operating_income"`
	NetIncome        float64  `json:"net_income"`
	EBITDA           float64  `json:"ebitda"`
	InterestExpense  float64  `json:"interest_expense"`
	EPS              *float64 `json:"eps,omitempty"`
	EPSDiluted       *float64 `json:"eps_diluted,omitempty"`

	// Derived at mapping time.
	GrossMargin        *float64 `json:"gross_margin,omitempty"`     // %
	OperatingMargin    *float64 `json:"operating_margin,omitempty"` // %
	NetMargin          *float64 `json:"net_margin,omitempty"`       // %
	RevenueGrowth      *float64 `json:"revenue_growth,omitempty"`   // % vs next-older entry
	NetIncomeGrowth    *float64 `json:"net_income_growth,omitempty"`
}

// BalanceSheet is a single fiscal period balance sheet.
type BalanceSheet struct {
	FiscalDateEnding        string  `json:"fiscal_date_ending"`
	PeriodType              string  `json:"period_type"`
	Currency                string  `json:"currency,omitempty"`
	TotalAssets             float64 `json:"total_assets"`
	TotalCurrentAssets      float64 `json:"total_current_assets"`
	CashAndEquivalents      float64 `json:"cash_and_equivalents"`
	Inventory               float64 `json:"inventory"`
	TotalLiabilities        float64 `json:"total_liabilities"`
	TotalCurrentLiabilities float64 `json:"total_current_liabilities"`
	LongTermDebt            float64 `json:"long_term_debt"`
	ShortTermDebt           float64 `json:"short_term_debt"`
	TotalDebt               float64 `json:"total_debt"`
	ShareholderEquity       float64 `json:"shareholder_equity"`
	SharesOutstanding       float64 `json:"shares_outstanding,omitempty"`

	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
}

// CashFlow is a single fiscal period cash flow statement.
type CashFlow struct {
	FiscalDateEnding    string  `json:"fiscal_date_ending"`
	PeriodType          string  `json:"period_type"`
	Currency            string  `json:"currency,omitempty"`
	OperatingCashFlow   float64 `json:"operating_cash_flow"`
	CapitalExpenditures float64 `json:"capital_expenditures"` // as reported (usually negative)
	FreeCashFlow        float64 `json:"free_cash_flow"`
	DividendsPaid       float64 `json:"dividends_paid"` // as reported (usually negative)
	NetIncome           float64 `json:"net_income"`

	FCFPerShare *float64 `json:"fcf_per_share,omitempty"`
	FCFYield    *float64 `json:"fcf_yield,omitempty"`  // % of market price
	FCFMargin   *float64 `json:"fcf_margin,omitempty"` // % of same-year revenue
}

// AnnualEarnings is a reported fiscal-year EPS figure.
type AnnualEarnings struct {
	FiscalDateEnding string  `json:"fiscal_date_ending"`
	ReportedEPS      float64 `json:"reported_eps"`
}

// QuarterlyEarnings is a reported quarter with its consensus estimate.
type QuarterlyEarnings struct {
	FiscalDateEnding   string   `json:"fiscal_date_ending"`
	ReportedDate       string   `json:"reported_date,omitempty"`
	ReportedEPS        *float64 `json:"reported_eps,omitempty"`
	EstimatedEPS       *float64 `json:"estimated_eps,omitempty"`
	Surprise           *float64 `json:"surprise,omitempty"`
	SurprisePercentage *float64 `json:"surprise_percentage,omitempty"`
}

// EarningsData aggregates annual and quarterly EPS history, newest first.
type EarningsData struct {
	Symbol    string              `json:"symbol"`
	Annual    []AnnualEarnings    `json:"annual"`
	Quarterly []QuarterlyEarnings `json:"quarterly"`
}

// Empty reports whether no earnings history is present.
func (e *EarningsData) Empty() bool {
	return e == nil || (len(e.Annual) == 0 && len(e.Quarterly) == 0)
}

// DividendRecord is a single dividend payment.
type DividendRecord struct {
	ExDate          string  `json:"ex_date"`
	PaymentDate     string  `json:"payment_date,omitempty"`
	RecordDate      string  `json:"record_date,omitempty"`
	DeclarationDate string  `json:"declaration_date,omitempty"`
	Amount          float64 `json:"amount"`
	AdjustedAmount  float64 `json:"adjusted_amount,omitempty"`
	Currency        string  `json:"currency,omitempty"`
}
