package alphavantage

import "github.com/seenimoa/divlens/pkg/utils"

// --- Alpha Vantage API response types ---
//
// Alpha Vantage reports every number as a JSON string and uses "None" for
// missing values.

// avValue is a numeric string as served by Alpha Vantage.
type avValue string

// Ptr parses the value, nil when absent or malformed.
func (v avValue) Ptr() *float64 { return utils.ParseNumber(string(v)) }

// Float parses the value, 0 when absent or malformed.
func (v avValue) Float() float64 { return utils.Value(v.Ptr()) }

// avMessage covers the three out-of-band bodies Alpha Vantage returns with
// HTTP 200: quota notes, informational (premium or quota) notices and errors.
type avMessage struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// avOverview is the OVERVIEW function response.
type avOverview struct {
	Symbol                  string  `json:"Symbol"`
	Name                    string  `json:"Name"`
	Description             string  `json:"Description"`
	Exchange                string  `json:"Exchange"`
	Currency                string  `json:"Currency"`
	Country                 string  `json:"Country"`
	Sector                  string  `json:"Sector"`
	Industry                string  `json:"Industry"`
	OfficialSite            string  `json:"OfficialSite"`
	MarketCapitalization    avValue `json:"MarketCapitalization"`
	PERatio                 avValue `json:"PERatio"`
	ForwardPE               avValue `json:"ForwardPE"`
	PEGRatio                avValue `json:"PEGRatio"`
	PriceToBookRatio        avValue `json:"PriceToBookRatio"`
	DividendPerShare        avValue `json:"DividendPerShare"`
	DividendYield           avValue `json:"DividendYield"` // fraction, 0.0215 = 2.15%
	EPS                     avValue `json:"EPS"`
	ProfitMargin            avValue `json:"ProfitMargin"`
	ReturnOnEquityTTM       avValue `json:"ReturnOnEquityTTM"`
	RevenueTTM              avValue `json:"RevenueTTM"`
	AnalystTargetPrice      avValue `json:"AnalystTargetPrice"`
	AnalystRatingStrongBuy  avValue `json:"AnalystRatingStrongBuy"`
	AnalystRatingBuy        avValue `json:"AnalystRatingBuy"`
	AnalystRatingHold       avValue `json:"AnalystRatingHold"`
	AnalystRatingSell       avValue `json:"AnalystRatingSell"`
	AnalystRatingStrongSell avValue `json:"AnalystRatingStrongSell"`
	Beta                    avValue `json:"Beta"`
	WeekHigh52              avValue `json:"52WeekHigh"`
	WeekLow52               avValue `json:"52WeekLow"`
	MovingAverage50Day      avValue `json:"50DayMovingAverage"`
	SharesOutstanding       avValue `json:"SharesOutstanding"`
	DividendDate            string  `json:"DividendDate"`
	ExDividendDate          string  `json:"ExDividendDate"`
}

// avDividends is the DIVIDENDS function response.
type avDividends struct {
	Symbol string          `json:"symbol"`
	Data   []avDividendRow `json:"data"`
}

type avDividendRow struct {
	ExDividendDate  string  `json:"ex_dividend_date"`
	DeclarationDate string  `json:"declaration_date"`
	RecordDate      string  `json:"record_date"`
	PaymentDate     string  `json:"payment_date"`
	Amount          avValue `json:"amount"`
}

// avReports wraps the statement functions, which return annual and quarterly
// reports in one body.
type avReports[T any] struct {
	Symbol           string `json:"symbol"`
	AnnualReports    []T    `json:"annualReports"`
	QuarterlyReports []T    `json:"quarterlyReports"`
}

// avIncome is one INCOME_STATEMENT report.
type avIncome struct {
	FiscalDateEnding string  `json:"fiscalDateEnding"`
	ReportedCurrency string  `json:"reportedCurrency"`
	TotalRevenue     avValue `json:"totalRevenue"`
	CostOfRevenue    avValue `json:"costOfRevenue"`
	GrossProfit      avValue `json:"grossProfit"`
	OperatingIncome  avValue `json:"operatingIncome"`
	NetIncome        avValue `json:"netIncome"`
	EBITDA           avValue `json:"ebitda"`
	InterestExpense  avValue `json:"interestExpense"`
}

// avBalance is one BALANCE_SHEET report.
type avBalance struct {
	FiscalDateEnding                      string  `json:"fiscalDateEnding"`
	ReportedCurrency                      string  `json:"reportedCurrency"`
	TotalAssets                           avValue `json:"totalAssets"`
	TotalCurrentAssets                    avValue `json:"totalCurrentAssets"`
	CashAndCashEquivalentsAtCarryingValue avValue `json:"cashAndCashEquivalentsAtCarryingValue"`
	Inventory                             avValue `json:"inventory"`
	TotalLiabilities                      avValue `json:"totalLiabilities"`
	TotalCurrentLiabilities               avValue `json:"totalCurrentLiabilities"`
	LongTermDebt                          avValue `json:"longTermDebt"`
	ShortTermDebt                         avValue `json:"shortTermDebt"`
	ShortLongTermDebtTotal                avValue `json:"shortLongTermDebtTotal"`
	TotalShareholderEquity                avValue `json:"totalShareholderEquity"`
	CommonStockSharesOutstanding          avValue `json:"commonStockSharesOutstanding"`
}

// avCashFlow is one CASH_FLOW report.
type avCashFlow struct {
	FiscalDateEnding    string  `json:"fiscalDateEnding"`
	ReportedCurrency    string  `json:"reportedCurrency"`
	OperatingCashflow   avValue `json:"operatingCashflow"`
	CapitalExpenditures avValue `json:"capitalExpenditures"`
	DividendPayout      avValue `json:"dividendPayout"`
	NetIncome           avValue `json:"netIncome"`
}

// avEarnings is the EARNINGS function response.
type avEarnings struct {
	Symbol            string               `json:"symbol"`
	AnnualEarnings    []avAnnualEarning    `json:"annualEarnings"`
	QuarterlyEarnings []avQuarterlyEarning `json:"quarterlyEarnings"`
}

type avAnnualEarning struct {
	FiscalDateEnding string  `json:"fiscalDateEnding"`
	ReportedEPS      avValue `json:"reportedEPS"`
}

type avQuarterlyEarning struct {
	FiscalDateEnding   string  `json:"fiscalDateEnding"`
	ReportedDate       string  `json:"reportedDate"`
	ReportedEPS        avValue `json:"reportedEPS"`
	EstimatedEPS       avValue `json:"estimatedEPS"`
	Surprise           avValue `json:"surprise"`
	SurprisePercentage avValue `json:"surprisePercentage"`
}
