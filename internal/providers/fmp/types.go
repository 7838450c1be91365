package fmp

// --- FMP API response types ---

// fmpErrorBody is returned by FMP for quota, key and plan errors, often with
// HTTP 200.
type fmpErrorBody struct {
	ErrorMessage string `json:"Error Message"`
}

// fmpProfile represents company profile from FMP.
type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	VolAvg            int64   `json:"volAvg"`
	MktCap            float64 `json:"mktCap"`
	LastDiv           float64 `json:"lastDiv"` // annualized dividend per share
	Range             string  `json:"range"`   // "164.08-199.62"
	Changes           float64 `json:"changes"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	ISIN              string  `json:"isin"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	IsEtf             bool    `json:"isEtf"`
}

// fmpQuote represents a real-time quote from FMP.
type fmpQuote struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	YearHigh          float64  `json:"yearHigh"`
	YearLow           float64  `json:"yearLow"`
	MarketCap         float64  `json:"marketCap"`
	Exchange          string   `json:"exchange"`
	EPS               *float64 `json:"eps"`
	PE                *float64 `json:"pe"`
	SharesOutstanding float64  `json:"sharesOutstanding"`
	Timestamp         int64    `json:"timestamp"`
}

// fmpRecommendation is one month of analyst rating counts.
type fmpRecommendation struct {
	Symbol     string `json:"symbol"`
	Date       string `json:"date"`
	StrongBuy  int    `json:"analystRatingsStrongBuy"`
	Buy        int    `json:"analystRatingsbuy"`
	Hold       int    `json:"analystRatingsHold"`
	Sell       int    `json:"analystRatingsSell"`
	StrongSell int    `json:"analystRatingsStrongSell"`
}

// fmpHistoricalDividend represents historical dividend data.
type fmpHistoricalDividend struct {
	Historical []fmpDividendEntry `json:"historical"`
	Symbol     string             `json:"symbol"`
}

type fmpDividendEntry struct {
	Date            string  `json:"date"`
	Label           string  `json:"label"`
	AdjDividend     float64 `json:"adjDividend"`
	Dividend        float64 `json:"dividend"`
	RecordDate      string  `json:"recordDate"`
	PaymentDate     string  `json:"paymentDate"`
	DeclarationDate string  `json:"declarationDate"`
}

// fmpIncomeStatement represents an income statement from FMP.
type fmpIncomeStatement struct {
	Date             string   `json:"date"`
	Symbol           string   `json:"symbol"`
	ReportedCurrency string   `json:"reportedCurrency"`
	CalendarYear     string   `json:"calendarYear"`
	Period           string   `json:"period"` // "FY" or "Q1", "Q2", etc.
	Revenue          float64  `json:"revenue"`
	CostOfRevenue    float64  `json:"costOfRevenue"`
	GrossProfit      float64  `json:"grossProfit"`
	OperatingIncome  float64  `json:"operatingIncome"`
	InterestExpense  float64  `json:"interestExpense"`
	NetIncome        float64  `json:"netIncome"`
	EPS              *float64 `json:"eps"`
	EPSDiluted       *float64 `json:"epsdiluted"`
	EBITDA           float64  `json:"ebitda"`
}

// fmpBalanceSheet represents a balance sheet from FMP.
type fmpBalanceSheet struct {
	Date                    string  `json:"date"`
	Symbol                  string  `json:"symbol"`
	ReportedCurrency        string  `json:"reportedCurrency"`
	Period                  string  `json:"period"`
	CashAndCashEquivalents  float64 `json:"cashAndCashEquivalents"`
	Inventory               float64 `json:"inventory"`
	TotalCurrentAssets      float64 `json:"totalCurrentAssets"`
	TotalAssets             float64 `json:"totalAssets"`
	ShortTermDebt           float64 `json:"shortTermDebt"`
	TotalCurrentLiabilities float64 `json:"totalCurrentLiabilities"`
	LongTermDebt            float64 `json:"longTermDebt"`
	TotalDebt               float64 `json:"totalDebt"`
	TotalLiabilities        float64 `json:"totalLiabilities"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
}

// fmpCashFlow represents a cash flow statement from FMP.
type fmpCashFlow struct {
	Date               string   `json:"date"`
	Symbol             string   `json:"symbol"`
	ReportedCurrency   string   `json:"reportedCurrency"`
	Period             string   `json:"period"`
	NetIncome          float64  `json:"netIncome"`
	OperatingCashFlow  float64  `json:"operatingCashFlow"`
	CapitalExpenditure float64  `json:"capitalExpenditure"`
	DividendsPaid      float64  `json:"dividendsPaid"`
	FreeCashFlow       *float64 `json:"freeCashFlow"`
}

// fmpEarningsCalendar represents a historical earnings entry from FMP.
type fmpEarningsCalendar struct {
	Date             string   `json:"date"`
	Symbol           string   `json:"symbol"`
	EPS              *float64 `json:"eps"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	Revenue          float64  `json:"revenue"`
	RevenueEstimated float64  `json:"revenueEstimated"`
	FiscalDateEnding string   `json:"fiscalDateEnding"`
}
