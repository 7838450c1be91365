package eodhd

import (
	"bytes"
	"encoding/json"

	"github.com/seenimoa/divlens/pkg/utils"
)

// --- EODHD API response types ---

// number accepts the JSON numbers, numeric strings and nulls that EODHD
// mixes freely within one payload.
type number struct {
	v *float64
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		n.v = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.v = utils.ParseNumber(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n.v = &f
	return nil
}

// Ptr returns the value, nil when absent.
func (n number) Ptr() *float64 { return n.v }

// Float returns the value, 0 when absent.
func (n number) Float() float64 { return utils.Value(n.v) }

// eodOverview is the fundamentals response filtered to the overview sections.
type eodOverview struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Exchange     string `json:"Exchange"`
		CurrencyCode string `json:"CurrencyCode"`
		CountryISO   string `json:"CountryISO"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		Description  string `json:"Description"`
		WebURL       string `json:"WebURL"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization  number `json:"MarketCapitalization"`
		PERatio               number `json:"PERatio"`
		PEGRatio              number `json:"PEGRatio"`
		WallStreetTargetPrice number `json:"WallStreetTargetPrice"`
		DividendShare         number `json:"DividendShare"`
		DividendYield         number `json:"DividendYield"` // fraction
		EarningsShare         number `json:"EarningsShare"`
		ProfitMargin          number `json:"ProfitMargin"` // fraction
		ReturnOnEquityTTM     number `json:"ReturnOnEquityTTM"`
		RevenueTTM            number `json:"RevenueTTM"`
	} `json:"Highlights"`
	Valuation struct {
		ForwardPE    number `json:"ForwardPE"`
		PriceBookMRQ number `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	SharesStats struct {
		SharesOutstanding number `json:"SharesOutstanding"`
	} `json:"SharesStats"`
	Technicals struct {
		Beta       number `json:"Beta"`
		WeekHigh52 number `json:"52WeekHigh"`
		WeekLow52  number `json:"52WeekLow"`
	} `json:"Technicals"`
	SplitsDividends struct {
		ForwardAnnualDividendRate number `json:"ForwardAnnualDividendRate"`
		PayoutRatio               number `json:"PayoutRatio"` // fraction
		DividendDate              string `json:"DividendDate"`
		ExDividendDate            string `json:"ExDividendDate"`
	} `json:"SplitsDividends"`
	AnalystRatings struct {
		TargetPrice number `json:"TargetPrice"`
		StrongBuy   number `json:"StrongBuy"`
		Buy         number `json:"Buy"`
		Hold        number `json:"Hold"`
		Sell        number `json:"Sell"`
		StrongSell  number `json:"StrongSell"`
	} `json:"AnalystRatings"`
}

// eodDividend is one row of the div/ endpoint.
type eodDividend struct {
	Date            string `json:"date"`
	DeclarationDate string `json:"declarationDate"`
	RecordDate      string `json:"recordDate"`
	PaymentDate     string `json:"paymentDate"`
	Value           number `json:"value"`
	UnadjustedValue number `json:"unadjustedValue"`
	Currency        string `json:"currency"`
}

// eodStatements is one Financials section. Reports are keyed by fiscal date.
type eodStatements[T any] struct {
	CurrencySymbol string       `json:"currency_symbol"`
	Yearly         map[string]T `json:"yearly"`
	Quarterly      map[string]T `json:"quarterly"`
}

type eodIncome struct {
	Date            string `json:"date"`
	TotalRevenue    number `json:"totalRevenue"`
	CostOfRevenue   number `json:"costOfRevenue"`
	GrossProfit     number `json:"grossProfit"`
	OperatingIncome number `json:"operatingIncome"`
	NetIncome       number `json:"netIncome"`
	EBITDA          number `json:"ebitda"`
	InterestExpense number `json:"interestExpense"`
}

type eodBalance struct {
	Date                         string `json:"date"`
	TotalAssets                  number `json:"totalAssets"`
	TotalCurrentAssets           number `json:"totalCurrentAssets"`
	CashAndEquivalents           number `json:"cashAndEquivalents"`
	Cash                         number `json:"cash"`
	Inventory                    number `json:"inventory"`
	TotalLiab                    number `json:"totalLiab"`
	TotalCurrentLiabilities      number `json:"totalCurrentLiabilities"`
	LongTermDebt                 number `json:"longTermDebt"`
	ShortTermDebt                number `json:"shortTermDebt"`
	ShortLongTermDebtTotal       number `json:"shortLongTermDebtTotal"`
	TotalStockholderEquity       number `json:"totalStockholderEquity"`
	CommonStockSharesOutstanding number `json:"commonStockSharesOutstanding"`
}

type eodCashFlow struct {
	Date                             string `json:"date"`
	TotalCashFromOperatingActivities number `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              number `json:"capitalExpenditures"`
	FreeCashFlow                     number `json:"freeCashFlow"`
	DividendsPaid                    number `json:"dividendsPaid"`
	NetIncome                        number `json:"netIncome"`
}

// eodEarnings is the Earnings section. History holds quarterly rows.
type eodEarnings struct {
	History map[string]eodEarningsRow `json:"History"`
	Annual  map[string]eodEarningsRow `json:"Annual"`
}

type eodEarningsRow struct {
	Date            string `json:"date"`
	ReportDate      string `json:"reportDate"`
	EPSActual       number `json:"epsActual"`
	EPSEstimate     number `json:"epsEstimate"`
	EPSDifference   number `json:"epsDifference"`
	SurprisePercent number `json:"surprisePercent"`
}
