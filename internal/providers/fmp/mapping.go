package fmp

import (
	"strings"

	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// mapOverview merges profile, quote and the latest analyst recommendation.
// quote and rec are optional.
func mapOverview(prof fmpProfile, quote *fmpQuote, rec *fmpRecommendation) *models.CompanyOverview {
	ov := &models.CompanyOverview{
		Symbol:      prof.Symbol,
		Name:        prof.CompanyName,
		Description: prof.Description,
		Exchange:    prof.ExchangeShortName,
		Currency:    prof.Currency,
		Country:     prof.Country,
		Sector:      prof.Sector,
		Industry:    prof.Industry,
		Website:     prof.Website,
	}
	if ov.Exchange == "" {
		ov.Exchange = prof.Exchange
	}

	ov.CurrentPrice = positive(prof.Price)
	ov.MarketCap = positive(prof.MktCap)
	if prof.Beta != 0 {
		ov.Beta = utils.Round2Ptr(&prof.Beta)
	}
	ov.WeekLow52, ov.WeekHigh52 = parseRange(prof.Range)

	if prof.LastDiv > 0 {
		ov.DividendPerShare = utils.Round2Ptr(&prof.LastDiv)
		ov.DividendYield = utils.Percent(prof.LastDiv, prof.Price)
	}

	if quote != nil {
		ov.SharesOutstanding = positive(quote.SharesOutstanding)
		ov.PERatio = utils.Round2Ptr(quote.PE)
		ov.EPS = utils.Round2Ptr(quote.EPS)
		if quote.YearHigh > 0 {
			ov.WeekHigh52 = positive(quote.YearHigh)
			ov.WeekLow52 = positive(quote.YearLow)
		}
		if ov.MarketCap == nil {
			ov.MarketCap = positive(quote.MarketCap)
		}
		if ov.EPS != nil && *ov.EPS > 0 && prof.LastDiv > 0 {
			ov.PayoutRatio = utils.Percent(prof.LastDiv, *quote.EPS)
		}
	}

	if rec != nil {
		ov.AnalystRatings = models.Ratings{
			StrongBuy:  rec.StrongBuy,
			Buy:        rec.Buy,
			Hold:       rec.Hold,
			Sell:       rec.Sell,
			StrongSell: rec.StrongSell,
		}
	}
	return ov
}

func mapDividends(entries []fmpDividendEntry) []models.DividendRecord {
	out := make([]models.DividendRecord, 0, len(entries))
	for _, e := range entries {
		amount := e.Dividend
		if amount == 0 {
			amount = e.AdjDividend
		}
		if amount <= 0 || e.Date == "" {
			continue
		}
		out = append(out, models.DividendRecord{
			ExDate:          utils.NormalizeDate(e.Date),
			PaymentDate:     utils.NormalizeDate(e.PaymentDate),
			RecordDate:      utils.NormalizeDate(e.RecordDate),
			DeclarationDate: utils.NormalizeDate(e.DeclarationDate),
			Amount:          amount,
			AdjustedAmount:  e.AdjDividend,
		})
	}
	utils.SortNewestFirst(out, func(d models.DividendRecord) string { return d.ExDate })
	return out
}

func mapIncome(rows []fmpIncomeStatement, period provider.Period, hints provider.Hints) []models.IncomeStatement {
	out := make([]models.IncomeStatement, 0, len(rows))
	for _, r := range rows {
		eps := r.EPSDiluted
		if eps == nil {
			eps = r.EPS
		}
		out = append(out, models.IncomeStatement{
			FiscalDateEnding: utils.NormalizeDate(r.Date),
			PeriodType:       string(period),
			Currency:         r.ReportedCurrency,
			TotalRevenue:     r.Revenue,
			CostOfRevenue:    r.CostOfRevenue,
			GrossProfit:      r.GrossProfit,
			OperatingIncome:  r.OperatingIncome,
			NetIncome:        r.NetIncome,
			EBITDA:           r.EBITDA,
			InterestExpense:  r.InterestExpense,
			EPS:              utils.Round2Ptr(eps),
			EPSDiluted:       utils.Round2Ptr(r.EPSDiluted),
		})
	}
	utils.SortNewestFirst(out, func(s models.IncomeStatement) string { return s.FiscalDateEnding })
	provider.DeriveIncome(out, hints)
	return out
}

func mapBalance(rows []fmpBalanceSheet, period provider.Period) []models.BalanceSheet {
	out := make([]models.BalanceSheet, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.BalanceSheet{
			FiscalDateEnding:        utils.NormalizeDate(r.Date),
			PeriodType:              string(period),
			Currency:                r.ReportedCurrency,
			TotalAssets:             r.TotalAssets,
			TotalCurrentAssets:      r.TotalCurrentAssets,
			CashAndEquivalents:      r.CashAndCashEquivalents,
			Inventory:               r.Inventory,
			TotalLiabilities:        r.TotalLiabilities,
			TotalCurrentLiabilities: r.TotalCurrentLiabilities,
			LongTermDebt:            r.LongTermDebt,
			ShortTermDebt:           r.ShortTermDebt,
			TotalDebt:               r.TotalDebt,
			ShareholderEquity:       r.TotalStockholdersEquity,
		})
	}
	utils.SortNewestFirst(out, func(b models.BalanceSheet) string { return b.FiscalDateEnding })
	provider.DeriveBalance(out)
	return out
}

func mapCashFlow(rows []fmpCashFlow, period provider.Period, hints provider.Hints) []models.CashFlow {
	out := make([]models.CashFlow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CashFlow{
			FiscalDateEnding:    utils.NormalizeDate(r.Date),
			PeriodType:          string(period),
			Currency:            r.ReportedCurrency,
			OperatingCashFlow:   r.OperatingCashFlow,
			CapitalExpenditures: r.CapitalExpenditure,
			FreeCashFlow:        provider.FreeCashFlow(r.FreeCashFlow, r.OperatingCashFlow, r.CapitalExpenditure),
			DividendsPaid:       r.DividendsPaid,
			NetIncome:           r.NetIncome,
		})
	}
	utils.SortNewestFirst(out, func(c models.CashFlow) string { return c.FiscalDateEnding })
	provider.DeriveCashFlow(out, hints)
	return out
}

// mapEarnings keeps quarters that have been reported. Annual EPS is the sum of
// four reported quarters per fiscal year.
func mapEarnings(symbol string, rows []fmpEarningsCalendar) *models.EarningsData {
	quarterly := make([]models.QuarterlyEarnings, 0, len(rows))
	for _, r := range rows {
		if r.EPS == nil {
			continue
		}
		fiscal := r.FiscalDateEnding
		if fiscal == "" {
			fiscal = r.Date
		}
		surprise, pct := provider.Surprise(r.EPS, r.EPSEstimated)
		quarterly = append(quarterly, models.QuarterlyEarnings{
			FiscalDateEnding:   utils.NormalizeDate(fiscal),
			ReportedDate:       utils.NormalizeDate(r.Date),
			ReportedEPS:        utils.Round2Ptr(r.EPS),
			EstimatedEPS:       utils.Round2Ptr(r.EPSEstimated),
			Surprise:           surprise,
			SurprisePercentage: pct,
		})
	}
	utils.SortNewestFirst(quarterly, func(q models.QuarterlyEarnings) string { return q.FiscalDateEnding })

	return &models.EarningsData{
		Symbol:    symbol,
		Annual:    provider.AnnualFromQuarterly(quarterly),
		Quarterly: quarterly,
	}
}

// parseRange splits FMP's "low-high" 52-week range.
func parseRange(s string) (low, high *float64) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return nil, nil
	}
	return utils.ParseNumber(lo), utils.ParseNumber(hi)
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return utils.Float(v)
}
