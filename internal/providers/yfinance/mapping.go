package yfinance

import (
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// mapOverview merges the price, profile, summary, key statistics, financial
// data and recommendation modules. Any module may be missing.
func mapOverview(symbol string, r yfQuoteSummaryResult) *models.CompanyOverview {
	ov := &models.CompanyOverview{Symbol: symbol}

	if p := r.Price; p != nil {
		ov.Name = coalesce(p.LongName, p.ShortName)
		ov.Exchange = p.ExchangeName
		ov.Currency = p.Currency
		ov.CurrentPrice = p.RegularMarketPrice.Raw
		ov.MarketCap = p.MarketCap.Raw
	}
	if a := r.AssetProfile; a != nil {
		ov.Description = a.LongBusinessSummary
		ov.Sector = a.Sector
		ov.Industry = a.Industry
		ov.Country = a.Country
		ov.Website = a.Website
	}
	if s := r.SummaryDetail; s != nil {
		if ov.MarketCap == nil {
			ov.MarketCap = s.MarketCap.Raw
		}
		ov.WeekLow52 = s.FiftyTwoWeekLow.Raw
		ov.WeekHigh52 = s.FiftyTwoWeekHigh.Raw
		ov.Beta = utils.Round2Ptr(s.Beta.Raw)
		ov.PERatio = utils.Round2Ptr(s.TrailingPE.Raw)
		ov.ForwardPE = utils.Round2Ptr(s.ForwardPE.Raw)
		ov.DividendYield = utils.FractionPercent(s.DividendYield.Raw)
		ov.PayoutRatio = utils.FractionPercent(s.PayoutRatio.Raw)
		ov.DividendPerShare = utils.Round2Ptr(s.DividendRate.Raw)
		if ov.DividendPerShare == nil {
			ov.DividendPerShare = utils.Round2Ptr(s.TrailingAnnualRate.Raw)
		}
		ov.ExDividendDate = unixDate(s.ExDividendDate)
	}
	if k := r.DefaultKeyStatistics; k != nil {
		ov.SharesOutstanding = k.SharesOutstanding.Raw
		ov.PriceToBook = utils.Round2Ptr(k.PriceToBook.Raw)
		ov.PEGRatio = utils.Round2Ptr(k.PegRatio.Raw)
		ov.EPS = utils.Round2Ptr(k.TrailingEps.Raw)
		if ov.Beta == nil {
			ov.Beta = utils.Round2Ptr(k.Beta.Raw)
		}
		if ov.ForwardPE == nil {
			ov.ForwardPE = utils.Round2Ptr(k.ForwardPE.Raw)
		}
	}
	if f := r.FinancialData; f != nil {
		if ov.CurrentPrice == nil {
			ov.CurrentPrice = f.CurrentPrice.Raw
		}
		ov.AnalystTargetPrice = utils.Round2Ptr(f.TargetMeanPrice.Raw)
		ov.RevenueTTM = f.TotalRevenue.Raw
		ov.ProfitMargin = utils.FractionPercent(f.ProfitMargins.Raw)
		ov.ReturnOnEquity = utils.FractionPercent(f.ReturnOnEquity.Raw)
		if f.DebtToEquity.Raw != nil {
			// Yahoo reports D/E as a percentage.
			ov.DebtToEquity = utils.Ratio(*f.DebtToEquity.Raw, 100)
		}
		ov.FreeCashFlowTTM = f.FreeCashflow.Raw
	}
	if rt := r.RecommendationTrend; rt != nil && len(rt.Trend) > 0 {
		t := rt.Trend[0]
		for _, cand := range rt.Trend {
			if cand.Period == "0m" {
				t = cand
				break
			}
		}
		ov.AnalystRatings = models.Ratings{
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		}
	}
	return ov
}

func mapDividends(res yfChartDividendResult) []models.DividendRecord {
	out := make([]models.DividendRecord, 0)
	if res.Events == nil {
		return out
	}
	for _, d := range res.Events.Dividends {
		if d.Amount <= 0 {
			continue
		}
		out = append(out, models.DividendRecord{
			ExDate:         utils.UnixDate(d.Date),
			Amount:         d.Amount,
			AdjustedAmount: d.Amount,
			Currency:       res.Meta.Currency,
		})
	}
	utils.SortNewestFirst(out, func(d models.DividendRecord) string { return d.ExDate })
	return out
}

func mapIncome(rows []map[string]yfFinVal, period provider.Period, hints provider.Hints) []models.IncomeStatement {
	out := make([]models.IncomeStatement, 0, len(rows))
	for _, stmt := range rows {
		out = append(out, models.IncomeStatement{
			FiscalDateEnding: extractDate(stmt),
			PeriodType:       string(period),
			TotalRevenue:     valRaw(stmt, "totalRevenue"),
			CostOfRevenue:    valRaw(stmt, "costOfRevenue"),
			GrossProfit:      valRaw(stmt, "grossProfit"),
			OperatingIncome:  valRaw(stmt, "operatingIncome"),
			NetIncome:        valRaw(stmt, "netIncome"),
			EBITDA:           valRaw(stmt, "ebitda"),
			InterestExpense:  valRaw(stmt, "interestExpense"),
		})
	}
	utils.SortNewestFirst(out, func(s models.IncomeStatement) string { return s.FiscalDateEnding })
	provider.DeriveIncome(out, hints)
	return out
}

func mapBalance(rows []map[string]yfFinVal, period provider.Period) []models.BalanceSheet {
	out := make([]models.BalanceSheet, 0, len(rows))
	for _, stmt := range rows {
		out = append(out, models.BalanceSheet{
			FiscalDateEnding:        extractDate(stmt),
			PeriodType:              string(period),
			TotalAssets:             valRaw(stmt, "totalAssets"),
			TotalCurrentAssets:      valRaw(stmt, "totalCurrentAssets"),
			CashAndEquivalents:      valRaw(stmt, "cash"),
			Inventory:               valRaw(stmt, "inventory"),
			TotalLiabilities:        valRaw(stmt, "totalLiab"),
			TotalCurrentLiabilities: valRaw(stmt, "totalCurrentLiabilities"),
			LongTermDebt:            valRaw(stmt, "longTermDebt"),
			ShortTermDebt:           valRaw(stmt, "shortLongTermDebt"),
			ShareholderEquity:       valRaw(stmt, "totalStockholderEquity"),
		})
	}
	utils.SortNewestFirst(out, func(b models.BalanceSheet) string { return b.FiscalDateEnding })
	provider.DeriveBalance(out)
	return out
}

func mapCashFlow(rows []map[string]yfFinVal, period provider.Period, hints provider.Hints) []models.CashFlow {
	out := make([]models.CashFlow, 0, len(rows))
	for _, stmt := range rows {
		operating := valRaw(stmt, "totalCashFromOperatingActivities")
		capex := valRaw(stmt, "capitalExpenditures")
		out = append(out, models.CashFlow{
			FiscalDateEnding:    extractDate(stmt),
			PeriodType:          string(period),
			OperatingCashFlow:   operating,
			CapitalExpenditures: capex,
			FreeCashFlow:        provider.FreeCashFlow(stmt["freeCashFlow"].Raw, operating, capex),
			DividendsPaid:       valRaw(stmt, "dividendsPaid"),
			NetIncome:           valRaw(stmt, "netIncome"),
		})
	}
	utils.SortNewestFirst(out, func(c models.CashFlow) string { return c.FiscalDateEnding })
	provider.DeriveCashFlow(out, hints)
	return out
}

// mapEarnings maps the trailing four quarters. Yahoo has no annual EPS list,
// so annual figures come from complete fiscal years only.
func mapEarnings(symbol string, h *yfEarningsHistory) *models.EarningsData {
	quarterly := make([]models.QuarterlyEarnings, 0)
	if h != nil {
		for _, q := range h.History {
			if q.EPSActual.Raw == nil {
				continue
			}
			surprise := utils.Round2Ptr(q.EPSDifference.Raw)
			pct := utils.FractionPercent(q.SurprisePercent.Raw)
			if surprise == nil {
				surprise, pct = provider.Surprise(q.EPSActual.Raw, q.EPSEstimate.Raw)
			}
			quarterly = append(quarterly, models.QuarterlyEarnings{
				FiscalDateEnding:   unixDate(q.Quarter),
				ReportedEPS:        utils.Round2Ptr(q.EPSActual.Raw),
				EstimatedEPS:       utils.Round2Ptr(q.EPSEstimate.Raw),
				Surprise:           surprise,
				SurprisePercentage: pct,
			})
		}
	}
	utils.SortNewestFirst(quarterly, func(q models.QuarterlyEarnings) string { return q.FiscalDateEnding })
	return &models.EarningsData{
		Symbol:    symbol,
		Annual:    provider.AnnualFromQuarterly(quarterly),
		Quarterly: quarterly,
	}
}

// extractDate reads a statement's endDate, preferring the formatted value.
func extractDate(stmt map[string]yfFinVal) string {
	v, ok := stmt["endDate"]
	if !ok {
		return ""
	}
	if d := utils.OptionalDate(v.Fmt); d != "" {
		return d
	}
	return unixDate(v)
}

// valRaw extracts the raw numeric value for a key from a YF statement map.
func valRaw(stmt map[string]yfFinVal, key string) float64 {
	return utils.Value(stmt[key].Raw)
}

func unixDate(v yfFinVal) string {
	if v.Raw == nil {
		return ""
	}
	return utils.UnixDate(int64(*v.Raw))
}
