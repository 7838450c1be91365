package eodhd

import (
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

func mapOverview(symbol string, o eodOverview) *models.CompanyOverview {
	g, h, sd, ar := o.General, o.Highlights, o.SplitsDividends, o.AnalystRatings
	ov := &models.CompanyOverview{
		Symbol:            symbol,
		Name:              g.Name,
		Description:       g.Description,
		Exchange:          g.Exchange,
		Currency:          g.CurrencyCode,
		Country:           g.CountryISO,
		Sector:            g.Sector,
		Industry:          g.Industry,
		Website:           g.WebURL,
		MarketCap:         h.MarketCapitalization.Ptr(),
		SharesOutstanding: o.SharesStats.SharesOutstanding.Ptr(),
		WeekHigh52:        o.Technicals.WeekHigh52.Ptr(),
		WeekLow52:         o.Technicals.WeekLow52.Ptr(),
		Beta:              utils.Round2Ptr(o.Technicals.Beta.Ptr()),
		PERatio:           utils.Round2Ptr(h.PERatio.Ptr()),
		ForwardPE:         utils.Round2Ptr(o.Valuation.ForwardPE.Ptr()),
		PEGRatio:          utils.Round2Ptr(h.PEGRatio.Ptr()),
		PriceToBook:       utils.Round2Ptr(o.Valuation.PriceBookMRQ.Ptr()),
		EPS:               utils.Round2Ptr(h.EarningsShare.Ptr()),
		RevenueTTM:        h.RevenueTTM.Ptr(),
		DividendYield:     utils.FractionPercent(h.DividendYield.Ptr()),
		PayoutRatio:       utils.FractionPercent(sd.PayoutRatio.Ptr()),
		ProfitMargin:      utils.FractionPercent(h.ProfitMargin.Ptr()),
		ReturnOnEquity:    utils.FractionPercent(h.ReturnOnEquityTTM.Ptr()),
		ExDividendDate:    utils.OptionalDate(sd.ExDividendDate),
		DividendDate:      utils.OptionalDate(sd.DividendDate),
		AnalystRatings: models.Ratings{
			StrongBuy:  int(ar.StrongBuy.Float()),
			Buy:        int(ar.Buy.Float()),
			Hold:       int(ar.Hold.Float()),
			Sell:       int(ar.Sell.Float()),
			StrongSell: int(ar.StrongSell.Float()),
		},
	}

	dps := sd.ForwardAnnualDividendRate.Ptr()
	if dps == nil || *dps == 0 {
		dps = h.DividendShare.Ptr()
	}
	ov.DividendPerShare = utils.Round2Ptr(dps)

	ov.AnalystTargetPrice = utils.Round2Ptr(ar.TargetPrice.Ptr())
	if ov.AnalystTargetPrice == nil {
		ov.AnalystTargetPrice = utils.Round2Ptr(h.WallStreetTargetPrice.Ptr())
	}

	// Fundamentals carry no quote; market cap over shares is the implied price.
	if ov.MarketCap != nil && ov.SharesOutstanding != nil {
		ov.CurrentPrice = utils.Ratio(*ov.MarketCap, *ov.SharesOutstanding)
	}
	return ov
}

func mapDividends(rows []eodDividend) []models.DividendRecord {
	out := make([]models.DividendRecord, 0, len(rows))
	for _, r := range rows {
		amount := r.UnadjustedValue.Float()
		if amount == 0 {
			amount = r.Value.Float()
		}
		if amount <= 0 || r.Date == "" {
			continue
		}
		out = append(out, models.DividendRecord{
			ExDate:          utils.NormalizeDate(r.Date),
			PaymentDate:     utils.OptionalDate(r.PaymentDate),
			RecordDate:      utils.OptionalDate(r.RecordDate),
			DeclarationDate: utils.OptionalDate(r.DeclarationDate),
			Amount:          amount,
			AdjustedAmount:  r.Value.Float(),
			Currency:        r.Currency,
		})
	}
	utils.SortNewestFirst(out, func(d models.DividendRecord) string { return d.ExDate })
	return out
}

// reports flattens a date-keyed statement map. The row's own date wins over
// the map key when both are present.
func reports[T any](s eodStatements[T], period provider.Period, date func(T) string) ([]T, []string) {
	src := s.Yearly
	if period == provider.PeriodQuarterly {
		src = s.Quarterly
	}
	rows := make([]T, 0, len(src))
	dates := make([]string, 0, len(src))
	for key, row := range src {
		d := date(row)
		if d == "" {
			d = key
		}
		rows = append(rows, row)
		dates = append(dates, utils.NormalizeDate(d))
	}
	return rows, dates
}

func mapIncome(s eodStatements[eodIncome], period provider.Period, hints provider.Hints) []models.IncomeStatement {
	rows, dates := reports(s, period, func(r eodIncome) string { return r.Date })
	out := make([]models.IncomeStatement, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.IncomeStatement{
			FiscalDateEnding: dates[i],
			PeriodType:       string(period),
			Currency:         s.CurrencySymbol,
			TotalRevenue:     r.TotalRevenue.Float(),
			CostOfRevenue:    r.CostOfRevenue.Float(),
			GrossProfit:      r.GrossProfit.Float(),
			OperatingIncome:  r.OperatingIncome.Float(),
			NetIncome:        r.NetIncome.Float(),
			EBITDA:           r.EBITDA.Float(),
			InterestExpense:  r.InterestExpense.Float(),
		})
	}
	utils.SortNewestFirst(out, func(s models.IncomeStatement) string { return s.FiscalDateEnding })
	provider.DeriveIncome(out, hints)
	return out
}

func mapBalance(s eodStatements[eodBalance], period provider.Period) []models.BalanceSheet {
	rows, dates := reports(s, period, func(r eodBalance) string { return r.Date })
	out := make([]models.BalanceSheet, 0, len(rows))
	for i, r := range rows {
		cash := r.CashAndEquivalents.Float()
		if cash == 0 {
			cash = r.Cash.Float()
		}
		out = append(out, models.BalanceSheet{
			FiscalDateEnding:        dates[i],
			PeriodType:              string(period),
			Currency:                s.CurrencySymbol,
			TotalAssets:             r.TotalAssets.Float(),
			TotalCurrentAssets:      r.TotalCurrentAssets.Float(),
			CashAndEquivalents:      cash,
			Inventory:               r.Inventory.Float(),
			TotalLiabilities:        r.TotalLiab.Float(),
			TotalCurrentLiabilities: r.TotalCurrentLiabilities.Float(),
			LongTermDebt:            r.LongTermDebt.Float(),
			ShortTermDebt:           r.ShortTermDebt.Float(),
			TotalDebt:               r.ShortLongTermDebtTotal.Float(),
			ShareholderEquity:       r.TotalStockholderEquity.Float(),
			SharesOutstanding:       r.CommonStockSharesOutstanding.Float(),
		})
	}
	utils.SortNewestFirst(out, func(b models.BalanceSheet) string { return b.FiscalDateEnding })
	provider.DeriveBalance(out)
	return out
}

func mapCashFlow(s eodStatements[eodCashFlow], period provider.Period, hints provider.Hints) []models.CashFlow {
	rows, dates := reports(s, period, func(r eodCashFlow) string { return r.Date })
	out := make([]models.CashFlow, 0, len(rows))
	for i, r := range rows {
		operating := r.TotalCashFromOperatingActivities.Float()
		capex := r.CapitalExpenditures.Float()
		out = append(out, models.CashFlow{
			FiscalDateEnding:    dates[i],
			PeriodType:          string(period),
			Currency:            s.CurrencySymbol,
			OperatingCashFlow:   operating,
			CapitalExpenditures: capex,
			FreeCashFlow:        provider.FreeCashFlow(r.FreeCashFlow.Ptr(), operating, capex),
			DividendsPaid:       r.DividendsPaid.Float(),
			NetIncome:           r.NetIncome.Float(),
		})
	}
	utils.SortNewestFirst(out, func(c models.CashFlow) string { return c.FiscalDateEnding })
	provider.DeriveCashFlow(out, hints)
	return out
}

// mapEarnings keeps reported quarters only; EODHD lists upcoming quarters
// with a null epsActual.
func mapEarnings(symbol string, e eodEarnings) *models.EarningsData {
	quarterly := make([]models.QuarterlyEarnings, 0, len(e.History))
	for key, r := range e.History {
		actual := r.EPSActual.Ptr()
		if actual == nil {
			continue
		}
		date := r.Date
		if date == "" {
			date = key
		}
		surprise, pct := utils.Round2Ptr(r.EPSDifference.Ptr()), utils.Round2Ptr(r.SurprisePercent.Ptr())
		if surprise == nil {
			surprise, pct = provider.Surprise(actual, r.EPSEstimate.Ptr())
		}
		quarterly = append(quarterly, models.QuarterlyEarnings{
			FiscalDateEnding:   utils.NormalizeDate(date),
			ReportedDate:       utils.OptionalDate(r.ReportDate),
			ReportedEPS:        utils.Round2Ptr(actual),
			EstimatedEPS:       utils.Round2Ptr(r.EPSEstimate.Ptr()),
			Surprise:           surprise,
			SurprisePercentage: pct,
		})
	}
	utils.SortNewestFirst(quarterly, func(q models.QuarterlyEarnings) string { return q.FiscalDateEnding })

	annual := make([]models.AnnualEarnings, 0, len(e.Annual))
	for key, r := range e.Annual {
		actual := r.EPSActual.Ptr()
		if actual == nil {
			continue
		}
		date := r.Date
		if date == "" {
			date = key
		}
		annual = append(annual, models.AnnualEarnings{
			FiscalDateEnding: utils.NormalizeDate(date),
			ReportedEPS:      utils.Round2(*actual),
		})
	}
	utils.SortNewestFirst(annual, func(a models.AnnualEarnings) string { return a.FiscalDateEnding })
	if len(annual) == 0 {
		annual = provider.AnnualFromQuarterly(quarterly)
	}

	return &models.EarningsData{Symbol: symbol, Annual: annual, Quarterly: quarterly}
}
