package alphavantage

import (
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

func mapOverview(o avOverview) *models.CompanyOverview {
	ov := &models.CompanyOverview{
		Symbol:             o.Symbol,
		Name:               o.Name,
		Description:        o.Description,
		Exchange:           o.Exchange,
		Currency:           o.Currency,
		Country:            o.Country,
		Sector:             o.Sector,
		Industry:           o.Industry,
		Website:            o.OfficialSite,
		MarketCap:          o.MarketCapitalization.Ptr(),
		SharesOutstanding:  o.SharesOutstanding.Ptr(),
		WeekHigh52:         o.WeekHigh52.Ptr(),
		WeekLow52:          o.WeekLow52.Ptr(),
		Beta:               utils.Round2Ptr(o.Beta.Ptr()),
		PERatio:            utils.Round2Ptr(o.PERatio.Ptr()),
		ForwardPE:          utils.Round2Ptr(o.ForwardPE.Ptr()),
		PEGRatio:           utils.Round2Ptr(o.PEGRatio.Ptr()),
		PriceToBook:        utils.Round2Ptr(o.PriceToBookRatio.Ptr()),
		EPS:                utils.Round2Ptr(o.EPS.Ptr()),
		DividendPerShare:   utils.Round2Ptr(o.DividendPerShare.Ptr()),
		RevenueTTM:         o.RevenueTTM.Ptr(),
		AnalystTargetPrice: utils.Round2Ptr(o.AnalystTargetPrice.Ptr()),
		ExDividendDate:     utils.OptionalDate(o.ExDividendDate),
		DividendDate:       utils.OptionalDate(o.DividendDate),
		AnalystRatings: models.Ratings{
			StrongBuy:  int(o.AnalystRatingStrongBuy.Float()),
			Buy:        int(o.AnalystRatingBuy.Float()),
			Hold:       int(o.AnalystRatingHold.Float()),
			Sell:       int(o.AnalystRatingSell.Float()),
			StrongSell: int(o.AnalystRatingStrongSell.Float()),
		},
	}

	// Fractions become percentages.
	ov.DividendYield = utils.FractionPercent(o.DividendYield.Ptr())
	ov.ProfitMargin = utils.FractionPercent(o.ProfitMargin.Ptr())
	ov.ReturnOnEquity = utils.FractionPercent(o.ReturnOnEquityTTM.Ptr())

	// OVERVIEW carries no quote; market cap over shares is the implied price.
	if ov.MarketCap != nil && ov.SharesOutstanding != nil {
		ov.CurrentPrice = utils.Ratio(*ov.MarketCap, *ov.SharesOutstanding)
	}
	if dps, eps := o.DividendPerShare.Ptr(), o.EPS.Ptr(); dps != nil && eps != nil && *eps > 0 {
		ov.PayoutRatio = utils.Percent(*dps, *eps)
	}
	return ov
}

func mapDividends(rows []avDividendRow) []models.DividendRecord {
	out := make([]models.DividendRecord, 0, len(rows))
	for _, r := range rows {
		amount := r.Amount.Float()
		if amount <= 0 || r.ExDividendDate == "" {
			continue
		}
		out = append(out, models.DividendRecord{
			ExDate:          utils.NormalizeDate(r.ExDividendDate),
			PaymentDate:     utils.OptionalDate(r.PaymentDate),
			RecordDate:      utils.OptionalDate(r.RecordDate),
			DeclarationDate: utils.OptionalDate(r.DeclarationDate),
			Amount:          amount,
			AdjustedAmount:  amount,
		})
	}
	utils.SortNewestFirst(out, func(d models.DividendRecord) string { return d.ExDate })
	return out
}

func mapIncome(rows []avIncome, period provider.Period, hints provider.Hints) []models.IncomeStatement {
	out := make([]models.IncomeStatement, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.IncomeStatement{
			FiscalDateEnding: utils.NormalizeDate(r.FiscalDateEnding),
			PeriodType:       string(period),
			Currency:         r.ReportedCurrency,
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

func mapBalance(rows []avBalance, period provider.Period) []models.BalanceSheet {
	out := make([]models.BalanceSheet, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.BalanceSheet{
			FiscalDateEnding:        utils.NormalizeDate(r.FiscalDateEnding),
			PeriodType:              string(period),
			Currency:                r.ReportedCurrency,
			TotalAssets:             r.TotalAssets.Float(),
			TotalCurrentAssets:      r.TotalCurrentAssets.Float(),
			CashAndEquivalents:      r.CashAndCashEquivalentsAtCarryingValue.Float(),
			Inventory:               r.Inventory.Float(),
			TotalLiabilities:        r.TotalLiabilities.Float(),
			TotalCurrentLiabilities: r.TotalCurrentLiabilities.Float(),
			LongTermDebt:            r.LongTermDebt.Float(),
			ShortTermDebt:           r.ShortTermDebt.Float(),
			TotalDebt:               r.ShortLongTermDebtTotal.Float(),
			ShareholderEquity:       r.TotalShareholderEquity.Float(),
			SharesOutstanding:       r.CommonStockSharesOutstanding.Float(),
		})
	}
	utils.SortNewestFirst(out, func(b models.BalanceSheet) string { return b.FiscalDateEnding })
	provider.DeriveBalance(out)
	return out
}

func mapCashFlow(rows []avCashFlow, period provider.Period, hints provider.Hints) []models.CashFlow {
	out := make([]models.CashFlow, 0, len(rows))
	for _, r := range rows {
		operating := r.OperatingCashflow.Float()
		capex := r.CapitalExpenditures.Float()
		out = append(out, models.CashFlow{
			FiscalDateEnding:    utils.NormalizeDate(r.FiscalDateEnding),
			PeriodType:          string(period),
			Currency:            r.ReportedCurrency,
			OperatingCashFlow:   operating,
			CapitalExpenditures: capex,
			FreeCashFlow:        provider.FreeCashFlow(nil, operating, capex),
			DividendsPaid:       r.DividendPayout.Float(),
			NetIncome:           r.NetIncome.Float(),
		})
	}
	utils.SortNewestFirst(out, func(c models.CashFlow) string { return c.FiscalDateEnding })
	provider.DeriveCashFlow(out, hints)
	return out
}

func mapEarnings(symbol string, e avEarnings) *models.EarningsData {
	annual := make([]models.AnnualEarnings, 0, len(e.AnnualEarnings))
	for _, a := range e.AnnualEarnings {
		eps := a.ReportedEPS.Ptr()
		if eps == nil {
			continue
		}
		annual = append(annual, models.AnnualEarnings{
			FiscalDateEnding: utils.NormalizeDate(a.FiscalDateEnding),
			ReportedEPS:      utils.Round2(*eps),
		})
	}
	utils.SortNewestFirst(annual, func(a models.AnnualEarnings) string { return a.FiscalDateEnding })

	quarterly := make([]models.QuarterlyEarnings, 0, len(e.QuarterlyEarnings))
	for _, q := range e.QuarterlyEarnings {
		reported, estimated := q.ReportedEPS.Ptr(), q.EstimatedEPS.Ptr()
		if reported == nil {
			continue
		}
		surprise, pct := utils.Round2Ptr(q.Surprise.Ptr()), utils.Round2Ptr(q.SurprisePercentage.Ptr())
		if surprise == nil {
			surprise, pct = provider.Surprise(reported, estimated)
		}
		quarterly = append(quarterly, models.QuarterlyEarnings{
			FiscalDateEnding:   utils.NormalizeDate(q.FiscalDateEnding),
			ReportedDate:       utils.OptionalDate(q.ReportedDate),
			ReportedEPS:        utils.Round2Ptr(reported),
			EstimatedEPS:       utils.Round2Ptr(estimated),
			Surprise:           surprise,
			SurprisePercentage: pct,
		})
	}
	utils.SortNewestFirst(quarterly, func(q models.QuarterlyEarnings) string { return q.FiscalDateEnding })

	return &models.EarningsData{Symbol: symbol, Annual: annual, Quarterly: quarterly}
}
