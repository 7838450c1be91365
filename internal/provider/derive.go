package provider

import (
	"math"

	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// The Derive helpers fill computed fields on freshly mapped statements.
// Lists are newest first, so growth compares each entry with the one after it.
// Every ratio is rounded to 2 decimals and nil when its denominator is zero
// or absent.

// DeriveIncome fills margins, year-over-year growth and, when the upstream
// omits EPS, net income per share from the shares hint.
func DeriveIncome(stmts []models.IncomeStatement, hints Hints) {
	for i := range stmts {
		s := &stmts[i]
		if s.GrossProfit == 0 && s.CostOfRevenue != 0 {
			s.GrossProfit = s.TotalRevenue - s.CostOfRevenue
		}
		s.GrossMargin = utils.Percent(s.GrossProfit, s.TotalRevenue)
		s.OperatingMargin = utils.Percent(s.OperatingIncome, s.TotalRevenue)
		s.NetMargin = utils.Percent(s.NetIncome, s.TotalRevenue)

		if s.EPS == nil && hints.SharesOutstanding != nil && *hints.SharesOutstanding > 0 {
			s.EPS = utils.Ratio(s.NetIncome, *hints.SharesOutstanding)
		}

		if i+1 < len(stmts) {
			prev := stmts[i+1]
			s.RevenueGrowth = utils.GrowthPercent(s.TotalRevenue, prev.TotalRevenue)
			s.NetIncomeGrowth = utils.GrowthPercent(s.NetIncome, prev.NetIncome)
		}
	}
}

// DeriveBalance fills liquidity and leverage ratios. Quick ratio excludes
// inventory; total debt falls back to long plus short term debt.
func DeriveBalance(sheets []models.BalanceSheet) {
	for i := range sheets {
		b := &sheets[i]
		if b.TotalDebt == 0 {
			b.TotalDebt = b.LongTermDebt + b.ShortTermDebt
		}
		b.CurrentRatio = utils.Ratio(b.TotalCurrentAssets, b.TotalCurrentLiabilities)
		b.QuickRatio = utils.Ratio(b.TotalCurrentAssets-b.Inventory, b.TotalCurrentLiabilities)
		b.DebtToEquity = utils.Ratio(b.TotalDebt, b.ShareholderEquity)
	}
}

// DeriveCashFlow fills per-share, yield and margin figures from the hints.
// FreeCashFlow must already be set (see FreeCashFlow).
func DeriveCashFlow(flows []models.CashFlow, hints Hints) {
	for i := range flows {
		f := &flows[i]
		if hints.SharesOutstanding != nil && *hints.SharesOutstanding > 0 {
			perShare := f.FreeCashFlow / *hints.SharesOutstanding
			f.FCFPerShare = utils.Round2Ptr(&perShare)
			if hints.CurrentPrice != nil {
				f.FCFYield = utils.Percent(perShare, *hints.CurrentPrice)
			}
		}
		if rev, ok := hints.RevenueByYear[utils.FiscalYear(f.FiscalDateEnding)]; ok {
			f.FCFMargin = utils.Percent(f.FreeCashFlow, rev)
		}
	}
}

// FreeCashFlow returns the supplied value, or operating cash flow minus the
// absolute capital expenditure when the upstream does not report it.
func FreeCashFlow(supplied *float64, operating, capex float64) float64 {
	if supplied != nil {
		return *supplied
	}
	return operating - math.Abs(capex)
}

// RevenueByYear maps fiscal year to total revenue. The first (newest) entry
// for a year wins.
func RevenueByYear(stmts []models.IncomeStatement) map[string]float64 {
	out := make(map[string]float64, len(stmts))
	for _, s := range stmts {
		year := utils.FiscalYear(s.FiscalDateEnding)
		if year == "" || s.TotalRevenue == 0 {
			continue
		}
		if _, seen := out[year]; !seen {
			out[year] = s.TotalRevenue
		}
	}
	return out
}

// Surprise returns reported minus estimated EPS and that difference as a
// percentage of the absolute estimate.
func Surprise(reported, estimated *float64) (surprise, percent *float64) {
	if reported == nil || estimated == nil {
		return nil, nil
	}
	diff := *reported - *estimated
	return utils.Round2Ptr(&diff), utils.Percent(diff, math.Abs(*estimated))
}

// AnnualFromQuarterly sums reported quarterly EPS per fiscal year, keeping
// only years with four reported quarters. Output is newest first.
func AnnualFromQuarterly(quarters []models.QuarterlyEarnings) []models.AnnualEarnings {
	type acc struct {
		last  string
		sum   float64
		count int
	}
	byYear := make(map[string]*acc)
	for _, q := range quarters {
		year := utils.FiscalYear(q.FiscalDateEnding)
		if year == "" || q.ReportedEPS == nil {
			continue
		}
		a, ok := byYear[year]
		if !ok {
			a = &acc{}
			byYear[year] = a
		}
		a.sum += *q.ReportedEPS
		a.count++
		if q.FiscalDateEnding > a.last {
			a.last = q.FiscalDateEnding
		}
	}

	out := make([]models.AnnualEarnings, 0, len(byYear))
	for _, a := range byYear {
		if a.count != 4 {
			continue
		}
		out = append(out, models.AnnualEarnings{FiscalDateEnding: a.last, ReportedEPS: utils.Round2(a.sum)})
	}
	utils.SortNewestFirst(out, func(a models.AnnualEarnings) string { return a.FiscalDateEnding })
	return out
}
