package fundamental

import (
	"math"

	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// CAGR returns the compound annual growth rate from start to end over the
// given number of years, as a percentage rounded to 2 decimals. It is nil
// when either value is non-positive or years is not positive.
func CAGR(start, end float64, years int) *float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return nil
	}
	g := (math.Pow(end/start, 1/float64(years)) - 1) * 100
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return nil
	}
	return utils.Float(utils.Round2(g))
}

// ComputeGrowth applies CAGR to the revenue, EPS, free cash flow and
// dividend payout series at 3 and 5 year lookbacks.
//
// Series are newest first and assumed to hold one entry per year, so the
// lookback is a list offset rather than a date difference. The 5-year window
// starts at min(5, len-1) and needs at least 4 years of history.
func ComputeGrowth(income []models.IncomeStatement, flows []models.CashFlow, earnings *models.EarningsData) *models.GrowthMetrics {
	revenue := make([]float64, 0, len(income))
	for _, s := range income {
		revenue = append(revenue, s.TotalRevenue)
	}

	eps := annualEPS(earnings, income)

	fcf := make([]float64, 0, len(flows))
	payout := make([]float64, 0, len(flows))
	for _, f := range flows {
		fcf = append(fcf, f.FreeCashFlow)
		payout = append(payout, math.Abs(f.DividendsPaid))
	}

	return &models.GrowthMetrics{
		RevenueCAGR3Y:  threeYear(revenue),
		RevenueCAGR5Y:  fiveYear(revenue),
		EPSCAGR3Y:      threeYear(eps),
		EPSCAGR5Y:      fiveYear(eps),
		FCFCAGR3Y:      threeYear(fcf),
		FCFCAGR5Y:      fiveYear(fcf),
		DividendCAGR3Y: threeYear(payout),
		DividendCAGR5Y: fiveYear(payout),
	}
}

// annualEPS prefers the reported annual EPS list and falls back to the
// income statements' EPS.
func annualEPS(earnings *models.EarningsData, income []models.IncomeStatement) []float64 {
	if earnings != nil && len(earnings.Annual) > 0 {
		out := make([]float64, 0, len(earnings.Annual))
		for _, a := range earnings.Annual {
			out = append(out, a.ReportedEPS)
		}
		return out
	}
	out := make([]float64, 0, len(income))
	for _, s := range income {
		if s.EPS == nil {
			break
		}
		out = append(out, *s.EPS)
	}
	return out
}

func threeYear(series []float64) *float64 {
	if len(series) <= 3 {
		return nil
	}
	return CAGR(series[3], series[0], 3)
}

// fiveYear spans at most five periods: longer histories use index 5, not the
// oldest entry, and four periods are accepted when that is all there is.
func fiveYear(series []float64) *float64 {
	idx := min(5, len(series)-1)
	if idx < 4 {
		return nil
	}
	return CAGR(series[idx], series[0], idx)
}
