// Package fundamental computes derived dividend, risk, growth and analyst
// sentiment metrics from already-fetched data. Every function is pure and
// total: insufficient input yields absent fields, never an error.
package fundamental

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// ComputeDividendMetrics summarizes the dividend history. Payment history is
// evaluated oldest first; flows are newest first as mapped.
//
// ConsecutiveGrowthYears counts consecutive non-decreasing payment records,
// which equals years only for annual payers.
func ComputeDividendMetrics(ov *models.CompanyOverview, divs []models.DividendRecord, flows []models.CashFlow) *models.DividendMetrics {
	m := &models.DividendMetrics{
		PaymentCount: len(divs),
	}
	if ov != nil {
		m.CurrentYield = ov.DividendYield
		m.AnnualDividend = ov.DividendPerShare
		m.PayoutRatio = ov.PayoutRatio
	}

	chrono := make([]models.DividendRecord, len(divs))
	copy(chrono, divs)
	sort.SliceStable(chrono, func(i, j int) bool { return chrono[i].ExDate < chrono[j].ExDate })

	amounts := make([]float64, 0, len(chrono))
	for _, d := range chrono {
		amounts = append(amounts, d.Amount)
	}

	if len(amounts) > 0 {
		m.TotalDividends = utils.Round2(floats.Sum(amounts))
		m.AverageDividend = utils.Float(utils.Round2(stat.Mean(amounts, nil)))
		m.LatestExDate = chrono[len(chrono)-1].ExDate
	}

	var rates []float64
	streak := 0
	for i := 1; i < len(amounts); i++ {
		prev, curr := amounts[i-1], amounts[i]
		if prev > 0 {
			rates = append(rates, (curr-prev)/prev*100)
		}
		if curr >= prev {
			streak++
		} else {
			streak = 0
		}
	}
	m.ConsecutiveGrowthYears = streak
	if len(rates) > 0 {
		m.AverageGrowthRate = utils.Float(utils.Round2(stat.Mean(rates, nil)))
	}

	if len(flows) > 0 {
		latest := flows[0]
		if paid := math.Abs(latest.DividendsPaid); paid > 0 {
			m.FCFCoverage = utils.Ratio(latest.FreeCashFlow, paid)
		}
	}

	m.Consistency = consistency(m.PaymentCount, m.ConsecutiveGrowthYears)
	return m
}

func consistency(payments, streak int) string {
	switch {
	case payments >= 20 && streak >= 8:
		return models.ConsistencyExcellent
	case payments >= 12 && streak >= 4:
		return models.ConsistencyGood
	case payments >= 4:
		return models.ConsistencyFair
	default:
		return models.ConsistencyLimited
	}
}
