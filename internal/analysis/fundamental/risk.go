package fundamental

import (
	"math"

	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// neutralRisk is the sub-score used when the underlying metric is absent.
const neutralRisk = 50.0

// Sub-score weights. They sum to 1.
const (
	weightYield      = 0.15
	weightPayout     = 0.20
	weightValuation  = 0.15
	weightLeverage   = 0.20
	weightVolatility = 0.10
	weightCoverage   = 0.20
)

// RiskInputs are the six metrics the risk model scores. Nil means absent.
type RiskInputs struct {
	DividendYield *float64 // %
	PayoutRatio   *float64 // %
	PERatio       *float64
	DebtToEquity  *float64
	Beta          *float64
	FCFCoverage   *float64
}

// RiskInputsFrom collects risk inputs from the overview, falling back to the
// latest balance sheet for leverage.
func RiskInputsFrom(ov *models.CompanyOverview, balance []models.BalanceSheet, dm *models.DividendMetrics) RiskInputs {
	var in RiskInputs
	if ov != nil {
		in.DividendYield = ov.DividendYield
		in.PayoutRatio = ov.PayoutRatio
		in.PERatio = ov.PERatio
		in.DebtToEquity = ov.DebtToEquity
		in.Beta = ov.Beta
	}
	if in.DebtToEquity == nil && len(balance) > 0 {
		in.DebtToEquity = balance[0].DebtToEquity
	}
	if dm != nil {
		in.FCFCoverage = dm.FCFCoverage
	}
	return in
}

// ComputeRisk scores each factor from 0 (safe) to 100 (risky) and combines
// them into a weighted overall score with a level and letter grade.
func ComputeRisk(in RiskInputs) *models.RiskFactors {
	r := &models.RiskFactors{
		YieldRisk:      score(in.DividendYield, yieldRisk),
		PayoutRisk:     score(in.PayoutRatio, payoutRisk),
		ValuationRisk:  score(in.PERatio, valuationRisk),
		LeverageRisk:   score(in.DebtToEquity, leverageRisk),
		VolatilityRisk: score(in.Beta, volatilityRisk),
		CoverageRisk:   score(in.FCFCoverage, coverageRisk),
	}

	overall := r.YieldRisk*weightYield +
		r.PayoutRisk*weightPayout +
		r.ValuationRisk*weightValuation +
		r.LeverageRisk*weightLeverage +
		r.VolatilityRisk*weightVolatility +
		r.CoverageRisk*weightCoverage
	r.OverallScore = utils.Round2(math.Max(0, math.Min(100, overall)))
	r.Level = riskLevel(r.OverallScore)
	r.Grade = riskGrade(r.OverallScore)
	return r
}

func score(v *float64, table func(float64) float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return neutralRisk
	}
	return table(*v)
}

// Unusually high yields often signal a price collapse or an unsustainable
// payout, so risk rises with yield.
func yieldRisk(y float64) float64 {
	switch {
	case y < 2:
		return 20
	case y < 4:
		return 30
	case y < 6:
		return 50
	case y < 8:
		return 70
	default:
		return 90
	}
}

func payoutRisk(p float64) float64 {
	switch {
	case p < 0:
		return 90
	case p < 30:
		return 20
	case p < 50:
		return 30
	case p < 70:
		return 50
	case p < 90:
		return 70
	default:
		return 90
	}
}

func valuationRisk(pe float64) float64 {
	switch {
	case pe <= 0:
		return 80
	case pe < 15:
		return 20
	case pe < 25:
		return 35
	case pe < 40:
		return 60
	default:
		return 80
	}
}

func leverageRisk(de float64) float64 {
	switch {
	case de < 0:
		return 90
	case de < 0.5:
		return 20
	case de < 1:
		return 35
	case de < 2:
		return 60
	default:
		return 85
	}
}

func volatilityRisk(beta float64) float64 {
	switch {
	case beta < 0.8:
		return 20
	case beta < 1.2:
		return 40
	case beta < 1.5:
		return 60
	default:
		return 80
	}
}

func coverageRisk(c float64) float64 {
	switch {
	case c < 1:
		return 90
	case c < 1.5:
		return 60
	case c < 2:
		return 40
	default:
		return 20
	}
}

func riskLevel(s float64) models.RiskLevel {
	switch {
	case s < 40:
		return models.RiskLow
	case s < 70:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func riskGrade(s float64) string {
	switch {
	case s <= 25:
		return "A"
	case s <= 40:
		return "B"
	case s <= 55:
		return "C"
	case s <= 70:
		return "D"
	default:
		return "F"
	}
}
