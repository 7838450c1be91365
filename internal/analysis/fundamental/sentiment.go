package fundamental

import (
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// Consensus labels.
const (
	ConsensusStrongBuy = "Strong Buy"
	ConsensusBuy       = "Buy"
	ConsensusHold      = "Hold"
	ConsensusSell      = "Sell"
)

// ComputeSentiment derives the analyst consensus from the overview's rating
// counts. It returns nil when there are no ratings.
func ComputeSentiment(ov *models.CompanyOverview) *models.AnalystSentiment {
	if ov == nil {
		return nil
	}
	total := ov.AnalystRatings.Total()
	if total == 0 {
		return nil
	}

	buyFraction := float64(ov.AnalystRatings.StrongBuy+ov.AnalystRatings.Buy) / float64(total)
	s := &models.AnalystSentiment{
		Ratings:      ov.AnalystRatings,
		TotalRatings: total,
		BuyPercent:   utils.Round2(buyFraction * 100),
		Consensus:    consensus(buyFraction),
		TargetPrice:  ov.AnalystTargetPrice,
	}
	if ov.AnalystTargetPrice != nil && ov.CurrentPrice != nil {
		s.Upside = utils.GrowthPercent(*ov.AnalystTargetPrice, *ov.CurrentPrice)
	}
	return s
}

func consensus(buyFraction float64) string {
	switch {
	case buyFraction >= 0.7:
		return ConsensusStrongBuy
	case buyFraction >= 0.5:
		return ConsensusBuy
	case buyFraction >= 0.3:
		return ConsensusHold
	default:
		return ConsensusSell
	}
}
