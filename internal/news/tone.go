package news

import (
	"strings"

	"github.com/seenimoa/divlens/pkg/utils"
)

// Tone labels.
const (
	TonePositive = "Positive"
	ToneNegative = "Negative"
	ToneNeutral  = "Neutral"
)

type cue struct {
	phrase string
	weight float64
}

// Lowercase phrases; a headline scores every cue it contains.
var positiveCues = []cue{
	{"raises dividend", 0.8}, {"dividend increase", 0.8}, {"dividend hike", 0.8},
	{"boosts dividend", 0.8}, {"special dividend", 0.6}, {"buyback", 0.5},
	{"beats", 0.5}, {"upgrade", 0.6}, {"outperform", 0.5}, {"record", 0.4},
	{"growth", 0.3}, {"strong", 0.3}, {"surge", 0.5}, {"rally", 0.4},
}

var negativeCues = []cue{
	{"cuts dividend", 0.9}, {"dividend cut", 0.9}, {"suspends dividend", 1.0},
	{"slashes", 0.8}, {"misses", 0.5}, {"downgrade", 0.6}, {"underperform", 0.5},
	{"lawsuit", 0.5}, {"investigation", 0.5}, {"layoffs", 0.4}, {"plunge", 0.6},
	{"warning", 0.4}, {"decline", 0.3}, {"weak", 0.3},
}

// ScoreTone rates text from -1 (negative) to +1 (positive). Text without any
// cue scores 0.
func ScoreTone(text string) float64 {
	lower := strings.ToLower(text)
	var pos, neg float64
	for _, c := range positiveCues {
		if strings.Contains(lower, c.phrase) {
			pos += c.weight
		}
	}
	for _, c := range negativeCues {
		if strings.Contains(lower, c.phrase) {
			neg += c.weight
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return utils.Round2((pos - neg) / (pos + neg))
}

// ToneLabel buckets a tone score.
func ToneLabel(score float64) string {
	switch {
	case score > 0.2:
		return TonePositive
	case score < -0.2:
		return ToneNegative
	}
	return ToneNeutral
}
