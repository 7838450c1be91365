package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Round2Ptr returns a rounded pointer, or nil for nil, NaN and Inf.
func Round2Ptr(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return Float(Round2(*v))
}

// Ratio returns num/den rounded to 2 decimals. A zero, NaN or infinite
// denominator yields nil rather than zero.
func Ratio(num, den float64) *float64 {
	if !defined(num, den) {
		return nil
	}
	return Round2Ptr(Float(num / den))
}

// Percent returns num/den*100 rounded to 2 decimals, nil when undefined.
func Percent(num, den float64) *float64 {
	if !defined(num, den) {
		return nil
	}
	return Round2Ptr(Float(num / den * 100))
}

// GrowthPercent returns (curr-prev)/|prev|*100, nil when prev is zero.
func GrowthPercent(curr, prev float64) *float64 {
	if !defined(curr, prev) {
		return nil
	}
	return Round2Ptr(Float((curr - prev) / math.Abs(prev) * 100))
}

func defined(num, den float64) bool {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return false
	}
	return !math.IsNaN(num) && !math.IsInf(num, 0)
}

// ParseNumber parses upstream numeric strings. Empty strings, "None", "-" and
// "null" are treated as absent.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "none", "-", "null", "N/A":
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Value dereferences p, returning 0 for nil.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FractionPercent converts a fraction (0.0215) to a rounded percentage (2.15).
func FractionPercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Percent(*v, 1)
}
