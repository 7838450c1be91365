package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ErrInvalidTicker is returned when a symbol is not 1-5 ASCII letters.
type ErrInvalidTicker struct {
	Input string
}

func (e *ErrInvalidTicker) Error() string {
	return fmt.Sprintf("invalid ticker %q: expected 1-5 letters", e.Input)
}

// NormalizeTicker trims, uppercases and strips a leading "$" (common in chat input).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ValidateTicker normalizes the input and rejects anything that is not a
// plain 1-5 letter US ticker.
func ValidateTicker(ticker string) (string, error) {
	symbol := NormalizeTicker(ticker)
	if !tickerPattern.MatchString(symbol) {
		return "", &ErrInvalidTicker{Input: ticker}
	}
	return symbol, nil
}
