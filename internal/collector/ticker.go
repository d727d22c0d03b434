package collector

import (
	"fmt"
	"regexp"
	"strings"

	"StockDashboard/internal/model"
)

// tickerPattern allows class shares (BRK.B, BF-B), indices (^GSPC) and FX/futures suffixes (EURUSD=X).
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,11}$`)

// SanitizeTicker trims and upper-cases a user supplied ticker and validates it.
func SanitizeTicker(ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if normalized == "" {
		return "", fmt.Errorf("%w: ticker cannot be empty", model.ErrInvalidConfiguration)
	}
	if !tickerPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: invalid ticker format %q", model.ErrInvalidConfiguration, ticker)
	}
	return normalized, nil
}
