package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Common parameter formatters and parsers

// PercentFormatter formats a normalized value as a percentage without the
// unit suffix (0.5 -> "50"). The unit label is reported separately.
func PercentFormatter(value float64) string {
	pct := math.Round(value*100*1e4) / 1e4
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

// PercentParser parses percentage strings back into normalized values
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	pct, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return pct / 100, nil
}

// DecibelFormatter formats a linear gain factor in dB
func DecibelFormatter(gain float64) string {
	if gain <= 0 {
		return "-∞ dB"
	}
	db := 20 * math.Log10(gain)
	if db <= -60 {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}
