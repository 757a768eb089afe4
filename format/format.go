// Package format holds the date and currency helpers shared by the extraction stages.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ZeroCurrency is the rendering of a zero or unparseable amount.
const ZeroCurrency = "$0.00"

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]+`)
	leadingNumber = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)`)
)

// FormatDate returns month/day/year as MM/DD/YYYY. The second return value is false
// when the combination is not a real calendar date (e.g. 02/30), in which case the
// failure is logged and the string is empty.
func FormatDate(month, day, year int) (string, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day || t.Year() != year {
		zap.L().Warn("invalid date",
			zap.Int("month", month),
			zap.Int("day", day),
			zap.Int("year", year),
		)
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", month, day, year), true
}

// ParseCurrency strips everything except digits, '.' and '-' and parses the leading
// number of what remains. Empty, whitespace-only or unparseable input yields 0.
func ParseCurrency(text string) float64 {
	cleaned := nonNumeric.ReplaceAllString(text, "")
	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return 0
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// FormatCurrency renders n with two decimals and a leading '$'.
// NaN and infinities render as ZeroCurrency.
func FormatCurrency(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ZeroCurrency
	}
	return "$" + strconv.FormatFloat(n, 'f', 2, 64)
}

// CurrentTaxYear returns the tax year in effect at now. The year rolls over on
// October 1st.
func CurrentTaxYear(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}
