package utils

import (
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds a value to the given number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// ParseLenientFloat parses user-supplied numeric input. A blank or malformed
// string reports ok=false rather than an error, so callers can treat it as
// "no constraint". Thousands separators and surrounding whitespace are
// tolerated.
func ParseLenientFloat(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
