package output

import (
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds a float to max 6 decimal places
func RoundFloat(f float64) float64 {
	multiplier := math.Pow(10, 6)
	return math.Round(f*multiplier) / multiplier
}

// FormatFloat formats a float with no trailing zeros
func FormatFloat(f float64) string {
	str := strconv.FormatFloat(RoundFloat(f), 'f', 6, 64)
	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")
	return str
}

// FormatPercent renders a 0..1 ratio as a percentage with at most two
// decimal places, e.g. 0.140444 -> "14.04%".
func FormatPercent(ratio float64) string {
	rounded := math.Round(ratio*10000) / 100
	str := strconv.FormatFloat(rounded, 'f', 2, 64)
	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")
	return str + "%"
}
