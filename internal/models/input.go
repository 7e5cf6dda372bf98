package models

import (
	"math"
	"strconv"
	"strings"
)

// SecondsFromInput converts a form value to whole seconds. When minutes is
// set the value is taken as minutes. Negative or non-finite values become 0.
func SecondsFromInput(value float64, minutes bool) int {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	if minutes {
		value *= 60
	}
	return int(math.Round(value))
}

// ParseSeconds parses a textual duration field with SecondsFromInput rules.
// Unparseable input yields 0.
func ParseSeconds(s string, minutes bool) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return SecondsFromInput(v, minutes)
}
