package service

import (
	"strconv"
	"strings"
)

// ParsePercentage recognizes tokens like "2%" or "%5" and returns the value
// as a fraction (0.02). Plain numbers are not percentages.
func ParsePercentage(raw string) (float64, bool) {
	if !strings.Contains(raw, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, "%", "")), 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

// TargetPrice moves the entry in the profit direction by the given fraction.
func TargetPrice(entry, fraction float64, isLong bool) float64 {
	if isLong {
		return entry * (1 + fraction)
	}
	return entry * (1 - fraction)
}

// StopLossPrice moves the entry in the loss direction by the given fraction.
func StopLossPrice(entry, fraction float64, isLong bool) float64 {
	if isLong {
		return entry * (1 - fraction)
	}
	return entry * (1 + fraction)
}

// ResolvePrice turns a raw price token (absolute number or percentage) into
// an absolute price relative to the base entry.
func ResolvePrice(raw string, entry float64, isLong, isTarget bool) float64 {
	if fraction, ok := ParsePercentage(raw); ok {
		if isTarget {
			return TargetPrice(entry, fraction, isLong)
		}
		return StopLossPrice(entry, fraction, isLong)
	}
	v, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return v
}
