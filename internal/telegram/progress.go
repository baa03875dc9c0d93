package telegram

import (
	"math"
	"strings"
)

// progressRange is the price distance (in percent) at which a pending limit
// order shows zero progress; progress scales linearly to 100 as the
// distance closes.
const progressRange = 5.0

// OrderProgress returns the fill-progress percentage of a pending limit
// order, symmetric for long and short.
func OrderProgress(targetPrice, currentPrice float64) float64 {
	if currentPrice <= 0 {
		return 0
	}
	distance := math.Abs((targetPrice - currentPrice) / currentPrice * 100)
	if distance >= progressRange {
		return 0
	}
	progress := (progressRange - distance) / progressRange * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// FVGProgressBar maps the hit level letters (H/M/L) onto a colored bar.
func FVGProgressBar(levels string) string {
	levels = strings.ToUpper(levels)

	const (
		barH   = "🟧🟧⬜⬜⬜⬜⬜⬜"
		barM   = "⬜⬜🟨🟨⬜⬜⬜⬜"
		barHM  = "🟧🟧🟨🟨⬜⬜⬜⬜"
		barL   = "⬜⬜⬜⬜🟩🟩⬜⬜"
		barHML = "🟧🟧🟨🟨🟩🟩⬜⬜"
		barAll = "🟧🟧🟨🟨🟩🟩🟦🟪"
	)

	if len(levels) > 3 {
		return barAll
	}
	switch levels {
	case "H":
		return barH
	case "M":
		return barM
	case "HM":
		return barHM
	case "L":
		return barL
	case "HML", "ML":
		return barHML
	}

	// Infer from the distinct level letters present
	uniq := map[rune]struct{}{}
	for _, r := range levels {
		if r == 'H' || r == 'M' || r == 'L' {
			uniq[r] = struct{}{}
		}
	}
	switch {
	case len(uniq) >= 3:
		return barHML
	case len(uniq) == 2:
		return barHM
	default:
		return barH
	}
}
