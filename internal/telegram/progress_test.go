package telegram

import (
	"math"
	"testing"
)

func TestOrderProgress(t *testing.T) {
	tests := []struct {
		name    string
		target  float64
		current float64
		want    float64
	}{
		{"at target", 100, 100, 100},
		{"far away", 100, 110, 0},
		{"exactly at range edge", 105, 100, 0},
		{"halfway above", 102.5, 100, 50},
		{"halfway below", 97.5, 100, 50},
		{"one percent away", 101, 100, 80},
		{"zero current price", 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderProgress(tt.target, tt.current)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("OrderProgress(%v, %v) = %v, want %v", tt.target, tt.current, got, tt.want)
			}
		})
	}
}

func TestFVGProgressBar(t *testing.T) {
	tests := []struct {
		levels string
		want   string
	}{
		{"H", "🟧🟧⬜⬜⬜⬜⬜⬜"},
		{"h", "🟧🟧⬜⬜⬜⬜⬜⬜"},
		{"M", "⬜⬜🟨🟨⬜⬜⬜⬜"},
		{"HM", "🟧🟧🟨🟨⬜⬜⬜⬜"},
		{"L", "⬜⬜⬜⬜🟩🟩⬜⬜"},
		{"HML", "🟧🟧🟨🟨🟩🟩⬜⬜"},
		{"ML", "🟧🟧🟨🟨🟩🟩⬜⬜"},
		{"HMLX", "🟧🟧🟨🟨🟩🟩🟦🟪"},
		{"LH", "🟧🟧🟨🟨⬜⬜⬜⬜"}, // two distinct letters
		{"X", "🟧🟧⬜⬜⬜⬜⬜⬜"},  // unrecognized falls back to the first band
	}
	for _, tt := range tests {
		if got := FVGProgressBar(tt.levels); got != tt.want {
			t.Errorf("FVGProgressBar(%q) = %q, want %q", tt.levels, got, tt.want)
		}
	}
}
