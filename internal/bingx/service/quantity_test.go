package service

import "testing"

func TestPositionQuantity(t *testing.T) {
	tests := []struct {
		margin   float64
		leverage int
		entry    float64
		want     float64
	}{
		{100, 6, 45000, 0.013333},
		{10, 10, 100, 1},
		{50, 5, 0, 0},
		{50, 0, 100, 0},
	}
	for _, tt := range tests {
		got := PositionQuantity(tt.margin, tt.leverage, tt.entry)
		if got != tt.want {
			t.Errorf("PositionQuantity(%v, %d, %v) = %v, want %v",
				tt.margin, tt.leverage, tt.entry, got, tt.want)
		}
	}
}

func TestRoundPrice(t *testing.T) {
	if got := RoundPrice(45000.123456789); got != 45000.12345679 {
		t.Errorf("RoundPrice = %v, want 45000.12345679", got)
	}
	if got := RoundPrice(0.1); got != 0.1 {
		t.Errorf("RoundPrice(0.1) = %v", got)
	}
}
