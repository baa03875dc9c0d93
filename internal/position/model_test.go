package position

import "testing"

func TestPnLPercent(t *testing.T) {
	p := Position{MarginUsed: 100}
	if got := p.PnLPercent(25); got != 25 {
		t.Errorf("PnLPercent(25) = %v, want 25", got)
	}
	if got := p.PnLPercent(-12.5); got != -12.5 {
		t.Errorf("PnLPercent(-12.5) = %v, want -12.5", got)
	}

	zero := Position{}
	if got := zero.PnLPercent(25); got != 0 {
		t.Errorf("PnLPercent with zero margin = %v, want 0", got)
	}
}
