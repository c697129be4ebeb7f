package marketmath

import "testing"

func TestERound(t *testing.T) {
	// 0.1+0.2 style drift must collapse onto the step grid.
	got := ERound(0.1 + 0.2)
	if got != 0.3 {
		t.Fatalf("ERound(0.1+0.2) got=%v want=0.3", got)
	}

	// Drift smaller than half a step disappears.
	got = ERound(3.0 + 0.4e-8)
	if got != 3.0 {
		t.Fatalf("ERound got=%v want=3.0", got)
	}

	// Drift larger than half a step rounds to the next unit.
	got = ERound(3.0 + 0.6e-8)
	if got != 3.00000001 {
		t.Fatalf("ERound got=%v want=3.00000001", got)
	}
}

func TestAlmostEqual(t *testing.T) {
	if !AlmostEqual(1.0, 1.0) {
		t.Fatalf("identical values must be almost equal")
	}
	if !AlmostEqual(1.0, 1.0+AmountStep) {
		t.Fatalf("one-step difference must be within tolerance")
	}
	if AlmostEqual(1.0, 1.0+2*AmountStep) {
		t.Fatalf("two-step difference must not be almost equal")
	}
}
