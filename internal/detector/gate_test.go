package detector

import (
	"fmt"
	"math"
	"testing"
)

func TestNewGateHysteresis(t *testing.T) {
	g := NewGate(-15, DefaultDebounceSamples)

	wantRising := math.Pow(10, -15.0/20.0)
	wantFalling := math.Pow(10, -17.0/20.0)

	if math.Abs(g.Rising-wantRising) > 1e-12 {
		t.Errorf("Rising = %v, want %v", g.Rising, wantRising)
	}
	if math.Abs(g.Falling-wantFalling) > 1e-12 {
		t.Errorf("Falling = %v, want %v", g.Falling, wantFalling)
	}
	if g.Falling >= g.Rising {
		t.Errorf("Falling %v must be below Rising %v", g.Falling, g.Rising)
	}
	if g.State() != Armed {
		t.Errorf("new gate state = %v, want armed", g.State())
	}
}

func TestGateFiresOnlyWhenArmed(t *testing.T) {
	g := NewGate(-15, 10)

	if g.Step(0.1) {
		t.Error("fired below rising threshold")
	}
	if !g.Step(0.5) {
		t.Error("did not fire above rising threshold")
	}
	if !g.Step(0.5) {
		t.Error("firing must not change state on its own")
	}

	g.Hold()
	if g.Step(1.0) {
		t.Error("fired while in holdoff")
	}
}

func TestGateThresholdIsStrict(t *testing.T) {
	g := NewGate(-15, 10)
	if g.Step(g.Rising) {
		t.Error("sample exactly at the rising threshold must not fire")
	}
}

func TestGateDebounceLengths(t *testing.T) {
	for _, debounce := range []int{0, 1, 5, 50, 200} {
		t.Run(fmt.Sprintf("debounce_%d", debounce), func(t *testing.T) {
			g := NewGate(-15, debounce)
			g.Hold()

			// Re-arms on the (debounce+1)th consecutive quiet sample
			for i := 0; i < debounce; i++ {
				g.Step(0)
				if g.State() != Holdoff {
					t.Fatalf("debounce=%d: re-armed after %d quiet samples", debounce, i+1)
				}
			}
			g.Step(0)
			if g.State() != Armed {
				t.Fatalf("debounce=%d: still in holdoff after %d quiet samples", debounce, debounce+1)
			}
			if g.counter != 0 {
				t.Errorf("debounce=%d: counter = %d after re-arm, want 0", debounce, g.counter)
			}
		})
	}
}

func TestGateLoudSampleResetsDebounce(t *testing.T) {
	g := NewGate(-15, 5)
	g.Hold()

	for i := 0; i < 5; i++ {
		g.Step(0)
	}
	if g.counter != 5 {
		t.Fatalf("counter = %d, want 5", g.counter)
	}

	// Between falling and rising: not loud enough to fire, too loud to count as quiet
	between := (g.Rising + g.Falling) / 2
	g.Step(between)
	if g.counter != 0 {
		t.Errorf("counter = %d after sample at %v, want 0", g.counter, between)
	}
	if g.State() != Holdoff {
		t.Errorf("state = %v, want holdoff", g.State())
	}

	// A dip just under the falling threshold counts
	g.Step(g.Falling * 0.999)
	if g.counter != 1 {
		t.Errorf("counter = %d, want 1", g.counter)
	}
}

func TestGateStateString(t *testing.T) {
	tests := []struct {
		state GateState
		want  string
	}{
		{Armed, "armed"},
		{Holdoff, "holdoff"},
		{GateState(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("GateState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
