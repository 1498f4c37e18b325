package detector

// GateState is the state of the trigger gate
type GateState int

const (
	// Armed: the next sample above the rising threshold fires a peak
	Armed GateState = iota
	// Holdoff: a transient is in progress, waiting for a sustained quiet run
	Holdoff
)

func (s GateState) String() string {
	switch s {
	case Armed:
		return "armed"
	case Holdoff:
		return "holdoff"
	default:
		return "unknown"
	}
}

// Gate is a two-state trigger with hysteresis and debounce.
//
// While Armed, any sample whose magnitude exceeds the rising threshold fires.
// While in Holdoff, the gate re-arms only after more than Debounce consecutive
// samples have stayed below the falling threshold. A single loud sample resets
// the run; there is no partial credit.
type Gate struct {
	Rising   float64 // Linear trigger level
	Falling  float64 // Linear release level, always below Rising
	Debounce int     // Quiet samples required before re-arming

	state   GateState
	counter int
}

// NewGate creates an armed gate for the given threshold in dBFS.
// The falling threshold sits HysteresisDB below the rising one.
func NewGate(thresholdDB float64, debounce int) *Gate {
	return &Gate{
		Rising:   DbToLinear(thresholdDB),
		Falling:  DbToLinear(thresholdDB - HysteresisDB),
		Debounce: debounce,
	}
}

// State returns the current gate state
func (g *Gate) State() GateState {
	return g.state
}

// Hold forces the gate into Holdoff with a fresh debounce run
func (g *Gate) Hold() {
	g.state = Holdoff
	g.counter = 0
}

// Reset re-arms the gate
func (g *Gate) Reset() {
	g.state = Armed
	g.counter = 0
}

// Step feeds one sample magnitude to the gate and reports whether it fired.
// Firing never changes state by itself; callers decide whether to Hold.
func (g *Gate) Step(magnitude float64) bool {
	if g.state == Holdoff {
		if magnitude < g.Falling {
			g.counter++
			if g.counter > g.Debounce {
				g.Reset()
			}
		} else {
			g.counter = 0
		}
		return false
	}

	return magnitude > g.Rising
}
