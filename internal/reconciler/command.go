package reconciler

import "fmt"

// Op identifies a timeline edit
type Op int

const (
	OpSplit Op = iota
	OpDiscard
	OpReposition
)

func (o Op) String() string {
	switch o {
	case OpSplit:
		return "split"
	case OpDiscard:
		return "discard"
	case OpReposition:
		return "reposition"
	default:
		return "unknown"
	}
}

// Command is one edit against a piece of a clip.
//
// Pieces are clip-local handles. Handle 0 is the clip as it was before
// reconciliation; every split keeps the front part under the handle it was
// split from and allocates the next free handle for the back part.
type Command struct {
	Op    Op
	Piece int

	// OpSplit: absolute timeline frame to split at, and the handle of the back part
	At   int
	Back int

	// OpReposition: new hard start of the piece, and where its visible part lands
	FrameStart   int
	VisibleStart int
}

func (c Command) String() string {
	switch c.Op {
	case OpSplit:
		return fmt.Sprintf("split #%d at %d -> #%d", c.Piece, c.At, c.Back)
	case OpDiscard:
		return fmt.Sprintf("discard #%d", c.Piece)
	case OpReposition:
		return fmt.Sprintf("reposition #%d start %d (visible %d)", c.Piece, c.FrameStart, c.VisibleStart)
	default:
		return fmt.Sprintf("%s #%d", c.Op, c.Piece)
	}
}

// Segment is a retained piece of a clip, with its geometry after repositioning
type Segment struct {
	Piece       int
	Interval    int // Index of the keep-interval this segment belongs to
	HardStart   int
	OffsetStart int
	Duration    int
}

// Start returns the first visible frame of the segment
func (s Segment) Start() int {
	return s.HardStart + s.OffsetStart
}

// End returns the frame after the last visible frame of the segment
func (s Segment) End() int {
	return s.Start() + s.Duration
}

// Plan is the ordered edit list for one clip.
// Commands are ordered splits first, then discards, then repositions.
type Plan struct {
	ClipID   string
	Commands []Command
	Segments []Segment
}

// Untouched reports whether the plan leaves the clip as it was
func (p Plan) Untouched() bool {
	return len(p.Commands) == 0
}

// Count returns how many commands of the given kind the plan holds
func (p Plan) Count(op Op) int {
	n := 0
	for _, c := range p.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// KeptFrames returns the total visible duration of the retained segments
func (p Plan) KeptFrames() int {
	total := 0
	for _, s := range p.Segments {
		total += s.Duration
	}
	return total
}
