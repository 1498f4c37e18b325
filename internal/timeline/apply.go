package timeline

import (
	"errors"
	"fmt"

	"github.com/linuxmatters/bangingcuts/internal/reconciler"
)

// ErrInvalidPlan is returned when a plan does not fit the clip it targets
var ErrInvalidPlan = errors.New("plan does not fit clip")

// ApplyResult lists the timeline ids a plan produced
type ApplyResult struct {
	ClipID  string
	Kept    []string // Retained segments, in interval order
	Removed []string
}

// Apply binds a plan's piece handles to timeline ids and runs its commands
// in order. The whole plan is checked against the clip's geometry before the
// first command runs, so a plan that does not fit leaves the clip untouched.
func Apply(m Mutator, clip Clip, plan reconciler.Plan) (ApplyResult, error) {
	result := ApplyResult{ClipID: clip.ID}
	if plan.ClipID != clip.ID {
		return result, fmt.Errorf("%w: plan for %q applied to %q", ErrInvalidPlan, plan.ClipID, clip.ID)
	}
	if err := checkPlan(clip, plan); err != nil {
		return result, err
	}

	ids := map[int]string{0: clip.ID}
	for _, cmd := range plan.Commands {
		switch cmd.Op {
		case reconciler.OpSplit:
			back, err := m.Split(ids[cmd.Piece], cmd.At)
			if err != nil {
				return result, err
			}
			ids[cmd.Back] = back
		case reconciler.OpDiscard:
			if err := m.Remove(ids[cmd.Piece]); err != nil {
				return result, err
			}
			result.Removed = append(result.Removed, ids[cmd.Piece])
		case reconciler.OpReposition:
			if err := m.SetStart(ids[cmd.Piece], cmd.FrameStart); err != nil {
				return result, err
			}
			result.Kept = append(result.Kept, ids[cmd.Piece])
		}
	}
	return result, nil
}

type span struct {
	start, end int
	removed    bool
}

// checkPlan replays the plan on bare geometry
func checkPlan(clip Clip, plan reconciler.Plan) error {
	pieces := map[int]*span{0: {start: clip.Start(), end: clip.End()}}

	live := func(cmd reconciler.Command) (*span, error) {
		p, ok := pieces[cmd.Piece]
		if !ok || p.removed {
			return nil, fmt.Errorf("%w: %q %v references a missing piece", ErrInvalidPlan, clip.ID, cmd)
		}
		return p, nil
	}

	for _, cmd := range plan.Commands {
		p, err := live(cmd)
		if err != nil {
			return err
		}
		switch cmd.Op {
		case reconciler.OpSplit:
			if cmd.At <= p.start || cmd.At >= p.end {
				return fmt.Errorf("%w: %q %v outside [%d, %d)", ErrInvalidPlan, clip.ID, cmd, p.start, p.end)
			}
			if _, exists := pieces[cmd.Back]; exists {
				return fmt.Errorf("%w: %q %v reuses piece #%d", ErrInvalidPlan, clip.ID, cmd, cmd.Back)
			}
			pieces[cmd.Back] = &span{start: cmd.At, end: p.end}
			p.end = cmd.At
		case reconciler.OpDiscard:
			p.removed = true
		case reconciler.OpReposition:
		default:
			return fmt.Errorf("%w: %q unknown command %v", ErrInvalidPlan, clip.ID, cmd)
		}
	}
	return nil
}
