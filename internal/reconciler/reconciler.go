// Package reconciler maps keep-intervals onto timeline clips. It never touches
// a timeline itself: for each clip it computes the splits, discards and
// repositions that pack the kept material back to back.
package reconciler

import (
	"errors"
	"fmt"

	"github.com/linuxmatters/bangingcuts/internal/detector"
)

var (
	// ErrNoIntervals is returned when there is nothing to keep
	ErrNoIntervals = errors.New("no keep-intervals")

	// ErrInvalidIntervals is returned for unsorted, overlapping or empty intervals
	ErrInvalidIntervals = errors.New("invalid keep-intervals")
)

// Clip is the geometry of a selected timeline clip, in frames.
// HardStart is where the untrimmed media would begin; the visible part is
// [HardStart+OffsetStart, HardStart+OffsetStart+Duration).
type Clip struct {
	ID          string
	HardStart   int
	OffsetStart int
	Duration    int
}

// piece is a part of a clip produced by soft splits. All pieces of a clip
// share its HardStart; splitting only moves the trims.
type piece struct {
	handle      int
	hardStart   int
	offsetStart int
	duration    int
}

func (p piece) start() int { return p.hardStart + p.offsetStart }
func (p piece) end() int   { return p.start() + p.duration }

// ClipStarts returns the packed visible start of every interval slot: the
// first slot sits where the first interval starts on the timeline, and each
// following slot is one preroll+postroll later.
func ClipStarts(intervals []detector.Interval, referenceStart, prerollFrames, postrollFrames int) []int {
	if len(intervals) == 0 {
		return nil
	}
	starts := make([]int, len(intervals))
	starts[0] = intervals[0].In + referenceStart
	for i := 1; i < len(intervals); i++ {
		starts[i] = starts[i-1] + prerollFrames + postrollFrames
	}
	return starts
}

// ValidateIntervals checks that intervals are non-empty, start at or after
// frame 0, are sorted and never overlap
func ValidateIntervals(intervals []detector.Interval) error {
	if len(intervals) == 0 {
		return ErrNoIntervals
	}
	for i, iv := range intervals {
		if iv.In < 0 || iv.In >= iv.Out {
			return fmt.Errorf("%w: interval %d %v", ErrInvalidIntervals, i, iv)
		}
		if i > 0 && intervals[i-1].Out > iv.In {
			return fmt.Errorf("%w: interval %d %v overlaps %v", ErrInvalidIntervals, i, iv, intervals[i-1])
		}
	}
	return nil
}

// Reconcile computes an edit plan for every clip. Intervals are expressed in
// frames relative to the reference clip's hard start, referenceStart is that
// hard start on the timeline.
//
// Clips are independent of each other; the plans share only the packed
// slot positions.
func Reconcile(intervals []detector.Interval, referenceStart, prerollFrames, postrollFrames int, clips []Clip) (map[string]Plan, error) {
	if err := ValidateIntervals(intervals); err != nil {
		return nil, err
	}

	clipStarts := ClipStarts(intervals, referenceStart, prerollFrames, postrollFrames)

	plans := make(map[string]Plan, len(clips))
	for _, clip := range clips {
		if _, dup := plans[clip.ID]; dup {
			return nil, fmt.Errorf("duplicate clip id %q", clip.ID)
		}
		plans[clip.ID] = ReconcileClip(intervals, clipStarts, referenceStart, clip)
	}
	return plans, nil
}

// ReconcileClip walks the intervals against one clip.
//
// The walk keeps a remainder (the bin): the part of the clip not yet
// assigned. Each interval either ends the walk, precedes the remainder,
// or carves a kept segment out of it.
func ReconcileClip(intervals []detector.Interval, clipStarts []int, referenceStart int, clip Clip) Plan {
	plan := Plan{ClipID: clip.ID}
	if clip.Duration <= 0 {
		return plan
	}

	refOffset := referenceStart - clip.HardStart

	var splits, discards []Command
	var kept []piece
	nextHandle := 1

	split := func(p piece, at int) (piece, piece, bool) {
		front, back, ok := splitPiece(p, at, nextHandle)
		if ok {
			splits = append(splits, Command{Op: OpSplit, Piece: p.handle, At: front.end(), Back: back.handle})
			nextHandle++
		}
		return front, back, ok
	}

	bin := &piece{handle: 0, hardStart: clip.HardStart, offsetStart: clip.OffsetStart, duration: clip.Duration}
	beginIndexOffset := 0

	for _, iv := range intervals {
		in := iv.In + clip.HardStart + refOffset
		out := iv.Out + clip.HardStart + refOffset

		if in >= bin.end() {
			break
		}
		if out <= bin.start() {
			beginIndexOffset++
			continue
		}

		keep := *bin
		if in > bin.start() {
			front, back, ok := split(*bin, in)
			if ok {
				discards = append(discards, Command{Op: OpDiscard, Piece: front.handle})
				keep = back
			}
		}

		bin = nil
		if out >= keep.end() {
			kept = append(kept, keep)
			break
		}

		front, back, ok := split(keep, out)
		if !ok {
			kept = append(kept, keep)
			break
		}
		kept = append(kept, front)
		bin = &back
	}

	// An untouched clip keeps its full extent
	if len(kept) == 0 {
		return plan
	}

	if bin != nil && bin.duration > 0 {
		discards = append(discards, Command{Op: OpDiscard, Piece: bin.handle})
	}

	repositions := make([]Command, 0, len(kept))
	for k, p := range kept {
		slot := k + beginIndexOffset
		frameStart := clipStarts[slot] - p.offsetStart
		repositions = append(repositions, Command{
			Op:           OpReposition,
			Piece:        p.handle,
			FrameStart:   frameStart,
			VisibleStart: clipStarts[slot],
		})
		plan.Segments = append(plan.Segments, Segment{
			Piece:       p.handle,
			Interval:    slot,
			HardStart:   frameStart,
			OffsetStart: p.offsetStart,
			Duration:    p.duration,
		})
	}

	plan.Commands = make([]Command, 0, len(splits)+len(discards)+len(repositions))
	plan.Commands = append(plan.Commands, splits...)
	plan.Commands = append(plan.Commands, discards...)
	plan.Commands = append(plan.Commands, repositions...)
	return plan
}

// splitPiece cuts p at an absolute frame. The split point is clamped into the
// piece's visible span; a split that would leave either side empty is
// reported as not done.
func splitPiece(p piece, at, backHandle int) (piece, piece, bool) {
	if at < p.start() {
		at = p.start()
	}
	if at > p.end() {
		at = p.end()
	}
	if at == p.start() || at == p.end() {
		return p, piece{}, false
	}

	front := p
	front.duration = at - p.start()

	back := piece{
		handle:      backHandle,
		hardStart:   p.hardStart,
		offsetStart: at - p.hardStart,
		duration:    p.end() - at,
	}
	return front, back, true
}
