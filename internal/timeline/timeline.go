package timeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownClip is returned for an id the timeline does not hold
	ErrUnknownClip = errors.New("unknown clip")

	// ErrSplitOutOfRange is returned when a split frame is not strictly inside the clip
	ErrSplitOutOfRange = errors.New("split frame outside clip")
)

// Mutator is the set of edits cuts are made of
type Mutator interface {
	// Split cuts a clip at an absolute frame. The original id keeps the front
	// part; the returned id names the back part.
	Split(id string, frame int) (string, error)
	// Remove deletes a clip from the timeline
	Remove(id string) error
	// SetStart moves a clip so that its hard start is at frame
	SetStart(id string, frame int) error
}

// Timeline is an in-memory Mutator over a project's clips
type Timeline struct {
	clips []Clip
	index map[string]int

	// NewID names the back part of a split. Defaults to a random UUID.
	NewID func(parent Clip) string
}

// New builds a timeline from a project. The project is not modified.
func New(p *Project) *Timeline {
	t := &Timeline{
		clips: make([]Clip, len(p.Clips)),
		index: make(map[string]int, len(p.Clips)),
		NewID: func(Clip) string { return uuid.NewString() },
	}
	copy(t.clips, p.Clips)
	for i, c := range t.clips {
		t.index[c.ID] = i
	}
	return t
}

// Clip returns a copy of a clip by id
func (t *Timeline) Clip(id string) (Clip, bool) {
	i, ok := t.index[id]
	if !ok {
		return Clip{}, false
	}
	return t.clips[i], true
}

// Clips returns the clips currently on the timeline, sorted by channel and start
func (t *Timeline) Clips() []Clip {
	out := make([]Clip, 0, len(t.index))
	for i, c := range t.clips {
		// Removed clips stay in the slice; only the entry the index points at is live
		if j, ok := t.index[c.ID]; ok && j == i {
			out = append(out, c)
		}
	}
	SortClips(out)
	return out
}

// Project returns the timeline as a project with the given frame rate
func (t *Timeline) Project(fps float64) *Project {
	return &Project{FPS: fps, Clips: t.Clips()}
}

// Split implements Mutator
func (t *Timeline) Split(id string, frame int) (string, error) {
	i, ok := t.index[id]
	if !ok {
		return "", fmt.Errorf("split %q: %w", id, ErrUnknownClip)
	}
	front := t.clips[i]
	if frame <= front.Start() || frame >= front.End() {
		return "", fmt.Errorf("split %q at %d, visible [%d, %d): %w", id, frame, front.Start(), front.End(), ErrSplitOutOfRange)
	}

	back := front
	back.ID = t.NewID(front)
	if _, dup := t.index[back.ID]; dup || back.ID == "" {
		return "", fmt.Errorf("split %q: bad id %q for new clip", id, back.ID)
	}
	back.OffsetStart = frame - front.HardStart
	back.Duration = front.End() - frame

	front.OffsetEnd += front.End() - frame
	front.Duration = frame - front.Start()

	t.clips[i] = front
	t.clips = append(t.clips, back)
	t.index[back.ID] = len(t.clips) - 1
	return back.ID, nil
}

// Remove implements Mutator
func (t *Timeline) Remove(id string) error {
	if _, ok := t.index[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownClip)
	}
	delete(t.index, id)
	return nil
}

// SetStart implements Mutator
func (t *Timeline) SetStart(id string, frame int) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("set start %q: %w", id, ErrUnknownClip)
	}
	t.clips[i].HardStart = frame
	return nil
}
