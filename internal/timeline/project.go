// Package timeline holds the editing timeline that cuts are applied to: a TOML
// project file of clips, an in-memory mutable timeline and the adapter that
// applies reconciler plans to it.
package timeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/linuxmatters/bangingcuts/internal/reconciler"
)

// Kind is the media type of a clip
type Kind string

const (
	KindSound Kind = "sound"
	KindMovie Kind = "movie"
	KindImage Kind = "image"
	KindColor Kind = "color"
	KindText  Kind = "text"
)

// ErrNoSoundClips is returned when no selected clip can serve as the reference
var ErrNoSoundClips = errors.New("no sound clips selected")

// Clip is a strip on the timeline. Frame fields follow the usual NLE model:
// HardStart is where the untrimmed media would begin, OffsetStart and
// OffsetEnd are trimmed off either end and Duration is what remains visible.
type Clip struct {
	ID          string `toml:"id"`
	Name        string `toml:"name,omitempty"`
	Kind        Kind   `toml:"kind"`
	Channel     int    `toml:"channel"`
	HardStart   int    `toml:"hard_start"`
	OffsetStart int    `toml:"offset_start"`
	Duration    int    `toml:"duration"`
	OffsetEnd   int    `toml:"offset_end"`
	Source      string `toml:"source,omitempty"`
	Selected    bool   `toml:"selected"`
}

// Start returns the first visible frame
func (c Clip) Start() int {
	return c.HardStart + c.OffsetStart
}

// End returns the frame after the last visible frame
func (c Clip) End() int {
	return c.Start() + c.Duration
}

// MediaDuration returns the untrimmed length of the clip's media in frames
func (c Clip) MediaDuration() int {
	return c.OffsetStart + c.Duration + c.OffsetEnd
}

// Geometry returns the part of the clip the reconciler needs
func (c Clip) Geometry() reconciler.Clip {
	return reconciler.Clip{
		ID:          c.ID,
		HardStart:   c.HardStart,
		OffsetStart: c.OffsetStart,
		Duration:    c.Duration,
	}
}

// Project is a timeline saved to disk
type Project struct {
	FPS   float64 `toml:"fps"`
	Clips []Clip  `toml:"clips"`
}

// LoadProject reads a TOML project file
func LoadProject(path string) (*Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer file.Close()

	var p Project
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProject writes the project as TOML. The file is written next to path
// and renamed into place, so an interrupted save never leaves a partial project.
func SaveProject(path string, p *Project) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Validate checks clip ids and geometry
func (p *Project) Validate() error {
	if p.FPS < 0 {
		return fmt.Errorf("project fps %v must not be negative", p.FPS)
	}
	seen := make(map[string]struct{}, len(p.Clips))
	for i, c := range p.Clips {
		if c.ID == "" {
			return fmt.Errorf("clip %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate clip id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.OffsetStart < 0 || c.OffsetEnd < 0 || c.Duration < 0 {
			return fmt.Errorf("clip %q has negative trim or duration", c.ID)
		}
	}
	return nil
}

// SelectedClips returns the selected clips in project order
func (p *Project) SelectedClips() []Clip {
	selected := make([]Clip, 0, len(p.Clips))
	for _, c := range p.Clips {
		if c.Selected {
			selected = append(selected, c)
		}
	}
	return selected
}

// ReferenceClip picks the selected sound clip that drives detection: the one
// on the highest channel, the earliest in project order on a tie
func (p *Project) ReferenceClip() (Clip, error) {
	var ref *Clip
	for i := range p.Clips {
		c := &p.Clips[i]
		if !c.Selected || c.Kind != KindSound {
			continue
		}
		if ref == nil || c.Channel > ref.Channel {
			ref = c
		}
	}
	if ref == nil {
		return Clip{}, ErrNoSoundClips
	}
	return *ref, nil
}

// SortClips orders clips by channel, then visible start, then id
func SortClips(clips []Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].Channel != clips[j].Channel {
			return clips[i].Channel < clips[j].Channel
		}
		if clips[i].Start() != clips[j].Start() {
			return clips[i].Start() < clips[j].Start()
		}
		return clips[i].ID < clips[j].ID
	})
}
