package ui

import (
	"github.com/linuxmatters/bangingcuts/internal/processor"
)

// RunStartMsg signals a run has started against a project
type RunStartMsg struct {
	ProjectPath string
	Reference   string // Reference clip id
	Selected    int    // Number of selected clips
}

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Stage   processor.Stage
	Percent int // 0 to 100
}

// RunCompleteMsg signals the run has finished
type RunCompleteMsg struct {
	Result     *processor.Result // May be partial or nil on error
	OutputPath string            // Empty on a dry run
	Error      error
}
