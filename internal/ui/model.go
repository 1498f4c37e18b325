// Package ui provides the Bubbletea terminal user interface for bangcuts
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/bangingcuts/internal/processor"
)

var debugLog = slog.New(slog.DiscardHandler)

// SetLogger routes UI debug events to l
func SetLogger(l *slog.Logger) {
	if l != nil {
		debugLog = l
	}
}

// StageStatus represents the state of one processing stage
type StageStatus int

const (
	StatusQueued StageStatus = iota
	StatusActive
	StatusComplete
	StatusError
)

// StageProgress tracks progress for a single stage
type StageProgress struct {
	Stage       processor.Stage
	Status      StageStatus
	Percent     int
	StartTime   time.Time
	ElapsedTime time.Duration
}

// Stages lists every stage in run order
var Stages = []processor.Stage{
	processor.StageReading,
	processor.StageDetecting,
	processor.StageReconciling,
	processor.StageApplying,
}

// Model is the Bubbletea model for a cut run
type Model struct {
	ProjectPath string
	Reference   string
	Selected    int
	DryRun      bool

	Stages       []StageProgress
	CurrentStage int // Index into Stages, -1 before the first update

	// Completion
	Result     *processor.Result
	OutputPath string
	Error      error

	StartTime time.Time
	Done      bool

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model for a project
func NewModel(projectPath string, dryRun bool) Model {
	stages := make([]StageProgress, len(Stages))
	for i, s := range Stages {
		stages[i] = StageProgress{Stage: s, Status: StatusQueued}
	}
	if dryRun {
		stages = stages[:len(stages)-1]
	}

	return Model{
		ProjectPath:  projectPath,
		DryRun:       dryRun,
		Stages:       stages,
		CurrentStage: -1,
		StartTime:    time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case RunStartMsg:
		debugLog.Debug("run start", "project", msg.ProjectPath, "reference", msg.Reference)
		m.ProjectPath = msg.ProjectPath
		m.Reference = msg.Reference
		m.Selected = msg.Selected
		m.StartTime = time.Now()

	case ProgressMsg:
		m = m.updateProgress(msg)

	case RunCompleteMsg:
		debugLog.Debug("run complete", "error", msg.Error)
		m.Result = msg.Result
		m.OutputPath = msg.OutputPath
		m.Error = msg.Error
		m = m.finishStages()
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateProgress moves the stage list forward. Earlier stages are marked
// complete when a later one reports.
func (m Model) updateProgress(msg ProgressMsg) Model {
	idx := -1
	for i, s := range m.Stages {
		if s.Stage == msg.Stage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return m
	}

	stages := make([]StageProgress, len(m.Stages))
	copy(stages, m.Stages)

	for i := 0; i < idx; i++ {
		if stages[i].Status != StatusComplete {
			stages[i].Status = StatusComplete
			stages[i].Percent = 100
		}
	}

	sp := &stages[idx]
	if sp.Status == StatusQueued {
		sp.StartTime = time.Now()
		debugLog.Debug("stage transition", "stage", msg.Stage.String())
	}
	sp.Status = StatusActive
	if msg.Percent > sp.Percent {
		sp.Percent = min(msg.Percent, 100)
	}
	sp.ElapsedTime = time.Since(sp.StartTime)
	if sp.Percent == 100 {
		sp.Status = StatusComplete
	}

	m.Stages = stages
	m.CurrentStage = idx
	return m
}

// finishStages settles the stage list once the run is over: the active stage
// is marked failed on error
func (m Model) finishStages() Model {
	stages := make([]StageProgress, len(m.Stages))
	copy(stages, m.Stages)
	for i := range stages {
		if stages[i].Status == StatusActive {
			if m.Error != nil {
				stages[i].Status = StatusError
			} else {
				stages[i].Status = StatusComplete
				stages[i].Percent = 100
			}
		}
	}
	m.Stages = stages
	return m
}

// Cancelled reports whether the run stopped for lack of input rather than failing
func (m Model) Cancelled() bool {
	return Cancelled(m.Error)
}

// Cancelled reports whether err is one of the conditions that cancel a run
func Cancelled(err error) bool {
	return errors.Is(err, processor.ErrNoPeaks) ||
		errors.Is(err, processor.ErrNoSoundClips) ||
		errors.Is(err, processor.ErrNoSamples)
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 && !m.Done {
		return fmt.Sprintf("Initializing...\nProject: %s\n", m.ProjectPath)
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}
