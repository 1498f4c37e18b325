package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/bangingcuts/internal/detector"
	"github.com/linuxmatters/bangingcuts/internal/processor"
	"github.com/linuxmatters/bangingcuts/internal/reconciler"
	"github.com/linuxmatters/bangingcuts/internal/timeline"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestNewModel(t *testing.T) {
	m := NewModel("episode.toml", false)
	if len(m.Stages) != 4 || m.CurrentStage != -1 {
		t.Fatalf("stages = %d, current = %d", len(m.Stages), m.CurrentStage)
	}
	for _, sp := range m.Stages {
		if sp.Status != StatusQueued {
			t.Errorf("%s status = %v, want queued", sp.Stage, sp.Status)
		}
	}

	dry := NewModel("episode.toml", true)
	if len(dry.Stages) != 3 || dry.Stages[2].Stage != processor.StageReconciling {
		t.Errorf("dry run stages = %+v, want no apply stage", dry.Stages)
	}
}

func TestModelProgress(t *testing.T) {
	m := NewModel("episode.toml", false)
	m = update(t, m, RunStartMsg{ProjectPath: "episode.toml", Reference: "dialogue", Selected: 3})
	m = update(t, m, ProgressMsg{Stage: processor.StageDetecting, Percent: 40})

	if m.CurrentStage != 1 {
		t.Errorf("CurrentStage = %d, want 1", m.CurrentStage)
	}
	if m.Stages[0].Status != StatusComplete {
		t.Errorf("reading should be complete once detecting reports, got %v", m.Stages[0].Status)
	}
	if m.Stages[1].Status != StatusActive || m.Stages[1].Percent != 40 {
		t.Errorf("detecting = %+v", m.Stages[1])
	}

	// Progress never goes backwards
	m = update(t, m, ProgressMsg{Stage: processor.StageDetecting, Percent: 20})
	if m.Stages[1].Percent != 40 {
		t.Errorf("Percent = %d after stale update, want 40", m.Stages[1].Percent)
	}

	m = update(t, m, ProgressMsg{Stage: processor.StageDetecting, Percent: 100})
	if m.Stages[1].Status != StatusComplete {
		t.Errorf("detecting at 100%% = %v, want complete", m.Stages[1].Status)
	}

	m.Width = 80
	view := m.View()
	for _, want := range []string{"Banging Cuts", "reference dialogue", "3 clip(s) selected", "Detecting", "Stage 2 of 4 complete"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelIgnoresUnknownStage(t *testing.T) {
	m := NewModel("episode.toml", true)
	m = update(t, m, ProgressMsg{Stage: processor.StageApplying, Percent: 50})
	if m.CurrentStage != -1 {
		t.Errorf("CurrentStage = %d, want -1 for a stage not shown", m.CurrentStage)
	}
}

func TestModelComplete(t *testing.T) {
	intervals := []detector.Interval{{In: 10, Out: 20}, {In: 50, Out: 60}}
	clip := timeline.Clip{ID: "dialogue", Channel: 2, Duration: 1000}
	late := timeline.Clip{ID: "late", Channel: 1, HardStart: 5000, Duration: 10}
	plans, err := reconciler.Reconcile(intervals, 0, 1, 5, []reconciler.Clip{clip.Geometry(), late.Geometry()})
	if err != nil {
		t.Fatal(err)
	}
	result := &processor.Result{
		Intervals: intervals,
		Plans: []processor.ClipPlan{
			{Clip: clip, Plan: plans["dialogue"]},
			{Clip: late, Plan: plans["late"]},
		},
	}

	m := NewModel("episode.toml", false)
	m = update(t, m, ProgressMsg{Stage: processor.StageApplying, Percent: 50})

	next, cmd := m.Update(RunCompleteMsg{Result: result, OutputPath: "/tmp/episode-cut.toml"})
	m = next.(Model)
	if !m.Done || cmd == nil {
		t.Fatal("RunCompleteMsg should finish and quit")
	}
	for _, sp := range m.Stages {
		if sp.Status != StatusComplete {
			t.Errorf("%s = %v after success, want complete", sp.Stage, sp.Status)
		}
	}

	view := m.View()
	for _, want := range []string{
		"Banged 2 cuts!",
		"dialogue (channel 2): 4 splits | 3 discards | 2 segments, 20 frames kept",
		"late (channel 1): untouched",
		"Edited project written to episode-cut.toml",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelErrors(t *testing.T) {
	tests := []struct {
		err       error
		cancelled bool
		want      string
	}{
		{processor.ErrNoPeaks, true, "Cancelled: no peaks found above threshold"},
		{fmt.Errorf("reference: %w", processor.ErrNoSamples), true, "Cancelled:"},
		{processor.ErrNoSoundClips, true, "Cancelled: no sound clips selected"},
		{errors.New("disk on fire"), false, "Failed: disk on fire"},
	}

	for _, tt := range tests {
		m := NewModel("episode.toml", false)
		m = update(t, m, ProgressMsg{Stage: processor.StageDetecting, Percent: 10})
		m = update(t, m, RunCompleteMsg{Error: tt.err})

		if m.Cancelled() != tt.cancelled {
			t.Errorf("%v: Cancelled() = %v, want %v", tt.err, m.Cancelled(), tt.cancelled)
		}
		if m.Stages[1].Status != StatusError {
			t.Errorf("%v: active stage = %v, want error", tt.err, m.Stages[1].Status)
		}
		if view := m.View(); !strings.Contains(view, tt.want) {
			t.Errorf("%v: view missing %q:\n%s", tt.err, tt.want, view)
		}
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := NewModel("episode.toml", false)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		if _, cmd := m.Update(key); cmd == nil {
			t.Errorf("%q should quit", key.String())
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, strings.Repeat("░", 10) + " 0%"},
		{50, strings.Repeat("█", 5) + strings.Repeat("░", 5) + " 50%"},
		{100, strings.Repeat("█", 10) + " 100%"},
		{140, strings.Repeat("█", 10) + " 100%"},
	}
	for _, tt := range tests {
		if got := renderProgressBar(tt.percent, 10); got != tt.want {
			t.Errorf("renderProgressBar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}
