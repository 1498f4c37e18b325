package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/bangingcuts/internal/reconciler"
)

var (
	accentColor  = lipgloss.Color("#A40000")
	activeColor  = lipgloss.Color("#FFA500")
	successColor = lipgloss.Color("#00AA00")
	mutedColor   = lipgloss.Color("#888888")
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderStageList(m))
	b.WriteString("\n")

	b.WriteString(renderFooter(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render("Banging Cuts 🥁 - Cut on the bang")

	detail := filepath.Base(m.ProjectPath)
	if m.Reference != "" {
		detail += fmt.Sprintf(" | reference %s | %d clip(s) selected", m.Reference, m.Selected)
	}
	if m.DryRun {
		detail += " | dry run"
	}
	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(detail)

	return title + "\n" + subtitle
}

// renderStageList renders every stage with its status
func renderStageList(m Model) string {
	var b strings.Builder
	for _, sp := range m.Stages {
		b.WriteString(renderStageEntry(sp))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStageEntry renders a single stage
func renderStageEntry(sp StageProgress) string {
	name := sp.Stage.String()

	switch sp.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
		return fmt.Sprintf(" %s %s (%.1fs)", icon, name, sp.ElapsedTime.Seconds())

	case StatusActive:
		icon := lipgloss.NewStyle().Foreground(activeColor).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, name, renderStageDetails(sp))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(accentColor).Render("✗")
		return fmt.Sprintf(" %s %s", icon, name)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s", icon, name)
	}
}

// renderStageDetails renders the progress box for the active stage
func renderStageDetails(sp StageProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(60)

	var content strings.Builder
	content.WriteString(renderProgressBar(sp.Percent, 40))
	content.WriteString("\n")

	elapsed := sp.ElapsedTime.Seconds()
	var remaining float64
	if sp.Percent > 0 {
		remaining = elapsed*100/float64(sp.Percent) - elapsed
	}
	fmt.Fprintf(&content, "⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining)

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(percent int, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("%s %d%%", bar, percent)
}

// renderFooter renders the overall progress footer
func renderFooter(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	done := 0
	for _, sp := range m.Stages {
		if sp.Status == StatusComplete {
			done++
		}
	}
	return box.Render(fmt.Sprintf("Stage %d of %d complete", done, len(m.Stages)))
}

// renderCompletionSummary renders the final summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	switch {
	case m.Cancelled():
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(activeColor).
			Render("⚠ Cancelled: " + m.Error.Error()))
		b.WriteString("\n")
		return b.String()
	case m.Error != nil:
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accentColor).
			Render("✗ Failed: " + m.Error.Error()))
		b.WriteString("\n")
		return b.String()
	}

	cuts := 0
	if m.Result != nil {
		cuts = m.Result.Cuts()
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render(fmt.Sprintf("✨ Banged %d cuts!", cuts))
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.Result != nil {
		for _, cp := range m.Result.Plans {
			b.WriteString(renderClipSummary(cp.Clip.ID, cp.Clip.Channel, cp.Plan))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if m.OutputPath != "" {
		fmt.Fprintf(&b, "Edited project written to %s\n", filepath.Base(m.OutputPath))
	} else {
		b.WriteString("Dry run: nothing written\n")
	}

	return b.String()
}

// renderClipSummary renders one line per selected clip
func renderClipSummary(id string, channel int, plan reconciler.Plan) string {
	if plan.Untouched() {
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s (channel %d): untouched", icon, id, channel)
	}

	icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
	return fmt.Sprintf(" %s %s (channel %d): %d splits | %d discards | %d segments, %d frames kept",
		icon, id, channel,
		plan.Count(reconciler.OpSplit),
		plan.Count(reconciler.OpDiscard),
		len(plan.Segments),
		plan.KeptFrames(),
	)
}
