package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/bangingcuts/internal/audio"
	"github.com/linuxmatters/bangingcuts/internal/config"
	"github.com/linuxmatters/bangingcuts/internal/processor"
	"github.com/linuxmatters/bangingcuts/internal/reconciler"
)

// writeSection writes a section header with title and dashed underline
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains everything needed to write a cuts report
type ReportData struct {
	ProjectPath string
	OutputPath  string // Edited project; empty on a dry run
	StartTime   time.Time
	EndTime     time.Time
	Config      *config.Config
	Result      *processor.Result
	Err         error // Set when the run was cancelled
}

// ReportPath returns where the report for a project is written:
// episode.toml → episode-cuts.log
func ReportPath(projectPath string) string {
	return strings.TrimSuffix(projectPath, filepath.Ext(projectPath)) + "-cuts.log"
}

// GenerateReport writes a cuts report next to the project file.
//
// Report structure:
// 1. Header - project, reference clip and timestamp
// 2. Processing Summary - stage timings
// 3. Detection - sample rates, scan window and settings
// 4. Intervals - one row per detected peak
// 5. Clips - the commands planned for each selected clip
func GenerateReport(data ReportData) error {
	f, err := os.Create(ReportPath(data.ProjectPath))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReport(f, data)
	return nil
}

func writeReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)

	if data.Result == nil {
		return
	}
	writeDetectionTable(w, data.Result, data.Config)
	writeIntervalTable(w, data.Result, data.Config)
	writeClipPlans(w, data.Result)

	writeSection(w, "Summary")
	switch {
	case data.Err != nil:
		fmt.Fprintf(w, "Cancelled: %v\n", data.Err)
	case data.OutputPath == "":
		fmt.Fprintf(w, "Banged %d cuts (dry run, nothing written)\n", data.Result.Cuts())
	default:
		fmt.Fprintf(w, "Banged %d cuts into %s\n", data.Result.Cuts(), filepath.Base(data.OutputPath))
	}
}

// writeReportHeader outputs the report header with project info and timestamp
func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Banging Cuts Report")
	fmt.Fprintln(w, "===================")
	fmt.Fprintf(w, "Project: %s\n", filepath.Base(data.ProjectPath))
	if data.Result != nil {
		ref := data.Result.Reference
		fmt.Fprintf(w, "Reference: %s (channel %d, %s)\n", ref.ID, ref.Channel, filepath.Base(data.Result.SourcePath))
		if meta, err := audio.OpenAudioFile(data.Result.SourcePath); err == nil {
			fmt.Fprintf(w, "Source: %s, %d ch, %d-bit, %d Hz\n",
				formatDuration(time.Duration(meta.Duration*float64(time.Second))),
				meta.Channels, meta.BitDepth, meta.SampleRate)
		}
	}
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs the time spent in each stage
func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	if r := data.Result; r != nil {
		fmt.Fprintf(w, "Reading:      %s\n", formatDuration(r.ReadTime))
		fmt.Fprintf(w, "Detecting:    %s\n", formatDuration(r.DetectTime))
		fmt.Fprintf(w, "Reconciling:  %s\n", formatDuration(r.ReconcileTime))
		if r.Project != nil {
			fmt.Fprintf(w, "Applying:     %s\n", formatDuration(r.ApplyTime))
		} else {
			fmt.Fprintln(w, "Applying:     skipped")
		}
	}

	total := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Total:        %s", formatDuration(total))
	if r := data.Result; r != nil && r.SampleRate > 0 && total > 0 {
		scanned := time.Duration(float64(r.ScanEnd-r.ScanStart) / r.SampleRate * float64(time.Second))
		fmt.Fprintf(w, " (%.0fx real-time)", float64(scanned)/float64(total))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

// writeDetectionTable outputs the signal and detector settings
func writeDetectionTable(w io.Writer, r *processor.Result, cfg *config.Config) {
	writeSection(w, "Detection")

	table := NewMetricTable("Value")
	table.AddRow("Frame rate", []string{formatMetric(r.FPS, 3)}, "fps", "")
	table.AddRow("Sample rate", []string{formatMetric(r.SampleRate, 1)}, "Hz", "derived from clip length")
	table.AddRow("Container rate", []string{fmt.Sprintf("%d", r.ContainerRate)}, "Hz", "")
	drift := audio.RateDrift(r.SampleRate, r.ContainerRate)
	table.AddRow("Rate drift", []string{formatMetricSigned(drift, 0)}, "ppm", interpretDrift(drift))
	table.AddRow("Samples", []string{fmt.Sprintf("%d", r.NumSamples)}, "", "")
	table.AddRow("Scan window", []string{fmt.Sprintf("%d-%d", r.ScanStart, r.ScanEnd)}, "samples", "")

	if cfg != nil {
		table.AddRow("Threshold", []string{formatMetricDB(cfg.ThresholdDB, 1)}, "dBFS", "")
		loudestNote := ""
		if r.PeakDB <= cfg.ThresholdDB {
			loudestNote = "below threshold"
		}
		table.AddRow("Loudest", []string{formatMetricDB(r.PeakDB, 1)}, "dBFS", loudestNote)
		table.AddRow("Preroll", []string{fmt.Sprintf("%d", cfg.PrerollFrames)}, "frames", "")
		table.AddRow("Postroll", []string{fmt.Sprintf("%d", cfg.PostrollFrames)}, "frames", "")
		table.AddRow("Auto holdoff", []string{formatBool(cfg.AutoHoldoff)}, "", "")
		if cfg.AutoHoldoff {
			table.AddRow("Debounce", []string{fmt.Sprintf("%d", cfg.DebounceSamples)}, "samples", "")
		}
	}

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// interpretDrift flags files whose declared rate disagrees with the timeline
func interpretDrift(ppm float64) string {
	switch {
	case math.IsNaN(ppm):
		return ""
	case math.Abs(ppm) < 1:
		return "matches container"
	case math.Abs(ppm) < 100:
		return "minor clock drift"
	default:
		return "container rate disagrees with clip length"
	}
}

// writeIntervalTable outputs one row per detected interval.
// Slot is the visible start the interval is packed to on the timeline.
func writeIntervalTable(w io.Writer, r *processor.Result, cfg *config.Config) {
	writeSection(w, "Intervals")

	if len(r.Intervals) == 0 {
		fmt.Fprintln(w, "No peaks found above threshold")
		fmt.Fprintln(w, "")
		return
	}

	var slots []int
	if cfg != nil {
		slots = reconciler.ClipStarts(r.Intervals, r.Reference.HardStart, cfg.PrerollFrames, cfg.PostrollFrames)
	}

	table := NewMetricTable("In", "Out", "Frames", "Slot")
	for i, iv := range r.Intervals {
		slot := MissingValue
		if i < len(slots) {
			slot = fmt.Sprintf("%d", slots[i])
		}
		timecode := float64(iv.In) / r.FPS
		table.AddRow(
			fmt.Sprintf("#%d", i+1),
			[]string{fmt.Sprintf("%d", iv.In), fmt.Sprintf("%d", iv.Out), fmt.Sprintf("%d", iv.Len()), slot},
			"",
			formatDuration(time.Duration(timecode*float64(time.Second))),
		)
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeClipPlans outputs the commands planned for each selected clip
func writeClipPlans(w io.Writer, r *processor.Result) {
	for _, cp := range r.Plans {
		writeSection(w, fmt.Sprintf("Clip %s (channel %d, %s)", cp.Clip.ID, cp.Clip.Channel, cp.Clip.Kind))
		if cp.Plan.Untouched() {
			fmt.Fprintln(w, "Untouched: no interval overlaps this clip")
			fmt.Fprintln(w, "")
			continue
		}

		fmt.Fprintf(w, "Splits: %d  Discards: %d  Kept: %d frames of %d\n",
			cp.Plan.Count(reconciler.OpSplit),
			cp.Plan.Count(reconciler.OpDiscard),
			cp.Plan.KeptFrames(),
			cp.Clip.Duration,
		)
		for _, cmd := range cp.Plan.Commands {
			fmt.Fprintf(w, "  %s\n", cmd)
		}
		fmt.Fprintln(w, "")
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
