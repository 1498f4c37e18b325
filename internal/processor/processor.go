// Package processor runs a cut: read the reference audio, detect transients,
// reconcile every selected clip and apply the resulting plans.
package processor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/linuxmatters/bangingcuts/internal/audio"
	"github.com/linuxmatters/bangingcuts/internal/config"
	"github.com/linuxmatters/bangingcuts/internal/detector"
	"github.com/linuxmatters/bangingcuts/internal/reconciler"
	"github.com/linuxmatters/bangingcuts/internal/timeline"
)

// Conditions that cancel a run rather than fail it
var (
	ErrNoSoundClips = timeline.ErrNoSoundClips
	ErrNoSamples    = detector.ErrNoSamples
	ErrNoPeaks      = errors.New("no peaks found above threshold")
)

// Options controls a run
type Options struct {
	Config *config.Config

	// Source decodes the reference clip. Defaults to a WAV reader on Config.Channel.
	Source audio.Source

	// BaseDir resolves relative clip sources, usually the project file's directory
	BaseDir string

	// DryRun computes plans without touching the timeline
	DryRun bool

	Logger   *slog.Logger
	Progress ProgressCallback

	// NewID names clips created by splits. Defaults to random UUIDs.
	NewID func(parent timeline.Clip) string
}

// ClipPlan pairs a selected clip with its plan
type ClipPlan struct {
	Clip timeline.Clip
	Plan reconciler.Plan
}

// Result contains everything a run measured and decided
type Result struct {
	Reference     timeline.Clip
	SourcePath    string
	FPS           float64
	SampleRate    float64 // Derived from the clip length
	ContainerRate int     // As declared by the file
	NumSamples    int
	ScanStart     int
	ScanEnd       int
	PeakDB        float64 // Loudest sample in the scan window, dBFS

	Intervals []detector.Interval
	Plans     []ClipPlan // Selected clips in project order
	Applied   []timeline.ApplyResult
	Project   *timeline.Project // Edited project; nil on a dry run

	ReadTime      time.Duration
	DetectTime    time.Duration
	ReconcileTime time.Duration
	ApplyTime     time.Duration
}

// Cuts returns the number of detected intervals
func (r *Result) Cuts() int {
	return len(r.Intervals)
}

// BangCuts performs a complete run against a project:
// - Read: decode the reference clip's audio and derive its sample rate
// - Detect: scan the visible part of the reference for transients
// - Reconcile: turn intervals into split, discard and reposition commands per clip
// - Apply: run the commands on an in-memory timeline (skipped on a dry run)
//
// The input project is not modified.
func BangCuts(project *timeline.Project, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(Stage, int) {}
	}
	source := opts.Source
	if source == nil {
		source = audio.WAVSource{Channel: cfg.Channel}
	}

	ref, err := project.ReferenceClip()
	if err != nil {
		return nil, err
	}
	result := &Result{
		Reference: ref,
		FPS:       cfg.FrameRate(project.FPS),
	}
	log.Info("reference clip selected",
		"clip", ref.ID,
		"channel", ref.Channel,
		"hard_start", ref.HardStart,
		"fps", result.FPS,
	)

	// Read
	progress(StageReading, 0)
	readStart := time.Now()
	samples, err := readReference(source, ref, opts.BaseDir, result)
	if err != nil {
		return nil, err
	}
	rate, err := sampleRate(samples, ref, result.FPS, log)
	if err != nil {
		return nil, err
	}
	result.SampleRate = rate
	result.ReadTime = time.Since(readStart)
	progress(StageReading, 100)

	// Detect
	result.ScanStart, result.ScanEnd = detector.ScanRange(
		ref.OffsetStart, ref.Duration, result.FPS, rate, cfg.PostrollFrames, len(samples.Data))
	if result.ScanEnd <= result.ScanStart {
		log.Warn("reference clip too short to scan",
			"clip", ref.ID,
			"duration", ref.Duration,
			"postroll_frames", cfg.PostrollFrames,
		)
		return nil, fmt.Errorf("reference %q: empty scan window [%d, %d): %w",
			ref.ID, result.ScanStart, result.ScanEnd, ErrNoSamples)
	}
	result.PeakDB = detector.LinearToDb(peakLevel(samples.Data[result.ScanStart:result.ScanEnd]))
	params := cfg.DetectorParams(rate, result.FPS, result.ScanStart, result.ScanEnd)
	log.Debug("scanning reference",
		"start_sample", result.ScanStart,
		"end_sample", result.ScanEnd,
		"threshold_db", params.ThresholdDB,
		"auto_holdoff", params.AutoHoldoff,
	)

	progress(StageDetecting, 0)
	detectStart := time.Now()
	intervals, err := detector.Detect(samples.Data, params, func(percent int) {
		progress(StageDetecting, percent)
	})
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	result.DetectTime = time.Since(detectStart)
	result.Intervals = intervals
	if len(intervals) == 0 {
		log.Warn("no peaks found above threshold",
			"threshold_db", params.ThresholdDB,
			"loudest_db", result.PeakDB,
		)
		return result, ErrNoPeaks
	}
	log.Info("peaks detected", "intervals", len(intervals), "elapsed", result.DetectTime)

	// Reconcile
	progress(StageReconciling, 0)
	reconcileStart := time.Now()
	selected := project.SelectedClips()
	geometry := make([]reconciler.Clip, len(selected))
	for i, c := range selected {
		geometry[i] = c.Geometry()
	}
	plans, err := reconciler.Reconcile(intervals, ref.HardStart, cfg.PrerollFrames, cfg.PostrollFrames, geometry)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	for i, c := range selected {
		plan := plans[c.ID]
		result.Plans = append(result.Plans, ClipPlan{Clip: c, Plan: plan})
		log.Debug("clip reconciled",
			"clip", c.ID,
			"splits", plan.Count(reconciler.OpSplit),
			"discards", plan.Count(reconciler.OpDiscard),
			"kept_frames", plan.KeptFrames(),
		)
		progress(StageReconciling, (i+1)*100/len(selected))
	}
	result.ReconcileTime = time.Since(reconcileStart)

	if opts.DryRun {
		log.Info("dry run, timeline left untouched")
		return result, nil
	}

	// Apply
	progress(StageApplying, 0)
	applyStart := time.Now()
	tl := timeline.New(project)
	if opts.NewID != nil {
		tl.NewID = opts.NewID
	}
	for i, cp := range result.Plans {
		if cp.Plan.Untouched() {
			log.Debug("clip untouched", "clip", cp.Clip.ID)
		} else {
			applied, err := timeline.Apply(tl, cp.Clip, cp.Plan)
			if err != nil {
				return nil, fmt.Errorf("apply plan to %q: %w", cp.Clip.ID, err)
			}
			result.Applied = append(result.Applied, applied)
		}
		progress(StageApplying, (i+1)*100/len(result.Plans))
	}
	result.ApplyTime = time.Since(applyStart)
	result.Project = tl.Project(result.FPS)
	log.Info("cuts applied", "cuts", result.Cuts(), "clips", len(result.Applied))

	return result, nil
}

// readReference resolves and decodes the reference clip's media
func readReference(source audio.Source, ref timeline.Clip, baseDir string, result *Result) (*audio.Samples, error) {
	if ref.Source == "" {
		return nil, fmt.Errorf("reference clip %q has no source: %w", ref.ID, ErrNoSamples)
	}
	path := ref.Source
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	result.SourcePath = path

	samples, err := source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read reference %q: %w", ref.ID, err)
	}
	if len(samples.Data) == 0 {
		return nil, fmt.Errorf("reference %q: %w", ref.ID, ErrNoSamples)
	}
	result.ContainerRate = samples.Meta.SampleRate
	result.NumSamples = len(samples.Data)
	return samples, nil
}

// sampleRate derives the rate from the clip's media length, falling back to
// the container rate for clips that carry no trim information
func sampleRate(samples *audio.Samples, ref timeline.Clip, fps float64, log *slog.Logger) (float64, error) {
	if ref.MediaDuration() <= 0 {
		if samples.Meta.SampleRate <= 0 {
			return 0, fmt.Errorf("reference %q has no length and no container rate", ref.ID)
		}
		log.Warn("reference clip has no length, using container sample rate",
			"clip", ref.ID, "sample_rate", samples.Meta.SampleRate)
		return float64(samples.Meta.SampleRate), nil
	}

	rate, err := audio.DeriveSampleRate(len(samples.Data), ref.MediaDuration(), fps)
	if err != nil {
		return 0, fmt.Errorf("reference %q: %w", ref.ID, err)
	}
	log.Debug("sample rate derived",
		"derived", rate,
		"container", samples.Meta.SampleRate,
		"drift_ppm", audio.RateDrift(rate, samples.Meta.SampleRate),
	)
	return rate, nil
}

// peakLevel returns the largest absolute sample value
func peakLevel(samples []float64) float64 {
	peak := 0.0
	for _, v := range samples {
		peak = max(peak, math.Abs(v))
	}
	return peak
}
