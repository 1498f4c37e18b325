// Package detector finds energy transients in a mono sample stream and turns
// them into frame intervals worth keeping.
package detector

import (
	"errors"
	"fmt"
	"math"
)

const (
	// HysteresisDB is the gap between the rising and falling thresholds
	HysteresisDB = 2.0

	// DefaultDebounceSamples is how many consecutive quiet samples end a transient
	DefaultDebounceSamples = 50
)

var (
	// ErrNoSamples is returned when there is nothing to scan
	ErrNoSamples = errors.New("no samples to analyse")

	// ErrInvalidParams wraps every parameter validation failure
	ErrInvalidParams = errors.New("invalid detector parameters")
)

// Interval is a half-open range of timeline frames to keep, relative to the
// hard start of the reference clip
type Interval struct {
	In  int `toml:"in"`
	Out int `toml:"out"`
}

// Len returns the interval length in frames
func (iv Interval) Len() int {
	return iv.Out - iv.In
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.In, iv.Out)
}

// Params configures a detection run
type Params struct {
	SampleRate float64 // Samples per second of the analysed signal (derived, not container metadata)
	FPS        float64 // Timeline frames per second

	// Sample range to scan: [StartSample, EndSample)
	StartSample int
	EndSample   int

	ThresholdDB     float64 // Trigger level in dBFS, must be negative
	PrerollFrames   int     // Frames kept before the trigger point
	PostrollFrames  int     // Frames kept after the trigger point
	AutoHoldoff     bool    // Suppress retriggering until the transient has decayed
	DebounceSamples int     // Quiet run length that ends a transient
}

// ProgressFunc receives integer percentages, 0 to 100, strictly increasing
type ProgressFunc func(percent int)

// Validate checks the parameters against a sample buffer of length n
func (p Params) Validate(n int) error {
	switch {
	case p.SampleRate <= 0 || math.IsNaN(p.SampleRate) || math.IsInf(p.SampleRate, 0):
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParams, p.SampleRate)
	case p.FPS <= 0 || math.IsNaN(p.FPS) || math.IsInf(p.FPS, 0):
		return fmt.Errorf("%w: fps %v", ErrInvalidParams, p.FPS)
	case !(p.ThresholdDB < 0):
		return fmt.Errorf("%w: threshold %.2f dB must be below 0 dB", ErrInvalidParams, p.ThresholdDB)
	case p.PrerollFrames < 0:
		return fmt.Errorf("%w: preroll %d frames", ErrInvalidParams, p.PrerollFrames)
	case p.PostrollFrames < 1:
		return fmt.Errorf("%w: postroll %d frames, need at least 1", ErrInvalidParams, p.PostrollFrames)
	case p.DebounceSamples < 0:
		return fmt.Errorf("%w: debounce %d samples", ErrInvalidParams, p.DebounceSamples)
	case p.StartSample < 0 || p.StartSample > p.EndSample || p.EndSample > n:
		return fmt.Errorf("%w: sample range [%d, %d) outside buffer of %d", ErrInvalidParams, p.StartSample, p.EndSample, n)
	}
	return nil
}

// FrameAt converts a sample index to a (fractional) timeline frame
func (p Params) FrameAt(index int) float64 {
	return p.FPS * (float64(index) / p.SampleRate)
}

// skipSamples is the number of samples covering the preroll and postroll of
// one interval. Rounded up so the next scan position is always past the
// interval just emitted.
func (p Params) skipSamples() int {
	return int(math.Ceil(float64(p.PrerollFrames+p.PostrollFrames) * p.SampleRate / p.FPS))
}

// Detect scans samples[StartSample:EndSample] for transients and returns the
// keep-intervals in ascending, non-overlapping order.
//
// An empty result is not an error: it means nothing crossed the threshold.
// Detect is a pure function of its inputs.
func Detect(samples []float64, p Params, progress ProgressFunc) ([]Interval, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if err := p.Validate(len(samples)); err != nil {
		return nil, err
	}

	gate := NewGate(p.ThresholdDB, p.DebounceSamples)
	skip := p.skipSamples()
	reporter := newProgressReporter(p.StartSample, p.EndSample, progress)

	intervals := make([]Interval, 0)
	index := p.StartSample
	for index < p.EndSample {
		if gate.Step(math.Abs(samples[index])) {
			frame := int(math.Floor(p.FrameAt(index)))
			in := frame - p.PrerollFrames
			if in < 0 {
				in = 0
			}
			intervals = append(intervals, Interval{In: in, Out: frame + p.PostrollFrames})

			if p.AutoHoldoff {
				gate.Hold()
			}
			index += skip
		}
		index++
		reporter.update(index)
	}
	reporter.finish()

	return intervals, nil
}

// progressReporter turns sample positions into integer percentages and only
// calls through when the percentage changes
type progressReporter struct {
	start, span int
	last        int
	fn          ProgressFunc
}

func newProgressReporter(start, end int, fn ProgressFunc) *progressReporter {
	return &progressReporter{start: start, span: end - start, last: -1, fn: fn}
}

func (r *progressReporter) update(index int) {
	if r.fn == nil || r.span <= 0 {
		return
	}
	percent := (100 * (index - r.start)) / r.span
	if percent > 100 {
		percent = 100
	}
	if percent > r.last {
		r.last = percent
		r.fn(percent)
	}
}

func (r *progressReporter) finish() {
	if r.fn != nil && r.last < 100 {
		r.last = 100
		r.fn(100)
	}
}

// DbToLinear converts decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibel value.
// Inverse of DbToLinear.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return -120.0 // Practical floor for audio
	}
	return 20.0 * math.Log10(linear)
}
