package audio

import (
	"fmt"
	"math"
)

// DeriveSampleRate back-computes the sample rate from how many samples were
// decoded and how long the clip is on the timeline:
//
//	rate = numSamples / (durationFrames / fps)
//
// Container rates are not trusted; a file whose decoded length disagrees with
// its declared rate would otherwise drift against the timeline.
func DeriveSampleRate(numSamples, durationFrames int, fps float64) (float64, error) {
	if numSamples <= 0 {
		return 0, fmt.Errorf("derive sample rate: %d samples", numSamples)
	}
	if durationFrames <= 0 {
		return 0, fmt.Errorf("derive sample rate: clip duration %d frames", durationFrames)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, fmt.Errorf("derive sample rate: fps %v", fps)
	}
	return float64(numSamples) / (float64(durationFrames) / fps), nil
}

// RateDrift returns how far a derived rate is from the container rate, in
// parts per million
func RateDrift(derived float64, container int) float64 {
	if container <= 0 {
		return math.NaN()
	}
	return (derived - float64(container)) / float64(container) * 1e6
}
