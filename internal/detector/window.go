package detector

// ScanRange returns the sample range [start, end) covering the visible part of
// the reference clip. Scanning begins at the clip's front trim and stops one
// postroll short of its visible end, so the last interval always has room for
// its postroll. The result is clamped to the buffer.
func ScanRange(offsetStart, duration int, fps, sampleRate float64, postrollFrames, numSamples int) (int, int) {
	start := int((float64(offsetStart) / fps) * sampleRate)
	end := start + int((float64(duration)/fps)*sampleRate)
	end -= int((float64(postrollFrames) / fps) * sampleRate)

	if start < 0 {
		start = 0
	}
	if start > numSamples {
		start = numSamples
	}
	if end > numSamples {
		end = numSamples
	}
	if end < start {
		end = start
	}
	return start, end
}
