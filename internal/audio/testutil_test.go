package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	NumSamples int     // Per channel
	SampleRate int     // Default: 48000
	Channels   int     // Default: 1
	BitDepth   int     // Default: 16
	NoiseLevel float64 // White noise level in dBFS (0 = no noise)
	Spikes     []int   // Sample indices set to full scale on channel 0
}

// generateTestAudio writes a synthetic PCM WAV into the test's temp dir.
// Channel 0 carries the noise and spikes; other channels hold a constant
// quarter-scale level so channel selection can be checked.
func generateTestAudio(t *testing.T, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.BitDepth == 0 {
		opts.BitDepth = 16
	}

	full := int(math.Pow(2, float64(opts.BitDepth-1))) - 1
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	// Simple LCG for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	spikes := make(map[int]bool, len(opts.Spikes))
	for _, s := range opts.Spikes {
		spikes[s] = true
	}

	data := make([]int, opts.NumSamples*opts.Channels)
	for i := 0; i < opts.NumSamples; i++ {
		v := 0
		switch {
		case spikes[i]:
			v = full
		case noiseAmp > 0:
			v = int(noiseAmp * nextRandom() * float64(full))
		}
		data[i*opts.Channels] = v
		for ch := 1; ch < opts.Channels; ch++ {
			data[i*opts.Channels+ch] = full / 4
		}
	}

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, opts.SampleRate, opts.BitDepth, opts.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: opts.Channels, SampleRate: opts.SampleRate},
		Data:           data,
		SourceBitDepth: opts.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise WAV file: %v", err)
	}
	return path
}
