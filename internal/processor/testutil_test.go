package processor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/bangingcuts/internal/audio"
	"github.com/linuxmatters/bangingcuts/internal/config"
	"github.com/linuxmatters/bangingcuts/internal/timeline"
)

// TestAudioOptions configures the synthetic reference audio
type TestAudioOptions struct {
	NumSamples int
	SampleRate int     // Rate written to the header (default: 48000)
	NoiseLevel float64 // White noise level in dBFS (0 = no noise)
	Spikes     []int   // Sample indices set to full scale
}

// generateTestAudio writes a mono 16-bit WAV with full-scale spikes over
// optional low-level noise and returns its path
func generateTestAudio(t *testing.T, dir string, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}

	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	// LCG for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	data := make([]int, opts.NumSamples)
	for i := range data {
		if noiseAmp > 0 {
			data[i] = int(noiseAmp * nextRandom() * math.MaxInt16)
		}
	}
	for _, s := range opts.Spikes {
		data[s] = math.MaxInt16
	}

	path := filepath.Join(dir, "reference.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, opts.SampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: opts.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise WAV file: %v", err)
	}
	return path
}

// newTestConfig returns stock detection settings with an explicit frame rate
// so results do not depend on the machine's timezone
func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.FPS = 25
	return &cfg
}

// sequentialIDs names split-off clips cut-1, cut-2, ... in creation order
func sequentialIDs() func(timeline.Clip) string {
	n := 0
	return func(timeline.Clip) string {
		n++
		return fmt.Sprintf("cut-%d", n)
	}
}

// fakeSource returns canned samples regardless of path
type fakeSource struct {
	samples *audio.Samples
	err     error
	paths   []string
}

func (s *fakeSource) Read(path string) (*audio.Samples, error) {
	s.paths = append(s.paths, path)
	return s.samples, s.err
}
