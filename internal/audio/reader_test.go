package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestReadChannel(t *testing.T) {
	path := generateTestAudio(t, TestAudioOptions{
		NumSamples: 4800,
		SampleRate: 48000,
		Spikes:     []int{100, 2400},
	})

	s, err := WAVSource{}.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if s.Meta.NumSamples != 4800 || len(s.Data) != 4800 {
		t.Errorf("NumSamples = %d, len(Data) = %d, want 4800", s.Meta.NumSamples, len(s.Data))
	}
	if s.Meta.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", s.Meta.SampleRate)
	}
	if s.Meta.Channels != 1 || s.Meta.BitDepth != 16 {
		t.Errorf("Channels = %d, BitDepth = %d, want 1, 16", s.Meta.Channels, s.Meta.BitDepth)
	}
	if math.Abs(s.Meta.Duration-0.1) > 1e-9 {
		t.Errorf("Duration = %v, want 0.1", s.Meta.Duration)
	}

	for _, i := range []int{100, 2400} {
		if s.Data[i] < 0.999 || s.Data[i] > 1.0 {
			t.Errorf("Data[%d] = %v, want full scale", i, s.Data[i])
		}
	}
	if s.Data[0] != 0 || s.Data[101] != 0 {
		t.Errorf("silent samples decoded as %v, %v", s.Data[0], s.Data[101])
	}
}

func TestReadChannelSelectsChannel(t *testing.T) {
	path := generateTestAudio(t, TestAudioOptions{
		NumSamples: 1000,
		Channels:   2,
		Spikes:     []int{10},
	})

	left, err := ReadChannel(path, 0)
	if err != nil {
		t.Fatalf("ReadChannel(0) failed: %v", err)
	}
	right, err := ReadChannel(path, 1)
	if err != nil {
		t.Fatalf("ReadChannel(1) failed: %v", err)
	}

	if len(left.Data) != 1000 || len(right.Data) != 1000 {
		t.Fatalf("lengths = %d, %d, want 1000", len(left.Data), len(right.Data))
	}
	if left.Data[10] < 0.999 {
		t.Errorf("left spike = %v, want full scale", left.Data[10])
	}
	if math.Abs(right.Data[10]-0.25) > 0.001 {
		t.Errorf("right level = %v, want 0.25", right.Data[10])
	}

	if _, err := ReadChannel(path, 2); err == nil {
		t.Error("expected error for missing channel")
	}
}

func TestReadChannelBitDepths(t *testing.T) {
	for _, depth := range []int{16, 24} {
		path := generateTestAudio(t, TestAudioOptions{
			NumSamples: 200,
			BitDepth:   depth,
			Spikes:     []int{50},
		})

		s, err := ReadChannel(path, 0)
		if err != nil {
			t.Fatalf("%d-bit: ReadChannel failed: %v", depth, err)
		}
		if s.Meta.BitDepth != depth {
			t.Errorf("%d-bit: BitDepth = %d", depth, s.Meta.BitDepth)
		}
		if s.Data[50] < 0.99 || s.Data[50] > 1.0 {
			t.Errorf("%d-bit: spike = %v, want full scale", depth, s.Data[50])
		}
		if math.Abs(s.Data[0]) > 0.01 {
			t.Errorf("%d-bit: silence = %v, want 0", depth, s.Data[0])
		}
	}
}

func TestReadChannelRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	notWAV := filepath.Join(dir, "notes.wav")
	if err := os.WriteFile(notWAV, []byte("definitely not RIFF data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadChannel(notWAV, 0); err == nil {
		t.Error("expected error for non-WAV file")
	}

	if _, err := ReadChannel(filepath.Join(dir, "missing.wav"), 0); err == nil {
		t.Error("expected error for missing file")
	} else if errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("missing file reported as unsupported format: %v", err)
	}
}

func TestOpenAudioFile(t *testing.T) {
	path := generateTestAudio(t, TestAudioOptions{NumSamples: 44100, SampleRate: 44100, Channels: 2})

	meta, err := OpenAudioFile(path)
	if err != nil {
		t.Fatalf("OpenAudioFile failed: %v", err)
	}
	if meta.SampleRate != 44100 || meta.Channels != 2 {
		t.Errorf("meta = %+v, want 44100 Hz stereo", meta)
	}
	if math.Abs(meta.Duration-1.0) > 0.001 {
		t.Errorf("Duration = %v, want 1s", meta.Duration)
	}
}
