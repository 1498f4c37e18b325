// Package audio provides reference audio decoding using go-audio/wav
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// pcmFormat is the WAVE format tag for integer PCM
const pcmFormat = 1

// ErrUnsupportedFormat is returned for WAV files that are not integer PCM
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Metadata contains audio file metadata as reported by the container
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	NumSamples int // per channel
}

// Samples is one decoded channel of a file, scaled to [-1, 1]
type Samples struct {
	Path    string
	Channel int
	Data    []float64
	Meta    Metadata
}

// Source decodes a media reference into samples
type Source interface {
	Read(path string) (*Samples, error)
}

// WAVSource reads one channel of a PCM WAV file
type WAVSource struct {
	Channel int
}

// Read implements Source
func (s WAVSource) Read(path string) (*Samples, error) {
	return ReadChannel(path, s.Channel)
}

// OpenAudioFile reads the container metadata without decoding samples
func OpenAudioFile(filename string) (*Metadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", filename)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return nil, fmt.Errorf("failed to read duration: %w", err)
	}

	meta := &Metadata{
		Duration:   duration.Seconds(),
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	meta.NumSamples = int(duration.Seconds()*float64(meta.SampleRate) + 0.5)
	return meta, nil
}

// ReadChannel decodes a whole WAV file and returns one channel as floats
func ReadChannel(filename string, channel int) (*Samples, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", filename)
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: WAV format tag %d in %s", ErrUnsupportedFormat, decoder.WavAudioFormat, filename)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channel < 0 || channel >= channels {
		return nil, fmt.Errorf("channel %d not present, file has %d", channel, channels)
	}

	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit samples in %s", ErrUnsupportedFormat, bitDepth, filename)
	}

	frames := len(buf.Data) / channels
	data := make([]float64, frames)
	scale := float64(int64(1) << (bitDepth - 1))
	for i := 0; i < frames; i++ {
		v := buf.Data[i*channels+channel]
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		data[i] = float64(v) / scale
	}

	sampleRate := int(decoder.SampleRate)
	meta := Metadata{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		NumSamples: frames,
	}
	if sampleRate > 0 {
		meta.Duration = float64(frames) / float64(sampleRate)
	}

	return &Samples{
		Path:    filename,
		Channel: channel,
		Data:    data,
		Meta:    meta,
	}, nil
}
