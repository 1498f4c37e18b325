package main

import (
	"testing"

	"github.com/linuxmatters/bangingcuts/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	threshold := -20.0
	postroll := 8
	fps := 29.97
	args := &CLI{
		Threshold: &threshold,
		Postroll:  &postroll,
		FPS:       &fps,
		NoHoldoff: true,
	}

	cfg := config.Default()
	args.applyOverrides(&cfg)

	if cfg.ThresholdDB != -20 {
		t.Errorf("ThresholdDB = %v, want -20", cfg.ThresholdDB)
	}
	if cfg.PostrollFrames != 8 {
		t.Errorf("PostrollFrames = %d, want 8", cfg.PostrollFrames)
	}
	if cfg.FPS != 29.97 {
		t.Errorf("FPS = %v, want 29.97", cfg.FPS)
	}
	if cfg.AutoHoldoff {
		t.Error("AutoHoldoff should be off")
	}

	// Flags not given keep the config value
	def := config.Default()
	if cfg.PrerollFrames != def.PrerollFrames {
		t.Errorf("PrerollFrames = %d, want %d", cfg.PrerollFrames, def.PrerollFrames)
	}
	if cfg.DebounceSamples != def.DebounceSamples {
		t.Errorf("DebounceSamples = %d, want %d", cfg.DebounceSamples, def.DebounceSamples)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		project string
		output  string
		want    string
	}{
		{"default", "episode.toml", "", "episode-cut.toml"},
		{"nested", "/shows/ep1/episode.toml", "", "/shows/ep1/episode-cut.toml"},
		{"no extension", "episode", "", "episode-cut"},
		{"explicit", "episode.toml", "final.toml", "final.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &CLI{Project: tt.project, Output: tt.output}
			if got := args.outputPath(); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
