package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/linuxmatters/bangingcuts/internal/config"
)

type helpTestCLI struct {
	Config    string   `short:"c" placeholder:"FILE" help:"Path to TOML config file"`
	Threshold *float64 `short:"t" placeholder:"DB" group:"detection" help:"Trigger threshold in dBFS"`
	Preroll   *int     `placeholder:"FRAMES" group:"detection" help:"Frames kept before each peak"`
	Postroll  *int     `placeholder:"FRAMES" group:"detection" help:"Frames kept after each peak"`
	NoHoldoff bool     `group:"detection" help:"Retrigger on every sample above threshold"`
	Debounce  *int     `placeholder:"SAMPLES" group:"detection" help:"Quiet samples that end a peak"`
	FPS       *float64 `name:"fps" placeholder:"FPS" group:"detection" help:"Timeline frame rate"`
	DryRun    bool     `short:"n" group:"output" help:"Plan the cuts without writing anything"`
	Secret    bool     `hidden:""`
	Project   string   `arg:"" optional:"" help:"Timeline project to cut"`
}

func renderHelp(t *testing.T, cfg config.Config) string {
	t.Helper()

	var buf bytes.Buffer
	parser, err := kong.New(&helpTestCLI{},
		kong.Name("bangcuts"),
		kong.Description("Chop timeline clips in sync with audio peaks"),
		kong.Writers(&buf, &buf),
		kong.Exit(func(int) {}),
		kong.ExplicitGroups(Groups),
		kong.Help(StyledHelpPrinter(cfg)),
	)
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}
	_, _ = parser.Parse([]string{"--help"})
	return buf.String()
}

func TestStyledHelpPrinter(t *testing.T) {
	out := renderHelp(t, config.Default())

	for _, want := range []string{
		"Banging Cuts",
		"Chop timeline clips in sync with audio peaks",
		"bangcuts [flags] <project>",
		"Detection:",
		"How peaks are found in the reference clip",
		"-t, --threshold=DB",
		"(default: -15 dBFS)",
		"(default: 1 frames)",
		"(default: 5 frames)",
		"(default: 50 samples)",
		"(default: holdoff on)",
		"Output:",
		"-n, --dry-run",
		"bangcuts episode.toml -t -18 --dry-run",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if strings.Contains(out, "--secret") {
		t.Error("hidden flag shown in help")
	}
	if t.Failed() {
		t.Logf("help:\n%s", out)
	}
}

func TestStyledHelpPrinterSectionOrder(t *testing.T) {
	out := renderHelp(t, config.Default())

	order := []string{"Usage:", "Arguments:", "Flags:", "--config", "Detection:", "--threshold", "--fps", "Output:", "--dry-run", "Examples:"}
	last := -1
	for _, marker := range order {
		i := strings.Index(out, marker)
		if i < 0 {
			t.Fatalf("help missing %q:\n%s", marker, out)
		}
		if i < last {
			t.Errorf("%q appears out of order:\n%s", marker, out)
		}
		last = i
	}
}

func TestEffectiveDefaultFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ThresholdDB = -24
	cfg.PostrollFrames = 8
	cfg.AutoHoldoff = false
	cfg.FPS = 29.97

	out := renderHelp(t, cfg)
	for _, want := range []string{
		"(default: -24 dBFS)",
		"(default: 8 frames)",
		"(default: holdoff off)",
		"(default: 29.97)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}
