package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/bangingcuts/internal/cli"
	"github.com/linuxmatters/bangingcuts/internal/config"
	"github.com/linuxmatters/bangingcuts/internal/logging"
	"github.com/linuxmatters/bangingcuts/internal/processor"
	"github.com/linuxmatters/bangingcuts/internal/timeline"
	"github.com/linuxmatters/bangingcuts/internal/ui"
)

var (
	version = "0.0.1"
)

// Exit codes
const (
	exitOK        = 0
	exitFailed    = 1
	exitCancelled = 2
)

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"path" placeholder:"FILE" help:"Path to TOML config file"`

	Threshold *float64 `short:"t" placeholder:"DB" group:"detection" help:"Trigger threshold in dBFS"`
	Preroll   *int     `placeholder:"FRAMES" group:"detection" help:"Frames kept before each peak"`
	Postroll  *int     `placeholder:"FRAMES" group:"detection" help:"Frames kept after each peak"`
	NoHoldoff bool     `group:"detection" help:"Retrigger on every sample above threshold"`
	Debounce  *int     `placeholder:"SAMPLES" group:"detection" help:"Quiet samples that end a peak"`
	FPS       *float64 `name:"fps" placeholder:"FPS" group:"detection" help:"Timeline frame rate"`

	Output string `short:"o" type:"path" placeholder:"FILE" group:"output" help:"Where to write the edited project (default: <project>-cut.toml)"`
	DryRun bool   `short:"n" group:"output" help:"Plan the cuts without writing anything"`
	Plain  bool   `group:"output" help:"Plain progress bars instead of the full-screen UI"`
	Logs   bool   `group:"output" help:"Save a detailed cuts report"`

	Project string `arg:"" name:"project" help:"Timeline project to cut" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("bangcuts"),
		kong.Description("Chop timeline clips in sync with audio peaks"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ExplicitGroups(cli.Groups),
		kong.Help(cli.StyledHelpPrinter(config.Default())),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(exitOK)
	}

	if cliArgs.Project == "" {
		cli.PrintError("No project specified")
		ctx.PrintUsage(false)
		os.Exit(exitFailed)
	}

	os.Exit(run(cliArgs))
}

func run(args *CLI) int {
	cfg, _, _, err := config.Load(args.Config)
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailed
	}
	args.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		return exitFailed
	}

	var logPaths []string
	if cfg.LogFile != "" {
		logPaths = append(logPaths, cfg.LogFile)
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: logPaths,
	})
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailed
	}
	defer closeLog()
	logger = logger.With("project", filepath.Base(args.Project))
	ui.SetLogger(logger)

	project, err := timeline.LoadProject(args.Project)
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailed
	}

	outputPath := ""
	if !args.DryRun {
		outputPath = args.outputPath()
	}

	job := &job{
		projectPath: args.Project,
		outputPath:  outputPath,
		project:     project,
		logs:        args.Logs,
		opts: processor.Options{
			Config:  cfg,
			BaseDir: filepath.Dir(args.Project),
			DryRun:  args.DryRun,
			Logger:  logger,
		},
		log: logger,
	}

	if args.Plain {
		err = runPlain(job)
	} else {
		err = runTUI(job)
	}

	switch {
	case err == nil:
		return exitOK
	case ui.Cancelled(err):
		return exitCancelled
	default:
		return exitFailed
	}
}

// applyOverrides copies any flags given on the command line over the config
func (c *CLI) applyOverrides(cfg *config.Config) {
	if c.Threshold != nil {
		cfg.ThresholdDB = *c.Threshold
	}
	if c.Preroll != nil {
		cfg.PrerollFrames = *c.Preroll
	}
	if c.Postroll != nil {
		cfg.PostrollFrames = *c.Postroll
	}
	if c.NoHoldoff {
		cfg.AutoHoldoff = false
	}
	if c.Debounce != nil {
		cfg.DebounceSamples = *c.Debounce
	}
	if c.FPS != nil {
		cfg.FPS = *c.FPS
	}
}

// outputPath returns where the edited project goes: episode.toml → episode-cut.toml
func (c *CLI) outputPath() string {
	if c.Output != "" {
		return c.Output
	}
	ext := filepath.Ext(c.Project)
	return strings.TrimSuffix(c.Project, ext) + "-cut" + ext
}

// job is one run of the processor plus everything that happens after it
type job struct {
	projectPath string
	outputPath  string // Empty on a dry run
	project     *timeline.Project
	logs        bool
	opts        processor.Options
	log         *slog.Logger
}

// execute runs the processor, writes the edited project and the optional report
func (j *job) execute(progress processor.ProgressCallback) (*processor.Result, error) {
	start := time.Now()
	opts := j.opts
	opts.Progress = progress

	result, err := processor.BangCuts(j.project, opts)
	if err == nil && j.outputPath != "" {
		if saveErr := timeline.SaveProject(j.outputPath, result.Project); saveErr != nil {
			err = saveErr
		} else {
			j.log.Info("edited project written", "path", j.outputPath)
		}
	}

	if j.logs {
		reportData := logging.ReportData{
			ProjectPath: j.projectPath,
			OutputPath:  j.outputPath,
			StartTime:   start,
			EndTime:     time.Now(),
			Config:      opts.Config,
			Result:      result,
			Err:         err,
		}
		if reportErr := logging.GenerateReport(reportData); reportErr != nil {
			j.log.Warn("failed to generate report", "error", reportErr)
		}
	}

	if err != nil {
		j.log.Error("run stopped", "error", err)
	}
	return result, err
}

// runTUI runs the job behind the full-screen UI
func runTUI(j *job) error {
	model := ui.NewModel(j.projectPath, j.opts.DryRun)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Closed once the worker has finished, including any project save
	done := make(chan struct{})
	go func() {
		defer close(done)
		start := ui.RunStartMsg{ProjectPath: j.projectPath, Selected: len(j.project.SelectedClips())}
		if ref, err := j.project.ReferenceClip(); err == nil {
			start.Reference = ref.ID
		}
		p.Send(start)

		ph := &progressHandler{p: p, log: j.log}
		result, runErr := j.execute(ph.callback)

		p.Send(ui.RunCompleteMsg{
			Result:     result,
			OutputPath: j.outputPath,
			Error:      runErr,
		})
	}()

	final, err := p.Run()
	m, ok := final.(ui.Model)
	finished := err == nil && ok && m.Done
	if !finished {
		cli.PrintWarning("interrupted, waiting for the current stage to finish")
	}
	<-done

	if err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		return err
	}
	if !finished {
		return errors.New("interrupted")
	}

	// The alt screen is gone; repeat the outcome on the normal terminal
	return report(m.Result, m.OutputPath, m.Error)
}

// report prints the outcome of a run
func report(result *processor.Result, outputPath string, err error) error {
	switch {
	case ui.Cancelled(err):
		cli.PrintWarning(err.Error())
	case err != nil:
		cli.PrintError(err.Error())
	default:
		cli.PrintSuccess(fmt.Sprintf("Banged %d cuts!", result.Cuts()))
		if outputPath != "" {
			cli.PrintKeyValue("Written:", outputPath)
		} else {
			cli.PrintKeyValue("Dry run:", "nothing written")
		}
	}
	return err
}

// progressHandler forwards processor progress to the UI
type progressHandler struct {
	p    *tea.Program
	log  *slog.Logger
	last processor.Stage
}

func (ph *progressHandler) callback(stage processor.Stage, percent int) {
	if stage != ph.last {
		ph.log.Debug("stage started", "stage", stage.String())
		ph.last = stage
	}
	ph.p.Send(ui.ProgressMsg{Stage: stage, Percent: percent})
}
