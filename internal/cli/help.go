package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/bangingcuts/internal/config"
	"github.com/linuxmatters/bangingcuts/internal/mains"
)

// Flag groups, in the order help lists them after the general flags
var Groups = []kong.Group{
	{Key: "detection", Title: "Detection", Description: "How peaks are found in the reference clip"},
	{Key: "output", Title: "Output", Description: "What gets written and shown"},
}

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Italic(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warnColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpNoteStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// helpEntry is one rendered line of the help: a flag or argument and its text
type helpEntry struct {
	name  string
	help  string
	value string // Effective default, if any
}

// helpSection is a titled block of entries
type helpSection struct {
	title string
	note  string
	items []helpEntry
}

// StyledHelpPrinter renders help with the flags grouped by what they affect.
// Defaults shown are the effective ones for cfg, so pointer flags without a
// kong default still say what happens when they are left out.
func StyledHelpPrinter(cfg config.Config) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		name := ctx.Model.Name
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("Banging Cuts 🥁"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(ctx.Model.Help))
		sb.WriteString("\n")

		writeHelpSection(&sb, helpSection{
			title: "Usage:",
			items: []helpEntry{{name: name + " [flags] <project>"}},
		})

		var args []helpEntry
		for _, arg := range ctx.Model.Node.Positional {
			args = append(args, helpEntry{name: arg.Summary(), help: arg.Help})
		}
		writeHelpSection(&sb, helpSection{title: "Arguments:", items: args})

		for _, section := range flagSections(ctx.Model.Node.Flags, cfg) {
			writeHelpSection(&sb, section)
		}

		writeHelpSection(&sb, helpSection{
			title: "Examples:",
			items: []helpEntry{
				{name: name + " episode.toml", help: "Cut and write episode-cut.toml"},
				{name: name + " episode.toml -t -18 --dry-run", help: "Try a lower threshold without writing"},
				{name: name + " episode.toml --postroll 10 --logs", help: "Keep longer tails and save a report"},
			},
		})

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func writeHelpSection(sb *strings.Builder, s helpSection) {
	if len(s.items) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(s.title))
	sb.WriteString("\n")
	if s.note != "" {
		sb.WriteString("  ")
		sb.WriteString(helpNoteStyle.Render(s.note))
		sb.WriteString("\n")
	}

	style := helpFlagStyle
	if s.title == "Arguments:" || s.title == "Usage:" || s.title == "Examples:" {
		style = helpArgStyle
	}
	for _, item := range s.items {
		sb.WriteString("  ")
		sb.WriteString(style.Render(item.name))
		if item.help != "" {
			sb.WriteString("  ")
			sb.WriteString(item.help)
		}
		if item.value != "" {
			sb.WriteString(" ")
			sb.WriteString(helpNoteStyle.Render("(default: " + item.value + ")"))
		}
		sb.WriteString("\n")
	}
}

// flagSections splits flags into the general block followed by one block per
// group, in the order of Groups
func flagSections(flags []*kong.Flag, cfg config.Config) []helpSection {
	general := helpSection{
		title: "Flags:",
		items: []helpEntry{{name: "-h, --help", help: "Show context-sensitive help."}},
	}
	grouped := make(map[string]*helpSection, len(Groups))
	for _, g := range Groups {
		grouped[g.Key] = &helpSection{title: g.Title + ":", note: g.Description}
	}

	for _, f := range flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		entry := helpEntry{
			name:  flagName(f),
			help:  f.Help,
			value: effectiveDefault(f, cfg),
		}
		if f.Group != nil {
			if s, ok := grouped[f.Group.Key]; ok {
				s.items = append(s.items, entry)
				continue
			}
		}
		general.items = append(general.items, entry)
	}

	sections := []helpSection{general}
	for _, g := range Groups {
		sections = append(sections, *grouped[g.Key])
	}
	return sections
}

func flagName(f *kong.Flag) string {
	name := "--" + f.Name
	if f.Short != 0 {
		name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
	}
	if !f.IsBool() && f.PlaceHolder != "" {
		name += "=" + strings.ToUpper(f.PlaceHolder)
	}
	return name
}

// effectiveDefault describes what a flag falls back to when it is not given
func effectiveDefault(f *kong.Flag, cfg config.Config) string {
	switch f.Name {
	case "threshold":
		return fmt.Sprintf("%g dBFS", cfg.ThresholdDB)
	case "preroll":
		return fmt.Sprintf("%d frames", cfg.PrerollFrames)
	case "postroll":
		return fmt.Sprintf("%d frames", cfg.PostrollFrames)
	case "debounce":
		return fmt.Sprintf("%d samples", cfg.DebounceSamples)
	case "no-holdoff":
		if cfg.AutoHoldoff {
			return "holdoff on"
		}
		return "holdoff off"
	case "fps":
		if cfg.FPS > 0 {
			return fmt.Sprintf("%g", cfg.FPS)
		}
		return fmt.Sprintf("project, else %g", mains.FrameRate())
	case "config":
		if path, err := config.DefaultConfigPath(); err == nil {
			return path
		}
	}
	return f.Default
}
