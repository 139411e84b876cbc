package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, behavior, display, and utility.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses args (normally os.Args[1:]) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil (e.g. unknown
// flag, too many positional args).
func ParseFlags(cfg *Config, version string, args []string) error {
	fs := flag.NewFlagSet("bgsub", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	var showHelp, showVersion, forceColor, noColor bool

	// Conversion.
	fs.StringVar(&cfg.BackupDir, "dest-dir", cfg.BackupDir, "Directory to move originals into before processing")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers, "Number of parallel worker processes")
	fs.Var(&subtractorValue{&cfg.Subtractor}, "subtractor", "Background subtractor: MOG2 | KNN")
	fs.Var(&subtractorValue{&cfg.Subtractor}, "s", "Same as --subtractor")

	// Behavior.
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not move or convert anything")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")

	// Display.
	fs.BoolVar(&forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (includes live worker logs)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")

	// Utility.
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showVersion, "V", false, "Same as --version")
	fs.BoolVar(&showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&showHelp, "h", false, "Same as --help")

	// Hidden: set by the pool when spawning conversion children.
	fs.BoolVar(&cfg.WorkerMode, "worker", false, "")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if noColor {
		cfg.ColorMode = ColorNever
	} else if forceColor {
		cfg.ColorMode = ColorAlways
	}

	if showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "bgsub v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// parsePositionalArgs sets InputDir from the optional positional arg. Worker
// and check modes take no positionals.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	rest := fs.Args()
	if cfg.WorkerMode || cfg.CheckOnly {
		if len(rest) != 0 {
			return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
		}
		return nil
	}
	switch len(rest) {
	case 0:
		// Keep the default (current directory).
	case 1:
		cfg.InputDir = NormalizeDirArg(rest[0])
	default:
		return fmt.Errorf("expected at most one video directory, got %d arguments", len(rest))
	}
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "bgsub v" + version + " — batch background subtraction for videos"},
		{"", ""},
		{"  bgsub [OPTIONS] [video_dir]", ""},
		{"", ""},
		{"Conversion", ""},
		{"  --dest-dir <dir>", "Backup directory for originals (default: unsubtracted_videos)"},
		{"  --max-workers <n>", "Parallel worker processes (default: 10)"},
		{"  -s, --subtractor <MOG2|KNN>", "Background subtractor (default: MOG2)"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Preview only; do not move or convert anything"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output (includes live worker logs)"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (OpenCV, subtractors, worker spawn)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the Subtractor enum works with flag.Var.

type subtractorValue struct{ p *Subtractor }

func (s *subtractorValue) String() string {
	if s.p == nil {
		return ""
	}
	return string(*s.p)
}

func (s *subtractorValue) Set(v string) error {
	switch strings.ToUpper(v) {
	case "MOG2":
		*s.p = SubtractorMOG2
	case "KNN":
		*s.p = SubtractorKNN
	default:
		return fmt.Errorf("invalid subtractor %q (use 'MOG2' or 'KNN')", v)
	}
	return nil
}
