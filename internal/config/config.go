// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation. Defaults match the legacy Convert script for parity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Subtractor selects the background-subtraction algorithm.
type Subtractor string

const (
	SubtractorMOG2 Subtractor = "MOG2" // Adaptive mixture-of-Gaussians (default).
	SubtractorKNN  Subtractor = "KNN"  // Non-parametric k-nearest-neighbor history.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths.
	InputDir  string // Directory of source videos (positional arg, default ".").
	BackupDir string // Where originals are moved before processing. Default: "unsubtracted_videos".

	// Conversion settings.
	Subtractor Subtractor // Default: MOG2.
	MaxWorkers int        // Worker process count. Default: 10.

	// Behavior flags.
	DryRun bool

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// Worker mode (hidden; set when this process is a conversion child).
	WorkerMode bool
}

// DefaultConfig returns a Config with all defaults matching the legacy
// Convert script behavior. Used as the base before [ParseFlags] applies CLI
// overrides.
func DefaultConfig() Config {
	return Config{
		InputDir:   ".",
		BackupDir:  "unsubtracted_videos",
		Subtractor: SubtractorMOG2,
		MaxWorkers: 10,
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric bounds. Worker and check modes skip
// the path requirement because they receive their work out of band.
func (c *Config) Validate() error {
	switch c.Subtractor {
	case SubtractorMOG2, SubtractorKNN:
		// valid
	default:
		return errors.New("invalid subtractor (use 'MOG2' or 'KNN')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max-workers must be a positive integer (got %d)", c.MaxWorkers)
	}

	if c.CheckOnly || c.WorkerMode {
		return nil
	}
	if c.InputDir == "" || c.BackupDir == "" {
		return errors.New("need a video directory and a non-empty --dest-dir")
	}
	return nil
}

// ValidatePaths ensures the input directory exists and is a directory, and
// that the resolved backup directory is not the input directory itself. The
// backup directory may live inside the input directory; discovery is
// non-recursive, so it is never picked up as input.
func (c *Config) ValidatePaths(inputAbs, backupAbs string) error {
	fi, err := os.Stat(inputAbs)
	if err != nil {
		return fmt.Errorf("video directory not readable: %s", inputAbs)
	}
	if !fi.IsDir() {
		return fmt.Errorf("not a directory: %s", inputAbs)
	}
	if backupAbs == inputAbs {
		return errors.New("backup directory must not be the video directory itself")
	}
	return nil
}

// BackupPath returns the backup directory resolved against the input
// directory when given as a relative path, matching the legacy behavior of
// running from inside the video directory.
func (c *Config) BackupPath() string {
	if filepath.IsAbs(c.BackupDir) {
		return c.BackupDir
	}
	return filepath.Join(c.InputDir, c.BackupDir)
}
