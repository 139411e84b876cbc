// Command bgsub is the CLI entrypoint for the batch background-subtraction
// converter.
//
// It parses flags, validates configuration and paths, and either runs system
// diagnostics (--check), a single conversion job (--worker, spawned by the
// pool), or the full batch pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/bgsub/internal/check"
	"github.com/backmassage/bgsub/internal/config"
	"github.com/backmassage/bgsub/internal/display"
	"github.com/backmassage/bgsub/internal/logging"
	"github.com/backmassage/bgsub/internal/pipeline"
	"github.com/backmassage/bgsub/internal/subtract"
	"github.com/backmassage/bgsub/internal/worker"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output goes
	// through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bgsub: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bgsub: %v\n", err)
		return 1
	}

	// Worker mode: this process was spawned by the pool to convert exactly
	// one video. No banner, no relocation; stdout is the result channel.
	if cfg.WorkerMode {
		return runWorker(&cfg)
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bgsub: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	// Resolve and validate paths: input must exist, and the backup dir must
	// not be the input dir itself.
	inputAbs, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		log.Error("Cannot resolve video directory: %s", cfg.InputDir)
		return 1
	}
	cfg.InputDir = inputAbs
	backupAbs, err := filepath.Abs(cfg.BackupPath())
	if err != nil {
		log.Error("Cannot resolve backup directory: %s", cfg.BackupDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, backupAbs); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== bgsub v%s (%s) ===", version, commit)
	log.Info("Videos: %s", cfg.InputDir)
	log.Info("Backup: %s", backupAbs)

	// Fail fast if OpenCV or worker spawning is broken.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM so the
	// pool stops dispatching and running workers are terminated.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, terminating workers…")
		cancel()
	}()

	// Phase 4: Run the batch (discover → relocate → convert → report).
	report := pipeline.Run(ctx, &cfg, log)

	// Per-video failures are report data, not process failure; only fatal
	// configuration/relocation errors fail the invocation.
	if !report.OK() {
		return 1
	}
	return 0
}

// runWorker executes the child side: one job from stdin, one result line on
// stdout, logs on stderr. Exit is non-zero only when the protocol itself
// breaks; job failures travel inside the result.
func runWorker(cfg *config.Config) int {
	log := logging.NewWorkerLogger(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	convert := func(ctx context.Context, job worker.ConversionJob) worker.JobResult {
		return subtract.Convert(ctx, job, log)
	}
	if err := worker.RunWorker(ctx, os.Stdin, os.Stdout, convert); err != nil {
		log.Error("worker: %v", err)
		return 1
	}
	return 0
}
