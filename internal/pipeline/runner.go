// Package pipeline orchestrates file discovery, backup relocation, job
// dispatch across the worker pool, and batch summary reporting.
package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/backmassage/bgsub/internal/backup"
	"github.com/backmassage/bgsub/internal/config"
	"github.com/backmassage/bgsub/internal/display"
	"github.com/backmassage/bgsub/internal/logging"
	"github.com/backmassage/bgsub/internal/worker"
)

// Run is the top-level batch entry point: discover videos, relocate the
// originals into the backup directory, convert everything through the worker
// pool, and return the aggregate report.
//
// Relocation happens exactly once and completes before any job starts, so an
// original is never read and written concurrently. A relocation failure is
// fatal to the whole batch; per-video failures are collected, not fatal.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) Report {
	var report Report

	files, err := Discover(cfg.InputDir)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		report.Fatal = err
		return report
	}
	if len(files) == 0 {
		log.Warn("No video files found in %s", cfg.InputDir)
		return report
	}

	report.Submitted = len(files)
	logBatchHeader(cfg, log, files)

	if cfg.DryRun {
		for _, path := range files {
			log.Success("[DRY] Would move %s to %s and convert with %s",
				filepath.Base(path), cfg.BackupPath(), cfg.Subtractor)
		}
		report.Succeeded = len(files)
		return report
	}

	// --- Relocate originals before any processing ---
	rel, err := backup.Relocate(cfg.BackupPath(), files)
	if err != nil {
		log.Error("Backup relocation failed: %v", err)
		report.Fatal = err
		return report
	}
	if rel.RotatedOld != "" {
		log.Info("Previous backup rotated to %s", rel.RotatedOld)
	}
	log.Info("Moved %d originals to %s", len(rel.Moves), rel.BackupDir)

	// --- Build one job per relocated file ---
	jobs := buildJobs(cfg, rel)

	// --- Dispatch ---
	start := time.Now()
	pool := worker.NewPoolWithRunner(loggingRunner(cfg, log))
	results, err := pool.Run(ctx, jobs, cfg.MaxWorkers)
	if err != nil {
		log.Error("Worker pool rejected the batch: %v", err)
		report.Fatal = err
		return report
	}

	// --- Collect ---
	for _, res := range results {
		if res.Done() {
			report.Succeeded++
			report.TotalFrames += res.Frames
			continue
		}
		report.Failed++
		report.Failures = append(report.Failures, Failure{
			Path:  res.OutputPath,
			JobID: res.JobID,
			Error: res.Error,
		})
	}

	logSummary(log, &report, time.Since(start))
	return report
}

// buildJobs creates one ConversionJob per relocated file: input is the
// backup path, output is the original path. Jobs are sorted by output path
// so submission order is deterministic.
func buildJobs(cfg *config.Config, rel *backup.Relocation) []worker.ConversionJob {
	origs := make([]string, 0, len(rel.Moves))
	for orig := range rel.Moves {
		origs = append(origs, orig)
	}
	sort.Strings(origs)

	jobs := make([]worker.ConversionJob, 0, len(origs))
	for _, orig := range origs {
		jobs = append(jobs, worker.NewJob(rel.Moves[orig], orig, cfg.Subtractor))
	}
	return jobs
}

// loggingRunner wraps the process-isolating executor with per-video
// start/finish log lines so batch progress is visible from the parent.
func loggingRunner(cfg *config.Config, log *logging.Logger) worker.Runner {
	return func(ctx context.Context, job worker.ConversionJob) worker.JobResult {
		name := filepath.Base(job.OutputPath)
		log.Info("Converting %s [%s]", name, job.ID)

		start := time.Now()
		res := worker.Execute(ctx, cfg, job)
		elapsed := display.FormatDuration(time.Since(start))

		if res.Done() {
			log.Success("Converted %s: %s frames in %s", name, display.FormatFrameCount(res.Frames), elapsed)
		} else {
			log.Error("Failed %s after %s: %s", name, elapsed, res.Error)
		}
		return res
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, files []string) {
	log.Info("Found %d videos in %s", len(files), cfg.InputDir)
	log.Info("Subtractor: %s", cfg.Subtractor)
	log.Info("Workers: %d", cfg.MaxWorkers)
	log.Info("Backup: %s", cfg.BackupPath())
	if cfg.DryRun {
		log.Warn("DRY RUN — nothing will be moved or converted")
	}
}

func logSummary(log *logging.Logger, report *Report, elapsed time.Duration) {
	log.Info("==============================")
	log.Info("Done in %s: %d converted, %d failed of %d submitted",
		display.FormatDuration(elapsed), report.Succeeded, report.Failed, report.Submitted)
	log.Info("Frames processed: %s", display.FormatFrameCount(report.TotalFrames))
	for _, f := range report.Failures {
		log.Error("  %s [%s]: %s", f.Path, f.JobID, f.Error)
	}
}
