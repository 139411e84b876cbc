// Package worker distributes conversion jobs across isolated worker
// processes and collects per-job outcomes.
package worker

import (
	"github.com/google/uuid"

	"github.com/backmassage/bgsub/internal/config"
)

// ConversionJob binds one video file to one subtractor configuration. It is
// created per file at submission time and owned exclusively by the worker
// process executing it. The struct crosses the process boundary as JSON on
// the child's stdin.
type ConversionJob struct {
	ID         string            `json:"id"`
	InputPath  string            `json:"input_path"`  // backup location of the original
	OutputPath string            `json:"output_path"` // original location, overwritten with the converted file
	Subtractor config.Subtractor `json:"subtractor"`
}

// NewJob creates a job with a fresh ID so concurrent worker log lines and
// results stay correlatable.
func NewJob(input, output string, kind config.Subtractor) ConversionJob {
	return ConversionJob{
		ID:         uuid.NewString(),
		InputPath:  input,
		OutputPath: output,
		Subtractor: kind,
	}
}

// JobResult is the terminal outcome of one job: success with the number of
// frames processed, or failure with an error description. Jobs never throw
// across the task boundary; they convert failure to this data. The struct
// crosses the process boundary as a JSON line on the child's stdout.
type JobResult struct {
	JobID      string `json:"job_id"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Frames     int64  `json:"frames"`
	Error      string `json:"error,omitempty"`
}

// Done reports whether the job completed successfully.
func (r JobResult) Done() bool { return r.Error == "" }

// Succeeded builds the success result for a job.
func Succeeded(job ConversionJob, frames int64) JobResult {
	return JobResult{
		JobID:      job.ID,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		Frames:     frames,
	}
}

// Failed builds the failure result for a job.
func Failed(job ConversionJob, err error) JobResult {
	r := JobResult{
		JobID:      job.ID,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
