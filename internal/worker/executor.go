package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/bgsub/internal/config"
)

// Execute runs one job in an isolated child process by re-spawning this
// binary in worker mode. The codec and subtractor libraries are not
// guaranteed safe across concurrent use within one process, so each job gets
// its own.
//
// Protocol: job JSON on the child's stdin, one JobResult JSON line on its
// stdout. The child's stderr carries its log output; when verbose it is
// teed to our stderr in real time, otherwise captured silently for failure
// diagnostics.
func Execute(ctx context.Context, cfg *config.Config, job ConversionJob) JobResult {
	exe, err := os.Executable()
	if err != nil {
		return Failed(job, fmt.Errorf("locate worker binary: %w", err))
	}

	args := []string{"--worker", "--no-color"}
	if cfg.Verbose {
		args = append(args, "--verbose")
	}
	cmd := exec.CommandContext(ctx, exe, args...)

	payload, err := json.Marshal(job)
	if err != nil {
		return Failed(job, fmt.Errorf("encode job: %w", err))
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if cfg.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	runErr := cmd.Run()

	// A worker that ran a job to a terminal state exits 0 and reports the
	// outcome (including failures) as result data. Anything else is a
	// protocol-level breakdown and becomes a synthesized failure.
	var res JobResult
	decodeErr := json.Unmarshal(bytes.TrimSpace(stdoutBuf.Bytes()), &res)
	if decodeErr == nil && res.JobID == job.ID {
		return res
	}

	if runErr != nil {
		return Failed(job, fmt.Errorf("worker process failed: %v%s", runErr, stderrTail(stderrBuf.String())))
	}
	return Failed(job, fmt.Errorf("undecodable worker result: %v%s", decodeErr, stderrTail(stderrBuf.String())))
}

// RunWorker is the child side of the protocol: decode one job from r, run it
// through convert, and write the result to w. A non-nil return means the
// protocol itself broke (bad input, unwritable stdout) and the child should
// exit non-zero; job failures are carried inside the written result.
func RunWorker(ctx context.Context, r io.Reader, w io.Writer, convert func(context.Context, ConversionJob) JobResult) error {
	var job ConversionJob
	if err := json.NewDecoder(r).Decode(&job); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	if job.InputPath == "" || job.OutputPath == "" {
		return fmt.Errorf("job %s is missing paths", job.ID)
	}

	res := convert(ctx, job)

	enc := json.NewEncoder(w)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// stderrTail returns the last lines of a worker's stderr, prefixed with a
// newline, for inclusion in a synthesized failure message.
func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	return "\n" + strings.Join(lines, "\n")
}
