package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/backmassage/bgsub/internal/config"
)

// Runner executes a single job to its terminal state. The production runner
// spawns an isolated child process ([Execute]); tests inject fakes.
type Runner func(ctx context.Context, job ConversionJob) JobResult

// Pool distributes jobs across up to maxWorkers concurrently executing
// workers using greedy assignment: each free worker pulls the next unstarted
// job and runs it to completion before taking another. There is no priority
// and no preemption, and completion order is not guaranteed.
type Pool struct {
	runner Runner
}

// NewPool returns a pool whose workers isolate each job in its own process.
func NewPool(cfg *config.Config) *Pool {
	return &Pool{runner: func(ctx context.Context, job ConversionJob) JobResult {
		return Execute(ctx, cfg, job)
	}}
}

// NewPoolWithRunner returns a pool with a custom runner. Used by tests to
// exercise scheduling without spawning processes.
func NewPoolWithRunner(r Runner) *Pool {
	return &Pool{runner: r}
}

// Run dispatches all jobs and blocks until every one has a result. One job's
// failure never cancels or blocks its siblings: the returned slice always
// holds exactly one result per submitted job, in no particular order.
//
// An invalid worker count is a configuration error reported before any job
// is dispatched. Context cancellation stops new dispatches; jobs that never
// ran are reported as failed with the cancellation cause.
func (p *Pool) Run(ctx context.Context, jobs []ConversionJob, maxWorkers int) ([]JobResult, error) {
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("worker count must be positive (got %d)", maxWorkers)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	workers := maxWorkers
	if len(jobs) < workers {
		workers = len(jobs)
	}

	jobCh := make(chan ConversionJob)
	resCh := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := ctx.Err(); err != nil {
					resCh <- Failed(job, fmt.Errorf("not started: %w", err))
					continue
				}
				resCh <- p.runner(ctx, job)
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()
	close(resCh)

	results := make([]JobResult, 0, len(jobs))
	for res := range resCh {
		results = append(results, res)
	}
	return results, nil
}
