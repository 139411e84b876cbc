package pipeline

// Failure is one per-video failure surfaced in the final report.
type Failure struct {
	Path  string // original path of the video
	JobID string
	Error string
}

// Report aggregates the outcome of one batch. Per-video failures are report
// data; only Fatal (configuration or relocation errors) fails the whole
// invocation.
type Report struct {
	Submitted   int
	Succeeded   int
	Failed      int
	TotalFrames int64
	Failures    []Failure
	Fatal       error
}

// OK reports whether the batch as a whole succeeded. Individual video
// failures do not fail the invocation.
func (r *Report) OK() bool {
	return r.Fatal == nil
}
