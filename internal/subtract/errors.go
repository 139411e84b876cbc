package subtract

import "fmt"

// OpenError reports that a video could not be opened for decode or encode.
// Fatal to the owning job only.
type OpenError struct {
	Stage string // "decode" or "encode"
	Path  string
	Err   error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s stream %s: %v", e.Stage, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// FrameError reports a decode, transform, or write failure at a specific
// frame index. It aborts the remaining frames of that video but not sibling
// videos.
type FrameError struct {
	Frame int64
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
