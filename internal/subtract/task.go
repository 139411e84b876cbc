package subtract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/backmassage/bgsub/internal/logging"
	"github.com/backmassage/bgsub/internal/worker"
)

// progressEvery is the frame interval between progress log lines.
const progressEvery = 10000

// outputFourCC is the codec tag for output files, matching the legacy "mp4v"
// writer.
const outputFourCC = "mp4v"

// Convert runs the full single-file pipeline: open the source stream and the
// output stream, pass every frame through the subtractor in decode order,
// and write the masked frames. The terminal state comes back as a JobResult;
// Convert never lets an error escape the task boundary.
//
// All streams, the background model, and the frame buffers are released on
// every path, success or failure.
func Convert(ctx context.Context, job worker.ConversionJob, log *logging.Logger) worker.JobResult {
	name := filepath.Base(job.InputPath)
	log.Info("[%s] Starting conversion of %s (%s)", job.ID, name, job.Subtractor)

	// --- Opening ---
	capture, err := gocv.OpenVideoCapture(job.InputPath)
	if err != nil {
		return fail(job, log, &OpenError{Stage: "decode", Path: job.InputPath, Err: err})
	}
	defer capture.Close()

	width := int(capture.Get(gocv.VideoCaptureFrameWidth))
	height := int(capture.Get(gocv.VideoCaptureFrameHeight))
	fps := capture.Get(gocv.VideoCaptureFPS)
	if width <= 0 || height <= 0 || fps <= 0 {
		return fail(job, log, &OpenError{
			Stage: "decode",
			Path:  job.InputPath,
			Err:   fmt.Errorf("unusable stream geometry %dx%d @ %.2f fps", width, height, fps),
		})
	}

	writer, err := gocv.VideoWriterFile(job.OutputPath, outputFourCC, fps, width, height, true)
	if err != nil {
		return fail(job, log, &OpenError{Stage: "encode", Path: job.OutputPath, Err: err})
	}
	defer writer.Close()
	if !writer.IsOpened() {
		return fail(job, log, &OpenError{
			Stage: "encode",
			Path:  job.OutputPath,
			Err:   errors.New("video writer did not open"),
		})
	}

	transformer, err := NewTransformer(job.Subtractor)
	if err != nil {
		return fail(job, log, err)
	}
	defer transformer.Close()

	log.Debug("[%s] Reading %s: %dx%d @ %.2f fps", job.ID, name, width, height, fps)

	// --- Streaming ---
	frame := gocv.NewMat()
	defer frame.Close()
	masked := gocv.NewMat()
	defer masked.Close()

	start := time.Now()
	var count int64
	for {
		if err := ctx.Err(); err != nil {
			return fail(job, log, &FrameError{Frame: count, Err: err})
		}
		if ok := capture.Read(&frame); !ok {
			break // end of stream
		}
		if err := transformer.Apply(frame, &masked); err != nil {
			return fail(job, log, &FrameError{Frame: count, Err: err})
		}
		if err := writer.Write(masked); err != nil {
			return fail(job, log, &FrameError{Frame: count, Err: err})
		}
		count++
		if count%progressEvery == 0 {
			log.Progress("[%s] %s: frame %d (%.0fs elapsed)",
				job.ID, name, count, time.Since(start).Seconds())
		}
	}

	// --- Closing happens via the deferred releases above ---
	log.Success("[%s] Finished %s: %d frames in %.0fs", job.ID, name, count, time.Since(start).Seconds())
	return worker.Succeeded(job, count)
}

// fail logs the job-local error with identifying context and converts it to
// result data.
func fail(job worker.ConversionJob, log *logging.Logger, err error) worker.JobResult {
	log.Error("[%s] %s: %v", job.ID, filepath.Base(job.InputPath), err)
	return worker.Failed(job, err)
}
