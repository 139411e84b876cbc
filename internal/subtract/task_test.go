package subtract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/backmassage/bgsub/internal/config"
	"github.com/backmassage/bgsub/internal/logging"
	"github.com/backmassage/bgsub/internal/worker"
)

// makeVideo writes a small synthetic clip with a moving square so the
// subtractor has real foreground to find. Skips the test when the
// environment has no usable mp4 encoder.
func makeVideo(t *testing.T, path string, frames int) {
	t.Helper()
	writer, err := gocv.VideoWriterFile(path, "mp4v", 24, 96, 64, true)
	if err != nil || !writer.IsOpened() {
		t.Skipf("no mp4v encoder available: %v", err)
	}
	defer writer.Close()

	for i := 0; i < frames; i++ {
		frame := gocv.NewMatWithSize(64, 96, gocv.MatTypeCV8UC3)
		x := (i * 3) % 80
		gocv.Rectangle(&frame, image.Rect(x, 20, x+16, 36), color.RGBA{R: 255, G: 255, B: 255}, -1)
		if err := writer.Write(frame); err != nil {
			frame.Close()
			t.Fatalf("write frame %d: %v", i, err)
		}
		frame.Close()
	}
}

func countFrames(t *testing.T, path string) int64 {
	t.Helper()
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	var n int64
	for capture.Read(&frame) {
		n++
	}
	return n
}

func TestConvert_FrameCountParity(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	output := filepath.Join(dir, "output.mp4")
	const frames = 40
	makeVideo(t, input, frames)

	job := worker.NewJob(input, output, config.SubtractorMOG2)
	log := logging.NewWorkerLogger(false)

	res := Convert(context.Background(), job, log)
	if !res.Done() {
		t.Fatalf("Convert failed: %s", res.Error)
	}
	if res.Frames != frames {
		t.Errorf("reported %d frames, want %d", res.Frames, frames)
	}
	if got := countFrames(t, output); got != frames {
		t.Errorf("output holds %d frames, want %d (no drops, no duplicates)", got, frames)
	}
}

func TestConvert_KNN(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	output := filepath.Join(dir, "output.mp4")
	makeVideo(t, input, 12)

	job := worker.NewJob(input, output, config.SubtractorKNN)
	res := Convert(context.Background(), job, logging.NewWorkerLogger(false))
	if !res.Done() {
		t.Fatalf("Convert failed: %s", res.Error)
	}
	if res.Frames != 12 {
		t.Errorf("reported %d frames, want 12", res.Frames)
	}
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	job := worker.NewJob(filepath.Join(dir, "ghost.mp4"), filepath.Join(dir, "out.mp4"), config.SubtractorMOG2)

	res := Convert(context.Background(), job, logging.NewWorkerLogger(false))
	if res.Done() {
		t.Fatal("Convert must fail for a missing input")
	}
	if !strings.Contains(res.Error, "decode") {
		t.Errorf("error should identify the decode stage: %s", res.Error)
	}
}

func TestConvert_UnreadableInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corrupt.mp4")
	if err := writeGarbage(input); err != nil {
		t.Fatal(err)
	}

	job := worker.NewJob(input, filepath.Join(dir, "out.mp4"), config.SubtractorMOG2)
	res := Convert(context.Background(), job, logging.NewWorkerLogger(false))
	if res.Done() && res.Frames > 0 {
		t.Errorf("garbage input yielded %d frames", res.Frames)
	}
}

func writeGarbage(path string) error {
	return os.WriteFile(path, bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 1024), 0o644)
}

func TestConvert_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	makeVideo(t, input, 12)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := worker.NewJob(input, filepath.Join(dir, "out.mp4"), config.SubtractorMOG2)
	res := Convert(ctx, job, logging.NewWorkerLogger(false))
	if res.Done() {
		t.Error("Convert must fail under a cancelled context")
	}
}
