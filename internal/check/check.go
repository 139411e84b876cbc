// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation for OpenCV, both subtractor algorithms, and worker
// process spawning.
package check

import (
	"errors"
	"os"
	"os/exec"

	"gocv.io/x/gocv"

	"github.com/backmassage/bgsub/internal/config"
	"github.com/backmassage/bgsub/internal/subtract"
)

// Sentinel errors returned by CheckDeps when a required capability is broken.
var (
	ErrSubtractorBroken  = errors.New("background subtractor self-test failed")
	ErrWorkerSpawnFailed = errors.New("cannot spawn worker process (binary not re-executable)")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: OpenCV version, a synthetic
// self-test of each subtractor, and a worker spawn test. Informational only;
// it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	log.Info("OpenCV: %s (gocv %s)", gocv.OpenCVVersion(), gocv.Version())

	for _, kind := range []config.Subtractor{config.SubtractorMOG2, config.SubtractorKNN} {
		if err := selfTest(kind); err != nil {
			log.Error("%s self-test failed: %v", kind, err)
		} else {
			log.Success("%s works", kind)
		}
	}

	if err := testWorkerSpawn(); err != nil {
		log.Error("Worker spawn failed: %v", err)
	} else {
		log.Success("Worker spawn works")
	}
}

// CheckDeps is the pre-pipeline validation: the configured subtractor must
// pass its self-test and the binary must be re-executable for worker
// processes. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if err := selfTest(cfg.Subtractor); err != nil {
		return ErrSubtractorBroken
	}
	if err := testWorkerSpawn(); err != nil {
		return ErrWorkerSpawnFailed
	}
	return nil
}

// selfTest feeds a few synthetic frames through a freshly built transformer
// to verify the OpenCV subtractor machinery is usable.
func selfTest(kind config.Subtractor) error {
	tr, err := subtract.NewTransformer(kind)
	if err != nil {
		return err
	}
	defer tr.Close()

	frame := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	masked := gocv.NewMat()
	defer masked.Close()

	for i := 0; i < 3; i++ {
		if err := tr.Apply(frame, &masked); err != nil {
			return err
		}
	}
	if masked.Empty() {
		return errors.New("subtractor produced an empty frame")
	}
	return nil
}

// testWorkerSpawn re-executes this binary in worker mode with empty input.
// The child is expected to start, reject the empty job, and exit; any start
// failure means worker processes cannot be spawned at all.
func testWorkerSpawn() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, "--worker", "--no-color")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	_ = cmd.Wait() // non-zero exit is expected for the empty job
	return nil
}
