// Package subtract wraps OpenCV background subtraction behind a small
// Transformer interface and drives the per-video conversion task.
package subtract

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/backmassage/bgsub/internal/config"
)

// ErrFrameFormat is returned when a decoded frame has zero dimensions or an
// unexpected channel count. It is fatal to the owning job only.
var ErrFrameFormat = errors.New("malformed frame")

// Transformer applies online background subtraction to frames fed in decode
// order. Each Transformer owns its background model; one instance per video,
// never shared across jobs. Close releases the model and scratch buffers.
type Transformer interface {
	// Apply updates the model with src and writes the masked frame into dst:
	// background pixels driven to black, foreground pixels kept at original
	// intensity. dst gets the same dimensions as src.
	Apply(src gocv.Mat, dst *gocv.Mat) error
	Close() error
}

// NewTransformer builds the subtractor selected at job construction.
// Internal sensitivity and history parameters use OpenCV defaults.
func NewTransformer(kind config.Subtractor) (Transformer, error) {
	switch kind {
	case config.SubtractorMOG2:
		return &mog2Transformer{model: gocv.NewBackgroundSubtractorMOG2(), fgMask: gocv.NewMat()}, nil
	case config.SubtractorKNN:
		return &knnTransformer{model: gocv.NewBackgroundSubtractorKNN(), fgMask: gocv.NewMat()}, nil
	default:
		return nil, fmt.Errorf("unknown subtractor %q", kind)
	}
}

// checkFrame validates frame geometry before it reaches the model.
func checkFrame(src gocv.Mat) error {
	if src.Empty() || src.Cols() == 0 || src.Rows() == 0 {
		return fmt.Errorf("%w: empty frame", ErrFrameFormat)
	}
	if src.Channels() != 1 && src.Channels() != 3 {
		return fmt.Errorf("%w: unexpected channel count %d", ErrFrameFormat, src.Channels())
	}
	return nil
}

// mog2Transformer models each pixel as an adaptive mixture of Gaussians.
type mog2Transformer struct {
	model  gocv.BackgroundSubtractorMOG2
	fgMask gocv.Mat // reusable foreground-mask scratch buffer
}

func (t *mog2Transformer) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if err := checkFrame(src); err != nil {
		return err
	}
	t.model.Apply(src, &t.fgMask)
	gocv.BitwiseAndWithMask(src, src, dst, t.fgMask)
	return nil
}

func (t *mog2Transformer) Close() error {
	if err := t.fgMask.Close(); err != nil {
		return err
	}
	return t.model.Close()
}

// knnTransformer models each pixel with a k-nearest-neighbor sample history.
type knnTransformer struct {
	model  gocv.BackgroundSubtractorKNN
	fgMask gocv.Mat
}

func (t *knnTransformer) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if err := checkFrame(src); err != nil {
		return err
	}
	t.model.Apply(src, &t.fgMask)
	gocv.BitwiseAndWithMask(src, src, dst, t.fgMask)
	return nil
}

func (t *knnTransformer) Close() error {
	if err := t.fgMask.Close(); err != nil {
		return err
	}
	return t.model.Close()
}
