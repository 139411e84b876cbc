package subtract

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/backmassage/bgsub/internal/config"
)

func TestNewTransformer(t *testing.T) {
	for _, kind := range []config.Subtractor{config.SubtractorMOG2, config.SubtractorKNN} {
		t.Run(string(kind), func(t *testing.T) {
			tr, err := NewTransformer(kind)
			if err != nil {
				t.Fatalf("NewTransformer(%s): %v", kind, err)
			}
			if err := tr.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
}

func TestNewTransformer_Unknown(t *testing.T) {
	if _, err := NewTransformer("GMG"); err == nil {
		t.Error("unknown subtractor must be rejected")
	}
}

func TestTransformer_ApplyProducesSameGeometry(t *testing.T) {
	for _, kind := range []config.Subtractor{config.SubtractorMOG2, config.SubtractorKNN} {
		t.Run(string(kind), func(t *testing.T) {
			tr, err := NewTransformer(kind)
			if err != nil {
				t.Fatal(err)
			}
			defer tr.Close()

			frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
			defer frame.Close()
			masked := gocv.NewMat()
			defer masked.Close()

			// Feed several frames; the model is stateful and must accept a
			// sequence, not just a single observation.
			for i := 0; i < 5; i++ {
				if err := tr.Apply(frame, &masked); err != nil {
					t.Fatalf("Apply #%d: %v", i, err)
				}
			}

			if masked.Rows() != frame.Rows() || masked.Cols() != frame.Cols() {
				t.Errorf("masked %dx%d, want %dx%d",
					masked.Cols(), masked.Rows(), frame.Cols(), frame.Rows())
			}
			if masked.Channels() != frame.Channels() {
				t.Errorf("masked channels = %d, want %d", masked.Channels(), frame.Channels())
			}
		})
	}
}

func TestTransformer_StaticSceneGoesDark(t *testing.T) {
	tr, err := NewTransformer(config.SubtractorMOG2)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	// A constant scene is all background; after enough observations the
	// masked output should be (near) black.
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(120, 120, 120, 0), 32, 32, gocv.MatTypeCV8UC3)
	defer frame.Close()
	masked := gocv.NewMat()
	defer masked.Close()

	for i := 0; i < 50; i++ {
		if err := tr.Apply(frame, &masked); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}

	mean := masked.Mean()
	if mean.Val1 > 20 || mean.Val2 > 20 || mean.Val3 > 20 {
		t.Errorf("static scene not suppressed, mean = %+v", mean)
	}
}

func TestTransformer_MalformedFrames(t *testing.T) {
	tr, err := NewTransformer(config.SubtractorKNN)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	masked := gocv.NewMat()
	defer masked.Close()

	t.Run("empty frame", func(t *testing.T) {
		empty := gocv.NewMat()
		defer empty.Close()
		if err := tr.Apply(empty, &masked); !errors.Is(err, ErrFrameFormat) {
			t.Errorf("err = %v, want ErrFrameFormat", err)
		}
	})

	t.Run("unexpected channel count", func(t *testing.T) {
		twoChan := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC2)
		defer twoChan.Close()
		if err := tr.Apply(twoChan, &masked); !errors.Is(err, ErrFrameFormat) {
			t.Errorf("err = %v, want ErrFrameFormat", err)
		}
	})
}
