// Package ocr defines the engine abstraction and the adapter that turns
// engine-native detections into the pipeline's result model.
//
// Engines are intentionally small: one normalized image in, a flat list of
// detections out. Implementations can be backed by native libraries
// (Tesseract via gosseract), remote APIs (Google Document AI), or test
// fakes, without leaking provider-specific concerns into the pipeline.
//
// The Adapter owns a lazily constructed engine instance. Model loading is
// the single most expensive step of a run, so the engine is built exactly
// once, on first use, and the same handle serves every page of the run. The
// adapter is not safe for concurrent page processing; the pipeline
// processes pages strictly sequentially.
package ocr

import (
	"context"
	"errors"
)

// ErrUnsupportedImage is returned when an image's channel layout cannot be
// normalized for recognition.
var ErrUnsupportedImage = errors.New("ocr: unsupported image format")

// Detection is the single well-defined schema every engine maps its native
// output into: one text fragment with a pixel-space bounding box given as
// [x0, y0, x1, y1] with the origin top-left.
type Detection struct {
	Text       string
	BBox       [4]float64
	Confidence float64
	Direction  string
}

// Engine is the OCR provider contract: one normalized image in, the
// detections found on it out, in the engine's emission order.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img *Image) ([]Detection, error)
}
