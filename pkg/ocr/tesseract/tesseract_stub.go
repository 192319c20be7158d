//go:build !ocr

package tesseract

import (
	"context"

	"github.com/scanforge/scanforge/pkg/ocr"
)

// Engine is the stub used when Tesseract support is not compiled in.
type Engine struct{}

// New returns ErrNotEnabled. Rebuild with -tags ocr to enable Tesseract.
func New(opts Options) (*Engine, error) {
	return nil, ErrNotEnabled
}

// Name identifies the engine in logs.
func (e *Engine) Name() string { return "tesseract" }

// Close is a no-op for the stub engine. It is safe to call on nil.
func (e *Engine) Close() error { return nil }

// Recognize returns ErrNotEnabled.
func (e *Engine) Recognize(ctx context.Context, img *ocr.Image) ([]ocr.Detection, error) {
	return nil, ErrNotEnabled
}
