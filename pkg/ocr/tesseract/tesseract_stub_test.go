//go:build !ocr

package tesseract

import (
	"errors"
	"testing"
)

func TestNewReturnsErrNotEnabled(t *testing.T) {
	engine, err := New(Options{})
	if !errors.Is(err, ErrNotEnabled) {
		t.Fatalf("expected ErrNotEnabled, got %v", err)
	}
	if engine != nil {
		t.Fatal("expected nil engine when OCR support is disabled")
	}
}

func TestCloseOnNilEngine(t *testing.T) {
	var engine *Engine
	if err := engine.Close(); err != nil {
		t.Fatalf("Close on nil engine should not error: %v", err)
	}
}
