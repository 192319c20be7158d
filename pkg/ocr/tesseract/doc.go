// Package tesseract provides a Tesseract-backed OCR engine via gosseract.
//
// Tesseract is reached through cgo, so the real engine is only compiled in
// when the "ocr" build tag is set:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// Without the tag, New returns ErrNotEnabled and the rest of the module
// still builds, which keeps the pipeline usable with other engines.
package tesseract

import "errors"

// ErrNotEnabled is returned when Tesseract support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrNotEnabled = errors.New("tesseract: OCR support not enabled; rebuild with -tags ocr")

// Options configures the Tesseract engine.
type Options struct {
	// Languages are the trained-data languages to load, e.g. "eng", "jpn".
	// Empty means Tesseract's default.
	Languages []string
	// PageSegMode overrides Tesseract's page segmentation mode when > 0.
	PageSegMode int
	// DPI is passed to Tesseract as user_defined_dpi when > 0. Rendered
	// page rasters carry no density metadata, so without a hint Tesseract
	// guesses and its layout heuristics degrade.
	DPI int
}
