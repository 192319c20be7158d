// Package raster turns PDF pages into pixel images for OCR and overlay.
//
// Rendering vector PDF content is delegated to Poppler's pdftoppm binary;
// no pure-Go rasterizer exists that handles real-world scanned PDFs. The
// Renderer interface keeps the pipeline testable without the binary, and
// Inspect reads document structure (page count, page sizes) natively.
package raster

import (
	"context"
	"errors"
	"image"
)

// ErrPageRender is returned when a single page cannot be rasterized. It is
// page-scoped: the pipeline marks the page failed and continues.
var ErrPageRender = errors.New("raster: page render failed")

// Renderer converts one PDF page at a time into a raster image.
type Renderer interface {
	// PageCount reports the number of pages in the document.
	PageCount(ctx context.Context, path string) (int, error)
	// Render rasterizes the given 1-based page at the given DPI. The pixel
	// dimensions of the returned image are the document's point dimensions
	// scaled by dpi/72, rounded by the renderer; downstream point math must
	// derive from these pixel dimensions, never re-round from the source.
	Render(ctx context.Context, path string, pageNumber, dpi int) (image.Image, error)
}
