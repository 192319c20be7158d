package overlay

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/scanforge/scanforge/pkg/ocrdata"
)

func pageRaster(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func fixedConfig() Config {
	cfg := DefaultConfig()
	cfg.CreationDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestMapRectScaleInvariance(t *testing.T) {
	// Doubling the OCR-reported page size while halving all coordinates
	// must map to the identical rectangle.
	box := ocrdata.BoundingBox{X0: 100, Y0: 100, X1: 300, Y1: 150}
	halved := ocrdata.BoundingBox{X0: 50, Y0: 50, X1: 150, Y1: 75}

	const pdfW, pdfH = 595.0, 842.0
	r1 := mapRect(box, pdfW/1000, pdfH/2000)
	r2 := mapRect(halved, pdfW/500, pdfH/1000)

	if r1 != r2 {
		t.Fatalf("mapping not invariant under re-normalization: %+v != %+v", r1, r2)
	}
}

func TestMapRectPerAxisScaling(t *testing.T) {
	box := ocrdata.BoundingBox{X0: 10, Y0: 20, X1: 30, Y1: 60}
	r := mapRect(box, 2, 0.5)
	want := rect{X: 20, Y: 10, W: 40, H: 20}
	if r != want {
		t.Fatalf("mapRect() = %+v, want %+v", r, want)
	}
}

func TestAddPageWithoutBlocks(t *testing.T) {
	a := New(fixedConfig(), nil)
	page := ocrdata.PageOCRResult{PageNumber: 1, PageWidth: 200, PageHeight: 100, Success: false}

	if err := a.AddPage(pageRaster(200, 100), page); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if a.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1", a.PageCount())
	}
	if a.TextRuns() != 0 {
		t.Fatalf("empty page should place no text runs, got %d", a.TextRuns())
	}
	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %.8s", data)
	}
}

func TestAddPageSkipsEmptyAndDegenerateBlocks(t *testing.T) {
	a := New(fixedConfig(), nil)
	page := ocrdata.PageOCRResult{
		PageNumber: 1,
		PageWidth:  200,
		PageHeight: 100,
		Success:    true,
		TextBlocks: []ocrdata.TextBlock{
			{Text: "", BBox: ocrdata.BoundingBox{X0: 10, Y0: 10, X1: 50, Y1: 20}, BlockID: 1},
			{Text: "degenerate", BBox: ocrdata.BoundingBox{X0: 60, Y0: 10, X1: 60, Y1: 20}, BlockID: 2},
			{Text: "kept", BBox: ocrdata.BoundingBox{X0: 10, Y0: 40, X1: 120, Y1: 60}, Confidence: 0.9, BlockID: 3},
		},
	}

	if err := a.AddPage(pageRaster(200, 100), page); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if a.TextRuns() != 1 {
		t.Fatalf("text runs = %d, want 1 (empty and degenerate blocks skipped)", a.TextRuns())
	}
}

func TestDeterministicOutputForFixedDate(t *testing.T) {
	build := func() []byte {
		a := New(fixedConfig(), nil)
		page := ocrdata.PageOCRResult{
			PageNumber: 1, PageWidth: 200, PageHeight: 100, Success: true,
			TextBlocks: []ocrdata.TextBlock{
				{Text: "Hello", BBox: ocrdata.BoundingBox{X0: 20, Y0: 20, X1: 120, Y1: 45}, Confidence: 0.95, BlockID: 1},
			},
		}
		if err := a.AddPage(pageRaster(200, 100), page); err != nil {
			t.Fatalf("AddPage() error = %v", err)
		}
		data, err := a.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error = %v", err)
		}
		return data
	}

	if !bytes.Equal(build(), build()) {
		t.Fatal("identical input should produce identical bytes")
	}
}

func TestSearchableTextPresent(t *testing.T) {
	a := New(fixedConfig(), nil)
	page := ocrdata.PageOCRResult{
		PageNumber: 1, PageWidth: 200, PageHeight: 100, Success: true,
		TextBlocks: []ocrdata.TextBlock{
			{Text: "Hello", BBox: ocrdata.BoundingBox{X0: 20, Y0: 20, X1: 120, Y1: 45}, Confidence: 0.95, BlockID: 1},
		},
	}
	if err := a.AddPage(pageRaster(200, 100), page); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if a.TextRuns() != 1 {
		t.Fatalf("text runs = %d, want 1", a.TextRuns())
	}
}
