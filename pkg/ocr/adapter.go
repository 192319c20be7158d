package ocr

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/scanforge/scanforge/pkg/ocrdata"
)

// Adapter wraps an OCR engine for page-by-page use. The engine is built
// lazily by the factory on first call and the same instance is reused for
// every remaining page of the run.
type Adapter struct {
	factory func() (Engine, error)
	logger  *slog.Logger

	once    sync.Once
	engine  Engine
	initErr error
}

// NewAdapter creates an adapter around an engine factory. The factory is
// invoked at most once. A nil logger falls back to slog.Default.
func NewAdapter(factory func() (Engine, error), logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{factory: factory, logger: logger}
}

// Engine returns the lazily initialized engine handle.
func (a *Adapter) Engine() (Engine, error) {
	a.once.Do(func() {
		a.logger.Info("initializing OCR engine")
		a.engine, a.initErr = a.factory()
		if a.initErr == nil {
			a.logger.Info("OCR engine ready", "engine", a.engine.Name())
		}
	})
	return a.engine, a.initErr
}

// Close releases the engine if it was ever initialized and is closeable.
func (a *Adapter) Close() error {
	if a.engine == nil {
		return nil
	}
	if c, ok := a.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ProcessPage runs recognition for one page and maps the outcome into the
// result model. Engine construction or recognition failures never propagate:
// the page is reported as failed with an empty block list so the document
// keeps its slot for every page.
func (a *Adapter) ProcessPage(ctx context.Context, img *Image, pageNumber int) ocrdata.PageOCRResult {
	start := time.Now()
	w, h := float64(img.Width), float64(img.Height)

	engine, err := a.Engine()
	if err != nil {
		a.logger.Error("OCR engine unavailable", "page", pageNumber, "error", err)
		return ocrdata.FailedPage(pageNumber, w, h, err.Error(), time.Since(start).Seconds())
	}

	detections, err := engine.Recognize(ctx, img)
	if err != nil {
		a.logger.Warn("OCR failed for page", "page", pageNumber, "error", err)
		return ocrdata.FailedPage(pageNumber, w, h, err.Error(), time.Since(start).Seconds())
	}

	page := a.toPageResult(detections, pageNumber, w, h)
	page.ProcessingTime = time.Since(start).Seconds()
	a.logger.Info("page recognized",
		"page", pageNumber,
		"blocks", page.TextCount(),
		"avg_confidence", page.AverageConfidence())
	return page
}

// toPageResult maps engine detections into text blocks, assigning block IDs
// in emission order. Detections with malformed geometry are dropped here,
// at the data boundary, rather than propagated downstream.
func (a *Adapter) toPageResult(detections []Detection, pageNumber int, w, h float64) ocrdata.PageOCRResult {
	blocks := make([]ocrdata.TextBlock, 0, len(detections))
	for _, det := range detections {
		box, err := ocrdata.NewBoundingBox(det.BBox[0], det.BBox[1], det.BBox[2], det.BBox[3])
		if err != nil {
			a.logger.Warn("dropping detection with malformed geometry",
				"page", pageNumber, "bbox", det.BBox, "error", err)
			continue
		}
		blocks = append(blocks, ocrdata.TextBlock{
			Text:       det.Text,
			BBox:       box,
			Confidence: clamp01(det.Confidence),
			Direction:  ocrdata.NormalizeDirection(det.Direction),
			BlockID:    len(blocks) + 1,
		})
	}
	return ocrdata.PageOCRResult{
		PageNumber: pageNumber,
		TextBlocks: blocks,
		PageWidth:  w,
		PageHeight: h,
		Success:    true,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
