//go:build ocr

package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/scanforge/scanforge/pkg/ocr"
)

// Engine implements ocr.Engine on a single long-lived gosseract client, so
// the trained data loads once per run.
type Engine struct {
	client *gosseract.Client
	dpi    int
}

// New constructs a Tesseract engine. The caller owns the engine and should
// Close it when the run ends.
func New(opts Options) (*Engine, error) {
	client := gosseract.NewClient()
	if len(opts.Languages) > 0 {
		if err := client.SetLanguage(opts.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("tesseract: set languages: %w", err)
		}
	}
	if opts.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("tesseract: set page segmentation mode: %w", err)
		}
	}
	return &Engine{client: client, dpi: opts.DPI}, nil
}

// Name identifies the engine in logs.
func (e *Engine) Name() string { return "tesseract" }

// Close releases the underlying Tesseract client.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize runs word-level recognition on one page image. Word boxes come
// from Tesseract's RIL_WORD iterator; confidence is rescaled from the
// percentage Tesseract reports. Tesseract word boxes carry no orientation,
// so every detection is horizontal.
func (e *Engine) Recognize(ctx context.Context, img *ocr.Image) ([]ocr.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}
	if e.dpi > 0 {
		if err := e.client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(e.dpi)); err != nil {
			return nil, fmt.Errorf("tesseract: set dpi: %w", err)
		}
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract: bounding boxes: %w", err)
	}

	detections := make([]ocr.Detection, 0, len(boxes))
	for _, b := range boxes {
		detections = append(detections, ocr.Detection{
			Text: b.Word,
			BBox: [4]float64{
				float64(b.Box.Min.X),
				float64(b.Box.Min.Y),
				float64(b.Box.Max.X),
				float64(b.Box.Max.Y),
			},
			Confidence: b.Confidence / 100.0,
			Direction:  "horizontal",
		})
	}
	return detections, nil
}
