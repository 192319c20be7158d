// Package docai provides an OCR engine backed by Google Document AI.
//
// The engine sends each page raster as a raw PNG to a Document AI processor
// and maps the returned page tokens into detections. Authentication uses
// the GOOGLE_APPLICATION_CREDENTIALS environment variable; the processor is
// addressed by project, location and processor ID from a YAML config file:
//
//	project_id: "your-gcp-project-id"
//	location: "us"
//	processor_id: "your-processor-id"
package docai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/scanforge/scanforge/pkg/ocr"
)

// Config identifies the Document AI processor to use.
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// LoadConfig reads the processor configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docai: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("docai: parse config: %w", err)
	}
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("docai: config must set project_id, location and processor_id")
	}
	return &cfg, nil
}

// Engine implements ocr.Engine against a Document AI processor. The client
// connection is established once at construction and reused for every page.
type Engine struct {
	cfg       Config
	client    *documentai.DocumentProcessorClient
	processor string
}

// New creates a Document AI engine for the configured processor.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("docai: create client: %w", err)
	}
	return &Engine{
		cfg:    *cfg,
		client: client,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}, nil
}

// Name identifies the engine in logs.
func (e *Engine) Name() string { return "documentai" }

// Close releases the underlying client connection.
func (e *Engine) Close() error { return e.client.Close() }

// Recognize sends one page image to the processor and maps the tokens of
// the returned document into detections in API emission order.
func (e *Engine) Recognize(ctx context.Context, img *ocr.Image) ([]ocr.Detection, error) {
	data, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}

	req := &documentaipb.ProcessRequest{
		Name: e.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}
	resp, err := e.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("docai: process document: %w", err)
	}

	doc := resp.GetDocument()
	var detections []ocr.Detection
	for _, page := range doc.GetPages() {
		for _, token := range page.GetTokens() {
			layout := token.GetLayout()
			text := textFromLayout(layout, doc.GetText())
			box, ok := boxFromLayout(layout, float64(img.Width), float64(img.Height))
			if !ok {
				continue
			}
			detections = append(detections, ocr.Detection{
				Text:       trimTokenBreak(text, token),
				BBox:       box,
				Confidence: float64(layout.GetConfidence()),
				Direction:  directionFromLayout(layout),
			})
		}
	}
	return detections, nil
}

// textFromLayout resolves a layout's text anchor segments against the
// document's full text.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.GetTextAnchor() == nil {
		return ""
	}
	runes := []rune(fullText)
	total := len(runes)
	var out []rune
	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start := int(seg.GetStartIndex())
		end := int(seg.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		out = append(out, runes[start:end]...)
	}
	return string(out)
}

// trimTokenBreak strips the trailing break character Document AI includes
// in a token's anchored text.
func trimTokenBreak(text string, token *documentaipb.Document_Page_Token) string {
	br := token.GetDetectedBreak()
	if br == nil || br.GetType() == documentaipb.Document_Page_Token_DetectedBreak_TYPE_UNSPECIFIED {
		return text
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}
	switch runes[len(runes)-1] {
	case ' ', '\n', '\r', '\t':
		return string(runes[:len(runes)-1])
	}
	return text
}

// boxFromLayout converts a layout's bounding polygon into pixel-space
// [x0 y0 x1 y1]. Normalized vertices are scaled by the image dimensions the
// engine was given, which is exactly the raster the pipeline rendered.
func boxFromLayout(layout *documentaipb.Document_Page_Layout, width, height float64) ([4]float64, bool) {
	poly := layout.GetBoundingPoly()
	if poly == nil {
		return [4]float64{}, false
	}

	var xs, ys []float64
	if nv := poly.GetNormalizedVertices(); len(nv) > 0 {
		for _, v := range nv {
			xs = append(xs, float64(v.GetX())*width)
			ys = append(ys, float64(v.GetY())*height)
		}
	} else {
		for _, v := range poly.GetVertices() {
			xs = append(xs, float64(v.GetX()))
			ys = append(ys, float64(v.GetY()))
		}
	}
	if len(xs) == 0 {
		return [4]float64{}, false
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = min(minX, xs[i])
		maxX = max(maxX, xs[i])
		minY = min(minY, ys[i])
		maxY = max(maxY, ys[i])
	}
	// Clamp rounding jitter at the page edge rather than dropping the token.
	minX = max(minX, 0)
	minY = max(minY, 0)
	return [4]float64{minX, minY, maxX, maxY}, true
}

// directionFromLayout maps the detected orientation onto the two writing
// directions the data model distinguishes.
func directionFromLayout(layout *documentaipb.Document_Page_Layout) string {
	switch layout.GetOrientation() {
	case documentaipb.Document_Page_Layout_PAGE_LEFT, documentaipb.Document_Page_Layout_PAGE_RIGHT:
		return "vertical"
	default:
		return "horizontal"
	}
}
