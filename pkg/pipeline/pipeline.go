// Package pipeline orchestrates the conversion of a scanned PDF into a
// searchable one: render each page, recognize it, persist the results as
// a JSON checkpoint, then assemble the output PDF with an invisible text
// layer.
//
// Recognition and assembly are separate passes over the document. The
// recognition pass renders one page at a time, discards the raster once
// the page is recognized, and writes the checkpoint when the document is
// done. The assembly pass re-renders each page and always reads its text
// from the checkpoint data, so a resumed run and a straight-through run
// assemble from identical inputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scanforge/scanforge/pkg/hocr"
	"github.com/scanforge/scanforge/pkg/ocr"
	"github.com/scanforge/scanforge/pkg/ocrdata"
	"github.com/scanforge/scanforge/pkg/overlay"
	"github.com/scanforge/scanforge/pkg/raster"
)

var (
	// ErrInvalidInput marks rejection of the input document before any
	// stage runs.
	ErrInvalidInput = errors.New("pipeline: invalid input")
	// ErrSave marks a failure writing the final PDF.
	ErrSave = errors.New("pipeline: save failed")
)

// Config holds the per-run options.
type Config struct {
	// Input is the path of the PDF to process.
	Input string
	// OutputDir receives the output PDF and the checkpoint artifact.
	OutputDir string
	// DPI is the render resolution for both passes.
	DPI int
	// OCROnly stops after the checkpoint is written.
	OCROnly bool
	// Force ignores an existing checkpoint and re-runs recognition.
	Force bool
	// SortBlocks reorders each page's blocks into reading order.
	SortBlocks bool
	// Dedupe removes blocks swallowed by larger overlapping ones.
	Dedupe bool
	// HOCRPath, when set, additionally exports the results as hOCR.
	HOCRPath string
	// Logger receives progress; nil falls back to slog.Default.
	Logger *slog.Logger
	// Overlay configures the PDF assembly stage.
	Overlay overlay.Config
}

// Stats summarizes a finished run.
type Stats struct {
	TotalPages      int
	SuccessfulPages int
	FailedPages     int
	TextBlocks      int
	Duration        time.Duration
	// OutputPath is empty for OCR-only runs.
	OutputPath     string
	CheckpointPath string
	// Resumed is true when recognition was skipped in favor of an
	// existing checkpoint.
	Resumed bool
}

// Pipeline runs the render, recognize, persist and assemble stages.
type Pipeline struct {
	renderer raster.Renderer
	adapter  *ocr.Adapter
	cfg      Config
	logger   *slog.Logger
}

// New creates a pipeline. The adapter may be nil only for runs expected to
// resume from a complete checkpoint.
func New(renderer raster.Renderer, adapter *ocr.Adapter, cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output_pdfs"
	}
	cfg.Overlay.DPI = cfg.DPI
	return &Pipeline{renderer: renderer, adapter: adapter, cfg: cfg, logger: cfg.Logger}
}

// Run executes the pipeline and returns run statistics. Page-scoped
// failures are absorbed into the result: a page that cannot be rendered or
// recognized is recorded as failed and the run continues. Only input
// validation and writing the output PDF are fatal.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	if err := p.validateInput(); err != nil {
		return nil, err
	}

	pageCount, err := p.renderer.PageCount(ctx, p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, p.cfg.Input, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: %s: document has no pages", ErrInvalidInput, p.cfg.Input)
	}

	checkpointPath := ocrdata.CheckpointPath(p.cfg.Input, p.cfg.OutputDir)
	doc, resumed := p.loadCheckpoint(checkpointPath, pageCount)
	if doc == nil {
		doc, err = p.recognize(ctx, pageCount)
		if err != nil {
			return nil, err
		}
	}
	// Persist unconditionally: a resumed run rewrites the artifact too, so
	// hand-edited summaries and direction labels are normalized back through
	// the recomputing marshaller.
	if err := ocrdata.Save(doc, checkpointPath); err != nil {
		// Recognition results live on in memory; a failed checkpoint write
		// only costs resumability.
		p.logger.Error("checkpoint not written", "path", checkpointPath, "error", err)
	} else {
		p.logger.Info("checkpoint written", "path", checkpointPath)
	}

	if p.cfg.HOCRPath != "" {
		p.exportHOCR(doc)
	}

	summary := doc.Summarize()
	stats := &Stats{
		TotalPages:      summary.TotalPages,
		SuccessfulPages: summary.SuccessfulPages,
		FailedPages:     summary.TotalPages - summary.SuccessfulPages,
		TextBlocks:      summary.TotalTextBlocks,
		CheckpointPath:  checkpointPath,
		Resumed:         resumed,
	}
	if p.cfg.OCROnly {
		stats.Duration = time.Since(start)
		p.logger.Info("OCR-only run complete",
			"pages", stats.TotalPages, "blocks", stats.TextBlocks)
		return stats, nil
	}

	outputPath, err := p.assemble(ctx, doc)
	if err != nil {
		return nil, err
	}
	stats.OutputPath = outputPath
	stats.Duration = time.Since(start)
	p.logger.Info("searchable PDF written",
		"path", outputPath,
		"pages", stats.SuccessfulPages+stats.FailedPages,
		"blocks", stats.TextBlocks,
		"duration", stats.Duration)
	return stats, nil
}

func (p *Pipeline) validateInput() error {
	info, err := os.Stat(p.cfg.Input)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, p.cfg.Input, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidInput, p.cfg.Input)
	}
	if !strings.EqualFold(filepath.Ext(p.cfg.Input), ".pdf") {
		return fmt.Errorf("%w: %s is not a PDF", ErrInvalidInput, p.cfg.Input)
	}
	return nil
}

// loadCheckpoint returns a usable prior result, or nil when recognition
// must run. A checkpoint is usable when it parses, names the same input
// file and covers the same page count.
func (p *Pipeline) loadCheckpoint(path string, pageCount int) (*ocrdata.DocumentOCRResult, bool) {
	if p.cfg.Force {
		return nil, false
	}
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	doc, err := ocrdata.Load(path)
	if err != nil {
		p.logger.Warn("ignoring unreadable checkpoint", "path", path, "error", err)
		return nil, false
	}
	if filepath.Base(doc.InputFile) != filepath.Base(p.cfg.Input) {
		p.logger.Warn("ignoring checkpoint for a different input",
			"path", path, "checkpoint_input", doc.InputFile)
		return nil, false
	}
	if doc.TotalPages() != pageCount {
		p.logger.Warn("ignoring checkpoint with mismatched page count",
			"path", path, "checkpoint_pages", doc.TotalPages(), "document_pages", pageCount)
		return nil, false
	}
	p.logger.Info("resuming from checkpoint", "path", path, "pages", doc.TotalPages())
	return doc, true
}

// recognize runs the render and OCR stages page by page. The raster for a
// page is released as soon as the page is recognized.
func (p *Pipeline) recognize(ctx context.Context, pageCount int) (*ocrdata.DocumentOCRResult, error) {
	doc := &ocrdata.DocumentOCRResult{
		InputFile: p.cfg.Input,
		Pages:     make([]ocrdata.PageOCRResult, 0, pageCount),
		DPI:       p.cfg.DPI,
	}
	start := time.Now()

	for pageNumber := 1; pageNumber <= pageCount; pageNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, p.recognizePage(ctx, pageNumber))
	}

	doc.TotalProcessingTime = time.Since(start).Seconds()
	return doc, nil
}

func (p *Pipeline) recognizePage(ctx context.Context, pageNumber int) ocrdata.PageOCRResult {
	pageStart := time.Now()

	img, err := p.renderer.Render(ctx, p.cfg.Input, pageNumber, p.cfg.DPI)
	if err != nil {
		p.logger.Warn("page render failed", "page", pageNumber, "error", err)
		return ocrdata.FailedPage(pageNumber, 0, 0, err.Error(), time.Since(pageStart).Seconds())
	}
	norm, err := ocr.Normalize(img)
	if err != nil {
		p.logger.Warn("page image unsupported", "page", pageNumber, "error", err)
		return ocrdata.FailedPage(pageNumber, 0, 0, err.Error(), time.Since(pageStart).Seconds())
	}

	page := p.adapter.ProcessPage(ctx, norm, pageNumber)
	if p.cfg.Dedupe {
		ocrdata.RemoveDuplicateBlocks(&page, ocrdata.DefaultOverlapThreshold)
	}
	if p.cfg.SortBlocks {
		ocrdata.SortByReadingOrder(&page)
	}
	return page
}

// assemble re-renders each page and builds the output PDF from the
// checkpoint data. Pages whose re-render fails are dropped from the
// output; their checkpoint slot is untouched.
func (p *Pipeline) assemble(ctx context.Context, doc *ocrdata.DocumentOCRResult) (string, error) {
	asm := overlay.New(p.cfg.Overlay, p.logger)

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := p.renderer.Render(ctx, p.cfg.Input, page.PageNumber, p.cfg.DPI)
		if err != nil {
			p.logger.Warn("page dropped from output: render failed",
				"page", page.PageNumber, "error", err)
			continue
		}
		if err := asm.AddPage(img, page); err != nil {
			p.logger.Warn("page dropped from output", "page", page.PageNumber, "error", err)
		}
	}
	if asm.PageCount() == 0 {
		return "", fmt.Errorf("%w: no pages could be assembled", ErrSave)
	}

	outputPath := p.outputPath()
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := asm.WriteFile(outputPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSave, err)
	}
	return outputPath, nil
}

// outputPath derives the output PDF path: <dir>/<stem>_ocr.pdf.
func (p *Pipeline) outputPath() string {
	base := filepath.Base(p.cfg.Input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.cfg.OutputDir, stem+"_ocr.pdf")
}

// exportHOCR writes the hOCR rendition next to the other artifacts. An
// export failure never fails the run.
func (p *Pipeline) exportHOCR(doc *ocrdata.DocumentOCRResult) {
	out, err := hocr.Generate(doc)
	if err != nil {
		p.logger.Error("hOCR export failed", "error", err)
		return
	}
	if err := os.WriteFile(p.cfg.HOCRPath, []byte(out), 0o644); err != nil {
		p.logger.Error("hOCR export failed", "path", p.cfg.HOCRPath, "error", err)
		return
	}
	p.logger.Info("hOCR written", "path", p.cfg.HOCRPath)
}
