// scanforge converts scanned PDFs into searchable PDFs.
//
// Each page is rendered to an image, run through an OCR engine, and
// reassembled into a PDF that shows the original scan with an invisible,
// selectable text layer on top. OCR results are persisted as a JSON
// checkpoint next to the output, so an interrupted or OCR-only run can be
// resumed without re-running recognition.
//
// Usage:
//
//	scanforge -pdf scan.pdf [options]
//
// Required flags:
//
//	-pdf string          Path to the input PDF
//
// Output options:
//
//	-output-dir string   Directory for output PDF and OCR results (default "output_pdfs")
//	-hocr string         Also export the OCR results as an hOCR file
//	-overwrite           Overwrite the output PDF if it already exists
//
// Processing options:
//
//	-dpi int             Render resolution in dots per inch (default 300)
//	-engine string       OCR engine: "tesseract" or "docai" (default "tesseract")
//	-docai-config string YAML config for the Document AI engine
//	-lang string         Comma-separated Tesseract languages (default "eng")
//	-ocr-only            Run OCR and write the checkpoint, skip PDF assembly
//	-force               Re-run OCR even if a usable checkpoint exists
//	-sort                Sort blocks into reading order before assembly
//	-dedupe              Remove overlapping duplicate blocks
//	-debug               Render the text layer visibly with block outlines
//	-v                   Verbose logging
//
// Examples:
//
// Create a searchable PDF with Tesseract:
//
//	scanforge -pdf scan.pdf
//
// OCR once, assemble later from the checkpoint:
//
//	scanforge -pdf scan.pdf -ocr-only
//	scanforge -pdf scan.pdf
//
// Use Google Document AI:
//
//	scanforge -pdf scan.pdf -engine docai -docai-config docai.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/scanforge/scanforge/pkg/ocr"
	"github.com/scanforge/scanforge/pkg/ocr/docai"
	"github.com/scanforge/scanforge/pkg/ocr/tesseract"
	"github.com/scanforge/scanforge/pkg/overlay"
	"github.com/scanforge/scanforge/pkg/pipeline"
	"github.com/scanforge/scanforge/pkg/raster"
)

func main() {
	pdfPath := flag.String("pdf", "", "Path to the input PDF")
	outputDir := flag.String("output-dir", "output_pdfs", "Directory for output PDF and OCR results")
	dpi := flag.Int("dpi", 300, "Render resolution in dots per inch")
	engineName := flag.String("engine", "tesseract", "OCR engine: tesseract or docai")
	docaiConfig := flag.String("docai-config", "", "YAML config for the Document AI engine")
	lang := flag.String("lang", "eng", "Comma-separated Tesseract languages")
	ocrOnly := flag.Bool("ocr-only", false, "Run OCR and write the checkpoint, skip PDF assembly")
	force := flag.Bool("force", false, "Re-run OCR even if a usable checkpoint exists")
	sortBlocks := flag.Bool("sort", false, "Sort blocks into reading order before assembly")
	dedupe := flag.Bool("dedupe", false, "Remove overlapping duplicate blocks")
	hocrPath := flag.String("hocr", "", "Also export the OCR results as an hOCR file")
	debug := flag.Bool("debug", false, "Render the text layer visibly with block outlines")
	overwrite := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: Must provide -pdf path")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory, err := engineFactory(ctx, *engineName, *docaiConfig, *lang, *dpi)
	if err != nil {
		logger.Error("engine setup failed", "error", err)
		os.Exit(1)
	}
	adapter := ocr.NewAdapter(factory, logger)
	defer adapter.Close()

	cfg := pipeline.Config{
		Input:      *pdfPath,
		OutputDir:  *outputDir,
		DPI:        *dpi,
		OCROnly:    *ocrOnly,
		Force:      *force,
		SortBlocks: *sortBlocks,
		Dedupe:     *dedupe,
		HOCRPath:   *hocrPath,
		Logger:     logger,
		Overlay:    overlay.DefaultConfig(),
	}
	cfg.Overlay.Debug = *debug

	if !*ocrOnly && !*overwrite {
		outPath := outputPath(*pdfPath, *outputDir)
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(os.Stderr, "Output file %s already exists. Use -overwrite to overwrite.\n", outPath)
			os.Exit(1)
		}
	}

	p := pipeline.New(raster.NewPoppler(logger), adapter, cfg)
	stats, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if stats.OutputPath != "" {
		fmt.Printf("Searchable PDF: %s\n", stats.OutputPath)
	}
	fmt.Printf("OCR results: %s\n", stats.CheckpointPath)
	fmt.Printf("Pages: %d total, %d successful, %d failed. Text blocks: %d. Took %s.\n",
		stats.TotalPages, stats.SuccessfulPages, stats.FailedPages, stats.TextBlocks,
		stats.Duration.Round(time.Millisecond))
}

// engineFactory builds the lazy engine constructor for the selected backend.
// Construction itself runs on first page, inside the pipeline.
func engineFactory(ctx context.Context, name, configPath, lang string, dpi int) (func() (ocr.Engine, error), error) {
	switch name {
	case "tesseract":
		opts := tesseract.Options{Languages: strings.Split(lang, ","), DPI: dpi}
		return func() (ocr.Engine, error) { return tesseract.New(opts) }, nil
	case "docai":
		if configPath == "" {
			return nil, fmt.Errorf("-engine docai requires -docai-config")
		}
		cfg, err := docai.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return func() (ocr.Engine, error) { return docai.New(ctx, cfg) }, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want tesseract or docai)", name)
	}
}

// outputPath mirrors the pipeline's output naming for the overwrite check.
func outputPath(input, dir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_ocr.pdf")
}
