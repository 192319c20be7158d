package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scanforge/scanforge/pkg/ocr"
	"github.com/scanforge/scanforge/pkg/ocrdata"
	"github.com/scanforge/scanforge/pkg/overlay"
	"github.com/scanforge/scanforge/pkg/raster"
)

// fakeRenderer serves in-memory rasters instead of shelling out.
type fakeRenderer struct {
	pages      int
	failRender map[int]bool
}

func (f *fakeRenderer) PageCount(ctx context.Context, path string) (int, error) {
	return f.pages, nil
}

func (f *fakeRenderer) Render(ctx context.Context, path string, pageNumber, dpi int) (image.Image, error) {
	if f.failRender[pageNumber] {
		return nil, fmt.Errorf("%w: page %d", raster.ErrPageRender, pageNumber)
	}
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img, nil
}

// fakeEngine emits one block per page and can fail selected pages.
// Recognition visits pages in order, so the call count identifies the page.
type fakeEngine struct {
	calls    int
	failPage map[int]bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, img *ocr.Image) ([]ocr.Detection, error) {
	f.calls++
	if f.failPage[f.calls] {
		return nil, errors.New("recognition exploded")
	}
	return []ocr.Detection{
		{Text: fmt.Sprintf("page %d text", f.calls), BBox: [4]float64{20, 20, 120, 45}, Confidence: 0.9},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeInputPDF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(input, outputDir string) Config {
	cfg := Config{
		Input:     input,
		OutputDir: outputDir,
		DPI:       72,
		Logger:    testLogger(),
		Overlay:   overlay.DefaultConfig(),
	}
	cfg.Overlay.CreationDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestRunWithOneFailedPage(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)

	renderer := &fakeRenderer{pages: 2}
	engine := &fakeEngine{failPage: map[int]bool{2: true}}
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return engine, nil }, testLogger())

	p := New(renderer, adapter, testConfig(input, dir))
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.TotalPages != 2 || stats.SuccessfulPages != 1 || stats.FailedPages != 1 {
		t.Fatalf("stats = %+v, want 2 total / 1 successful / 1 failed", stats)
	}
	if stats.TextBlocks != 1 {
		t.Fatalf("text blocks = %d, want 1", stats.TextBlocks)
	}

	doc, err := ocrdata.Load(stats.CheckpointPath)
	if err != nil {
		t.Fatalf("checkpoint unreadable: %v", err)
	}
	if doc.TotalPages() != 2 {
		t.Fatalf("checkpoint pages = %d, want 2", doc.TotalPages())
	}
	if doc.Pages[1].Success || doc.Pages[1].Error == "" {
		t.Fatalf("page 2 should be recorded as failed: %+v", doc.Pages[1])
	}

	// The failed page still appears in the output with its image only.
	info, err := raster.Inspect(stats.OutputPath)
	if err != nil {
		t.Fatalf("output unreadable: %v", err)
	}
	if info.PageCount != 2 {
		t.Fatalf("output pages = %d, want 2", info.PageCount)
	}
}

func TestOCROnlyThenResumeMatchesStraightRun(t *testing.T) {
	run := func(dir string, ocrOnly bool, engine *fakeEngine) *Stats {
		input := writeInputPDF(t, dir)
		renderer := &fakeRenderer{pages: 2}
		adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return engine, nil }, testLogger())
		cfg := testConfig(input, dir)
		cfg.OCROnly = ocrOnly
		stats, err := New(renderer, adapter, cfg).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return stats
	}

	straightDir := t.TempDir()
	straight := run(straightDir, false, &fakeEngine{})

	resumedDir := t.TempDir()
	engine := &fakeEngine{}
	first := run(resumedDir, true, engine)
	if first.OutputPath != "" {
		t.Fatalf("OCR-only run should not write a PDF, got %s", first.OutputPath)
	}
	second := run(resumedDir, false, engine)
	if !second.Resumed {
		t.Fatal("second run should resume from the checkpoint")
	}
	if engine.calls != 2 {
		t.Fatalf("engine ran %d times, want 2 (no re-recognition on resume)", engine.calls)
	}

	a, err := os.ReadFile(straight.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("resumed run must produce the same bytes as a straight-through run")
	}
}

func TestResumeRewritesCheckpoint(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)
	engine := &fakeEngine{}
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return engine, nil }, testLogger())

	cfg := testConfig(input, dir)
	cfg.OCROnly = true
	first, err := New(&fakeRenderer{pages: 1}, adapter, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Hand-edit the artifact's stored summary; it stays loadable.
	data, err := os.ReadFile(first.CheckpointPath)
	if err != nil {
		t.Fatal(err)
	}
	edited := bytes.Replace(data, []byte(`"total_text_blocks": 1`), []byte(`"total_text_blocks": 999`), 1)
	if bytes.Equal(edited, data) {
		t.Fatalf("summary field not found in artifact: %s", data)
	}
	if err := os.WriteFile(first.CheckpointPath, edited, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg.OCROnly = false
	stats, err := New(&fakeRenderer{pages: 1}, adapter, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run() error = %v", err)
	}
	if !stats.Resumed {
		t.Fatal("second run should resume from the checkpoint")
	}

	// The resumed run persists too, recomputing the summary.
	data, err = os.ReadFile(stats.CheckpointPath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte(`"total_text_blocks": 999`)) {
		t.Fatal("resumed run did not rewrite the checkpoint: hand-edited summary survived")
	}
	if !bytes.Contains(data, []byte(`"total_text_blocks": 1`)) {
		t.Fatalf("rewritten artifact missing recomputed summary: %s", data)
	}
}

func TestCheckpointWriteFailureIsAbsorbed(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return &fakeEngine{}, nil }, testLogger())

	// A directory squatting on the checkpoint path makes the write fail.
	if err := os.MkdirAll(ocrdata.CheckpointPath(input, dir), 0o755); err != nil {
		t.Fatal(err)
	}

	stats, err := New(&fakeRenderer{pages: 1}, adapter, testConfig(input, dir)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, checkpoint failures must be absorbed", err)
	}
	if _, err := os.Stat(stats.OutputPath); err != nil {
		t.Fatalf("output PDF not written: %v", err)
	}
	if stats.TotalPages != 1 || stats.SuccessfulPages != 1 {
		t.Fatalf("stats = %+v, want 1 total / 1 successful", stats)
	}
}

func TestForceRerunsRecognition(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)
	engine := &fakeEngine{}
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return engine, nil }, testLogger())

	cfg := testConfig(input, dir)
	if _, err := New(&fakeRenderer{pages: 1}, adapter, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cfg.Force = true
	if _, err := New(&fakeRenderer{pages: 1}, adapter, cfg).Run(context.Background()); err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if engine.calls != 2 {
		t.Fatalf("engine ran %d times, want 2 (force re-runs recognition)", engine.calls)
	}
}

func TestRenderFailedPageDroppedFromOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)

	renderer := &fakeRenderer{pages: 2, failRender: map[int]bool{2: true}}
	engine := &fakeEngine{}
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return engine, nil }, testLogger())

	stats, err := New(renderer, adapter, testConfig(input, dir)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	doc, err := ocrdata.Load(stats.CheckpointPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.TotalPages() != 2 || doc.Pages[1].Success {
		t.Fatalf("checkpoint must keep the failed page's slot: %+v", doc.Summarize())
	}

	info, err := raster.Inspect(stats.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.PageCount != 1 {
		t.Fatalf("output pages = %d, want 1 (unrenderable page dropped)", info.PageCount)
	}
}

func TestInvalidInput(t *testing.T) {
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notPDF, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, input := range []string{
		filepath.Join(dir, "missing.pdf"),
		notPDF,
		dir,
	} {
		p := New(&fakeRenderer{pages: 1}, nil, testConfig(input, dir))
		if _, err := p.Run(context.Background()); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("input %q: error = %v, want ErrInvalidInput", input, err)
		}
	}
}

func TestHOCRExport(t *testing.T) {
	dir := t.TempDir()
	input := writeInputPDF(t, dir)
	adapter := ocr.NewAdapter(func() (ocr.Engine, error) { return &fakeEngine{}, nil }, testLogger())

	cfg := testConfig(input, dir)
	cfg.OCROnly = true
	cfg.HOCRPath = filepath.Join(dir, "scan.hocr")
	if _, err := New(&fakeRenderer{pages: 1}, adapter, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.HOCRPath)
	if err != nil {
		t.Fatalf("hOCR not written: %v", err)
	}
	if !bytes.Contains(data, []byte("ocrx_word")) {
		t.Fatal("hOCR export missing word elements")
	}
}
