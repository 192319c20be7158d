package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"strconv"
)

// Poppler renders pages by shelling out to pdftoppm.
type Poppler struct {
	// Binary is the pdftoppm executable; looked up on PATH when not
	// absolute. Defaults to "pdftoppm".
	Binary string
	Logger *slog.Logger
}

// NewPoppler creates a renderer using the pdftoppm binary from PATH.
func NewPoppler(logger *slog.Logger) *Poppler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poppler{Binary: "pdftoppm", Logger: logger}
}

// PageCount reads the page count from the document structure.
func (p *Poppler) PageCount(ctx context.Context, path string) (int, error) {
	info, err := Inspect(path)
	if err != nil {
		return 0, err
	}
	return info.PageCount, nil
}

// Render rasterizes one page to PNG on pdftoppm's stdout and decodes it.
// Failures are page-scoped ErrPageRender errors.
func (p *Poppler) Render(ctx context.Context, path string, pageNumber, dpi int) (image.Image, error) {
	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm not found: %v", ErrPageRender, err)
	}

	page := strconv.Itoa(pageNumber)
	args := []string{"-png", "-r", strconv.Itoa(dpi), "-f", page, "-l", page, path}
	p.Logger.Debug("rendering page", "page", pageNumber, "dpi", dpi, "binary", bin)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: page %d: %v: %s", ErrPageRender, pageNumber, err, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: decode: %v", ErrPageRender, pageNumber, err)
	}
	return img, nil
}
