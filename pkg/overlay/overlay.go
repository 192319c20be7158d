// Package overlay assembles the output PDF: each page carries its raster
// image as the sole visible content, plus one invisible text run per
// recognized block, positioned so text selection and search line up with
// the scanned glyphs.
//
// Coordinate mapping is double-normalized: the page's point size derives
// from the raster's pixel size and the render DPI, while the per-axis text
// scale derives from the pixel size the OCR engine reported analyzing.
// Coupling the text scale to the DPI alone breaks alignment whenever an
// engine resizes its input internally.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/scanforge/scanforge/pkg/ocrdata"
)

// minRectArea is the mapped-rectangle area in square points below which a
// block is skipped; zero-size text runs are undefined in some renderers.
const minRectArea = 0.01

// rect is a mapped block rectangle in PDF points, top-left origin.
type rect struct {
	X, Y, W, H float64
}

// mapRect scales a pixel-space bounding box into PDF points, each axis
// independently.
func mapRect(box ocrdata.BoundingBox, xScale, yScale float64) rect {
	return rect{
		X: box.X0 * xScale,
		Y: box.Y0 * yScale,
		W: box.Width() * xScale,
		H: box.Height() * yScale,
	}
}

// Assembler builds the output document one page at a time.
type Assembler struct {
	pdf    *fpdf.Fpdf
	cfg    Config
	logger *slog.Logger

	pages    int
	textRuns int
	dropped  int
}

// New creates an assembler. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.LayerName == "" {
		cfg.LayerName = "OCR Text"
	}
	if cfg.Font.Name == "" {
		cfg.Font = DefaultFont
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	created := cfg.CreationDate
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)

	return &Assembler{pdf: pdf, cfg: cfg, logger: logger}
}

// AddPage appends one finished page: a page sized from the raster's pixel
// dimensions, the raster as full-page background, and one invisible text
// run per block. A page with no blocks still gets its background image.
func (a *Assembler) AddPage(img image.Image, page ocrdata.PageOCRResult) error {
	bounds := img.Bounds()
	pixW, pixH := bounds.Dx(), bounds.Dy()
	if pixW <= 0 || pixH <= 0 {
		return fmt.Errorf("overlay: page %d: empty raster", page.PageNumber)
	}

	// Point size derives from the raster's pixel size; the renderer's
	// rounding is the only rounding that ever happens.
	pdfW := float64(pixW) * 72 / float64(a.cfg.DPI)
	pdfH := float64(pixH) * 72 / float64(a.cfg.DPI)
	a.pdf.AddPageFormat("P", fpdf.SizeType{Wd: pdfW, Ht: pdfH})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("overlay: page %d: encode background: %w", page.PageNumber, err)
	}
	imageName := fmt.Sprintf("page-%d", page.PageNumber)
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	a.pdf.RegisterImageOptionsReader(imageName, opts, &buf)
	a.pdf.ImageOptions(imageName, 0, 0, pdfW, pdfH, false, opts, 0, "")

	a.drawTextLayer(page, pdfW, pdfH)

	if a.pdf.Err() {
		return fmt.Errorf("overlay: page %d: %w", page.PageNumber, a.pdf.Error())
	}
	a.pages++
	return nil
}

// drawTextLayer places the page's blocks on a named, invisible layer.
func (a *Assembler) drawTextLayer(page ocrdata.PageOCRResult, pdfW, pdfH float64) {
	// Scale against what the OCR engine actually measured, not the DPI.
	ocrW, ocrH := page.PageWidth, page.PageHeight
	if ocrW <= 0 || ocrH <= 0 {
		if page.TextCount() > 0 {
			a.logger.Warn("page has blocks but no OCR dimensions, dropping text layer",
				"page", page.PageNumber)
			a.dropped += page.TextCount()
		}
		return
	}
	xScale := pdfW / ocrW
	yScale := pdfH / ocrH

	layer := a.pdf.AddLayer(fmt.Sprintf("%s (Page %d)", a.cfg.LayerName, page.PageNumber), true)
	a.pdf.BeginLayer(layer)
	defer a.pdf.EndLayer()

	a.pdf.SetFont(a.cfg.Font.Name, a.cfg.Font.Style, a.cfg.Font.Size)
	if a.cfg.Debug {
		a.pdf.SetTextColor(255, 0, 0)
		a.pdf.SetDrawColor(255, 0, 0)
	} else {
		a.pdf.SetAlpha(0.0, "Normal")
	}
	defer func() {
		if !a.cfg.Debug {
			a.pdf.SetAlpha(1.0, "Normal")
		}
	}()

	for _, block := range page.TextBlocks {
		if block.Text == "" {
			continue
		}
		r := mapRect(block.BBox, xScale, yScale)
		if r.W*r.H < minRectArea {
			continue
		}
		if a.placeBlock(block, r) {
			a.textRuns++
		} else {
			a.dropped++
		}
	}
}

// placeBlock renders one invisible text run inside its mapped rectangle.
// The run's font size starts from the rectangle height and shrinks so the
// text spans the width without wrapping; exact typographic fit is not the
// goal, plausible selection geometry is. Returns false when the block was
// dropped because its text cannot be encoded for the embedded font.
func (a *Assembler) placeBlock(block ocrdata.TextBlock, r rect) bool {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(block.Text)
	if err != nil {
		a.logger.Warn("dropping block: text not encodable for font",
			"block", block.BlockID, "text", block.Text)
		return false
	}

	size := r.H
	if block.Direction == ocrdata.DirectionVertical {
		// Column width approximates the glyph size for vertical writing.
		size = r.W
	}
	a.pdf.SetFontSize(size)
	if sw := a.pdf.GetStringWidth(latin1); sw > 0 {
		scaled := size * r.W / sw
		if scaled < size {
			size = scaled
			a.pdf.SetFontSize(size)
		}
	}

	baseline := r.Y + size*a.cfg.Font.AscentRatio
	a.pdf.Text(r.X, baseline, latin1)
	a.pdf.SetFontSize(a.cfg.Font.Size)

	if a.cfg.Debug {
		a.pdf.Rect(r.X, r.Y, r.W, r.H, "D")
	}
	return true
}

// PageCount returns the number of pages added so far.
func (a *Assembler) PageCount() int { return a.pages }

// TextRuns returns the number of invisible text runs placed so far.
func (a *Assembler) TextRuns() int { return a.textRuns }

// DroppedBlocks returns the number of blocks dropped during placement.
func (a *Assembler) DroppedBlocks() int { return a.dropped }

// Bytes renders the assembled document. fpdf compresses content streams by
// default, which covers the structural compression of the save stage.
func (a *Assembler) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("overlay: generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo renders the assembled document to w.
func (a *Assembler) WriteTo(w io.Writer) (int64, error) {
	data, err := a.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile renders the assembled document to a file.
func (a *Assembler) WriteFile(path string) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("overlay: write %s: %w", path, err)
	}
	return nil
}
