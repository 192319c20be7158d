package ocrdata

import (
	"encoding/json"
	"strings"
)

// Direction is the writing direction of a text block.
type Direction string

const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
)

// NormalizeDirection maps unknown direction labels to horizontal.
func NormalizeDirection(s string) Direction {
	if Direction(s) == DirectionVertical {
		return DirectionVertical
	}
	return DirectionHorizontal
}

// UnmarshalJSON normalizes direction labels from hand-edited or foreign
// checkpoints instead of rejecting them.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = NormalizeDirection(s)
	return nil
}

// TextBlock is one recognized text fragment. Blocks are owned by their page;
// BlockID is unique within the page and insertion order is reading order.
type TextBlock struct {
	Text       string      `json:"text"`
	BBox       BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
	Direction  Direction   `json:"direction"`
	BlockID    int         `json:"block_id"`
}

// PageOCRResult is the OCR outcome for a single page. PageWidth and
// PageHeight are the pixel dimensions of the raster the engine analyzed and
// are the scale reference for the overlay stage. A page with zero blocks is
// valid: a blank page, or a page whose render or recognition failed.
type PageOCRResult struct {
	PageNumber     int         `json:"page_number"`
	TextBlocks     []TextBlock `json:"text_blocks"`
	PageWidth      float64     `json:"page_width"`
	PageHeight     float64     `json:"page_height"`
	Success        bool        `json:"success"`
	Error          string      `json:"error,omitempty"`
	ProcessingTime float64     `json:"processing_time"`
}

// TextCount returns the number of text blocks on the page.
func (p *PageOCRResult) TextCount() int { return len(p.TextBlocks) }

// TotalText joins all block texts in reading order.
func (p *PageOCRResult) TotalText() string {
	parts := make([]string, 0, len(p.TextBlocks))
	for _, b := range p.TextBlocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, " ")
}

// AverageConfidence is the mean confidence of the page's blocks, 0 when the
// page has none.
func (p *PageOCRResult) AverageConfidence() float64 {
	if len(p.TextBlocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range p.TextBlocks {
		sum += b.Confidence
	}
	return sum / float64(len(p.TextBlocks))
}

// FailedPage builds the placeholder result that keeps a failed page's slot
// in the document contiguous.
func FailedPage(pageNumber int, width, height float64, reason string, seconds float64) PageOCRResult {
	return PageOCRResult{
		PageNumber:     pageNumber,
		TextBlocks:     nil,
		PageWidth:      width,
		PageHeight:     height,
		Success:        false,
		Error:          reason,
		ProcessingTime: seconds,
	}
}

// Summary aggregates document statistics. It is always recomputed from the
// page list, never stored independently.
type Summary struct {
	TotalPages      int `json:"total_pages"`
	SuccessfulPages int `json:"successful_pages"`
	TotalTextBlocks int `json:"total_text_blocks"`
}

// DocumentOCRResult is the whole-document OCR outcome: one entry per page,
// contiguous from 1 to N, with failed pages occupying their slot. It is
// populated page by page during the OCR stage, persisted as the checkpoint
// artifact, and consumed read-only by the overlay stage.
type DocumentOCRResult struct {
	InputFile           string          `json:"input_file"`
	Pages               []PageOCRResult `json:"pages"`
	TotalProcessingTime float64         `json:"total_processing_time"`
	DPI                 int             `json:"dpi"`
}

// TotalPages returns the number of pages.
func (d *DocumentOCRResult) TotalPages() int { return len(d.Pages) }

// SuccessfulPages counts pages whose recognition completed.
func (d *DocumentOCRResult) SuccessfulPages() int {
	n := 0
	for i := range d.Pages {
		if d.Pages[i].Success {
			n++
		}
	}
	return n
}

// TotalTextBlocks sums the block counts of all pages.
func (d *DocumentOCRResult) TotalTextBlocks() int {
	n := 0
	for i := range d.Pages {
		n += d.Pages[i].TextCount()
	}
	return n
}

// DocumentText joins the text of all successful pages.
func (d *DocumentOCRResult) DocumentText() string {
	parts := make([]string, 0, len(d.Pages))
	for i := range d.Pages {
		if d.Pages[i].Success {
			parts = append(parts, d.Pages[i].TotalText())
		}
	}
	return strings.Join(parts, "\n\n")
}

// Summarize recomputes the aggregate statistics from the page list.
func (d *DocumentOCRResult) Summarize() Summary {
	return Summary{
		TotalPages:      d.TotalPages(),
		SuccessfulPages: d.SuccessfulPages(),
		TotalTextBlocks: d.TotalTextBlocks(),
	}
}
