package ocrdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// pageJSON is the wire form of a page. average_confidence is derived and is
// written for consumers of the artifact but never trusted on load.
type pageJSON struct {
	PageNumber        int         `json:"page_number"`
	TextBlocks        []TextBlock `json:"text_blocks"`
	PageWidth         float64     `json:"page_width"`
	PageHeight        float64     `json:"page_height"`
	Success           bool        `json:"success"`
	Error             string      `json:"error,omitempty"`
	ProcessingTime    float64     `json:"processing_time"`
	AverageConfidence float64     `json:"average_confidence"`
}

// MarshalJSON writes the page with its recomputed average confidence.
func (p PageOCRResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageJSON{
		PageNumber:        p.PageNumber,
		TextBlocks:        p.TextBlocks,
		PageWidth:         p.PageWidth,
		PageHeight:        p.PageHeight,
		Success:           p.Success,
		Error:             p.Error,
		ProcessingTime:    p.ProcessingTime,
		AverageConfidence: p.AverageConfidence(),
	})
}

// UnmarshalJSON reads the wire form, discarding the derived fields.
func (p *PageOCRResult) UnmarshalJSON(data []byte) error {
	var pj pageJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	*p = PageOCRResult{
		PageNumber:     pj.PageNumber,
		TextBlocks:     pj.TextBlocks,
		PageWidth:      pj.PageWidth,
		PageHeight:     pj.PageHeight,
		Success:        pj.Success,
		Error:          pj.Error,
		ProcessingTime: pj.ProcessingTime,
	}
	return nil
}

type documentJSON struct {
	InputFile           string          `json:"input_file"`
	Pages               []PageOCRResult `json:"pages"`
	TotalProcessingTime float64         `json:"total_processing_time"`
	DPI                 int             `json:"dpi"`
	Summary             Summary         `json:"summary"`
}

// MarshalJSON writes the document with a summary recomputed from the page
// list, so the persisted aggregate can never drift from the pages.
func (d DocumentOCRResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON{
		InputFile:           d.InputFile,
		Pages:               d.Pages,
		TotalProcessingTime: d.TotalProcessingTime,
		DPI:                 d.DPI,
		Summary:             d.Summarize(),
	})
}

// UnmarshalJSON reads the wire form. The stored summary is ignored; callers
// get aggregates from Summarize.
func (d *DocumentOCRResult) UnmarshalJSON(data []byte) error {
	var dj documentJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	*d = DocumentOCRResult{
		InputFile:           dj.InputFile,
		Pages:               dj.Pages,
		TotalProcessingTime: dj.TotalProcessingTime,
		DPI:                 dj.DPI,
	}
	return nil
}

// CheckpointPath derives the deterministic checkpoint artifact path for an
// input file: <dir>/<stem>_ocr_results.json.
func CheckpointPath(inputFile, dir string) string {
	base := filepath.Base(inputFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_ocr_results.json")
}

// Save writes the document result as an indented JSON checkpoint, creating
// parent directories as needed.
func Save(doc *DocumentOCRResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode OCR results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write OCR results: %w", err)
	}
	return nil
}

// Load reads a checkpoint back into a document result and verifies the page
// list is contiguous from 1 to N.
func Load(path string) (*DocumentOCRResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read OCR results: %w", err)
	}
	var doc DocumentOCRResult
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode OCR results %s: %w", path, err)
	}
	for i := range doc.Pages {
		if doc.Pages[i].PageNumber != i+1 {
			return nil, fmt.Errorf("decode OCR results %s: page %d found at slot %d", path, doc.Pages[i].PageNumber, i+1)
		}
	}
	return &doc, nil
}
