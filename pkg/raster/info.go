package raster

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageSize is one page's dimensions in PDF points.
type PageSize struct {
	Page   int
	Width  float64
	Height float64
}

// DocumentInfo summarizes a PDF's structure.
type DocumentInfo struct {
	PageCount int
	PageSizes []PageSize
}

// Inspect opens the document and reads its page count and per-page point
// sizes. Encrypted or structurally broken files fail here, before any
// rendering or OCR work is spent on them.
func Inspect(path string) (*DocumentInfo, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()

	info := &DocumentInfo{PageCount: reader.NumPage()}
	for i := 1; i <= info.PageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		w, h, ok := mediaBoxSize(page)
		if !ok {
			continue
		}
		info.PageSizes = append(info.PageSizes, PageSize{Page: i, Width: w, Height: h})
	}
	return info, nil
}

// mediaBoxSize resolves a page's MediaBox, walking up the page tree when
// the attribute is inherited.
func mediaBoxSize(page pdf.Page) (w, h float64, ok bool) {
	node := page.V
	for !node.IsNull() {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			w = box.Index(2).Float64() - box.Index(0).Float64()
			h = box.Index(3).Float64() - box.Index(1).Float64()
			return w, h, true
		}
		node = node.Key("Parent")
	}
	return 0, 0, false
}
