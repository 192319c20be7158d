// Package hocr exchanges OCR results in hOCR, the HTML-based standard
// format for representing OCR output.
//
// Generate renders a document result as valid hOCR so other tools can
// consume the recognition output. Parse reads hOCR produced elsewhere
// (Tesseract's own hOCR output, for example) into the result model, so an
// externally recognized document can feed the overlay stage directly.
//
// The mapping is flat: each text block becomes one ocr_line containing a
// single ocrx_word. Vertical blocks are marked with a 90 degree textangle
// and recovered as vertical on parse. Confidence maps to x_wconf (0-100).
package hocr

import (
	"fmt"
	"strconv"
	"strings"
)

// bboxProp formats a bounding box property with integer pixel coordinates.
func bboxProp(x0, y0, x1, y1 float64) string {
	return fmt.Sprintf("bbox %d %d %d %d", round(x0), round(y0), round(x1), round(y1))
}

func round(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}

// parseProps splits an hOCR title attribute into its properties, e.g.
// "bbox 0 0 2480 3508; x_wconf 95" into {"bbox": "0 0 2480 3508", ...}.
func parseProps(title string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		props[fields[0]] = strings.Join(fields[1:], " ")
	}
	return props
}

// parseBBox reads the four coordinates of a bbox property value.
func parseBBox(value string) (x0, y0, x1, y1 float64, err error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("hocr: bbox needs 4 coordinates, got %q", value)
	}
	coords := make([]float64, 4)
	for i, f := range fields {
		coords[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("hocr: bad bbox coordinate %q: %w", f, err)
		}
	}
	return coords[0], coords[1], coords[2], coords[3], nil
}
