package hocr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/scanforge/scanforge/pkg/ocrdata"
)

// Parse reads an hOCR document into the result model. Each ocrx_word
// becomes one text block; a textangle of 90 on the enclosing line marks
// the block as vertical. Pages are numbered in document order starting
// from 1, regardless of ppageno values.
func Parse(data []byte) (*ocrdata.DocumentOCRResult, error) {
	root, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("hocr: parse html: %w", err)
	}

	doc := &ocrdata.DocumentOCRResult{}

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			page, err := parsePage(n, len(doc.Pages)+1)
			if err == nil {
				doc.Pages = append(doc.Pages, page)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(root)

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("hocr: no ocr_page elements found")
	}
	return doc, nil
}

// parsePage converts one ocr_page element into a page result.
func parsePage(n *html.Node, number int) (ocrdata.PageOCRResult, error) {
	page := ocrdata.PageOCRResult{PageNumber: number, Success: true}

	props := parseProps(attr(n, "title"))
	if bbox, ok := props["bbox"]; ok {
		_, _, x1, y1, err := parseBBox(bbox)
		if err != nil {
			return page, err
		}
		page.PageWidth = x1
		page.PageHeight = y1
	}

	vertical := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if hasClass(n, "ocr_line") {
				vertical = strings.Contains(attr(n, "title"), "textangle 90")
			}
			if hasClass(n, "ocrx_word") {
				if block, ok := parseWord(n, vertical, len(page.TextBlocks)+1); ok {
					page.TextBlocks = append(page.TextBlocks, block)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return page, nil
}

// parseWord converts one ocrx_word element into a text block. Words with
// a missing or malformed bbox are skipped.
func parseWord(n *html.Node, vertical bool, id int) (ocrdata.TextBlock, bool) {
	props := parseProps(attr(n, "title"))
	bbox, ok := props["bbox"]
	if !ok {
		return ocrdata.TextBlock{}, false
	}
	x0, y0, x1, y1, err := parseBBox(bbox)
	if err != nil {
		return ocrdata.TextBlock{}, false
	}
	box, err := ocrdata.NewBoundingBox(x0, y0, x1, y1)
	if err != nil {
		return ocrdata.TextBlock{}, false
	}

	confidence := 0.0
	if wconf, ok := props["x_wconf"]; ok {
		if v, err := strconv.ParseFloat(wconf, 64); err == nil {
			confidence = v / 100
		}
	}

	direction := ocrdata.DirectionHorizontal
	if vertical {
		direction = ocrdata.DirectionVertical
	}
	return ocrdata.TextBlock{
		Text:       strings.TrimSpace(textContent(n)),
		BBox:       box,
		Confidence: confidence,
		Direction:  direction,
		BlockID:    id,
	}, true
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == name {
			return true
		}
	}
	return false
}

// textContent collects the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
