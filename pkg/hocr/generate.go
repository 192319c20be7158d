package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/scanforge/scanforge/pkg/ocrdata"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

// templatePage is the view of one page handed to the hOCR template.
type templatePage struct {
	Number int
	Index  int
	BBox   string
	Words  []templateWord
}

// templateWord is one recognized block rendered as an ocrx_word.
type templateWord struct {
	ID       string
	LineID   string
	Title    string
	Vertical bool
	Text     string
}

// Generate renders a document result as an hOCR HTML document. Failed
// pages appear as empty ocr_page elements so page numbering stays aligned
// with the source document.
func Generate(doc *ocrdata.DocumentOCRResult) (string, error) {
	tmpl, err := template.New("hocr.tmpl").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(templateFS, "templates/hocr.tmpl")
	if err != nil {
		return "", fmt.Errorf("hocr: parse template: %w", err)
	}

	data := struct {
		Title string
		Pages []templatePage
	}{
		Title: doc.InputFile,
		Pages: make([]templatePage, 0, len(doc.Pages)),
	}
	for _, page := range doc.Pages {
		tp := templatePage{
			Number: page.PageNumber,
			Index:  page.PageNumber - 1,
			BBox:   bboxProp(0, 0, page.PageWidth, page.PageHeight),
		}
		for _, block := range page.TextBlocks {
			tp.Words = append(tp.Words, templateWord{
				ID:     fmt.Sprintf("word_%d_%d", page.PageNumber, block.BlockID),
				LineID: fmt.Sprintf("line_%d_%d", page.PageNumber, block.BlockID),
				Title: fmt.Sprintf("%s; x_wconf %d",
					bboxProp(block.BBox.X0, block.BBox.Y0, block.BBox.X1, block.BBox.Y1),
					confidencePercent(block.Confidence)),
				Vertical: block.Direction == ocrdata.DirectionVertical,
				Text:     html.EscapeString(block.Text),
			})
		}
		data.Pages = append(data.Pages, tp)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("hocr: render template: %w", err)
	}
	return buf.String(), nil
}

// confidencePercent maps a 0-1 confidence onto the 0-100 x_wconf scale.
func confidencePercent(c float64) int {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 100
	}
	return int(c*100 + 0.5)
}
