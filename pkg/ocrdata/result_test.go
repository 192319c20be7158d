package ocrdata

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleDocument() *DocumentOCRResult {
	return &DocumentOCRResult{
		InputFile: "input_pdfs/sample.pdf",
		DPI:       300,
		Pages: []PageOCRResult{
			{
				PageNumber: 1,
				PageWidth:  2480,
				PageHeight: 3508,
				Success:    true,
				TextBlocks: []TextBlock{
					{Text: "Hello", BBox: BoundingBox{X0: 100, Y0: 100, X1: 300, Y1: 150}, Confidence: 0.95, Direction: DirectionHorizontal, BlockID: 1},
				},
				ProcessingTime: 1.25,
			},
			{
				PageNumber: 2,
				PageWidth:  2480,
				PageHeight: 3508,
				Success:    false,
				Error:      "engine crashed",
			},
		},
		TotalProcessingTime: 1.5,
	}
}

func TestSummaryRecomputedFromPages(t *testing.T) {
	doc := sampleDocument()
	sum := doc.Summarize()
	want := Summary{TotalPages: 2, SuccessfulPages: 1, TotalTextBlocks: 1}
	if sum != want {
		t.Fatalf("Summarize() = %+v, want %+v", sum, want)
	}

	doc.Pages[1].TextBlocks = append(doc.Pages[1].TextBlocks, TextBlock{Text: "late", BlockID: 1})
	if got := doc.Summarize().TotalTextBlocks; got != 2 {
		t.Fatalf("summary should follow the page list, got %d blocks", got)
	}
}

func TestAverageConfidence(t *testing.T) {
	p := PageOCRResult{TextBlocks: []TextBlock{{Confidence: 0.8}, {Confidence: 0.4}}}
	if got := p.AverageConfidence(); got != 0.6 {
		t.Fatalf("AverageConfidence() = %v, want 0.6", got)
	}
	empty := PageOCRResult{}
	if got := empty.AverageConfidence(); got != 0 {
		t.Fatalf("empty page should report 0, got %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := sampleDocument()
	path := filepath.Join(t.TempDir(), "nested", "sample_ocr_results.json")

	if err := Save(doc, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(doc, loaded) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, doc)
	}
}

func TestArtifactCarriesSummaryAndDerivedFields(t *testing.T) {
	data, err := json.Marshal(sampleDocument())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	sum, ok := raw["summary"].(map[string]any)
	if !ok {
		t.Fatalf("artifact has no summary object: %s", data)
	}
	if sum["total_pages"] != float64(2) || sum["successful_pages"] != float64(1) || sum["total_text_blocks"] != float64(1) {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if !strings.Contains(string(data), `"average_confidence":0.95`) {
		t.Fatalf("per-page average_confidence missing: %s", data)
	}
	if !strings.Contains(string(data), `"bbox":[100,100,300,150]`) {
		t.Fatalf("bbox not in array form: %s", data)
	}
}

func TestLoadRejectsNonContiguousPages(t *testing.T) {
	doc := sampleDocument()
	doc.Pages[1].PageNumber = 5
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := Save(doc, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-contiguous page numbers")
	}
}

func TestDirectionNormalizesOnLoad(t *testing.T) {
	var d Direction
	if err := json.Unmarshal([]byte(`"sideways"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d != DirectionHorizontal {
		t.Fatalf("unknown direction should normalize to horizontal, got %q", d)
	}
	if err := json.Unmarshal([]byte(`"vertical"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d != DirectionVertical {
		t.Fatalf("vertical should survive, got %q", d)
	}
}

func TestCheckpointPath(t *testing.T) {
	got := CheckpointPath("/data/in/scan.pdf", "/data/out")
	want := filepath.Join("/data/out", "scan_ocr_results.json")
	if got != want {
		t.Fatalf("CheckpointPath() = %q, want %q", got, want)
	}
}
