package overlay

import "time"

// Config holds options for assembling the searchable PDF.
type Config struct {
	// DPI is the resolution the page rasters were rendered at; it converts
	// pixel dimensions back into PDF points for the page size.
	DPI int
	// Debug renders the text layer visibly in red with block outlines
	// instead of hiding it.
	Debug bool
	// LayerName is the base name of the OCR layer; the page number is
	// appended per page.
	LayerName string
	// Font configures the invisible text rendering.
	Font FontConfig
	// CreationDate fixes the document's creation and modification
	// timestamps. Zero means current time; checkpointed reruns that must
	// produce identical bytes set it explicitly.
	CreationDate time.Time
}

// FontConfig contains font settings for the OCR text layer.
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Base font size in points
	AscentRatio float64 // Baseline position as a fraction of the font size
}

// DefaultFont is Helvetica, which is tried and tested for OCR layers.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DPI:       300,
		Debug:     false,
		LayerName: "OCR Text",
		Font:      DefaultFont,
	}
}
