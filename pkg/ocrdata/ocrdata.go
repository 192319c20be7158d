// Package ocrdata defines the data model shared by every stage of the
// searchable-PDF pipeline: bounding boxes in raster pixel space, recognized
// text blocks, per-page and per-document OCR results, and the persisted JSON
// checkpoint that lets OCR run once and PDF assembly run later.
//
// The model is deliberately flat: a page is an ordered list of text blocks
// in detection (reading) order, each carrying its pixel-space bounding box,
// confidence and writing direction. The pixel dimensions recorded on a page
// are the dimensions of the raster the OCR engine actually analyzed; the
// overlay stage scales against those, never against the nominal render DPI.
//
// Key Types:
//
// - BoundingBox: axis-aligned rectangle with the origin in the top-left
// - TextBlock: one recognized text fragment
// - PageOCRResult: ordered blocks plus the analyzed raster's dimensions
// - DocumentOCRResult: all pages of one input file plus aggregate statistics
//
// Main Functions:
//
// - Save / Load: JSON checkpoint persistence with a recomputed summary
// - CheckpointPath: deterministic artifact path for an input file
// - SortByReadingOrder: column/row reading-order sort of a page's blocks
// - RemoveDuplicateBlocks: overlap-based suppression of double detections
package ocrdata
