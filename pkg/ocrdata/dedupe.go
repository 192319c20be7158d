package ocrdata

// DefaultOverlapThreshold is the share of a block's own area that must be
// covered by a larger block before the smaller one is suppressed.
const DefaultOverlapThreshold = 0.6

// RemoveDuplicateBlocks drops blocks that are mostly contained inside a
// larger block, which happens when an engine re-detects a heading inside a
// paragraph region. A block is removed when at least threshold of its own
// area overlaps a strictly larger block. Returns the number of blocks
// removed. Overlap suppression is opt-in; the default pipeline overlays
// every block independently.
func RemoveDuplicateBlocks(page *PageOCRResult, threshold float64) int {
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}
	if len(page.TextBlocks) <= 1 {
		return 0
	}

	blocks := page.TextBlocks
	remove := make(map[int]bool)
	for i, a := range blocks {
		if remove[i] {
			continue
		}
		for j, b := range blocks {
			if i == j || remove[j] {
				continue
			}
			if a.BBox.OverlapRatio(b.BBox) >= threshold && a.BBox.Area() < b.BBox.Area() {
				remove[i] = true
				break
			}
		}
	}
	if len(remove) == 0 {
		return 0
	}

	kept := blocks[:0]
	for i, b := range blocks {
		if !remove[i] {
			kept = append(kept, b)
		}
	}
	page.TextBlocks = kept
	return len(remove)
}
