package ocrdata

import "sort"

// Reading-order sort of a page's blocks: vertical text is grouped into
// columns read right to left, horizontal text into rows read top to bottom.
// When a page mixes both, the group whose bounding region starts higher on
// the page comes first. Block IDs are reassigned 1..n after sorting.

const axisOverlapThreshold = 0.5

// axisOverlap reports whether two boxes overlap along one axis by at least
// the threshold share of either extent. lo/hi select the axis.
func axisOverlap(a, b BoundingBox, vertical bool) bool {
	var aLo, aHi, bLo, bHi float64
	if vertical {
		aLo, aHi, bLo, bHi = a.Y0, a.Y1, b.Y0, b.Y1
	} else {
		aLo, aHi, bLo, bHi = a.X0, a.X1, b.X0, b.X1
	}
	overlap := min(aHi, bHi) - max(aLo, bLo)
	if overlap <= 0 {
		return false
	}
	return overlap >= (aHi-aLo)*axisOverlapThreshold || overlap >= (bHi-bLo)*axisOverlapThreshold
}

// groupBlocks clusters blocks that overlap along the given axis, preserving
// first-seen group order.
func groupBlocks(blocks []TextBlock, vertical bool) [][]TextBlock {
	var groups [][]TextBlock
	for _, block := range blocks {
		placed := false
		for gi := range groups {
			if axisOverlap(block.BBox, groups[gi][0].BBox, vertical) {
				groups[gi] = append(groups[gi], block)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []TextBlock{block})
		}
	}
	return groups
}

// sortVerticalBlocks orders vertical-writing blocks into columns read right
// to left, each column top to bottom.
func sortVerticalBlocks(blocks []TextBlock) []TextBlock {
	columns := groupBlocks(blocks, false)
	for _, col := range columns {
		sort.SliceStable(col, func(i, j int) bool { return col[i].BBox.Y0 < col[j].BBox.Y0 })
	}
	sort.SliceStable(columns, func(i, j int) bool {
		ci, _ := columns[i][0].BBox.Center()
		cj, _ := columns[j][0].BBox.Center()
		return ci > cj
	})
	return flatten(columns)
}

// sortHorizontalBlocks orders horizontal-writing blocks into rows read top
// to bottom, each row left to right.
func sortHorizontalBlocks(blocks []TextBlock) []TextBlock {
	rows := groupBlocks(blocks, true)
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].BBox.X0 < row[j].BBox.X0 })
	}
	sort.SliceStable(rows, func(i, j int) bool {
		_, ci := rows[i][0].BBox.Center()
		_, cj := rows[j][0].BBox.Center()
		return ci < cj
	})
	return flatten(rows)
}

func flatten(groups [][]TextBlock) []TextBlock {
	var out []TextBlock
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// groupTop returns the topmost edge of a block group, or 0 for an empty one.
func groupTop(blocks []TextBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	top := blocks[0].BBox.Y0
	for _, b := range blocks[1:] {
		if b.BBox.Y0 < top {
			top = b.BBox.Y0
		}
	}
	return top
}

// SortByReadingOrder reorders the page's blocks into natural reading order
// and reassigns block IDs 1..n. Pages without blocks are left untouched.
func SortByReadingOrder(page *PageOCRResult) {
	if len(page.TextBlocks) == 0 {
		return
	}

	var vertical, horizontal []TextBlock
	for _, b := range page.TextBlocks {
		if b.Direction == DirectionVertical {
			vertical = append(vertical, b)
		} else {
			horizontal = append(horizontal, b)
		}
	}

	sortedVertical := sortVerticalBlocks(vertical)
	sortedHorizontal := sortHorizontalBlocks(horizontal)

	var sorted []TextBlock
	switch {
	case len(vertical) > 0 && len(horizontal) > 0:
		if groupTop(vertical) <= groupTop(horizontal) {
			sorted = append(sortedVertical, sortedHorizontal...)
		} else {
			sorted = append(sortedHorizontal, sortedVertical...)
		}
	case len(vertical) > 0:
		sorted = sortedVertical
	default:
		sorted = sortedHorizontal
	}

	for i := range sorted {
		sorted[i].BlockID = i + 1
	}
	page.TextBlocks = sorted
}
