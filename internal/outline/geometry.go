package outline

import (
	"github.com/local/outliner/internal/pagedata"
)

const (
	// tableZoneMinRects marks a page as table-dominated.
	tableZoneMinRects = 5
	// boxMargin expands rectangles and images for containment tests.
	boxMargin = 5.0
	// cellMargin expands rectangles for the table-cell suppression test.
	cellMargin = 2.0
	// aboveBoxGap is the vertical window for label-above-box promotion.
	aboveBoxGap = 20.0
)

// filterPage merges a page's raw span lines and applies the geometry rules:
// text intersecting images is dropped, table-cell text is dropped on
// table-zone pages, sole lines inside a rectangle are promoted as fromBox,
// and lines directly above a rectangle are tagged fromAboveBox.
func filterPage(page pagedata.Page) []TextLine {
	rects := page.Rectangles()
	images := page.Images()
	tableZone := len(rects) >= tableZoneMinRects

	var lines []TextLine
	buckets := make([][]TextLine, len(rects))

	for _, raw := range page.Lines {
		ln, ok := mergeLine(raw)
		if !ok {
			continue
		}
		ln.Page = page.Number

		if intersectsAny(ln.BBox, images, boxMargin) {
			continue
		}
		if tableZone && intersectsAny(ln.BBox, rects, cellMargin) {
			continue
		}

		boxIdx := -1
		for i, r := range rects {
			if r.Expand(boxMargin).Intersects(ln.BBox) {
				boxIdx = i
				break
			}
		}
		if boxIdx >= 0 {
			buckets[boxIdx] = append(buckets[boxIdx], ln)
			continue
		}
		lines = append(lines, ln)
	}

	// A rectangle holding exactly one line is decorative: promote the line,
	// tagged so the classifier can skip it while the title detector keeps it.
	for _, bucket := range buckets {
		if len(bucket) == 1 {
			ln := bucket[0]
			ln.Origin = OriginFromBox
			lines = append(lines, ln)
		}
	}

	// Labels sit just above tables and figures. Scan a snapshot of the list
	// so a line above several rectangles duplicates once per rectangle, not
	// once per pass. Promoted fromBox lines never re-tag.
	snapshot := len(lines)
	for i, r := range rects {
		for j := 0; j < snapshot; j++ {
			ln := lines[j]
			if ln.Origin == OriginFromBox {
				continue
			}
			if ln.Y0 >= r.Y0 || r.Y0-ln.Y0 >= aboveBoxGap {
				continue
			}
			if !ln.Bold() && ln.Size <= 0 {
				continue
			}
			lines[j].Origin = OriginFromAboveBox
			lines[j].AboveRect = i
			dup := lines[j]
			lines = append(lines, dup)
		}
	}

	return lines
}

func intersectsAny(bbox pagedata.Rect, rects []pagedata.Rect, margin float64) bool {
	for _, r := range rects {
		if r.Expand(margin).Intersects(bbox) {
			return true
		}
	}
	return false
}
