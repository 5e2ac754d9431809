package outline

import "sort"

// Level is a heading depth. LevelH5 is never produced: the final rank remap
// maps the fifth and later distinct sizes straight to H6. That is the
// documented behavior, odd as it looks.
type Level string

const (
	LevelH1 Level = "H1"
	LevelH2 Level = "H2"
	LevelH3 Level = "H3"
	LevelH4 Level = "H4"
	LevelH6 Level = "H6"
)

// Entry is one outline row in the final result.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// candidate carries an entry plus the font size that justified it, needed by
// the finalization passes. Colored-title insertions have no size.
type candidate struct {
	Entry
	size    float64
	hasSize bool
}

func newCandidate(level Level, ln TextLine) candidate {
	return candidate{
		Entry:   Entry{Level: level, Text: ln.Text, Page: ln.Page},
		size:    ln.Size,
		hasSize: true,
	}
}

// levelState holds the running h1/h2 size thresholds updated during the
// classification pass. An explicit accumulator, no globals.
type levelState struct {
	h1, h2       float64
	h1Set, h2Set bool
}

// assign maps a heading size to a provisional level and updates thresholds:
// the first size seen anchors H1, the first smaller size anchors H2,
// everything else is H3.
func (s *levelState) assign(size float64) Level {
	if !s.h1Set || size == s.h1 {
		if !s.h1Set {
			s.h1 = size
			s.h1Set = true
		}
		return LevelH1
	}
	if !s.h2Set || size == s.h2 {
		if !s.h2Set && size < s.h1 {
			s.h2 = size
			s.h2Set = true
		}
		return LevelH2
	}
	return LevelH3
}

// finalize runs the post-classification passes in their fixed order:
// forbidden-literal drop, colored-candidate front insertion, two-level
// flattening anchored on the first entry, and the authoritative
// distinct-size rank remap. The remap deliberately supersedes the flattening
// for every sized entry; both passes stay separate on purpose.
func finalize(cands []candidate, colored []TextLine) []Entry {
	kept := cands[:0:0]
	for _, c := range cands {
		if _, bad := forbiddenTitles[c.Text]; bad {
			continue
		}
		kept = append(kept, c)
	}

	// Colored-title candidates missing from the outline go in front as H1.
	// Each prepend checks the list as it grows, so identical candidates
	// insert once.
	for _, ln := range colored {
		present := false
		for _, c := range kept {
			if c.Text == ln.Text && c.Page == 1 {
				present = true
				break
			}
		}
		if !present {
			ins := candidate{Entry: Entry{Level: LevelH1, Text: ln.Text, Page: 1}}
			kept = append([]candidate{ins}, kept...)
		}
	}

	// Flatten to two levels around the first entry's size.
	if len(kept) > 0 {
		kept[0].Level = LevelH1
		anchor := kept[0]
		for i := 1; i < len(kept); i++ {
			if kept[i].hasSize && anchor.hasSize && kept[i].size == anchor.size {
				kept[i].Level = LevelH1
			} else {
				kept[i].Level = LevelH2
			}
		}
	}

	// Authoritative remap: rank distinct sizes descending and map rank to
	// level, skipping H5. Unsized entries keep their level from above.
	var sizes []float64
	seen := map[float64]struct{}{}
	for _, c := range kept {
		if !c.hasSize {
			continue
		}
		if _, ok := seen[c.size]; !ok {
			seen[c.size] = struct{}{}
			sizes = append(sizes, c.size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	rank := make(map[float64]int, len(sizes))
	for i, s := range sizes {
		rank[s] = i
	}

	out := make([]Entry, 0, len(kept))
	for _, c := range kept {
		e := c.Entry
		if c.hasSize {
			e.Level = rankLevel(rank[c.size])
		}
		out = append(out, e)
	}
	return out
}

func rankLevel(rank int) Level {
	switch rank {
	case 0:
		return LevelH1
	case 1:
		return LevelH2
	case 2:
		return LevelH3
	case 3:
		return LevelH4
	default:
		return LevelH6
	}
}
