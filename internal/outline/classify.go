package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// exclaimSizeRatio is how much larger than the document mean an
	// exclamation-terminated line must be to count as a heading.
	exclaimSizeRatio = 1.2
	// maxLongWords caps the number of long words (>3 chars) in a heading.
	maxLongWords = 7
	// colonMaxLongWords caps long words in a colon-terminated heading.
	colonMaxLongWords = 6
	// maxNumberedPrefix is the largest leading chapter number accepted.
	maxNumberedPrefix = 10
)

// numberedHeadingRe matches dotted numeric prefixes like "1." or "2.3." with
// one or two digits per group. The content check after the prefix is done in
// code (Go regexps have no lookahead).
var numberedHeadingRe = regexp.MustCompile(`^(\d{1,2})(?:\.\d{1,2})*\.`)

// alwaysHeadingKeywords are section names accepted as headings regardless of
// typography, matched on normalized text.
var alwaysHeadingKeywords = map[string]struct{}{
	"tableofcontent":   {},
	"tableofcontents":  {},
	"summary":          {},
	"acknowledgement":  {},
	"acknowledgements": {},
}

// normalizeHeading lowercases and strips everything outside basic Latin
// letters and the Latin-1/Latin-Extended-A letter range, for keyword
// comparison across accents.
func normalizeHeading(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= 0x00C0 && r <= 0x017F) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isMultilingualRune reports whether r is a letter outside the ASCII range.
// Used as a script-category proxy: such text is never treated as a lowercase
// Latin body fragment.
func isMultilingualRune(r rune) bool {
	return unicode.IsLetter(r) && r > 127
}

func containsMultilingual(s string) bool {
	for _, r := range s {
		if isMultilingualRune(r) {
			return true
		}
	}
	return false
}

// firstLetter returns the first letter rune of s, if any.
func firstLetter(s string) (rune, bool) {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}

// longWordCount counts words longer than 3 characters.
func longWordCount(s string) int {
	n := 0
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > 3 {
			n++
		}
	}
	return n
}

// numberedHeading reports whether txt starts with a small dotted numeric
// prefix followed by real (non-numeric) content.
func numberedHeading(txt string) bool {
	m := numberedHeadingRe.FindStringSubmatchIndex(txt)
	if m == nil {
		return false
	}
	n := 0
	for _, c := range txt[m[2]:m[3]] {
		n = n*10 + int(c-'0')
	}
	if n > maxNumberedPrefix {
		return false
	}
	after := strings.TrimSpace(txt[m[1]:])
	if after == "" {
		return false
	}
	stripped := strings.ReplaceAll(after, ".", "")
	if stripped != "" && isAllDigits(stripped) {
		return false
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// classify runs the rejection/acceptance cascade over the document-ordered
// line stream and returns accepted headings with provisional levels.
// The stream must already include colored-title candidates appended as
// page-1 entries; meanSize is computed over that same stream.
func classify(all []TextLine, title string, meanSize float64, maxBoldSize float64, haveBold bool) []candidate {
	var out []candidate
	var st levelState

	for idx, ln := range all {
		// Boxed single lines only carry title-fallback signal.
		if ln.Origin == OriginFromBox {
			continue
		}

		txt := ln.Text
		sz := ln.Size

		if ln.Page == 1 && txt == title {
			continue
		}
		if strings.Contains(txt, ",") {
			continue
		}
		if rejectLowercaseFragment(txt) {
			continue
		}
		if strings.HasSuffix(txt, ":") && longWordCount(txt) > colonMaxLongWords {
			continue
		}
		// A heading must have content below it.
		if idx >= len(all)-1 || strings.TrimSpace(all[idx+1].Text) == "" {
			continue
		}

		// Fixed section keywords and labels above boxes bypass the
		// typographic acceptance criteria.
		if _, kw := alwaysHeadingKeywords[normalizeHeading(txt)]; kw {
			out = append(out, newCandidate(st.assign(sz), ln))
			continue
		}
		if ln.Origin == OriginFromAboveBox && txt != title && (ln.Bold() || sz > meanSize) {
			out = append(out, newCandidate(st.assign(sz), ln))
			continue
		}

		prevBlank := idx == 0 || strings.TrimSpace(all[idx-1].Text) == ""
		nextBlank := idx == len(all)-1 || strings.TrimSpace(all[idx+1].Text) == ""
		standaloneBold := ln.Bold() && prevBlank && nextBlank

		bigExclaim := strings.HasSuffix(txt, "!") && sz > meanSize*exclaimSizeRatio
		if !(standaloneBold || strings.HasSuffix(txt, ":") || bigExclaim || numberedHeading(txt)) {
			continue
		}

		if longWordCount(txt) > maxLongWords {
			continue
		}
		if rejectShortLowercaseFirstWord(txt) {
			continue
		}

		// Anything matching the document's largest bold size is a top-level
		// heading no matter what the running thresholds say.
		if haveBold && sz == maxBoldSize {
			out = append(out, newCandidate(LevelH1, ln))
			continue
		}

		out = append(out, newCandidate(st.assign(sz), ln))
	}

	return out
}

// rejectLowercaseFragment suppresses short body fragments that start with a
// lowercase Latin letter, while staying permissive for non-Latin scripts.
func rejectLowercaseFragment(txt string) bool {
	r, ok := firstLetter(txt)
	if !ok {
		return false
	}
	if !unicode.IsLower(r) || isMultilingualRune(r) {
		return false
	}
	n := utf8.RuneCountInString(strings.TrimSpace(txt))
	if n < 3 {
		return true
	}
	if n < 10 && !containsMultilingual(txt) {
		return true
	}
	return false
}

// rejectShortLowercaseFirstWord drops candidates whose first word is a short
// lowercase Latin fragment ("the", "and", stray particles).
func rejectShortLowercaseFirstWord(txt string) bool {
	fields := strings.Fields(txt)
	if len(fields) == 0 {
		return false
	}
	w := fields[0]
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLower(r) &&
		utf8.RuneCountInString(w) < 4 &&
		!isMultilingualRune(r) &&
		!containsMultilingual(w)
}
