package compose

import (
	"regexp"
	"strings"
)

// Answer prompts ask for "Part A" / "Part B" sections, but models take
// liberties with heading markup. These patterns accept optional hashes, bold
// markers, and trailing separators, matched at the start of a line.
var (
	partARe = regexp.MustCompile(`(?mi)^[ \t]*(?:#{1,6}[ \t]*)?\*{0,2}[ \t]*part[ \t]*a[-*:. \t]*`)
	partBRe = regexp.MustCompile(`(?mi)^[ \t]*(?:#{1,6}[ \t]*)?\*{0,2}[ \t]*part[ \t]*b[-*:. \t]*`)
)

// Split extracts the two labeled sections from a raw model reply. Content is
// never dropped: with no labels at all, everything lands in partB; with a
// single label, only that part is populated.
func Split(raw string) (partA, partB string) {
	a := partARe.FindStringIndex(raw)
	b := partBRe.FindStringIndex(raw)

	switch {
	case a == nil && b == nil:
		return "", strings.TrimSpace(raw)
	case a != nil && b == nil:
		return strings.TrimSpace(raw[a[1]:]), ""
	case a == nil && b != nil:
		return "", strings.TrimSpace(raw[b[1]:])
	}

	if b[0] >= a[1] {
		return strings.TrimSpace(raw[a[1]:b[0]]), strings.TrimSpace(raw[b[1]:])
	}
	// Labels out of order; keep each section's trailing text anyway.
	return strings.TrimSpace(raw[a[1]:]), strings.TrimSpace(raw[b[1]:a[0]])
}
