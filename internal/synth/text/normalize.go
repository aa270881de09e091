// Package text provides dialogue text normalization and provider-limit chunking
// for speech synthesis.
//
// Normalization repairs the punctuation habits of generated dialogue before it is
// sent to the synthesis provider; chunking splits normalized text into pieces that
// respect the provider's maximum input length while preferring natural prosody
// boundaries.
package text

import (
	"regexp"
	"strings"
)

// Replacement glyphs and patterns.
const (
	ellipsisGlyph   = "…"
	emDashGlyph     = "—"
	singleSpace     = " "
	spacingTemplate = "$1 $2"
)

// Normalizer cleans raw dialogue text. It is a pure transformation with no
// failure modes; all patterns are compiled once at construction.
type Normalizer struct {
	whitespaceRegex  *regexp.Regexp
	ellipsisRegex    *regexp.Regexp
	dashRegex        *regexp.Regexp
	punctuationRegex *regexp.Regexp
}

// NewNormalizer creates a normalizer with all patterns precompiled.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		whitespaceRegex: regexp.MustCompile(`\s+`),
		ellipsisRegex:   regexp.MustCompile(`\.{3,}`),
		dashRegex:       regexp.MustCompile(`--+|\x{2013}|\x{2015}`),
		punctuationRegex: regexp.MustCompile(
			`([.!?,;:\x{2026}])([A-Z])`,
		),
	}
}

// Normalize collapses whitespace runs, converts dot-ellipses to the single
// ellipsis glyph, normalizes dash variants to the em dash, and inserts the space
// that generated dialogue tends to drop between sentence or clause punctuation
// and a following capital letter.
func (n *Normalizer) Normalize(input string) string {
	if input == "" {
		return ""
	}

	result := n.whitespaceRegex.ReplaceAllString(input, singleSpace)
	result = n.ellipsisRegex.ReplaceAllString(result, ellipsisGlyph)
	result = n.dashRegex.ReplaceAllString(result, emDashGlyph)
	result = n.punctuationRegex.ReplaceAllString(result, spacingTemplate)

	return strings.TrimSpace(result)
}
