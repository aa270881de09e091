package text

import (
	"strings"
	"unicode"
)

// Characters treated as split boundaries, in descending preference.
const (
	sentenceEnders = ".!?"
	clauseBreakers = ",;:-—"
)

// Split divides text into ordered chunks of at most maxLen runes each, searching
// backward inside every window for the best split point: the end of the last
// complete sentence, then the last clause break, then the last whitespace, then a
// hard cut one rune short of the limit. Cuts on sentence and clause boundaries
// degrade synthesis prosody least, which is why the priorities are ordered this
// way. Chunks are trimmed and empties dropped; rejoining the chunks preserves the
// original word order. A non-positive maxLen disables chunking.
func Split(text string, maxLen int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if maxLen <= 0 || len(runes) <= maxLen {
		return []string{trimmed}
	}

	chunks := make([]string, 0, (len(runes)/maxLen)+1)
	remaining := runes

	for len(remaining) > maxLen {
		cut := splitPoint(remaining, maxLen)

		chunk := strings.TrimSpace(string(remaining[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		remaining = trimLeadingSpace(remaining[cut:])
	}

	if tail := strings.TrimSpace(string(remaining)); tail != "" {
		chunks = append(chunks, tail)
	}

	return chunks
}

// splitPoint returns the index to cut at, guaranteed to be at least 1 so the
// remaining text strictly shrinks on every iteration.
func splitPoint(remaining []rune, maxLen int) int {
	if cut := searchBoundary(remaining, maxLen, sentenceEnders); cut > 0 {
		return cut
	}

	if cut := searchBoundary(remaining, maxLen, clauseBreakers); cut > 0 {
		return cut
	}

	for i := maxLen - 1; i > 0; i-- {
		if unicode.IsSpace(remaining[i]) {
			return i
		}
	}

	if maxLen-1 > 0 {
		return maxLen - 1
	}

	return 1
}

// searchBoundary finds the last boundary rune inside the window that is followed
// by whitespace, returning the index just past it, or 0 when none exists.
func searchBoundary(remaining []rune, maxLen int, boundaries string) int {
	for i := maxLen - 1; i > 0; i-- {
		if !strings.ContainsRune(boundaries, remaining[i]) {
			continue
		}

		if i+1 < len(remaining) && unicode.IsSpace(remaining[i+1]) {
			return i + 1
		}
	}

	return 0
}

// trimLeadingSpace advances past the whitespace a cut may have left behind.
func trimLeadingSpace(runes []rune) []rune {
	start := 0
	for start < len(runes) && unicode.IsSpace(runes[start]) {
		start++
	}

	return runes[start:]
}
