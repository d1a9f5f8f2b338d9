// Package ranking implements the scoring-and-normalization core: abstract
// reconstruction, batch-relative score normalization, the hybrid relevance
// ranker, and projection of raw provider works into normalized paper records.
package ranking

import (
	"sort"
	"strings"
)

const (
	// DefaultSnippetChars is the default character budget for snippets.
	DefaultSnippetChars = 500

	// NoAbstractPlaceholder is substituted when no abstract text exists.
	NoAbstractPlaceholder = "No abstract available."
)

// ReconstructAbstract rebuilds the abstract text from an inverted index
// mapping words to their positions. The result is deterministic for
// well-formed input (unique positions). Empty or absent input yields "".
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	pairs := make([]posWord, 0, totalPairs)

	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	// Pre-size the builder to reduce allocations. Estimate average word
	// length of 6 characters plus a space separator.
	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}

	return builder.String()
}

// Snippet truncates text to at most maxChars characters, then cuts back to
// the last sentence-terminating period within the truncated text so
// mid-sentence cuts are avoided. The result is whitespace-trimmed. Empty
// input yields "".
func Snippet(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	snippet := text
	if runes := []rune(snippet); len(runes) > maxChars {
		snippet = string(runes[:maxChars])
	}
	if idx := strings.LastIndex(snippet, "."); idx != -1 {
		snippet = snippet[:idx+1]
	}
	return strings.TrimSpace(snippet)
}
