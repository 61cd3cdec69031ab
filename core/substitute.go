package core

import "strings"

// Substitute rewrites text in a single left-to-right pass, replacing each
// accepted span with its placeholder and recording the inverse mapping.
// The accepted slice must come from Reconcile: sorted by start, pairwise
// non-overlapping, offsets within bounds.
//
// The pass copies the gap between the previous span's end and the current
// span's start verbatim, emits the placeholder, and advances a cursor to
// the span's end. Cost is O(text) + O(spans); the text is never re-scanned
// per span, which is what makes repeated identical substrings safe.
//
// The returned table maps each emitted placeholder to the span's original
// content. It is owned by the caller, holds exactly the placeholders
// present in the sanitized text, and must never be merged with or reused
// for another text.
func Substitute(text string, accepted []Span) (string, map[string]string) {
	table := make(map[string]string, len(accepted))
	if len(accepted) == 0 {
		return text, table
	}

	runes := []rune(text)
	alloc := newPlaceholderAllocator()

	var b strings.Builder
	b.Grow(len(text))

	cursor := 0
	for _, s := range accepted {
		b.WriteString(string(runes[cursor:s.Start]))
		placeholder := alloc.next(s.Label)
		table[placeholder] = s.Content
		b.WriteString(placeholder)
		cursor = s.End
	}
	b.WriteString(string(runes[cursor:]))

	return b.String(), table
}
