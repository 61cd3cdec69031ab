package core

// Span represents a labeled region of interest detected in a text.
// Offsets are half-open [Start, End) and are measured in Unicode code
// points (rune indices into the original text), never bytes. Detectors
// that work in byte offsets must convert before emitting spans.
type Span struct {
	// Start is the inclusive rune offset where the span begins
	Start int `json:"start"`

	// End is the exclusive rune offset where the span ends
	End int `json:"end"`

	// Label classifies the span (e.g. "EMAIL", "PER", "LOC")
	Label string `json:"label"`

	// Content is the exact substring of the original text covered by
	// the span
	Content string `json:"content"`
}

// Valid reports whether the span's offsets can be used against a text of
// textLen runes. Invalid spans must be dropped before any slicing happens.
func (s Span) Valid(textLen int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= textLen
}

// Length returns the number of runes the span covers.
func (s Span) Length() int {
	return s.End - s.Start
}
