package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileEmpty(t *testing.T) {
	accepted := Reconcile("some text without detections", nil)
	assert.Empty(t, accepted)
}

func TestReconcileSortsByStart(t *testing.T) {
	text := "aaaa bbbb cccc"

	spans := []Span{
		{Start: 10, End: 14, Label: "C"},
		{Start: 0, End: 4, Label: "A"},
		{Start: 5, End: 9, Label: "B"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 3)
	assert.Equal(t, "A", accepted[0].Label)
	assert.Equal(t, "B", accepted[1].Label)
	assert.Equal(t, "C", accepted[2].Label)
}

// Overlapping spans are resolved leftmost-start-first: a span opening
// before the previously accepted span ends is rejected, even when it is
// longer or more specific. This is a compatibility contract.
func TestReconcileTieBreak(t *testing.T) {
	text := "01234567890"

	spans := []Span{
		{Start: 0, End: 5, Label: "A"},
		{Start: 3, End: 8, Label: "B"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 1)
	assert.Equal(t, "A", accepted[0].Label)
}

func TestReconcileSharedStartFirstDetectedWins(t *testing.T) {
	text := "0123456789"

	// Same start offset: the earlier-enumerated span wins even though
	// the later one is longer
	spans := []Span{
		{Start: 0, End: 3, Label: "SHORT"},
		{Start: 0, End: 8, Label: "LONG"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 1)
	assert.Equal(t, "SHORT", accepted[0].Label)
}

func TestReconcileNestedInnerRejected(t *testing.T) {
	text := "0123456789"

	spans := []Span{
		{Start: 0, End: 9, Label: "OUTER"},
		{Start: 2, End: 5, Label: "INNER"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 1)
	assert.Equal(t, "OUTER", accepted[0].Label)
}

func TestReconcileNonOverlapInvariant(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"

	spans := []Span{
		{Start: 4, End: 9, Label: "A"},
		{Start: 8, End: 15, Label: "B"},
		{Start: 16, End: 19, Label: "C"},
		{Start: 16, End: 25, Label: "D"},
		{Start: 20, End: 25, Label: "E"},
		{Start: 2, End: 6, Label: "F"},
	}

	accepted := Reconcile(text, spans)

	for i := 1; i < len(accepted); i++ {
		assert.GreaterOrEqual(t, accepted[i].Start, accepted[i-1].End,
			"accepted spans must not overlap")
		assert.Greater(t, accepted[i].Start, accepted[i-1].Start,
			"accepted starts must strictly increase")
	}
}

func TestReconcileMalformedDropped(t *testing.T) {
	text := "short"

	spans := []Span{
		{Start: -1, End: 3, Label: "NEG"},
		{Start: 3, End: 3, Label: "EMPTY"},
		{Start: 4, End: 2, Label: "INVERTED"},
		{Start: 2, End: 99, Label: "PAST_END"},
		{Start: 0, End: 5, Label: "OK"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 1)
	assert.Equal(t, "OK", accepted[0].Label)
}

// Content is always re-sliced from the source text, so detector-side
// normalization (trimmed whitespace, changed casing) cannot leak into
// the restoration table.
func TestReconcileContentResliced(t *testing.T) {
	text := "call Jane Doe now"

	spans := []Span{
		{Start: 5, End: 13, Label: "PER", Content: "JANE DOE"},
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 1)
	assert.Equal(t, "Jane Doe", accepted[0].Content)
}

func TestReconcileRuneOffsets(t *testing.T) {
	// 23 runes, more bytes than runes
	text := "café près de l'échoppe"

	spans := []Span{
		{Start: 0, End: 4, Label: "A"},  // "café"
		{Start: 5, End: 9, Label: "B"},  // "près"
		{Start: 0, End: 50, Label: "X"}, // past the rune length, dropped
	}

	accepted := Reconcile(text, spans)

	assert.Len(t, accepted, 2)
	assert.Equal(t, "café", accepted[0].Content)
	assert.Equal(t, "près", accepted[1].Content)
}
