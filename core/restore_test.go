package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestoreCleanInput(t *testing.T) {
	text := "no placeholders anywhere in this text"

	assert.Equal(t, text, Restore(text, map[string]string{}))
	assert.Equal(t, text, Restore(text, nil))
}

func TestRestoreRoundTrip(t *testing.T) {
	text := "Contact John Doe at john.doe@example.com or call +1-555-0199."

	accepted := Reconcile(text, []Span{
		{Start: 8, End: 16, Label: "PER"},
		{Start: 20, End: 40, Label: "EMAIL"},
		{Start: 49, End: 60, Label: "PHONE"},
	})
	sanitized, table := Substitute(text, accepted)

	assert.NotEqual(t, text, sanitized)
	assert.Equal(t, text, Restore(sanitized, table))
}

// <PER_1> is a prefix of <PER_10>; replacing the short key must never
// clip the long one.
func TestRestorePrefixSafety(t *testing.T) {
	sanitized := "<PER_1> met <PER_10>"
	table := map[string]string{
		"<PER_1>":  "Ann",
		"<PER_10>": "Bob",
	}

	assert.Equal(t, "Ann met Bob", Restore(sanitized, table))
}

// A placeholder with no table entry is left literally in the text; a
// table key absent from the text is ignored. Neither is an error.
func TestRestoreKeyMismatch(t *testing.T) {
	sanitized := "<PER_1> visited <LOC_1>"
	table := map[string]string{
		"<PER_1>": "Ann",
		"<ORG_1>": "unused",
	}

	assert.Equal(t, "Ann visited <LOC_1>", Restore(sanitized, table))
}

// Original content that happens to look like another placeholder must
// survive restoration unchanged: the single-pass scan never re-reads
// substituted output, unlike iterative whole-text find/replace.
func TestRestoreNoResubstitution(t *testing.T) {
	sanitized := "<A_1> and <B_1>"
	table := map[string]string{
		"<A_1>": "<B_1>",
		"<B_1>": "boom",
	}

	assert.Equal(t, "<B_1> and boom", Restore(sanitized, table))
}

// Twelve same-label entities cross the two-digit suffix boundary; the
// round trip must survive <LABEL_1> being a prefix of <LABEL_10>..<LABEL_12>.
func TestRestoreTwoDigitStress(t *testing.T) {
	names := []string{"John", "Paul", "George", "Ringo", "Mick", "Keith",
		"Charlie", "Ronnie", "Freddie", "Brian", "Roger", "Pete"}

	text := ""
	var spans []Span
	pos := 0
	for i, name := range names {
		if i > 0 {
			text += ", "
			pos += 2
		}
		spans = append(spans, Span{Start: pos, End: pos + len(name), Label: "PER"})
		text += name
		pos += len(name)
	}
	text += " live in London."

	accepted := Reconcile(text, spans)
	assert.Len(t, accepted, 12)

	sanitized, table := Substitute(text, accepted)

	for i := 1; i <= 12; i++ {
		assert.Contains(t, sanitized, fmt.Sprintf("<PER_%d>", i))
	}
	assert.Len(t, table, 12)
	assert.Equal(t, "Pete", table["<PER_12>"])

	assert.Equal(t, text, Restore(sanitized, table))
}

func TestRestoreEmptyKeyIgnored(t *testing.T) {
	table := map[string]string{
		"":        "never",
		"<PER_1>": "Ann",
	}

	assert.Equal(t, "Ann here", Restore("<PER_1> here", table))
}

func TestRestoreAdjacentPlaceholders(t *testing.T) {
	sanitized := "<PER_1><PER_2>"
	table := map[string]string{
		"<PER_1>": "Ann",
		"<PER_2>": "Bob",
	}

	assert.Equal(t, "AnnBob", Restore(sanitized, table))
}
