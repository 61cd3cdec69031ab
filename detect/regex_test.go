package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexDetectorEmail(t *testing.T) {
	d := NewRegexDetector()

	spans, err := d.Detect(context.Background(), "write to jane.doe@example.com please", "en")

	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "EMAIL", spans[0].Label)
	assert.Equal(t, "jane.doe@example.com", spans[0].Content)
	assert.Equal(t, 9, spans[0].Start)
	assert.Equal(t, 29, spans[0].End)
}

// Spans carry rune offsets; a multi-byte prefix must not shift them.
func TestRegexDetectorRuneOffsets(t *testing.T) {
	d := NewRegexDetector()

	text := "héllo jane@example.com"
	spans, err := d.Detect(context.Background(), text, "en")

	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, 6, spans[0].Start)
	assert.Equal(t, 22, spans[0].End)
	assert.Equal(t, "jane@example.com", string([]rune(text)[spans[0].Start:spans[0].End]))
}

func TestRegexDetectorMultiplePatterns(t *testing.T) {
	d := NewRegexDetector()

	text := "ssn 123-45-6789 and mail bob@corp.org"
	spans, err := d.Detect(context.Background(), text, "en")

	require.NoError(t, err)

	labels := map[string]bool{}
	for _, s := range spans {
		labels[s.Label] = true
	}
	assert.True(t, labels["SSN"])
	assert.True(t, labels["EMAIL"])
}

func TestRegexDetectorAddPattern(t *testing.T) {
	d := NewRegexDetector()

	err := d.AddPattern("codename", "PROJECT", `\bZeus\b`)
	require.NoError(t, err)

	spans, err := d.Detect(context.Background(), "the codename is Zeus", "en")
	require.NoError(t, err)

	found := false
	for _, s := range spans {
		if s.Label == "PROJECT" {
			found = true
			assert.Equal(t, "Zeus", s.Content)
		}
	}
	assert.True(t, found)
}

func TestRegexDetectorAddPatternInvalid(t *testing.T) {
	d := NewRegexDetector()

	err := d.AddPattern("broken", "X", `(unclosed`)
	assert.Error(t, err)
}

func TestRegexDetectorIgnoresLanguage(t *testing.T) {
	d := NewRegexDetector()

	en, err := d.Detect(context.Background(), "mail bob@corp.org", "en")
	require.NoError(t, err)
	xx, err := d.Detect(context.Background(), "mail bob@corp.org", "klingon")
	require.NoError(t, err)

	assert.Equal(t, en, xx)
}

func TestRegexDetectorCanceledContext(t *testing.T) {
	d := NewRegexDetector()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, "mail bob@corp.org", "en")
	assert.Error(t, err)
}
