package detect

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/privguard/privguard-go/core"
)

// RegexDetector finds structured PII (emails, phone numbers, IBANs, ...)
// using a table of compiled patterns. It is language-agnostic and ignores
// the language selector.
type RegexDetector struct {
	patterns map[string]PatternInfo
}

// NewRegexDetector creates a detector over the built-in pattern table
func NewRegexDetector() *RegexDetector {
	patterns := make(map[string]PatternInfo, len(builtinPatterns))
	for k, v := range builtinPatterns {
		patterns[k] = v
	}

	return &RegexDetector{patterns: patterns}
}

// NewRegexDetectorFromSet creates a detector over a loaded pattern set,
// replacing the built-in table entirely
func NewRegexDetectorFromSet(set *PatternSet) (*RegexDetector, error) {
	compiled, err := set.Compile()
	if err != nil {
		return nil, err
	}

	return &RegexDetector{patterns: compiled}, nil
}

// AddPattern registers a custom pattern alongside the existing table.
// A name collision overrides the existing entry.
func (d *RegexDetector) AddPattern(name, label, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid custom pattern '%s': %w", name, err)
	}

	d.patterns[name] = PatternInfo{
		Regex:       re,
		Label:       label,
		Description: fmt.Sprintf("Custom pattern: %s", name),
	}

	return nil
}

// Name identifies the detector in diagnostics
func (d *RegexDetector) Name() string {
	return "regex"
}

// Detect runs every pattern over the text and returns the matches as
// spans. Patterns run in sorted name order so that two patterns matching
// at the same offset always enumerate the same way. Go's regexp reports
// byte offsets; spans carry rune offsets, so matches are converted
// through a byte-to-rune table built once per call.
func (d *RegexDetector) Detect(ctx context.Context, text, language string) ([]core.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offsets := runeOffsets(text)

	names := make([]string, 0, len(d.patterns))
	for name := range d.patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	var spans []core.Span
	for _, name := range names {
		info := d.patterns[name]
		locs := info.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			spans = append(spans, core.Span{
				Start:   offsets[loc[0]],
				End:     offsets[loc[1]],
				Label:   info.Label,
				Content: text[loc[0]:loc[1]],
			})
		}
	}

	return spans, nil
}

// runeOffsets maps every rune-boundary byte offset of text (including
// len(text)) to its rune index. Regex match boundaries always fall on
// rune boundaries, so lookups never miss.
func runeOffsets(text string) map[int]int {
	offsets := make(map[int]int, len(text)+1)
	runeIdx := 0
	for byteIdx := range text {
		offsets[byteIdx] = runeIdx
		runeIdx++
	}
	offsets[len(text)] = runeIdx
	return offsets
}
