package core

import (
	"sort"
	"strconv"
)

// Reconcile merges the concatenated detector output for one text into an
// ordered, non-overlapping span sequence.
//
// Spans with out-of-bounds or inverted offsets are dropped with a
// warning-level audit event before anything touches the text. Surviving
// spans have their content re-sliced from the source text, since some
// detectors normalize whitespace or casing in the content they report.
//
// The accepted set is chosen by a stable sort on start offset followed by
// a greedy left-to-right scan: a span is accepted iff it starts at or
// after the end of the previously accepted span. Because the sort is
// stable, two spans sharing a start are won by whichever detector was
// enumerated first. This leftmost-start, first-detected-wins rule is a
// compatibility contract: a longer or more specific span that starts
// later never displaces an earlier one, and fully nested spans are always
// rejected. Overlap rejections are silent.
func Reconcile(text string, spans []Span) []Span {
	runes := []rune(text)

	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		if !s.Valid(len(runes)) {
			LogEvent(AuditLog{
				EventType: "span_dropped",
				Severity:  SeverityWarning,
				Metadata: map[string]string{
					"label": s.Label,
					"start": strconv.Itoa(s.Start),
					"end":   strconv.Itoa(s.End),
				},
			})
			continue
		}
		s.Content = string(runes[s.Start:s.End])
		valid = append(valid, s)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start < valid[j].Start
	})

	accepted := make([]Span, 0, len(valid))
	lastEnd := 0
	for _, s := range valid {
		if s.Start >= lastEnd {
			accepted = append(accepted, s)
			lastEnd = s.End
		}
	}

	return accepted
}
