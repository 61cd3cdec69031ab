package core

import "fmt"

// placeholderAllocator hands out <LABEL_N> tokens with a per-label
// counter. It is created fresh for every Substitute call, so concurrent
// anonymizations never share numbering state.
type placeholderAllocator struct {
	counts map[string]int
}

func newPlaceholderAllocator() *placeholderAllocator {
	return &placeholderAllocator{counts: make(map[string]int)}
}

// next returns the placeholder for the next occurrence of label. Counters
// are 1-based and advance in the order accepted spans appear in the text,
// so numbering depends only on text position, not on which detector
// produced the span. The label is passed through verbatim.
func (a *placeholderAllocator) next(label string) string {
	a.counts[label]++
	return fmt.Sprintf("<%s_%d>", label, a.counts[label])
}
