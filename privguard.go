// Package privguard anonymizes personally identifiable information in
// text and reverses the anonymization exactly. Detection is hybrid:
// regex patterns find structured PII (emails, phones, IBANs) while an
// optional external NER model finds unstructured entities (persons,
// locations, organizations). Each accepted detection is replaced by a
// stable <LABEL_N> placeholder, and the returned restoration table maps
// every placeholder back to its original content.
package privguard

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/privguard/privguard-go/core"
	"github.com/privguard/privguard-go/detect"
)

// DefaultLanguage is used when Anonymize receives an empty selector
const DefaultLanguage = "en"

// Guard runs registered detectors over a text and feeds their combined
// output through the reconciliation and substitution engine.
//
// Detector order matters: when two detections share a start offset, the
// earlier-enumerated detector wins. The regex detector always runs
// first, so structured matches beat overlapping model entities starting
// at the same position.
type Guard struct {
	regex *detect.RegexDetector
	extra []detect.Detector

	detectors []detect.Detector

	// custom patterns queued until the regex detector exists
	custom []customPattern
}

type customPattern struct {
	name    string
	label   string
	pattern string
}

// Option configures a Guard during construction
type Option func(*Guard) error

// WithPatternSet replaces the built-in regex patterns with a YAML
// pattern set loaded from path
func WithPatternSet(path string) Option {
	return func(g *Guard) error {
		set, err := detect.LoadPatternSet(path)
		if err != nil {
			return err
		}

		d, err := detect.NewRegexDetectorFromSet(set)
		if err != nil {
			return err
		}

		core.LogEvent(core.AuditLog{
			EventType: "pattern_set_loaded",
			Metadata: map[string]string{
				"path":    path,
				"version": set.Metadata.Version,
				"count":   fmt.Sprintf("%d", len(set.Patterns)),
			},
		})

		g.regex = d
		return nil
	}
}

// WithCustomPattern registers an additional regex pattern alongside the
// active pattern table
func WithCustomPattern(name, label, pattern string) Option {
	return func(g *Guard) error {
		g.custom = append(g.custom, customPattern{name: name, label: label, pattern: pattern})
		return nil
	}
}

// WithNERServer registers a model-based detector backed by an external
// NER server. An empty serverPath triggers discovery via environment
// variables and common installation locations.
func WithNERServer(serverPath string, config *detect.NERConfig) Option {
	return func(g *Guard) error {
		d, err := detect.NewNERDetector(serverPath, config)
		if err != nil {
			return fmt.Errorf("failed to initialize NER detector: %w", err)
		}

		g.extra = append(g.extra, d)
		return nil
	}
}

// WithDetector registers an arbitrary additional detector. Detectors run
// after the regex detector, in registration order.
func WithDetector(d detect.Detector) Option {
	return func(g *Guard) error {
		g.extra = append(g.extra, d)
		return nil
	}
}

// New creates a Guard. The built-in regex detector is always present
// (replaceable via WithPatternSet); everything else is opt-in.
func New(opts ...Option) (*Guard, error) {
	g := &Guard{}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if g.regex == nil {
		g.regex = detect.NewRegexDetector()
	}

	for _, c := range g.custom {
		if err := g.regex.AddPattern(c.name, c.label, c.pattern); err != nil {
			return nil, err
		}
	}
	g.custom = nil

	g.detectors = append([]detect.Detector{g.regex}, g.extra...)

	return g, nil
}

// Anonymize replaces every detected PII span in text with a <LABEL_N>
// placeholder and returns the sanitized text together with the
// restoration table needed to reverse it. The table is owned by the
// caller, is specific to this one call, and must never be merged with or
// applied to another text.
//
// Detectors run concurrently, but their outputs are fully materialized
// into registration-order slots before reconciliation, so the conflict
// tie break stays deterministic. Any detector error aborts the call; no
// partial output is produced.
func (g *Guard) Anonymize(ctx context.Context, text, language string) (string, map[string]string, error) {
	if language == "" {
		language = DefaultLanguage
	}

	results := make([][]core.Span, len(g.detectors))
	errs := make([]error, len(g.detectors))

	var wg sync.WaitGroup
	for i, d := range g.detectors {
		wg.Add(1)
		go func(i int, d detect.Detector) {
			defer wg.Done()
			results[i], errs[i] = d.Detect(ctx, text, language)
		}(i, d)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return "", nil, fmt.Errorf("detector %s failed: %w", g.detectors[i].Name(), err)
		}
	}

	var spans []core.Span
	for _, r := range results {
		spans = append(spans, r...)
	}

	accepted := core.Reconcile(text, spans)
	sanitized, table := core.Substitute(text, accepted)

	core.LogEvent(core.AuditLog{
		EventType: "anonymize_complete",
		Language:  language,
		Input:     text,
		Sanitized: sanitized,
		SpanCount: len(accepted),
		Labels:    labelCounts(accepted),
	})

	return sanitized, table, nil
}

// Close shuts down detectors that hold external resources (the NER
// server process, if one is registered)
func (g *Guard) Close() error {
	var firstErr error
	for _, d := range g.detectors {
		if closer, ok := d.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Restore inverts an Anonymize call given its sanitized output and
// restoration table. It needs no access to the detectors: the table
// alone carries everything required for exact reconstruction.
func Restore(sanitized string, table map[string]string) string {
	return core.Restore(sanitized, table)
}

// Anonymize is a convenience wrapper that runs a regex-only Guard over a
// single text
func Anonymize(text, language string) (string, map[string]string, error) {
	g, err := New()
	if err != nil {
		return "", nil, err
	}

	return g.Anonymize(context.Background(), text, language)
}

// labelCounts tallies accepted spans per label for audit statistics
func labelCounts(accepted []core.Span) map[string]int {
	if len(accepted) == 0 {
		return nil
	}

	counts := make(map[string]int, len(accepted))
	for _, s := range accepted {
		counts[s.Label]++
	}
	return counts
}
