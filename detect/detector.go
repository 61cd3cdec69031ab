package detect

import (
	"context"

	"github.com/privguard/privguard-go/core"
)

// Detector is a source of labeled spans. Implementations must slice span
// content from the input text itself (never from detector-internal
// buffers, which may be normalized) and must report offsets in rune
// units. No ordering guarantee is required from a single detector; the
// reconciler sorts.
type Detector interface {
	// Name identifies the detector in diagnostics and audit events
	Name() string

	// Detect returns every span the detector finds in text. The language
	// selector is advisory: detectors without per-language variants
	// ignore it, and detectors with variants fall back to their default
	// language (with a warning diagnostic) when the selector is unknown.
	// A returned error aborts the whole anonymization call.
	Detect(ctx context.Context, text, language string) ([]core.Span, error)
}
