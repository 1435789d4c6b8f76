// Package engine defines the handle to the external name-entity
// recognition engine. The original implementation kept a lazily loaded
// model in ambient global state; here the engine is an explicit,
// caller-constructed value with an explicit readiness check.
package engine

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a redaction pass is invoked before its
// backing engine is ready. Passes fail fast on it, before touching any row.
var ErrUnavailable = errors.New("redaction engine not available")

// Options parameterize a batched NER call.
type Options struct {
	Placeholder string // replacement for detected person-name spans
	Model       string // model identifier, e.g. "de_core_news_lg"
}

// NameRedactor is the contract of the external NER engine: one batched
// call per pipeline run, same length and row order out as in, person-name
// spans replaced with the placeholder. A call either completes for the
// whole batch or fails for the whole batch.
type NameRedactor interface {
	// Ready reports whether the engine can serve requests. A non-nil
	// error wraps ErrUnavailable.
	Ready(ctx context.Context) error
	// RedactNames rewrites a batch of optional strings. Nil entries are
	// returned as nil.
	RedactNames(ctx context.Context, texts []*string, opts Options) ([]*string, error)
}
