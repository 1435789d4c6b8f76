// Package redact implements the layered text-redaction protocol: a uniform
// pass contract, delta accounting that attributes newly introduced
// placeholders to the pass that inserted them, and the three built-in
// passes (entity recognition, case-ID pattern, surname dictionary).
package redact

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	lisotel "github.com/cgeisenberger/lisanon/internal/otel"
)

var tracer = lisotel.Tracer("github.com/cgeisenberger/lisanon/internal/redact")

// Pass is one batched text-rewriting step over the merged report column.
// Apply is whole-batch-or-nothing: it either rewrites every row or fails
// without partial output.
type Pass interface {
	// Name identifies the pass; it names the delta-count column.
	Name() string
	// Placeholder is the literal this pass substitutes for redacted spans.
	Placeholder() string
	// Apply rewrites a batch of optional strings. Nil entries pass
	// through as nil; output length equals input length.
	Apply(ctx context.Context, texts []*string) ([]*string, error)
}

// DeltaColumn returns the name of the integer column recording a pass's
// per-row redaction counts.
func DeltaColumn(passName string) string {
	return "n_redactions_" + passName
}

// Run executes a pass with delta accounting. Per row the delta is the
// number of placeholder occurrences in the output minus those already in
// the input, floored at zero — several passes share a placeholder and run
// sequentially over the same field, so absolute counts would double-count
// spans inserted by earlier passes.
func Run(ctx context.Context, p Pass, texts []*string) ([]*string, []int, error) {
	ctx, span := tracer.Start(ctx, "redact.pass")
	span.SetAttributes(attribute.String("redact.pass", p.Name()))
	defer span.End()

	after, err := p.Apply(ctx, texts)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("pass %s: %w", p.Name(), err)
	}
	if len(after) != len(texts) {
		return nil, nil, fmt.Errorf("pass %s: returned %d texts, want %d", p.Name(), len(after), len(texts))
	}

	placeholder := p.Placeholder()
	deltas := make([]int, len(texts))
	total := 0
	for i := range texts {
		d := countOccurrences(after[i], placeholder) - countOccurrences(texts[i], placeholder)
		if d < 0 {
			d = 0
		}
		deltas[i] = d
		total += d
	}

	RecordPassMetrics(ctx, p.Name(), len(texts), total)
	span.SetAttributes(attribute.Int("redact.new_spans", total))

	return after, deltas, nil
}

func countOccurrences(s *string, placeholder string) int {
	if s == nil || placeholder == "" {
		return 0
	}
	return strings.Count(*s, placeholder)
}
