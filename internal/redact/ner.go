package redact

import (
	"context"
	"fmt"

	"github.com/cgeisenberger/lisanon/internal/engine"
)

// NERPass delegates person-name redaction to the external entity-
// recognition engine: batch in, batch out, name spans replaced. All
// algorithmic content lives in the engine; this pass contributes batching
// and delta accounting only.
type NERPass struct {
	Engine          engine.NameRedactor
	PlaceholderText string
	Model           string
}

// NewNERPass wires the engine handle. Placeholder and model fall back to
// [NAME] and de_core_news_lg when empty.
func NewNERPass(e engine.NameRedactor, placeholder, model string) *NERPass {
	if placeholder == "" {
		placeholder = "[NAME]"
	}
	if model == "" {
		model = "de_core_news_lg"
	}
	return &NERPass{Engine: e, PlaceholderText: placeholder, Model: model}
}

func (p *NERPass) Name() string        { return "ner" }
func (p *NERPass) Placeholder() string { return p.PlaceholderText }

// Apply fails fast with engine.ErrUnavailable before touching any row
// when the engine handle is missing or not ready; partial redaction
// within a batch is not a valid terminal state.
func (p *NERPass) Apply(ctx context.Context, texts []*string) ([]*string, error) {
	if p.Engine == nil {
		return nil, fmt.Errorf("%w: no engine handle configured", engine.ErrUnavailable)
	}
	if err := p.Engine.Ready(ctx); err != nil {
		return nil, err
	}
	return p.Engine.RedactNames(ctx, texts, engine.Options{
		Placeholder: p.PlaceholderText,
		Model:       p.Model,
	})
}
