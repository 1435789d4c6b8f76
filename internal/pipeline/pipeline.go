// Package pipeline sequences the de-identification stages: column
// classification, vault substitution, identity-column removal, free-text
// merging and the ordered redaction passes. The vault travels
// value-in/value-out through every stage; the pipeline never persists it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cgeisenberger/lisanon/internal/classifier"
	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/merge"
	lisotel "github.com/cgeisenberger/lisanon/internal/otel"
	"github.com/cgeisenberger/lisanon/internal/preset"
	"github.com/cgeisenberger/lisanon/internal/redact"
	"github.com/cgeisenberger/lisanon/internal/table"
	"github.com/cgeisenberger/lisanon/internal/vault"
)

var tracer = lisotel.Tracer("github.com/cgeisenberger/lisanon/internal/pipeline")

// Options configure one pipeline run.
type Options struct {
	Preset *preset.Preset
	// Vault from a prior batch; nil starts empty. Two runs sharing a
	// vault must be sequenced by the caller (single-writer discipline).
	Vault vault.Vault
	// Engine is required when the preset's pass list includes "ner".
	Engine engine.NameRedactor
	// ExtraDropPrefixes are treated exactly like the preset's
	// operational drop prefixes.
	ExtraDropPrefixes []string
	// ExtraSurnames are merged into the dictionary pass for this run.
	ExtraSurnames []string
}

// Result pairs the de-identified table with the extended vault and the
// non-fatal warnings collected along the way.
type Result struct {
	Table          *table.Table
	Vault          vault.Vault
	Classification *classifier.Classification
	Warnings       []string
}

// Run executes the full pipeline. Any fatal error aborts with no partial
// output; warnings (ambiguous matches, empty optional roles) degrade
// gracefully and are surfaced on the result.
func Run(ctx context.Context, tbl *table.Table, opts Options) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	if opts.Preset == nil {
		return nil, fmt.Errorf("%w: no preset configured", preset.ErrMissingKey)
	}
	p := opts.Preset

	cls, err := classifier.Classify(ctx, tbl.Names(), classifier.FromPreset(p, opts.ExtraDropPrefixes...))
	if err != nil {
		return nil, err
	}
	warnings := append([]string(nil), cls.Warnings...)

	ids, ok := tbl.Column(cls.IdentifierColumn)
	if !ok {
		return nil, fmt.Errorf("%w: identifier column %q not present", table.ErrInput, cls.IdentifierColumn)
	}
	vlt, subs := vault.MintOrReuse(ids, opts.Vault)
	tbl, err = vault.Apply(tbl, cls.IdentifierColumn, subs)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("identifier_column", cls.IdentifierColumn).
		Int("vault_size", len(vlt)).
		Int("substitutions", len(subs)).
		Func(lisotel.LogTraceFields(ctx)).
		Msg("identifiers_substituted")

	tbl = tbl.DropColumns(cls.DropColumns...)

	tbl, mergeWarnings, err := merge.FreeText(tbl, cls.FreeTextColumns, p.Merge.ColumnName, p.Merge.Separator)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, mergeWarnings...)

	if tbl.Has(p.Merge.ColumnName) {
		tbl, err = runPasses(ctx, tbl, p, opts)
		if err != nil {
			return nil, err
		}
	} else {
		warn := "no merged text column; redaction passes skipped"
		log.Warn().Str("component", "pipeline").Msg(warn)
		warnings = append(warnings, warn)
	}

	span.SetAttributes(
		attribute.Int("pipeline.rows", tbl.Rows()),
		attribute.Int("pipeline.vault_size", len(vlt)),
		attribute.Int("pipeline.warnings", len(warnings)),
	)

	return &Result{Table: tbl, Vault: vlt, Classification: cls, Warnings: warnings}, nil
}

// runPasses executes the configured redaction passes in order, each
// rewriting the merged column and appending its own delta-count column.
func runPasses(ctx context.Context, tbl *table.Table, p *preset.Preset, opts Options) (*table.Table, error) {
	passes, err := buildPasses(p, opts)
	if err != nil {
		return nil, err
	}

	for _, pass := range passes {
		texts, _ := tbl.Column(p.Merge.ColumnName)
		after, deltas, err := redact.Run(ctx, pass, texts)
		if err != nil {
			return nil, err
		}
		if tbl, err = tbl.ReplaceColumn(p.Merge.ColumnName, after); err != nil {
			return nil, err
		}
		if tbl, err = tbl.AppendIntColumn(redact.DeltaColumn(pass.Name()), deltas); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func buildPasses(p *preset.Preset, opts Options) ([]redact.Pass, error) {
	r := p.Redaction
	var passes []redact.Pass
	for _, name := range r.Passes {
		switch name {
		case "ner":
			passes = append(passes, redact.NewNERPass(opts.Engine, r.NamePlaceholder, r.Model))
		case "case_id":
			pass, err := redact.NewCaseIDPass(r.CaseIDPattern, r.CaseIDPlaceholder)
			if err != nil {
				return nil, err
			}
			passes = append(passes, pass)
		case "dictionary":
			surnames, err := p.Surnames()
			if err != nil {
				return nil, err
			}
			passes = append(passes, redact.NewDictionaryPass(surnames, redact.DictionaryConfig{
				MinLength:   r.MinSurnameLength,
				TitlePrefix: r.AbsorbTitles(),
				Placeholder: r.NamePlaceholder,
				Extra:       opts.ExtraSurnames,
			}))
		default:
			return nil, fmt.Errorf("unknown redaction pass %q (known: ner, case_id, dictionary)", name)
		}
	}
	return passes, nil
}
