package redact

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DefaultCaseIDPattern matches LIS case identifiers embedded in free text:
// AK, EK, A or E, a slash, 1-6 digits, a slash, 1-2 digits, as a whole
// token. Examples: AK/123456/24, A/1234/24, EK/999/1.
const DefaultCaseIDPattern = `\b(?:AK|EK|A|E)/\d{1,6}/\d{1,2}\b`

// CaseIDPass replaces case-identifier tokens with a placeholder distinct
// from the name placeholder, so downstream consumers can tell the two
// redaction kinds apart.
type CaseIDPass struct {
	re          *regexp.Regexp
	placeholder string
}

// NewCaseIDPass compiles the pass. An empty pattern selects
// DefaultCaseIDPattern; an empty placeholder selects [FALL-ID]. An invalid
// override pattern is a configuration error.
func NewCaseIDPass(pattern, placeholder string) (*CaseIDPass, error) {
	if pattern == "" {
		pattern = DefaultCaseIDPattern
	}
	if placeholder == "" {
		placeholder = "[FALL-ID]"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling case-ID pattern %q: %w", pattern, err)
	}
	return &CaseIDPass{re: re, placeholder: placeholder}, nil
}

func (p *CaseIDPass) Name() string        { return "case_id" }
func (p *CaseIDPass) Placeholder() string { return p.placeholder }

// Apply rewrites each non-blank text, skipping matches that overlap
// placeholders inserted by earlier passes.
func (p *CaseIDPass) Apply(ctx context.Context, texts []*string) ([]*string, error) {
	out := make([]*string, len(texts))
	for i, t := range texts {
		if t == nil || strings.TrimSpace(*t) == "" {
			out[i] = t
			continue
		}
		text := *t
		taken := placeholderSpans(text)
		var spans []span
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			s := span{m[0], m[1]}
			if overlapsAny(s, taken) {
				continue
			}
			spans = append(spans, s)
		}
		if len(spans) == 0 {
			out[i] = t
			continue
		}
		redacted := applySpans(text, spans, p.placeholder)
		out[i] = &redacted
	}
	return out, nil
}
