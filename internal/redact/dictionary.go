package redact

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordRE tokenizes free text into Latin + extended-Latin words (umlauts,
// eszett), including hyphenated double names like Müller-Schmidt.
var wordRE = regexp.MustCompile(
	`[A-Za-z\x{00c0}-\x{024f}\x{1e00}-\x{1eff}]+` +
		`(?:-[A-Za-z\x{00c0}-\x{024f}\x{1e00}-\x{1eff}]+)*`,
)

// titleRE matches a medical-title token immediately preceding a surname
// (Dr., Prof. Dr., OA, OÄ, ...) so the whole "title + surname" span is
// replaced as one unit.
var titleRE = regexp.MustCompile(
	`(?i)((?:(?:Prof\.?\s+)?Dr\.?|Prof\.?|Doz\.?|PD\.?|OA\.?|OÄ\.?|CA\.?|CÄ\.?)\s*)$`,
)

// DictionaryConfig parameterizes a DictionaryPass.
type DictionaryConfig struct {
	// MinLength filters the base surname list before matching. Short
	// surnames are indistinguishable from common words; this is the
	// precision/recall knob, not a correctness setting.
	MinLength int
	// TitlePrefix extends a match backward over an immediately preceding
	// medical title.
	TitlePrefix bool
	// Placeholder defaults to [NAME].
	Placeholder string
	// Extra surnames are merged into the effective list for this pass,
	// bypassing the MinLength filter — the caller asked for them.
	Extra []string
}

// DictionaryPass redacts curated surnames from free text: whole words
// only, case-insensitive, with genitive-s and hyphenated double-name
// handling. Matches never overlap placeholder text inserted by a
// previous pass.
type DictionaryPass struct {
	surnames    map[string]bool
	titlePrefix bool
	placeholder string
}

// NewDictionaryPass builds the pass from the base surname list and config.
func NewDictionaryPass(surnames []string, cfg DictionaryConfig) *DictionaryPass {
	if cfg.Placeholder == "" {
		cfg.Placeholder = "[NAME]"
	}
	set := make(map[string]bool, len(surnames)+len(cfg.Extra))
	for _, n := range surnames {
		n = strings.TrimSpace(n)
		if n == "" || utf8.RuneCountInString(n) < cfg.MinLength {
			continue
		}
		set[strings.ToLower(n)] = true
	}
	for _, n := range cfg.Extra {
		n = strings.TrimSpace(n)
		if n != "" {
			set[strings.ToLower(n)] = true
		}
	}
	return &DictionaryPass{
		surnames:    set,
		titlePrefix: cfg.TitlePrefix,
		placeholder: cfg.Placeholder,
	}
}

func (p *DictionaryPass) Name() string        { return "dictionary" }
func (p *DictionaryPass) Placeholder() string { return p.placeholder }

// Apply rewrites each non-blank text in the batch.
func (p *DictionaryPass) Apply(ctx context.Context, texts []*string) ([]*string, error) {
	out := make([]*string, len(texts))
	for i, t := range texts {
		if t == nil || strings.TrimSpace(*t) == "" {
			out[i] = t
			continue
		}
		redacted := p.redact(*t)
		out[i] = &redacted
	}
	return out, nil
}

func (p *DictionaryPass) redact(text string) string {
	taken := placeholderSpans(text)
	var spans []span

	for _, m := range wordRE.FindAllStringIndex(text, -1) {
		s := span{m[0], m[1]}
		if overlapsAny(s, taken) {
			continue
		}
		token := text[s.start:s.end]

		// Hyphenated double names: any matching part redacts the whole token.
		matched := false
		for _, part := range strings.Split(token, "-") {
			if p.surnames[strings.ToLower(part)] || p.surnames[normalizeSurname(part)] {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		if p.titlePrefix {
			if loc := titleRE.FindStringIndex(text[:s.start]); loc != nil {
				s.start = loc[0]
			}
		}
		spans = append(spans, s)
	}

	if len(spans) == 0 {
		return text
	}
	return applySpans(text, spans, p.placeholder)
}

// normalizeSurname lowercases a token and strips a trailing genitive -s
// when the remaining stem keeps at least three characters, so "Müllers"
// and "MÜLLER" both hit the dictionary entry "müller".
func normalizeSurname(word string) string {
	w := strings.ToLower(word)
	if strings.HasSuffix(w, "s") && utf8.RuneCountInString(w) > 3 {
		return w[:len(w)-1]
	}
	return w
}
