package redact

import (
	"regexp"
	"sort"
)

// span is a half-open [start, end) byte range within a text.
type span struct {
	start, end int
}

// placeholderRE recognizes placeholder literals already present in a text,
// e.g. [NAME] or [FALL-ID]. Local passes must never match inside them.
var placeholderRE = regexp.MustCompile(`\[[A-ZÄÖÜ][A-ZÄÖÜ-]*\]`)

// placeholderSpans returns the ranges covered by existing placeholders.
func placeholderSpans(text string) []span {
	var spans []span
	for _, m := range placeholderRE.FindAllStringIndex(text, -1) {
		spans = append(spans, span{m[0], m[1]})
	}
	return spans
}

// overlapsAny reports whether s intersects any of the given spans.
func overlapsAny(s span, spans []span) bool {
	for _, o := range spans {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}

// mergeSpans collapses overlapping or adjacent spans.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	merged := []span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}

// applySpans replaces each span with the placeholder, right-to-left so
// earlier offsets stay valid.
func applySpans(text string, spans []span, placeholder string) string {
	merged := mergeSpans(spans)
	result := []byte(text)
	for i := len(merged) - 1; i >= 0; i-- {
		s := merged[i]
		result = append(result[:s.start], append([]byte(placeholder), result[s.end:]...)...)
	}
	return string(result)
}
