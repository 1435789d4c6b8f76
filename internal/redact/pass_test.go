package redact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgeisenberger/lisanon/internal/engine"
)

func strp(s string) *string { return &s }

// stubPass rewrites texts with a fixed function; used to exercise the
// delta accounting independent of any real pass.
type stubPass struct {
	name        string
	placeholder string
	fn          func([]*string) ([]*string, error)
}

func (p *stubPass) Name() string        { return p.name }
func (p *stubPass) Placeholder() string { return p.placeholder }
func (p *stubPass) Apply(_ context.Context, texts []*string) ([]*string, error) {
	return p.fn(texts)
}

func replaceAll(old, new string) func([]*string) ([]*string, error) {
	return func(texts []*string) ([]*string, error) {
		out := make([]*string, len(texts))
		for i, t := range texts {
			if t == nil {
				continue
			}
			s := *t
			for {
				idx := indexOf(s, old)
				if idx < 0 {
					break
				}
				s = s[:idx] + new + s[idx+len(old):]
			}
			out[i] = &s
		}
		return out, nil
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestRunDeltaAccounting(t *testing.T) {
	pass := &stubPass{name: "stub", placeholder: "[NAME]", fn: replaceAll("Hans", "[NAME]")}

	texts := []*string{
		strp("Hans war hier. Hans ging."),
		strp("Niemand da."),
		nil,
		strp("[NAME] und Hans"), // one placeholder already present
	}

	after, deltas, err := Run(context.Background(), pass, texts)
	require.NoError(t, err)

	assert.Equal(t, "[NAME] war hier. [NAME] ging.", *after[0])
	assert.Equal(t, []int{2, 0, 0, 1}, deltas, "pre-existing placeholders are not attributed")
	assert.Nil(t, after[2])
}

func TestRunDeltaFlooredAtZero(t *testing.T) {
	// A pass that removes a placeholder must not report a negative delta.
	pass := &stubPass{name: "stub", placeholder: "[NAME]", fn: replaceAll("[NAME]", "x")}

	_, deltas, err := Run(context.Background(), pass, []*string{strp("[NAME] [NAME]")})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, deltas)
}

func TestRunAttributionAcrossSharedPlaceholder(t *testing.T) {
	// Two sequential passes share a placeholder; the sum of their deltas
	// must equal the total number of placeholders introduced.
	pass1 := &stubPass{name: "one", placeholder: "[NAME]", fn: replaceAll("Hans", "[NAME]")}
	pass2 := &stubPass{name: "two", placeholder: "[NAME]", fn: replaceAll("Meier", "[NAME]")}

	texts := []*string{strp("Hans Meier und Hans")}

	after, d1, err := Run(context.Background(), pass1, texts)
	require.NoError(t, err)
	after, d2, err := Run(context.Background(), pass2, after)
	require.NoError(t, err)

	assert.Equal(t, 2, d1[0])
	assert.Equal(t, 1, d2[0])
	assert.Equal(t, "[NAME] [NAME] und [NAME]", *after[0])
}

func TestRunLengthMismatch(t *testing.T) {
	pass := &stubPass{name: "bad", placeholder: "[NAME]", fn: func(texts []*string) ([]*string, error) {
		return texts[:len(texts)-1], nil
	}}

	_, _, err := Run(context.Background(), pass, []*string{strp("a"), strp("b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 2")
}

func TestRunPropagatesPassError(t *testing.T) {
	wantErr := errors.New("engine exploded")
	pass := &stubPass{name: "boom", placeholder: "[NAME]", fn: func([]*string) ([]*string, error) {
		return nil, wantErr
	}}

	_, _, err := Run(context.Background(), pass, []*string{strp("a")})
	assert.ErrorIs(t, err, wantErr)
}

func TestDeltaColumn(t *testing.T) {
	assert.Equal(t, "n_redactions_ner", DeltaColumn("ner"))
	assert.Equal(t, "n_redactions_dictionary", DeltaColumn("dictionary"))
}

// stubEngine implements engine.NameRedactor for NER pass tests.
type stubEngine struct {
	ready error
	fn    func([]*string) []*string
}

func (e *stubEngine) Ready(context.Context) error { return e.ready }
func (e *stubEngine) RedactNames(_ context.Context, texts []*string, _ engine.Options) ([]*string, error) {
	return e.fn(texts), nil
}

func TestNERPassRequiresEngine(t *testing.T) {
	pass := NewNERPass(nil, "", "")
	_, err := pass.Apply(context.Background(), []*string{strp("a")})
	assert.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestNERPassFailsFastWhenNotReady(t *testing.T) {
	e := &stubEngine{ready: engine.ErrUnavailable}
	pass := NewNERPass(e, "", "")

	_, err := pass.Apply(context.Background(), []*string{strp("a")})
	assert.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestNERPassDelegates(t *testing.T) {
	e := &stubEngine{fn: replaceAllNoErr("Huber", "[NAME]")}
	pass := NewNERPass(e, "", "")

	assert.Equal(t, "ner", pass.Name())
	assert.Equal(t, "[NAME]", pass.Placeholder())

	out, err := pass.Apply(context.Background(), []*string{strp("OA Huber anwesend.")})
	require.NoError(t, err)
	assert.Equal(t, "OA [NAME] anwesend.", *out[0])
}

func replaceAllNoErr(old, new string) func([]*string) []*string {
	fn := replaceAll(old, new)
	return func(texts []*string) []*string {
		out, _ := fn(texts)
		return out
	}
}

func TestMergeSpans(t *testing.T) {
	tests := []struct {
		name string
		in   []span
		want []span
	}{
		{name: "empty", in: nil, want: nil},
		{
			name: "disjoint stay separate",
			in:   []span{{0, 3}, {5, 8}},
			want: []span{{0, 3}, {5, 8}},
		},
		{
			name: "overlapping collapse",
			in:   []span{{2, 6}, {0, 4}},
			want: []span{{0, 6}},
		},
		{
			name: "adjacent collapse",
			in:   []span{{0, 3}, {3, 5}},
			want: []span{{0, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeSpans(tt.in))
		})
	}
}

func TestApplySpans(t *testing.T) {
	got := applySpans("Dr. Huber und Frau Maier", []span{{0, 9}, {19, 24}}, "[NAME]")
	assert.Equal(t, "[NAME] und Frau [NAME]", got)
}

func TestPlaceholderSpans(t *testing.T) {
	spans := placeholderSpans("[NAME] sah [FALL-ID] an")
	require.Len(t, spans, 2)
	assert.True(t, overlapsAny(span{1, 4}, spans))
	assert.False(t, overlapsAny(span{7, 10}, spans))
}
