package redact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSurnames = []string{"Müller", "Schmidt", "Koch", "Meier", "Haas"}

func newDictPass(cfg DictionaryConfig) *DictionaryPass {
	return NewDictionaryPass(testSurnames, cfg)
}

func TestDictionaryRedaction(t *testing.T) {
	pass := newDictPass(DictionaryConfig{MinLength: 4, TitlePrefix: true})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain surname",
			in:   "Befund durch Müller erhoben.",
			want: "Befund durch [NAME] erhoben.",
		},
		{
			name: "title absorbed with surname",
			in:   "Dr. Müller anwesend.",
			want: "[NAME] anwesend.",
		},
		{
			name: "prof dr absorbed",
			in:   "Prof. Dr. Schmidt befundet.",
			want: "[NAME] befundet.",
		},
		{
			name: "all caps LIS export",
			in:   "MÜLLER diktiert.",
			want: "[NAME] diktiert.",
		},
		{
			name: "genitive form",
			in:   "Müllers Einschätzung folgend.",
			want: "[NAME] Einschätzung folgend.",
		},
		{
			name: "hyphenated double name redacted whole",
			in:   "Müller-Lüdenscheidt war dabei.",
			want: "[NAME] war dabei.",
		},
		{
			name: "surname ending in s matches itself",
			in:   "Haas zugezogen.",
			want: "[NAME] zugezogen.",
		},
		{
			name: "no partial word match",
			in:   "Kochsalzlösung appliziert.",
			want: "Kochsalzlösung appliziert.",
		},
		{
			name: "unknown name untouched",
			in:   "Obermayr sah den Fall.",
			want: "Obermayr sah den Fall.",
		},
		{
			name: "case insensitive",
			in:   "lt. meier ok",
			want: "lt. [NAME] ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := pass.Apply(context.Background(), []*string{&tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, *out[0])
		})
	}
}

func TestDictionaryMinLengthFilter(t *testing.T) {
	// "Koch" (4 runes) falls below a threshold of 5 and drops out of the
	// effective list — the precision/recall knob.
	pass := newDictPass(DictionaryConfig{MinLength: 5})

	in := "Koch und Müller"
	out, err := pass.Apply(context.Background(), []*string{&in})
	require.NoError(t, err)
	assert.Equal(t, "Koch und [NAME]", *out[0])
}

func TestDictionaryExtraSurnamesBypassFilter(t *testing.T) {
	pass := newDictPass(DictionaryConfig{MinLength: 10, Extra: []string{"Obermayr"}})

	in := "Obermayr und Müller"
	out, err := pass.Apply(context.Background(), []*string{&in})
	require.NoError(t, err)
	assert.Equal(t, "[NAME] und Müller", *out[0], "extras match even below the threshold; filtered base names do not")
}

func TestDictionaryTitleNotAbsorbedWhenDisabled(t *testing.T) {
	pass := newDictPass(DictionaryConfig{MinLength: 4, TitlePrefix: false})

	in := "Dr. Müller anwesend."
	out, err := pass.Apply(context.Background(), []*string{&in})
	require.NoError(t, err)
	assert.Equal(t, "Dr. [NAME] anwesend.", *out[0])
}

func TestDictionarySkipsExistingPlaceholders(t *testing.T) {
	pass := NewDictionaryPass([]string{"Name", "Müller"}, DictionaryConfig{MinLength: 4})

	// "NAME" inside the placeholder must not be rewritten even though it
	// is in the dictionary.
	in := "[NAME] und Müller"
	out, err := pass.Apply(context.Background(), []*string{&in})
	require.NoError(t, err)
	assert.Equal(t, "[NAME] und [NAME]", *out[0])
}

func TestDictionaryNullAndBlankPassThrough(t *testing.T) {
	pass := newDictPass(DictionaryConfig{MinLength: 4})

	blank := "  "
	out, err := pass.Apply(context.Background(), []*string{nil, &blank})
	require.NoError(t, err)
	assert.Nil(t, out[0])
	assert.Equal(t, blank, *out[1])
}

func TestNormalizeSurname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Müller", "müller"},
		{"Müllers", "müller"},
		{"MÜLLER", "müller"},
		{"Els", "els"}, // stem would drop below 3 chars; keep the s
		{"Haas", "haa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSurname(tt.in), tt.in)
	}
}
