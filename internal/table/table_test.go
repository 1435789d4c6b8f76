package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesShape(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr bool
	}{
		{
			name: "equal lengths",
			cols: []Column{
				{Name: "a", Cells: []*string{Str("1"), nil}},
				{Name: "b", Cells: []*string{nil, Str("2")}},
			},
		},
		{
			name: "ragged columns",
			cols: []Column{
				{Name: "a", Cells: []*string{Str("1")}},
				{Name: "b", Cells: []*string{Str("1"), Str("2")}},
			},
			wantErr: true,
		},
		{
			name: "duplicate names",
			cols: []Column{
				{Name: "a", Cells: []*string{Str("1")}},
				{Name: "a", Cells: []*string{Str("2")}},
			},
			wantErr: true,
		},
		{
			name:    "empty name",
			cols:    []Column{{Name: "", Cells: nil}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShape)
				assert.ErrorIs(t, err, ErrInput, "shape errors are input errors")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDropColumnsIdempotent(t *testing.T) {
	tbl := MustNew(
		Column{Name: "a", Cells: []*string{Str("1")}},
		Column{Name: "b", Cells: []*string{Str("2")}},
		Column{Name: "c", Cells: []*string{Str("3")}},
	)

	out := tbl.DropColumns("b", "missing")
	assert.Equal(t, []string{"a", "c"}, out.Names())

	// Dropping again is a no-op.
	out = out.DropColumns("b")
	assert.Equal(t, []string{"a", "c"}, out.Names())

	// Source table untouched.
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())
}

func TestAppendAndReplaceColumn(t *testing.T) {
	tbl := MustNew(Column{Name: "a", Cells: []*string{Str("1"), Str("2")}})

	out, err := tbl.AppendColumn("b", []*string{nil, Str("x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Names())

	_, err = out.AppendColumn("a", []*string{nil, nil})
	assert.ErrorIs(t, err, ErrShape, "duplicate append rejected")

	_, err = out.AppendColumn("c", []*string{nil})
	assert.ErrorIs(t, err, ErrShape, "wrong length rejected")

	out2, err := out.ReplaceColumn("b", []*string{Str("y"), nil})
	require.NoError(t, err)
	cells, _ := out2.Column("b")
	assert.Equal(t, "y", *cells[0])
	assert.Nil(t, cells[1])

	_, err = out.ReplaceColumn("zzz", []*string{nil, nil})
	assert.ErrorIs(t, err, ErrInput)
}

func TestAppendIntColumn(t *testing.T) {
	tbl := MustNew(Column{Name: "a", Cells: []*string{Str("1"), Str("2")}})
	out, err := tbl.AppendIntColumn("n", []int{0, 3})
	require.NoError(t, err)

	cells, _ := out.Column("n")
	assert.Equal(t, "0", *cells[0])
	assert.Equal(t, "3", *cells[1])
}

func TestReadCSV(t *testing.T) {
	in := "Fallnummer;Patienten-Name;Diagnose\nAK/1/24;Maier, Hans;Adenom\nAK/2/24;;\n"
	tbl, err := ReadCSV(strings.NewReader(in), ';')
	require.NoError(t, err)

	assert.Equal(t, []string{"fallnummer", "patienten_name", "diagnose"}, tbl.Names())
	assert.Equal(t, 2, tbl.Rows())

	cells, _ := tbl.Column("patienten_name")
	assert.Equal(t, "Maier, Hans", *cells[0])
	assert.Nil(t, cells[1], "empty cells become null")
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), ';')
	assert.ErrorIs(t, err, ErrInput, "no header")

	_, err = ReadCSV(strings.NewReader("a;b\n1\n"), ';')
	assert.ErrorIs(t, err, ErrInput, "ragged row")

	_, err = ReadCSVFile("/nonexistent/export.csv", ';')
	assert.ErrorIs(t, err, ErrInput)
}

func TestCSVRoundTripNulls(t *testing.T) {
	tbl := MustNew(
		Column{Name: "a", Cells: []*string{Str("x"), nil}},
		Column{Name: "b", Cells: []*string{nil, Str("y")}},
	)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf, ';'))

	back, err := ReadCSV(&buf, ';')
	require.NoError(t, err)
	cells, _ := back.Column("a")
	assert.Equal(t, "x", *cells[0])
	assert.Nil(t, cells[1])
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fallnummer", "fallnummer"},
		{" Patienten-Name ", "patienten_name"},
		{"Entnahme.Datum", "entnahme_datum"},
		{"MIKROSKOPIE", "mikroskopie"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in))
	}
}
