// Package merge concatenates the free-text columns of an export into a
// single report column, preserving structured columns.
package merge

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cgeisenberger/lisanon/internal/table"
)

// FreeText merges the given free-text columns into one new column named
// mergedName, joined per row by sep. Fragments are trimmed; nil and blank
// fragments are skipped. A row with no usable fragment gets a nil merged
// value, never an empty string. With an empty column set the table passes
// through unchanged and a warning is returned.
func FreeText(tbl *table.Table, freeText []string, mergedName, sep string) (*table.Table, []string, error) {
	if len(freeText) == 0 {
		warn := "no free-text columns to merge; table passed through unchanged"
		log.Warn().Str("component", "merge").Msg(warn)
		return tbl, []string{warn}, nil
	}

	columns := make([][]*string, 0, len(freeText))
	for _, name := range freeText {
		cells, ok := tbl.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: free-text column %q not present", table.ErrInput, name)
		}
		columns = append(columns, cells)
	}

	rows := tbl.Rows()
	merged := make([]*string, rows)
	for row := 0; row < rows; row++ {
		var fragments []string
		for _, cells := range columns {
			cell := cells[row]
			if cell == nil {
				continue
			}
			frag := strings.TrimSpace(*cell)
			if frag == "" {
				continue
			}
			fragments = append(fragments, frag)
		}
		if len(fragments) == 0 {
			continue
		}
		joined := strings.Join(fragments, sep)
		merged[row] = &joined
	}

	out := tbl.DropColumns(freeText...)
	out, err := out.AppendColumn(mergedName, merged)
	if err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}
