// Package vault implements the identifier vault: an append-only, bijective
// mapping from raw case identifiers to opaque UUID tokens. The vault is
// passed value-in/value-out through the pipeline and returned to the
// caller, who owns persistence; lisanon never writes it to storage itself.
package vault

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cgeisenberger/lisanon/internal/table"
)

// TokenLength is the textual length of a minted token (UUID-v4 form).
const TokenLength = 36

// Vault maps raw case identifiers to their substitution tokens. Once a
// token is minted for an identifier it never changes, within a run or
// across runs that carry the vault forward.
type Vault map[string]string

// New returns an empty vault.
func New() Vault {
	return make(Vault)
}

// Clone returns an independent copy.
func (v Vault) Clone() Vault {
	out := make(Vault, len(v))
	for k, tok := range v {
		out[k] = tok
	}
	return out
}

// MintOrReuse extends the vault with fresh tokens for every distinct
// non-nil identifier not already present and returns the extended vault
// together with the substitution map to apply. Existing entries keep their
// stored token; nil identifiers are left untouched. The input vault is
// never mutated.
func MintOrReuse(ids []*string, existing Vault) (Vault, map[string]string) {
	out := existing.Clone()
	if out == nil {
		out = New()
	}

	minted := make(map[string]bool, len(out))
	for _, tok := range out {
		minted[tok] = true
	}

	subs := make(map[string]string)
	for _, id := range ids {
		if id == nil {
			continue
		}
		raw := *id
		if tok, ok := out[raw]; ok {
			subs[raw] = tok
			continue
		}
		tok := uuid.NewString()
		// Collision odds are negligible, but a duplicate token would break
		// the bijectivity guarantee, so check anyway.
		for minted[tok] {
			tok = uuid.NewString()
		}
		out[raw] = tok
		minted[tok] = true
		subs[raw] = tok
	}
	return out, subs
}

// Apply replaces the values of the identifier column with their mapped
// tokens. Cells without a mapping entry (nil identifiers) pass through
// unchanged.
func Apply(tbl *table.Table, idColumn string, subs map[string]string) (*table.Table, error) {
	cells, ok := tbl.Column(idColumn)
	if !ok {
		return nil, fmt.Errorf("%w: identifier column %q not present", table.ErrInput, idColumn)
	}
	out := make([]*string, len(cells))
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		if tok, ok := subs[*cell]; ok {
			t := tok
			out[i] = &t
		} else {
			out[i] = cell
		}
	}
	return tbl.ReplaceColumn(idColumn, out)
}

// MarshalJSON-friendly persistence helpers. The CLI acts as the
// persisting caller; the pipeline itself never touches disk.

// Encode renders the vault as indented JSON.
func (v Vault) Encode() ([]byte, error) {
	return json.MarshalIndent(map[string]string(v), "", "  ")
}

// Decode parses a vault previously written with Encode.
func Decode(data []byte) (Vault, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing vault JSON: %w", err)
	}
	return Vault(m), nil
}
