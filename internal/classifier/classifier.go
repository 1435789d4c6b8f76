// Package classifier assigns a role to every column of a LIS export based
// on the prefix lists of a preset. Classification is a pure function over
// column names and positions, callable without running the pipeline.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	lisotel "github.com/cgeisenberger/lisanon/internal/otel"
	"github.com/cgeisenberger/lisanon/internal/preset"
)

var tracer = lisotel.Tracer("github.com/cgeisenberger/lisanon/internal/classifier")

// ErrColumnNotFound is returned when a required anchor column (identifier
// or structured split point) cannot be located by prefix.
var ErrColumnNotFound = errors.New("required column not found")

// Role labels a column's function in the export.
type Role string

const (
	RoleIdentifier  Role = "identifier"
	RolePatient     Role = "patient"
	RoleSignature   Role = "signature"
	RoleOperational Role = "operational"
	RoleStructured  Role = "structured"
	RoleFreeText    Role = "free_text"
)

// Prefixes holds the prefix lists consumed by Classify. All matching is
// case-insensitive against the start of the column name.
type Prefixes struct {
	Identifier string
	Patient    []string
	Signature  string
	Structured []string
	Drop       []string
	Check      []string
}

// FromPreset extracts the classifier prefix lists from a preset, appending
// any caller-supplied extra drop prefixes. Extra prefixes behave exactly
// like the preset's operational drop prefixes.
func FromPreset(p *preset.Preset, extraDrop ...string) Prefixes {
	drop := append([]string(nil), p.DropPrefixes...)
	drop = append(drop, extraDrop...)
	return Prefixes{
		Identifier: p.IDPrefix,
		Patient:    p.PatientPrefixes,
		Signature:  p.SignaturePrefix,
		Structured: p.StructuredPrefixes,
		Drop:       drop,
		Check:      p.CheckPrefixes,
	}
}

// Classification is the result of classifying one export's columns.
type Classification struct {
	Roles            map[string]Role
	IdentifierColumn string
	DropColumns      []string // patient, signature, operational; column order
	StructuredKeep   []string // structured-keep columns, column order
	FreeTextColumns  []string // merged later, column order
	Warnings         []string
}

// Classify assigns exactly one role to each column. It fails with
// ErrColumnNotFound when no column matches the identifier prefix or no
// column matches any structured prefix — without those anchors there is
// no substitution target and no free-text split point.
func Classify(ctx context.Context, names []string, prefixes Prefixes) (*Classification, error) {
	_, span := tracer.Start(ctx, "classifier.classify")
	defer span.End()

	c := &Classification{Roles: make(map[string]Role, len(names))}

	idMatches := matchAll(names, prefixes.Identifier)
	if len(idMatches) == 0 {
		return nil, fmt.Errorf("%w: no column matches identifier prefix %q", ErrColumnNotFound, prefixes.Identifier)
	}
	if len(idMatches) > 1 {
		c.warnf("multiple columns match identifier prefix %q; using %q", prefixes.Identifier, names[idMatches[0]])
	}
	idIdx := idMatches[0]
	c.IdentifierColumn = names[idIdx]
	c.Roles[c.IdentifierColumn] = RoleIdentifier

	// The split point counts every structured match, including columns that
	// end up with a drop role.
	lastStructured := -1
	for i, name := range names {
		if hasAnyPrefix(name, prefixes.Structured) && i > lastStructured {
			lastStructured = i
		}
	}
	if lastStructured == -1 {
		return nil, fmt.Errorf("%w: no column matches any structured prefix %v (free-text split point undefined)", ErrColumnNotFound, prefixes.Structured)
	}

	patientFound, signatureFound := false, false
	for i, name := range names {
		if _, assigned := c.Roles[name]; assigned {
			continue
		}
		switch {
		case hasAnyPrefix(name, prefixes.Patient):
			c.Roles[name] = RolePatient
			patientFound = true
		case hasPrefixFold(name, prefixes.Signature):
			c.Roles[name] = RoleSignature
			signatureFound = true
		case hasAnyPrefix(name, prefixes.Drop):
			c.Roles[name] = RoleOperational
		case i > lastStructured:
			c.Roles[name] = RoleFreeText
		default:
			c.Roles[name] = RoleStructured
		}
	}

	if !patientFound {
		c.warnf("no column matches any patient prefix %v; patient removal is a no-op", prefixes.Patient)
	}
	if !signatureFound {
		c.warnf("no column matches signature prefix %q; signature removal is a no-op", prefixes.Signature)
	}
	for _, check := range prefixes.Check {
		if len(matchAll(names, check)) == 0 {
			c.warnf("no column matches expected prefix %q", check)
		}
	}

	for _, name := range names {
		switch c.Roles[name] {
		case RolePatient, RoleSignature, RoleOperational:
			c.DropColumns = append(c.DropColumns, name)
		case RoleFreeText:
			c.FreeTextColumns = append(c.FreeTextColumns, name)
		case RoleStructured:
			c.StructuredKeep = append(c.StructuredKeep, name)
		}
	}

	span.SetAttributes(
		attribute.String("classifier.identifier_column", c.IdentifierColumn),
		attribute.Int("classifier.free_text_columns", len(c.FreeTextColumns)),
		attribute.Int("classifier.dropped_columns", len(c.DropColumns)),
		attribute.Int("classifier.warnings", len(c.Warnings)),
	)

	return c, nil
}

func (c *Classification) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	log.Warn().Str("component", "classifier").Msg(msg)
}

// matchAll returns the indices of all names starting with prefix.
func matchAll(names []string, prefix string) []int {
	var idx []int
	for i, n := range names {
		if hasPrefixFold(n, prefix) {
			idx = append(idx, i)
		}
	}
	return idx
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefixFold(name, p) {
			return true
		}
	}
	return false
}

// hasPrefixFold is a case-insensitive strings.HasPrefix. An empty prefix
// never matches; it would otherwise swallow every column.
func hasPrefixFold(name, prefix string) bool {
	if prefix == "" {
		return false
	}
	return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}
