// Package preset loads and validates de-identification presets: the prefix
// lists driving column classification plus merge and redaction parameters.
// Presets are YAML files; a default for German pathology LIS exports is
// embedded in the binary.
package preset

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cgeisenberger/lisanon/presets"
)

// Domain errors for the preset package.
var (
	ErrMissingKey    = errors.New("required preset key missing")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Defaults resolved once at load time, not scattered at call sites.
const (
	DefaultSeparator       = " "
	DefaultMergedColumn    = "report_text"
	DefaultNamePlaceholder = "[NAME]"
	DefaultCaseIDToken     = "[FALL-ID]"
	DefaultModel           = "de_core_news_lg"
	DefaultMinSurnameLen   = 4
)

// DefaultPasses is the reference redaction order: entity recognition,
// then case-ID pattern, then dictionary.
var DefaultPasses = []string{"ner", "case_id", "dictionary"}

// Preset is a fully resolved de-identification preset.
type Preset struct {
	Name               string   `yaml:"preset"`
	IDPrefix           string   `yaml:"id_prefix"`
	PatientPrefixes    []string `yaml:"patient_prefixes"`
	SignaturePrefix    string   `yaml:"signature_prefix"`
	StructuredPrefixes []string `yaml:"structured_prefixes"`
	DropPrefixes       []string `yaml:"drop_prefixes,omitempty"`
	CheckPrefixes      []string `yaml:"check_prefixes,omitempty"`

	Merge     MergeConfig     `yaml:"merge,omitempty"`
	Redaction RedactionConfig `yaml:"redaction,omitempty"`
}

// MergeConfig controls the free-text merge stage.
type MergeConfig struct {
	Separator  string `yaml:"separator,omitempty"`
	ColumnName string `yaml:"column_name,omitempty"`
}

// RedactionConfig controls the redaction passes.
type RedactionConfig struct {
	Passes            []string `yaml:"passes,omitempty"`
	NamePlaceholder   string   `yaml:"name_placeholder,omitempty"`
	CaseIDPlaceholder string   `yaml:"case_id_placeholder,omitempty"`
	CaseIDPattern     string   `yaml:"case_id_pattern,omitempty"`
	Model             string   `yaml:"model,omitempty"`
	MinSurnameLength  int      `yaml:"min_surname_length,omitempty"`
	TitlePrefix       *bool    `yaml:"title_prefix,omitempty"`
	ExtraSurnames     []string `yaml:"extra_surnames,omitempty"`
	SurnameList       string   `yaml:"surname_list,omitempty"` // path; empty = embedded default
}

// AbsorbTitles reports whether title-prefix absorption is enabled
// (defaults to true when unset).
func (r *RedactionConfig) AbsorbTitles() bool {
	if r.TitlePrefix == nil {
		return true
	}
	return *r.TitlePrefix
}

// Parse unmarshals preset YAML, applies documented defaults and validates
// the four required keys. Validation failures are fatal and happen before
// any row is processed.
func Parse(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset YAML: %w", err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads and parses a preset YAML file from disk.
func LoadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file %s: %w", path, err)
	}
	return Parse(data)
}

// embedded maps preset names to their embedded YAML definitions.
var embedded = map[string]func() []byte{
	"lis_default": presets.LISDefaultYAML,
}

// Embedded returns a built-in preset by name.
func Embedded(name string) (*Preset, error) {
	src, ok := embedded[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (built-in presets: %v)", ErrUnknownPreset, name, EmbeddedNames())
	}
	return Parse(src())
}

// EmbeddedNames lists the built-in preset names.
func EmbeddedNames() []string {
	names := make([]string, 0, len(embedded))
	for n := range embedded {
		names = append(names, n)
	}
	return names
}

// Load resolves a preset reference: a path to a YAML file when it exists
// on disk, otherwise a built-in preset name.
func Load(ref string) (*Preset, error) {
	if _, err := os.Stat(ref); err == nil {
		return LoadFile(ref)
	}
	return Embedded(ref)
}

func (p *Preset) applyDefaults() {
	if p.Merge.Separator == "" {
		p.Merge.Separator = DefaultSeparator
	}
	if p.Merge.ColumnName == "" {
		p.Merge.ColumnName = DefaultMergedColumn
	}
	r := &p.Redaction
	if len(r.Passes) == 0 {
		r.Passes = append([]string(nil), DefaultPasses...)
	}
	if r.NamePlaceholder == "" {
		r.NamePlaceholder = DefaultNamePlaceholder
	}
	if r.CaseIDPlaceholder == "" {
		r.CaseIDPlaceholder = DefaultCaseIDToken
	}
	if r.Model == "" {
		r.Model = DefaultModel
	}
	if r.MinSurnameLength == 0 {
		r.MinSurnameLength = DefaultMinSurnameLen
	}
}

func (p *Preset) validate() error {
	if p.IDPrefix == "" {
		return fmt.Errorf("%w: id_prefix", ErrMissingKey)
	}
	if len(p.PatientPrefixes) == 0 {
		return fmt.Errorf("%w: patient_prefixes", ErrMissingKey)
	}
	if p.SignaturePrefix == "" {
		return fmt.Errorf("%w: signature_prefix", ErrMissingKey)
	}
	if len(p.StructuredPrefixes) == 0 {
		return fmt.Errorf("%w: structured_prefixes", ErrMissingKey)
	}
	return nil
}
