// Package presets provides embedded default de-identification presets.
// YAML files in this directory define the prefix lists and redaction
// parameters consumed by internal/preset; surnames_de.txt is the default
// surname dictionary for the dictionary pass.
package presets

import _ "embed"

//go:embed lis_default.yaml
var lisDefaultYAML []byte

//go:embed surnames_de.txt
var surnamesDE []byte

// LISDefaultYAML returns the embedded default preset for German pathology
// LIS exports.
func LISDefaultYAML() []byte { return lisDefaultYAML }

// SurnamesDE returns the embedded German surname dictionary.
func SurnamesDE() []byte { return surnamesDE }
