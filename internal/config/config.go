// Package config holds operator-level configuration for a lisanon
// process: engine endpoint, default preset, I/O conventions and log
// settings. Set via env vars (LISANON_*) or lisanon.config.yaml.
//
// De-identification semantics (prefix lists, placeholders, pass order)
// live in presets (internal/preset), not here; this package only decides
// where the inputs come from and which preset to use by default.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the LISANON_ prefix
// (e.g. "engine_url" → LISANON_ENGINE_URL) and to a YAML field in
// lisanon.config.yaml.
const (
	KeyPreset        = "preset"
	KeyEngineURL     = "engine_url"
	KeyEngineTimeout = "engine_timeout"
	KeyCSVSeparator  = "csv_separator"
)

// Defaults resolved once in Load.
const (
	DefaultPreset    = "lis_default"
	DefaultEngineURL = "http://localhost:8459"
	DefaultSeparator = ";"
)

// Config holds resolved operator-level configuration.
type Config struct {
	Preset        string        // preset name or path to a preset YAML
	EngineURL     string        // NER sidecar endpoint
	EngineTimeout time.Duration // 0 = no client-side timeout
	CSVSeparator  rune          // field separator of LIS exports
}

func init() {
	viper.SetEnvPrefix("LISANON")
	viper.AutomaticEnv()
	viper.SetDefault(KeyPreset, DefaultPreset)
	viper.SetDefault(KeyEngineURL, DefaultEngineURL)
	viper.SetDefault(KeyCSVSeparator, DefaultSeparator)
}

// Load reads configuration from Viper (which merges env vars, config file
// and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Preset:        viper.GetString(KeyPreset),
		EngineURL:     viper.GetString(KeyEngineURL),
		EngineTimeout: viper.GetDuration(KeyEngineTimeout),
	}
	sep := viper.GetString(KeyCSVSeparator)
	if len([]rune(sep)) != 1 {
		return nil, fmt.Errorf("invalid configuration: csv_separator must be a single character (got %q)", sep)
	}
	cfg.CSVSeparator = []rune(sep)[0]

	if cfg.Preset == "" {
		return nil, fmt.Errorf("invalid configuration: preset must not be empty")
	}
	return cfg, nil
}
