// Package doctor provides health checks for lisanon configuration and the
// NER sidecar. Used by `lisanon doctor` before a first run.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/cgeisenberger/lisanon/internal/config"
	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/preset"
)

// CheckResult is a single doctor check outcome.
type CheckResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"` // pass, warn, fail
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Summary tallies pass/warn/fail counts.
type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Report is the complete doctor output.
type Report struct {
	Status  string        `json:"status"` // worst of all checks
	Checks  []CheckResult `json:"checks"`
	Summary Summary       `json:"summary"`
}

// Options controls which checks to run.
type Options struct {
	PresetRef  string // preset name or file path; empty = configured default
	EngineURL  string // sidecar base URL; empty = configured default
	SkipEngine bool   // skip connectivity checks (for CI/offline)
}

// Run executes all doctor checks and returns a report.
func Run(ctx context.Context, opts Options) *Report {
	report := &Report{}

	cfg, p, results := checkConfig(opts)
	report.Checks = append(report.Checks, results...)
	if p != nil {
		report.Checks = append(report.Checks, checkPreset(p)...)
	}
	if !opts.SkipEngine && cfg != nil {
		url := opts.EngineURL
		if url == "" {
			url = cfg.EngineURL
		}
		report.Checks = append(report.Checks, checkEngine(ctx, url)...)
	}

	for _, c := range report.Checks {
		switch c.Status {
		case "pass":
			report.Summary.Pass++
		case "warn":
			report.Summary.Warn++
		case "fail":
			report.Summary.Fail++
		}
	}

	report.Status = "pass"
	if report.Summary.Warn > 0 {
		report.Status = "warn"
	}
	if report.Summary.Fail > 0 {
		report.Status = "fail"
	}
	return report
}

func checkConfig(opts Options) (*config.Config, *preset.Preset, []CheckResult) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, []CheckResult{{
			Name: "config_load", Category: "config", Status: "fail",
			Message: fmt.Sprintf("Cannot load config: %v", err),
			Fix:     "Check LISANON_* environment variables and config file",
		}}
	}
	results := []CheckResult{{
		Name: "config_load", Category: "config", Status: "pass",
		Message: fmt.Sprintf("preset %q, separator %q", cfg.Preset, string(cfg.CSVSeparator)),
	}}

	ref := opts.PresetRef
	if ref == "" {
		ref = cfg.Preset
	}
	p, err := preset.Load(ref)
	if err != nil {
		results = append(results, CheckResult{
			Name: "preset_valid", Category: "preset", Status: "fail",
			Message: fmt.Sprintf("%s — %v", ref, err),
			Fix:     "Run 'lisanon presets' to list built-in presets",
		})
		return cfg, nil, results
	}
	results = append(results, CheckResult{
		Name: "preset_valid", Category: "preset", Status: "pass",
		Message: fmt.Sprintf("%s (id prefix %q, %d passes)", p.Name, p.IDPrefix, len(p.Redaction.Passes)),
	})
	return cfg, p, results
}

func checkPreset(p *preset.Preset) []CheckResult {
	var results []CheckResult

	results = append(results, checkSurnames(p))
	results = append(results, checkCaseIDPattern(p))

	if len(p.StructuredPrefixes) == 0 {
		results = append(results, CheckResult{
			Name: "structured_prefixes", Category: "preset", Status: "fail",
			Message: "No structured prefixes configured; free-text split point cannot be located",
			Fix:     "Add structured_prefixes to the preset",
		})
	}
	return results
}

func checkSurnames(p *preset.Preset) CheckResult {
	names, err := p.Surnames()
	if err != nil {
		return CheckResult{
			Name: "surname_list", Category: "preset", Status: "fail",
			Message: fmt.Sprintf("%v", err),
			Fix:     "Check redaction.surname_list path",
		}
	}
	if len(names) == 0 {
		return CheckResult{
			Name: "surname_list", Category: "preset", Status: "warn",
			Message: "Surname list is empty; dictionary pass will redact nothing",
		}
	}
	return CheckResult{
		Name: "surname_list", Category: "preset", Status: "pass",
		Message: fmt.Sprintf("%d surnames", len(names)),
	}
}

func checkCaseIDPattern(p *preset.Preset) CheckResult {
	pattern := p.Redaction.CaseIDPattern
	if pattern == "" {
		return CheckResult{
			Name: "case_id_pattern", Category: "preset", Status: "pass",
			Message: "built-in default",
		}
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return CheckResult{
			Name: "case_id_pattern", Category: "preset", Status: "fail",
			Message: fmt.Sprintf("%v", err),
			Fix:     "Fix redaction.case_id_pattern in the preset",
		}
	}
	return CheckResult{Name: "case_id_pattern", Category: "preset", Status: "pass", Message: pattern}
}

func checkEngine(ctx context.Context, baseURL string) []CheckResult {
	var results []CheckResult

	eng := engine.NewHTTPEngine(baseURL, 5*time.Second)
	start := time.Now()
	err := eng.Ready(ctx)
	latency := time.Since(start)

	if err != nil {
		return []CheckResult{{
			Name: "engine_ready", Category: "engine", Status: "fail",
			Message: fmt.Sprintf("%s — %v", baseURL, err),
			Fix:     "Start the NER sidecar or run with --skip-ner",
		}}
	}
	results = append(results, CheckResult{
		Name: "engine_ready", Category: "engine", Status: "pass",
		Message: fmt.Sprintf("%s — %dms", baseURL, latency.Milliseconds()),
	})

	if latency > time.Second {
		results = append(results, CheckResult{
			Name: "engine_latency", Category: "engine", Status: "warn",
			Message: fmt.Sprintf("%.1fs health check (> 1s threshold)", latency.Seconds()),
			Fix:     "Check sidecar load; model may still be warming up",
		})
	}
	return results
}

// Healthy reports whether a sidecar at baseURL answers its health endpoint.
// Convenience for callers that do not need the full report.
func Healthy(ctx context.Context, baseURL string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
