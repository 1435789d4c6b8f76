package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lisotel "github.com/cgeisenberger/lisanon/internal/otel"
)

var tracer = lisotel.Tracer("github.com/cgeisenberger/lisanon/internal/engine")

// DefaultBaseURL is the default address of the NER sidecar.
const DefaultBaseURL = "http://localhost:8459"

// HTTPEngine talks to a spaCy-style NER sidecar over JSON.
type HTTPEngine struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPEngine creates an engine handle pointing at the given base URL.
// If baseURL is empty, DefaultBaseURL is used. timeout bounds each call;
// zero means no client-side timeout — a long-running model call is
// expected to run to completion.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPEngine{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type redactRequest struct {
	Texts       []*string `json:"texts"`
	Replacement string    `json:"replacement"`
	Model       string    `json:"model"`
}

type redactResponse struct {
	Texts []*string `json:"texts"`
}

// Ready probes the sidecar health endpoint. Failures wrap ErrUnavailable
// so passes can fail fast before any row is touched.
func (e *HTTPEngine) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// RedactNames issues one batched redaction request for the whole column.
func (e *HTTPEngine) RedactNames(ctx context.Context, texts []*string, opts Options) ([]*string, error) {
	ctx, span := tracer.Start(ctx, "engine.redact_names")
	defer span.End()

	body, err := json.Marshal(redactRequest{
		Texts:       texts,
		Replacement: opts.Placeholder,
		Model:       opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling redaction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/redact/names", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating redaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("engine call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("engine returned %d: %s", resp.StatusCode, msg)
	}

	var out redactResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding engine response: %w", err)
	}
	if len(out.Texts) != len(texts) {
		return nil, fmt.Errorf("engine returned %d texts, want %d", len(out.Texts), len(texts))
	}
	return out.Texts, nil
}
