package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cgeisenberger/lisanon/internal/classifier"
	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/pipeline"
	"github.com/cgeisenberger/lisanon/internal/preset"
	"github.com/cgeisenberger/lisanon/internal/table"
	"github.com/cgeisenberger/lisanon/internal/vault"
)

// columnPayload is the wire form of one table column. Null cells stay
// null in JSON, preserving the optional-text contract.
type columnPayload struct {
	Name  string    `json:"name"`
	Cells []*string `json:"cells"`
}

type deidentifyRequest struct {
	Columns []columnPayload `json:"columns"`
	// Vault from a prior batch; tokens minted before are reused.
	Vault map[string]string `json:"vault,omitempty"`
	// Preset overrides the server default by built-in name.
	Preset            string   `json:"preset,omitempty"`
	ExtraSurnames     []string `json:"extra_surnames,omitempty"`
	ExtraDropPrefixes []string `json:"extra_drop_prefixes,omitempty"`
}

type deidentifyResponse struct {
	Columns  []columnPayload   `json:"columns"`
	Vault    map[string]string `json:"vault"`
	Warnings []string          `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	engineReady := false
	if s.engine != nil && s.engine.Ready(r.Context()) == nil {
		engineReady = true
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"engine_ready": engineReady,
		"preset":       s.preset.Name,
		"uptime":       time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleDeidentify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deidentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if len(req.Columns) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "columns must not be empty"})
		return
	}

	cols := make([]table.Column, len(req.Columns))
	for i, c := range req.Columns {
		cols[i] = table.Column{Name: table.NormalizeName(c.Name), Cells: c.Cells}
	}
	tbl, err := table.New(cols...)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p := s.preset
	if req.Preset != "" {
		if p, err = preset.Load(req.Preset); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	res, err := pipeline.Run(ctx, tbl, pipeline.Options{
		Preset:            p,
		Vault:             vault.Vault(req.Vault),
		Engine:            s.engine,
		ExtraSurnames:     req.ExtraSurnames,
		ExtraDropPrefixes: req.ExtraDropPrefixes,
	})
	if err != nil {
		log.Error().Err(err).Msg("deidentify_run_error")
		switch {
		case errors.Is(err, engine.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		case errors.Is(err, classifier.ErrColumnNotFound),
			errors.Is(err, table.ErrInput),
			errors.Is(err, preset.ErrMissingKey),
			errors.Is(err, preset.ErrUnknownPreset):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	out := deidentifyResponse{
		Vault:    res.Vault,
		Warnings: res.Warnings,
	}
	for _, name := range res.Table.Names() {
		cells, _ := res.Table.Column(name)
		out.Columns = append(out.Columns, columnPayload{Name: name, Cells: cells})
	}
	writeJSON(w, http.StatusOK, out)
}
