package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/preset"
	"github.com/cgeisenberger/lisanon/internal/vault"
)

type identityEngine struct{}

func (identityEngine) Ready(context.Context) error { return nil }
func (identityEngine) RedactNames(_ context.Context, texts []*string, _ engine.Options) ([]*string, error) {
	out := make([]*string, len(texts))
	copy(out, texts)
	return out, nil
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	p, err := preset.Embedded("lis_default")
	require.NoError(t, err)
	return New(p, opts...)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"columns": [
		{"name": "Fallnummer", "cells": ["AK/1/24", "AK/2/24"]},
		{"name": "Patientenname", "cells": ["Maier, Hans", null]},
		{"name": "Signatur", "cells": ["mk", "mk"]},
		{"name": "Material", "cells": ["Lunge", "Haut"]},
		{"name": "Makroskopie", "cells": ["Lunge rechts.", null]},
		{"name": "Mikroskopie", "cells": [null, null]},
		{"name": "Diagnose", "cells": ["Dr. Müller anwesend.", "Vgl. AK/1/24."]}
	]
}`

func TestHealthz(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantReady bool
	}{
		{name: "no engine", wantReady: false},
		{name: "ready engine", opts: []Option{WithEngine(identityEngine{})}, wantReady: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, testServer(t, tt.opts...), http.MethodGet, "/healthz", "")
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])
			assert.Equal(t, tt.wantReady, body["engine_ready"])
			assert.Equal(t, "lis_default", body["preset"])
		})
	}
}

func TestDeidentify(t *testing.T) {
	srv := testServer(t, WithEngine(identityEngine{}))
	rec := doJSON(t, srv, http.MethodPost, "/v1/deidentify", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp deidentifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	byName := make(map[string][]*string)
	for _, c := range resp.Columns {
		byName[c.Name] = c.Cells
	}

	ids, ok := byName["fallnummer"]
	require.True(t, ok)
	for _, id := range ids {
		require.NotNil(t, id)
		assert.Len(t, *id, vault.TokenLength)
	}
	assert.NotContains(t, byName, "patientenname")
	assert.NotContains(t, byName, "signatur")

	text, ok := byName["report_text"]
	require.True(t, ok)
	assert.Equal(t, "Lunge rechts. [NAME] anwesend.", *text[0])
	assert.Equal(t, "Vgl. [FALL-ID].", *text[1])

	assert.Len(t, resp.Vault, 2)
	assert.Contains(t, byName, "n_redactions_dictionary")
}

func TestDeidentifyVaultReuse(t *testing.T) {
	srv := testServer(t, WithEngine(identityEngine{}))

	rec1 := doJSON(t, srv, http.MethodPost, "/v1/deidentify", validBody)
	require.Equal(t, http.StatusOK, rec1.Code)
	var resp1 deidentifyResponse
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))

	req2 := map[string]interface{}{
		"columns": []map[string]interface{}{
			{"name": "fallnummer", "cells": []interface{}{"AK/1/24"}},
			{"name": "patientenname", "cells": []interface{}{"x"}},
			{"name": "signatur", "cells": []interface{}{"mk"}},
			{"name": "material", "cells": []interface{}{"Haut"}},
			{"name": "diagnose", "cells": []interface{}{"o.B."}},
		},
		"vault": resp1.Vault,
	}
	raw, err := json.Marshal(req2)
	require.NoError(t, err)

	rec2 := doJSON(t, srv, http.MethodPost, "/v1/deidentify", string(raw))
	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())
	var resp2 deidentifyResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp2))

	assert.Equal(t, resp1.Vault["AK/1/24"], resp2.Vault["AK/1/24"])
	assert.Len(t, resp2.Vault, 2)
}

func TestDeidentifyBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "invalid json",
			body:     `{"columns": [`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid JSON body",
		},
		{
			name:     "no columns",
			body:     `{"columns": []}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "columns must not be empty",
		},
		{
			name:     "ragged columns",
			body:     `{"columns": [{"name": "a", "cells": ["x"]}, {"name": "b", "cells": ["x", "y"]}]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown preset",
			body:     `{"columns": [{"name": "fallnummer", "cells": ["AK/1/24"]}], "preset": "nope"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no identifier column",
			body:     `{"columns": [{"name": "material", "cells": ["Haut"]}, {"name": "diagnose", "cells": ["o.B."]}]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "identifier",
		},
		{
			name:     "no structured column",
			body:     `{"columns": [{"name": "fallnummer", "cells": ["AK/1/24"]}, {"name": "diagnose", "cells": ["o.B."]}]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "structured",
		},
	}

	srv := testServer(t, WithEngine(identityEngine{}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/v1/deidentify", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Contains(t, resp.Error, tt.wantErr)
			}
		})
	}
}

func TestDeidentifyEngineUnavailable(t *testing.T) {
	rec := doJSON(t, testServer(t), http.MethodPost, "/v1/deidentify", validBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}
