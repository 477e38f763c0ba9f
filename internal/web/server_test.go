// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-redact/internal/config"
	"pii-redact/internal/core"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.Server.OutputDir = filepath.Join(t.TempDir(), "outputs")

	orch := core.New(nil, nil, core.Options{MultiPass: true})
	srv := NewServer(cfg, orch, nil, nil)
	return srv, srv.routes()
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRedactEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/redact", redactRequest{
		Text:       "mail jane@example.com please",
		Categories: []string{"email"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp redactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mail [REDACTED_EMAIL] please", resp.Redacted)
	assert.Equal(t, "mail jane@example.com please", resp.Original)
	assert.Equal(t, 1, resp.Summary["email"])
	assert.True(t, resp.Degraded, "nil detector client must degrade")
	assert.NotEmpty(t, resp.RequestID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRedactEndpointDefaultsCategories(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/redact", redactRequest{Text: "ssn here"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp redactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Config default category list applies when the request omits one.
	assert.Contains(t, resp.Processed, "email")
	assert.Contains(t, resp.Processed, "name")
}

func TestRedactEndpointInvalidCategory(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/redact", redactRequest{
		Text:       "hi",
		Categories: []string{"social"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid PII category")
}

func TestRedactEndpointEmptyText(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/redact", redactRequest{
		Text:       "   ",
		Categories: []string{"email"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedactEndpointBadJSON(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/redact", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := postJSON(t, handler, "/analyze", redactRequest{
		Text:       "ssn 123-45-6789 twice 987-65-4321",
		Categories: []string{"ssn"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Summary  map[string]int `json:"summary"`
		Degraded bool           `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary["ssn"])
	assert.True(t, resp.Degraded)
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "disabled", resp["detector_status"])
}

func TestSupportedTypesEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/supported-types", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		All      []string `json:"all_supported"`
		Patterns []string `json:"pattern_supported"`
		Exts     []string `json:"file_extensions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.All, "biometric")
	assert.Contains(t, resp.Patterns, "email")
	assert.NotContains(t, resp.Patterns, "biometric")
	assert.Contains(t, resp.Exts, ".pdf")
}

func TestRedactFileEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "note.txt")
	require.NoError(t, err)
	fw.Write([]byte("reach me at jane@example.com"))
	require.NoError(t, mw.WriteField("categories", `["email"]`))
	require.NoError(t, mw.WriteField("export_format", "txt"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/redact-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp fileRedactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reach me at [REDACTED_EMAIL]", resp.Redacted)
	require.Len(t, resp.Files, 1)

	// Generated artifact is downloadable by name.
	dlReq := httptest.NewRequest(http.MethodGet, "/download/"+resp.Files[0].Filename, nil)
	dlRec := httptest.NewRecorder()
	handler.ServeHTTP(dlRec, dlReq)
	assert.Equal(t, http.StatusOK, dlRec.Code)
	assert.Contains(t, dlRec.Body.String(), "[REDACTED_EMAIL]")
}

func TestRedactFileUnsupportedType(t *testing.T) {
	_, handler := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "binary.exe")
	fw.Write([]byte{0x4d, 0x5a})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/redact-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadUnknownFile(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/download/never-generated.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadTraversalRejected(t *testing.T) {
	_, handler := newTestServer(t)

	// Encoded traversal never reaches the filesystem; the mux or the
	// resolver must stop it before ServeFile.
	req := httptest.NewRequest(http.MethodGet, "/download/..%2Fsecret.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
