// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the redaction pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pii-redact/internal/categories"
	"pii-redact/internal/config"
	"pii-redact/internal/core"
	"pii-redact/internal/detector"
	"pii-redact/internal/observability"
	"pii-redact/internal/output"
	"pii-redact/internal/preprocessors"
	"pii-redact/internal/version"
)

// Server wires the orchestrator to HTTP handlers.
type Server struct {
	cfg          *config.Config
	orchestrator *core.Orchestrator
	client       detector.Client // nil when detector disabled
	router       *preprocessors.Router
	observer     *observability.Observer
	httpServer   *http.Server
}

// NewServer builds a server around an orchestrator.
func NewServer(cfg *config.Config, orch *core.Orchestrator, client detector.Client, observer *observability.Observer) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orch,
		client:       client,
		router:       preprocessors.NewRouter(),
		observer:     observer,
	}
}

// routes builds the request-ID-wrapped handler tree.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /redact", s.handleRedact)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /redact-file", s.handleRedactFile)
	mux.HandleFunc("GET /download/", s.handleDownload)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /supported-types", s.handleSupportedTypes)
	return s.withRequestID(mux)
}

// Start runs the server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// withRequestID stamps every request with an ID for log correlation.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// redactRequest is the JSON body for /redact and /analyze.
type redactRequest struct {
	Text       string            `json:"text"`
	Categories []string          `json:"categories"`
	CustomTags map[string]string `json:"custom_tags,omitempty"`
}

// redactResponse mirrors detector.RedactionResult on the wire.
type redactResponse struct {
	Original       string         `json:"original"`
	Redacted       string         `json:"redacted"`
	Summary        map[string]int `json:"summary"`
	Processed      []string       `json:"categories_processed"`
	Degraded       bool           `json:"degraded"`
	DetectorStatus string         `json:"detector_status,omitempty"`
	RequestID      string         `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	coreReq, ok := s.decodePipelineRequest(w, r)
	if !ok {
		return
	}

	result, err := s.orchestrator.Redact(r.Context(), coreReq)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultToResponse(result, requestID(r.Context())))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	coreReq, ok := s.decodePipelineRequest(w, r)
	if !ok {
		return
	}

	counts, degraded, err := s.orchestrator.Analyze(r.Context(), coreReq.Text, coreReq.Categories)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	summary := make(map[string]int, len(counts))
	for cat, n := range counts {
		summary[cat.String()] = n
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":    summary,
		"degraded":   degraded,
		"request_id": requestID(r.Context()),
	})
}

// fileRedactResponse extends the redaction result with generated
// artifact descriptions.
type fileRedactResponse struct {
	redactResponse
	Files []output.Artifact `json:"files_generated"`
}

func (s *Server) handleRedactFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Server.MaxFileSize); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form", Detail: err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no file provided"})
		return
	}
	defer file.Close()

	if header.Size > s.cfg.Server.MaxFileSize {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("file exceeds maximum size of %d bytes", s.cfg.Server.MaxFileSize),
		})
		return
	}

	exportFormat := r.FormValue("export_format")
	if exportFormat == "" {
		exportFormat = "both"
	}
	switch exportFormat {
	case "txt", "pdf", "both":
	default:
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid export format, must be txt, pdf, or both"})
		return
	}

	coreReq, ok := s.parseFileOptions(w, r)
	if !ok {
		return
	}

	// Stage the upload so format-specific extractors can open it.
	uploadPath, err := s.stageUpload(file, header.Filename)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to store upload"})
		return
	}
	defer os.Remove(uploadPath)

	if !s.router.CanProcess(uploadPath) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "unsupported file type " + filepath.Ext(header.Filename),
		})
		return
	}
	if strings.EqualFold(filepath.Ext(uploadPath), ".pdf") {
		if err := output.ValidatePDF(uploadPath); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	content, err := s.router.Extract(uploadPath)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to extract text", Detail: err.Error()})
		return
	}

	coreReq.Text = content.Text
	result, err := s.orchestrator.Redact(r.Context(), coreReq)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	var files []output.Artifact
	if exportFormat == "txt" || exportFormat == "both" {
		if art, err := output.WriteText(s.cfg.Server.OutputDir, header.Filename, result.Redacted); err == nil {
			files = append(files, *art)
		}
	}
	if exportFormat == "pdf" || exportFormat == "both" {
		if art, err := output.WritePDF(s.cfg.Server.OutputDir, header.Filename, result.Redacted); err == nil {
			files = append(files, *art)
		}
	}

	s.writeJSON(w, http.StatusOK, fileRedactResponse{
		redactResponse: resultToResponse(result, requestID(r.Context())),
		Files:          files,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimPrefix(r.URL.Path, "/download/")
	path, ok := output.ResolveDownload(s.cfg.Server.OutputDir, requested)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	detectorStatus := "disabled"
	if s.client != nil {
		if ok, msg := s.client.CheckAvailable(r.Context()); ok {
			detectorStatus = "connected"
		} else {
			detectorStatus = "disconnected: " + msg
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":          "healthy",
		"detector_status": detectorStatus,
		"model":           s.cfg.Detector.Model,
		"version":         version.String(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSupportedTypes(w http.ResponseWriter, r *http.Request) {
	var all, deterministic []string
	for _, cat := range categories.All() {
		all = append(all, cat.String())
		if cat.Deterministic() {
			deterministic = append(deterministic, cat.String())
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"all_supported":     all,
		"pattern_supported": deterministic,
		"file_extensions":   s.router.SupportedExtensions(),
	})
}

// decodePipelineRequest parses and resolves the JSON body shared by
// /redact and /analyze. Empty categories fall back to the configured
// default set.
func (s *Server) decodePipelineRequest(w http.ResponseWriter, r *http.Request) (core.Request, bool) {
	var req redactRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.cfg.Server.MaxFileSize)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Detail: err.Error()})
		return core.Request{}, false
	}

	keys := req.Categories
	if len(keys) == 0 {
		keys = s.defaultCategories()
	}

	cats, tags, err := resolveCategories(keys, req.CustomTags)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return core.Request{}, false
	}

	return core.Request{Text: req.Text, Categories: cats, CustomTags: tags}, true
}

// parseFileOptions reads categories/custom_tags form fields for
// /redact-file. They arrive as JSON-encoded form values.
func (s *Server) parseFileOptions(w http.ResponseWriter, r *http.Request) (core.Request, bool) {
	keys := s.defaultCategories()
	if raw := r.FormValue("categories"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON in categories field"})
			return core.Request{}, false
		}
	}

	var customTags map[string]string
	if raw := r.FormValue("custom_tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &customTags); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON in custom_tags field"})
			return core.Request{}, false
		}
	}

	cats, tags, err := resolveCategories(keys, customTags)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return core.Request{}, false
	}
	return core.Request{Categories: cats, CustomTags: tags}, true
}

func (s *Server) defaultCategories() []string {
	keys := config.ParseCategoryList(s.cfg.Defaults.Categories)
	if keys == nil {
		for _, cat := range categories.All() {
			keys = append(keys, cat.String())
		}
	}
	return keys
}

// resolveCategories maps wire identifiers to typed categories and tags.
func resolveCategories(keys []string, customTags map[string]string) ([]categories.Category, map[categories.Category]string, error) {
	cats := make([]categories.Category, 0, len(keys))
	for _, key := range keys {
		cat, ok := categories.Parse(key)
		if !ok {
			return nil, nil, fmt.Errorf("invalid PII category %q", key)
		}
		cats = append(cats, cat)
	}

	var tags map[categories.Category]string
	if len(customTags) > 0 {
		tags = make(map[categories.Category]string, len(customTags))
		for key, tag := range customTags {
			cat, ok := categories.Parse(key)
			if !ok {
				return nil, nil, fmt.Errorf("custom tag references invalid category %q", key)
			}
			tags[cat] = tag
		}
	}
	return cats, tags, nil
}

// stageUpload copies the multipart file into the upload directory.
func (s *Server) stageUpload(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString()[:8] + "_" + filepath.Base(originalName)
	path := filepath.Join(s.cfg.Server.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.cfg.Server.MaxFileSize+1)); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// writePipelineError maps pipeline errors to HTTP responses. Internal
// detail never leaks to the caller.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsValidation(err) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.observer.Log(observability.Record{
		Component: "web",
		Operation: "pipeline",
		RequestID: requestID(r.Context()),
		Success:   false,
		Error:     err.Error(),
	})
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func resultToResponse(result *detector.RedactionResult, reqID string) redactResponse {
	summary := make(map[string]int, len(result.Counts))
	for cat, n := range result.Counts {
		summary[cat.String()] = n
	}
	processed := make([]string, 0, len(result.Processed))
	for _, cat := range result.Processed {
		processed = append(processed, cat.String())
	}
	return redactResponse{
		Original:       result.Original,
		Redacted:       result.Redacted,
		Summary:        summary,
		Processed:      processed,
		Degraded:       result.Degraded,
		DetectorStatus: result.DetectorStatus,
		RequestID:      reqID,
	}
}
