// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors turns uploaded files into plain text for the
// redaction pipeline. The pipeline itself has no file-format
// dependency; everything format-specific stays here.
package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Content is extracted text plus basic stats.
type Content struct {
	Filename  string
	Text      string
	PageCount int
	CharCount int
}

// Extractor converts one file format to text.
type Extractor interface {
	// CanProcess reports whether this extractor handles the file.
	CanProcess(path string) bool

	// ExtractText extracts the file's text content.
	ExtractText(path string) (*Content, error)
}

// Router picks the first extractor that claims a file.
type Router struct {
	extractors []Extractor
}

// NewRouter builds a router with the default extractor set.
func NewRouter() *Router {
	return &Router{
		extractors: []Extractor{
			&PlainTextExtractor{},
			&PDFExtractor{},
			&ImageMetadataExtractor{},
		},
	}
}

// CanProcess reports whether any extractor handles the file.
func (r *Router) CanProcess(path string) bool {
	for _, e := range r.extractors {
		if e.CanProcess(path) {
			return true
		}
	}
	return false
}

// Extract routes the file to its extractor.
func (r *Router) Extract(path string) (*Content, error) {
	for _, e := range r.extractors {
		if e.CanProcess(path) {
			return e.ExtractText(path)
		}
	}
	return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
}

// SupportedExtensions lists the handled file extensions.
func (r *Router) SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".csv", ".log", ".pdf", ".jpg", ".jpeg", ".tiff"}
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
