// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package output regenerates artifacts from redacted text: plain-text
// files and simple PDFs, plus safe download-path resolution.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Artifact describes one generated file.
type Artifact struct {
	Filename string `json:"filename"`
	Path     string `json:"-"`
	Size     int64  `json:"size"`
}

// WriteText writes redacted text to a uniquely named .txt file in dir.
func WriteText(dir, baseName, text string) (*Artifact, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	name := uniqueName(baseName, ".txt")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("writing text artifact: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Artifact{Filename: name, Path: path, Size: info.Size()}, nil
}

// ResolveDownload maps a requested filename to a path inside dir,
// rejecting traversal attempts. Returns the path and whether the file
// exists.
func ResolveDownload(dir, requested string) (string, bool) {
	name := filepath.Base(requested)
	if name != requested || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// uniqueName builds "<base>_redacted_<shortid><ext>", sanitizing the
// base name.
func uniqueName(baseName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(baseName), filepath.Ext(baseName))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s_redacted_%s%s", base, uuid.NewString()[:8], ext)
}
