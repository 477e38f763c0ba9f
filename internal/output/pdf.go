// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	pdfLineWidth    = 90 // characters per line at 10pt monospace on letter
	pdfLinesPerPage = 54
)

// ValidatePDF checks that an uploaded file is a structurally sound PDF
// before text extraction is attempted.
func ValidatePDF(path string) error {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("invalid PDF: %w", err)
	}
	return nil
}

// WritePDF renders redacted text into a uniquely named PDF in dir using
// pdfcpu's create-from-JSON API. Long lines wrap at word boundaries;
// overflowing lines start a new page.
func WritePDF(dir, baseName, text string) (*Artifact, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	decl, err := buildCreateDeclaration(text)
	if err != nil {
		return nil, err
	}

	name := uniqueName(baseName, ".pdf")
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating PDF artifact: %w", err)
	}
	defer f.Close()

	if err := api.Create(nil, bytes.NewReader(decl), f, model.NewDefaultConfiguration()); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("generating PDF: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Artifact{Filename: name, Path: path, Size: info.Size()}, nil
}

// pdfcpu create-from-JSON declaration types, reduced to the fields we
// emit.
type createDecl struct {
	Pages map[string]createPage `json:"pages"`
}

type createPage struct {
	Content createContent `json:"content"`
}

type createContent struct {
	Text []createText `json:"text"`
}

type createText struct {
	Value    string    `json:"value"`
	Anchor   string    `json:"anchor"`
	Dx       float64   `json:"dx"`
	Dy       float64   `json:"dy"`
	Font     createFnt `json:"font"`
}

type createFnt struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

func buildCreateDeclaration(text string) ([]byte, error) {
	lines := wrapLines(text, pdfLineWidth)

	decl := createDecl{Pages: map[string]createPage{}}
	for page := 0; page*pdfLinesPerPage < len(lines) || page == 0; page++ {
		end := (page + 1) * pdfLinesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		chunk := lines[page*pdfLinesPerPage : end]

		decl.Pages[fmt.Sprintf("%d", page+1)] = createPage{
			Content: createContent{
				Text: []createText{{
					Value:  strings.Join(chunk, "\n"),
					Anchor: "tl",
					Dx:     36,
					Dy:     -36,
					Font:   createFnt{Name: "Courier", Size: 10},
				}},
			},
		}
		if end >= len(lines) {
			break
		}
	}
	return json.Marshal(decl)
}

// wrapLines splits text into lines no wider than width, breaking at
// word boundaries where possible.
func wrapLines(text string, width int) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if len(raw) <= width {
			out = append(out, raw)
			continue
		}
		line := raw
		for len(line) > width {
			cut := strings.LastIndexByte(line[:width], ' ')
			if cut <= 0 {
				cut = width
			}
			out = append(out, strings.TrimRight(line[:cut], " "))
			line = strings.TrimLeft(line[cut:], " ")
		}
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}
