// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages bounds extraction time on pathological documents.
const maxPDFPages = 200

// PDFExtractor extracts text from PDF documents.
type PDFExtractor struct{}

func (e *PDFExtractor) CanProcess(path string) bool {
	return hasExt(path, ".pdf")
}

func (e *PDFExtractor) ExtractText(path string) (*Content, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var parts []string
	failed := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			failed++
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			failed++
			continue
		}
		parts = append(parts, strings.TrimSpace(text))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no extractable text in %s (%d pages failed)", filepath.Base(path), failed)
	}

	text := strings.Join(parts, "\n\n")
	return &Content{
		Filename:  filepath.Base(path),
		Text:      text,
		PageCount: pages,
		CharCount: len(text),
	}, nil
}
