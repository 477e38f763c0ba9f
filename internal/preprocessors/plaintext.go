// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// PlainTextExtractor passes through text-like files.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) CanProcess(path string) bool {
	return hasExt(path, ".txt", ".text", ".md", ".csv", ".log")
}

func (e *PlainTextExtractor) ExtractText(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file %s is not valid UTF-8 text", filepath.Base(path))
	}

	text := string(data)
	return &Content{
		Filename:  filepath.Base(path),
		Text:      text,
		PageCount: 1,
		CharCount: len(text),
	}, nil
}
