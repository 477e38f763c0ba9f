// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ImageMetadataExtractor surfaces EXIF metadata as scannable text.
// Camera owner names, GPS positions, and embedded descriptions are PII
// carriers even though the pixels never reach the pipeline.
type ImageMetadataExtractor struct{}

func (e *ImageMetadataExtractor) CanProcess(path string) bool {
	return hasExt(path, ".jpg", ".jpeg", ".tiff")
}

// metadataWalker collects printable EXIF fields.
type metadataWalker struct {
	lines []string
}

func (w *metadataWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	val := strings.TrimSpace(strings.Trim(tag.String(), `"`))
	if val == "" {
		return nil
	}
	w.lines = append(w.lines, fmt.Sprintf("%s: %s", name, val))
	return nil
}

func (e *ImageMetadataExtractor) ExtractText(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("no EXIF metadata in %s: %w", filepath.Base(path), err)
	}

	walker := &metadataWalker{}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("walking EXIF metadata: %w", err)
	}

	// LatLong is resolved separately so coordinates come out as decimal
	// degrees rather than raw rationals.
	if lat, long, err := x.LatLong(); err == nil {
		walker.lines = append(walker.lines, fmt.Sprintf("GPSPosition: %.6f, %.6f", lat, long))
	}
	if len(walker.lines) == 0 {
		return nil, fmt.Errorf("no readable EXIF fields in %s", filepath.Base(path))
	}

	text := strings.Join(walker.lines, "\n")
	return &Content{
		Filename:  filepath.Base(path),
		Text:      text,
		PageCount: 1,
		CharCount: len(text),
	}, nil
}
