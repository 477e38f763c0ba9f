// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	art, err := WriteText(dir, "report.txt", "safe [REDACTED_NAME] content")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(art.Filename, "report_redacted_") || !strings.HasSuffix(art.Filename, ".txt") {
		t.Errorf("filename = %q", art.Filename)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "safe [REDACTED_NAME] content" {
		t.Errorf("content = %q", data)
	}
	if art.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", art.Size, len(data))
	}
}

func TestWriteTextSanitizesBaseName(t *testing.T) {
	dir := t.TempDir()
	art, err := WriteText(dir, "../../etc/pass wd.txt", "x")
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(art.Filename, `/\ `) {
		t.Errorf("unsanitized filename %q", art.Filename)
	}
	if filepath.Dir(art.Path) != dir {
		t.Errorf("artifact escaped output dir: %q", art.Path)
	}
}

func TestWriteTextUniqueNames(t *testing.T) {
	dir := t.TempDir()
	a, err := WriteText(dir, "same.txt", "one")
	if err != nil {
		t.Fatal(err)
	}
	b, err := WriteText(dir, "same.txt", "two")
	if err != nil {
		t.Fatal(err)
	}
	if a.Filename == b.Filename {
		t.Error("repeated writes must not collide")
	}
}

func TestResolveDownload(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, ok := ResolveDownload(dir, "ok.txt")
	if !ok || path != filepath.Join(dir, "ok.txt") {
		t.Errorf("ResolveDownload = %q, %v", path, ok)
	}

	for _, bad := range []string{"../ok.txt", "..", ".", "sub/ok.txt", "missing.txt"} {
		if _, ok := ResolveDownload(dir, bad); ok {
			t.Errorf("ResolveDownload(%q) accepted", bad)
		}
	}
}

func TestResolveDownloadRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok := ResolveDownload(dir, "sub"); ok {
		t.Error("directory resolved as downloadable file")
	}
}

func TestWrapLines(t *testing.T) {
	lines := wrapLines("short line", 90)
	if len(lines) != 1 || lines[0] != "short line" {
		t.Errorf("lines = %q", lines)
	}

	long := strings.Repeat("word ", 40) // 200 chars
	lines = wrapLines(long, 90)
	if len(lines) < 2 {
		t.Fatalf("long line not wrapped: %q", lines)
	}
	for _, l := range lines {
		if len(l) > 90 {
			t.Errorf("line exceeds width: %q", l)
		}
	}

	// A single unbreakable token is hard-cut rather than dropped.
	lines = wrapLines(strings.Repeat("x", 200), 90)
	if len(lines) != 3 {
		t.Errorf("unbreakable wrap produced %d lines", len(lines))
	}
}

func TestBuildCreateDeclarationPaginates(t *testing.T) {
	text := strings.TrimSuffix(strings.Repeat("line\n", 60), "\n")
	decl, err := buildCreateDeclaration(text)
	if err != nil {
		t.Fatal(err)
	}
	// 60 lines at 54 per page means two pages.
	if !strings.Contains(string(decl), `"2"`) {
		t.Errorf("second page missing: %s", decl)
	}
}
