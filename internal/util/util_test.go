// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Cuộc hội thoại với AI", 9, "Cuộc hội ..."},
		{"", 5, ""},
	}
	for _, tc := range tests {
		if got := TruncateText(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateText(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("hello world", 5); StringWidth(got) > 5 {
		t.Errorf("TruncateWidth overflow: %q", got)
	}
	if got := TruncateWidth("ok", 5); got != "ok" {
		t.Errorf("TruncateWidth(ok) = %q", got)
	}
	if got := PadWidth("ab", 4); got != "ab  " {
		t.Errorf("PadWidth = %q", got)
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Việt Nam":   "viet nam",
		"ĐÀ NẴNG":    "da nang",
		"Chủ đề":     "chu de",
		"plain text": "plain text",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
	if !ContainsFold("Kế hoạch nội dung", "noi DUNG") {
		t.Error("ContainsFold should ignore accents and case")
	}
	if !ContainsFold("anything", "  ") {
		t.Error("blank needle should match")
	}
	if ContainsFold("video", "ideas") {
		t.Error("unexpected match")
	}
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	if err := AtomicWriteFile(path, []byte("one"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("got %q, want %q", data, "two")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
