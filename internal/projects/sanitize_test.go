package projects

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{"osm.yaml", "osm.yaml"},
		{"../../etc/passwd", "....etcpasswd"},
		{"..", ""},
		{".", ""},
		{"a\\b:c*d?e\"f<g>h|i", "abcdefghi"},
		{"tab\there", "tabhere"},
		{"CON", ""},
		{"lpt1.yaml", ""},
		{"trailing. ", "trailing"},
		{"base_EPSG3857", "base_EPSG3857"},
	}
	for _, tc := range testCases {
		if got := SanitizeName(tc.raw); got != tc.want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSanitizeNameTruncatesOnRuneBoundary(t *testing.T) {
	raw := strings.Repeat("é", 200)
	got := SanitizeName(raw)
	if len(got) > maxNameBytes {
		t.Fatalf("expected at most %d bytes, got %d", maxNameBytes, len(got))
	}
	if !strings.HasPrefix(raw, got) {
		t.Fatalf("truncation should keep a valid prefix")
	}
}

func TestSanitizeNameTruncationKeepsInvalidBytes(t *testing.T) {
	raw := "ab\xffcd" + strings.Repeat("x", 300)
	got := SanitizeName(raw)
	if got != raw[:maxNameBytes] {
		t.Fatalf("expected the first %d bytes to survive, got %d bytes %q", maxNameBytes, len(got), got[:8])
	}
}

func TestSanitizeNameDropsSplitRune(t *testing.T) {
	raw := strings.Repeat("x", maxNameBytes-1) + "é"
	got := SanitizeName(raw)
	if got != strings.Repeat("x", maxNameBytes-1) {
		t.Fatalf("split rune should be dropped, got %d bytes", len(got))
	}
}
