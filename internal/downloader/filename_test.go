package downloader

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title", "My Song", "My Song"},
		{"unsafe characters stripped", `A<B>C:D"E/F\G|H?I*J`, "ABCDEFGHIJ"},
		{"whitespace collapsed", "Too   many\t\tspaces", "Too many spaces"},
		{"trimmed", "  padded title  ", "padded title"},
		{"empty falls back", "", "download"},
		{"only unsafe falls back", `<>:"/\|?*`, "download"},
		{"only whitespace falls back", "   \t  ", "download"},
		{"mixed", ` What/Is\This: "A Song?" `, "WhatIsThis A Song"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SanitizeFilename(test.input)
			if got != test.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", test.input, got, test.expected)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := SanitizeFilename(long)
	if len([]rune(got)) != 100 {
		t.Errorf("expected 100 runes, got %d", len([]rune(got)))
	}

	// A cut that lands right after a space must not leave it dangling.
	spaced := strings.Repeat("abcd ", 30)
	got = SanitizeFilename(spaced)
	if strings.HasSuffix(got, " ") {
		t.Errorf("truncated name ends with whitespace: %q", got)
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"My Song",
		`A<B>C:D"E/F\G|H?I*J`,
		"  lots   of	whitespace  ",
		strings.Repeat("word ", 40),
		"",
		`<>:"/\|?*`,
	}

	for _, input := range inputs {
		once := SanitizeFilename(input)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSanitizeFilenameNeverUnsafe(t *testing.T) {
	inputs := []string{
		"normal",
		`path/to\file`,
		`quo"ted`,
		"q?u*e|r<y>",
		strings.Repeat(`a/b\c`, 50),
	}

	for _, input := range inputs {
		got := SanitizeFilename(input)
		if got == "" {
			t.Errorf("SanitizeFilename(%q) returned empty string", input)
		}
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeFilename(%q) = %q still contains unsafe characters", input, got)
		}
		if len([]rune(got)) > 100 {
			t.Errorf("SanitizeFilename(%q) exceeds 100 characters", input)
		}
	}
}
