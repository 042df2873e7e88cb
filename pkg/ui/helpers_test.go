package ui

import (
	"testing"
	"time"
)

func TestFormatTimeRel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "unknown"},
		{"future", now.Add(time.Hour), "now"},
		{"seconds", now.Add(-30 * time.Second), "now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2d ago"},
		{"weeks", now.Add(-8 * 24 * time.Hour), "1w ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2mo ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimeRel(tt.t, now); got != tt.want {
				t.Errorf("formatTimeRel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"much too long for this", 10, "much too …"},
		{"anything", 0, ""},
		{"日本語のテキスト", 8, "日本語…"},
	}
	for _, tt := range tests {
		if got := truncateWidth(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not truncate: %q", got)
	}
}
