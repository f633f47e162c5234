package version

import (
	"testing"

	"github.com/fatih/color"
)

func withPlainColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestColoredPlain(t *testing.T) {
	withPlainColor(t)
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		override(t, tt.version, "", "")
		if got := Colored(); got != tt.want {
			t.Fatalf("Colored() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
	override(t, "1.2.3", "", "")
	if got := Colored(); got == "1.2.3" {
		t.Fatalf("expected ANSI escapes in %q", got)
	}
}

func TestInfo(t *testing.T) {
	withPlainColor(t)
	tests := []struct {
		commit, date string
		want         string
	}{
		{"", "", "qirkit 1.0.0"},
		{"abc123", "", "qirkit 1.0.0 (commit abc123)"},
		{"abc123", "2026-01-02", "qirkit 1.0.0 (commit abc123, built 2026-01-02)"},
	}
	for _, tt := range tests {
		override(t, "1.0.0", tt.commit, tt.date)
		if got := Info(); got != tt.want {
			t.Fatalf("Info() = %q, want %q", got, tt.want)
		}
	}
}
