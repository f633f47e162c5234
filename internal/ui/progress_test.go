package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"qirkit/internal/batch"
)

func newModel(t *testing.T, jobs ...string) *progressModel {
	t.Helper()
	m, ok := NewProgressModel("coin.ll", jobs, nil).(*progressModel)
	if !ok {
		t.Fatalf("unexpected model type")
	}
	return m
}

func TestApplyEventCounts(t *testing.T) {
	m := newModel(t, "shot 1", "shot 2", "shot 3")
	m.applyEvent(batch.Event{Job: "shot 1", Status: batch.StatusRunning})
	m.applyEvent(batch.Event{Job: "shot 1", Status: batch.StatusDone})
	m.applyEvent(batch.Event{Job: "shot 2", Status: batch.StatusFailed, Err: errors.New("EV1201: stream exhausted")})
	m.applyEvent(batch.Event{Job: "missing", Status: batch.StatusDone})
	// Late events for finished jobs are ignored.
	m.applyEvent(batch.Event{Job: "shot 1", Status: batch.StatusRunning})

	if m.finished != 2 || m.failed != 1 {
		t.Fatalf("finished=%d failed=%d", m.finished, m.failed)
	}
	if m.items[0].status != batch.StatusDone || m.items[2].status != batch.StatusQueued {
		t.Fatalf("statuses: %+v", m.items)
	}
	view := stripANSI(m.View())
	for _, want := range []string{"coin.ll (2/3, 1 failed)", "shot 2: EV1201: stream exhausted", "queued"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDoneMsgQuits(t *testing.T) {
	m := newModel(t, "a")
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done=%v cmd=%v", m.done, cmd)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit")
	}
	if !strings.Contains(stripANSI(m.View()), "done: a (0/1)") {
		t.Fatalf("view: %s", m.View())
	}
}

func TestVisibleRowsPreferActiveJobs(t *testing.T) {
	names := make([]string, 30)
	for i := range names {
		names[i] = "job" + string(rune('A'+i))
	}
	m := newModel(t, names...)
	m.applyEvent(batch.Event{Job: names[29], Status: batch.StatusRunning})
	rows := m.visible()
	if len(rows) != maxRows || rows[0].name != names[29] {
		t.Fatalf("rows: %d first=%s", len(rows), rows[0].name)
	}
	if !strings.Contains(m.View(), "10 more") {
		t.Fatalf("missing overflow line")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			skip = true
		case skip && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			skip = false
		case !skip:
			b.WriteRune(r)
		}
	}
	return b.String()
}
