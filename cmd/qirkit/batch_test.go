package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qirkit/internal/loader"
)

func TestRunBatchSummary(t *testing.T) {
	noColor(t)
	shots := filepath.Join(t.TempDir(), "shots.txt")
	if err := os.WriteFile(shots, []byte("# teleport corrections\n00*2\n10\n11\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err := runBatch(context.Background(), batchOptions{
		Program:   filepath.Join("testdata", "teleport.ll"),
		ShotsFile: shots,
		Jobs:      2,
		UI:        uiModeOff,
	}, nil, &out, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	want := `outcome  count
00       2
10       1
11       1

gates: cx=8 h=8 mz=8 x=1 z=2
`
	if out.String() != want {
		t.Fatalf("summary:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunBatchTimings(t *testing.T) {
	noColor(t)
	var errOut bytes.Buffer
	err := runBatch(context.Background(), batchOptions{
		Program: filepath.Join("testdata", "bell.ll"),
		Shots:   []string{"00*3"},
		UI:      uiModeOff,
		Timings: true,
	}, nil, &bytes.Buffer{}, &errOut)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	for _, want := range []string{"load ", "execute ", "(3 runs)", "batch ", "total "} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("timings missing %q:\n%s", want, errOut.String())
		}
	}
}

func TestRunBatchReportsFailures(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	err := runBatch(context.Background(), batchOptions{
		Program: filepath.Join("testdata", "bell.ll"),
		Shots:   []string{"11", "1"},
		UI:      uiModeOff,
	}, nil, &out, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 shots failed") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out.String(), "shot 2  EV1201") {
		t.Fatalf("summary:\n%s", out.String())
	}
}

func TestRunBatchShotsFromStdin(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	err := runBatch(context.Background(), batchOptions{
		Program:   filepath.Join("testdata", "bell.ll"),
		ShotsFile: "-",
		UI:        uiModeOff,
	}, strings.NewReader("-*3\n"), &out, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if !strings.HasPrefix(out.String(), "outcome  count\n00       3\n") {
		t.Fatalf("summary:\n%s", out.String())
	}
}

func TestListEntryPoints(t *testing.T) {
	noColor(t)
	m, err := loader.LoadFile(filepath.Join("testdata", "bell.ll"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var out bytes.Buffer
	if err := listEntryPoints(&out, m, []string{"qir_profiles", "output_labeling_schema", "missing"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "name  kind   qubits  results  qir_profiles  output_labeling_schema  missing\n" +
		"main  entry  2       2        base_profile  (set)                   -\n"
	if out.String() != want {
		t.Fatalf("table:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	_, err := readUIMode("sometimes")
	if err == nil || !strings.Contains(err.Error(), "batch --ui") || !strings.Contains(err.Error(), "auto|on|off") {
		t.Fatalf("readUIMode(sometimes) error = %v", err)
	}
}

func TestUseProgressUI(t *testing.T) {
	tests := []struct {
		mode  uiMode
		shots string
		want  bool
	}{
		{uiModeOn, "-", true},
		{uiModeOn, "shots.txt", true},
		{uiModeOff, "shots.txt", false},
		{uiModeAuto, "-", false},
	}
	for _, tt := range tests {
		if got := useProgressUI(tt.mode, tt.shots); got != tt.want {
			t.Fatalf("useProgressUI(%s, %q) = %v, want %v", tt.mode, tt.shots, got, tt.want)
		}
	}
}
