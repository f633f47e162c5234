package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", manifestName, err)
	}
	return path
}

func TestLoadProjectManifestFromSubdir(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `# demo
[eval]
program = "programs/bell.ll"
entry_point = "main"
results = [true, false]
exhaustion = "zero"
max_steps = 100

[batch]
jobs = 4
shots = ["10", "01*2", "-"]
`)
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest, ok, err := loadProjectManifest(sub)
	if err != nil || !ok {
		t.Fatalf("loadProjectManifest: ok=%v err=%v", ok, err)
	}
	if manifest.Root != root {
		t.Fatalf("root = %q, want %q", manifest.Root, root)
	}
	if got, want := manifest.programPath(), filepath.Join(root, "programs", "bell.ll"); got != want {
		t.Fatalf("programPath = %q, want %q", got, want)
	}
	cfg := manifest.Config
	if cfg.Eval.EntryPoint != "main" || len(cfg.Eval.Results) != 2 || !cfg.Eval.Results[0] || cfg.Eval.MaxSteps != 100 {
		t.Fatalf("eval config: %+v", cfg.Eval)
	}
	if cfg.Batch.Jobs != 4 || len(cfg.Batch.Shots) != 3 {
		t.Fatalf("batch config: %+v", cfg.Batch)
	}
}

func TestLoadProjectManifestMissing(t *testing.T) {
	manifest, ok, err := loadProjectManifest(t.TempDir())
	if ok {
		t.Skipf("found %s above the temp dir", manifest.Path)
	}
	if err != nil || manifest != nil {
		t.Fatalf("expected no manifest, got %v %v", manifest, err)
	}
}

func TestLoadProjectConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"no eval", "[batch]\njobs = 1\n", "missing [eval]"},
		{"no program", "[eval]\nentry_point = \"main\"\n", "missing [eval].program"},
		{"bad exhaustion", "[eval]\nprogram = \"a.ll\"\nexhaustion = \"maybe\"\n", "[eval].exhaustion"},
		{"negative steps", "[eval]\nprogram = \"a.ll\"\nmax_steps = -1\n", "max_steps"},
		{"unknown key", "[eval]\nprogram = \"a.ll\"\nshots = 3\n", "unknown key eval.shots"},
		{"bad toml", "[eval\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.data)
			_, err := loadProjectConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
