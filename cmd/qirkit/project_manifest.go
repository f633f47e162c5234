package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"qirkit/internal/vm"
)

const manifestName = "qirkit.toml"

const noManifestMessage = "no program given and no qirkit.toml found\nplease specify the program explicitly, e.g.:\n  qirkit eval path/to/program.ll"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Eval  evalConfig  `toml:"eval"`
	Batch batchConfig `toml:"batch"`
}

type evalConfig struct {
	Program    string `toml:"program"`
	EntryPoint string `toml:"entry_point"`
	Results    []bool `toml:"results"`
	Exhaustion string `toml:"exhaustion"`
	MaxSteps   int    `toml:"max_steps"`
}

type batchConfig struct {
	Jobs  int      `toml:"jobs"`
	Shots []string `toml:"shots"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("eval") {
		return projectConfig{}, fmt.Errorf("%s: missing [eval]", path)
	}
	if !meta.IsDefined("eval", "program") || strings.TrimSpace(cfg.Eval.Program) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [eval].program", path)
	}
	if cfg.Eval.Exhaustion != "" {
		if _, err := vm.ParseExhaustionMode(cfg.Eval.Exhaustion); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [eval].exhaustion: %w", path, err)
		}
	}
	if cfg.Eval.MaxSteps < 0 {
		return projectConfig{}, fmt.Errorf("%s: [eval].max_steps must not be negative", path)
	}
	if cfg.Batch.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [batch].jobs must not be negative", path)
	}
	return cfg, nil
}

// programPath resolves [eval].program relative to the manifest directory.
func (m *projectManifest) programPath() string {
	p := filepath.FromSlash(strings.TrimSpace(m.Config.Eval.Program))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}
