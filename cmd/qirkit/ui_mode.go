package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// uiMode is the value of `qirkit batch --ui`.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = []uiMode{uiModeAuto, uiModeOn, uiModeOff}

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return uiModeAuto, nil
	}
	if !slices.Contains(uiModes, mode) {
		names := make([]string, len(uiModes))
		for i, m := range uiModes {
			names[i] = string(m)
		}
		return "", fmt.Errorf("batch --ui: unknown mode %q (want %s)", value, strings.Join(names, "|"))
	}
	return mode, nil
}

// useProgressUI reports whether batch draws the live progress view. In auto
// mode both ends must be terminals and stdin must not be carrying the shots.
func useProgressUI(mode uiMode, shotsFile string) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	if shotsFile == "-" {
		return false
	}
	return isTerminal(os.Stdout) && isTerminal(os.Stdin)
}
