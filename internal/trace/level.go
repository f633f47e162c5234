package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. A level emits every scope whose value
// does not exceed its own.
type Level uint8

const (
	LevelOff   Level = 0
	LevelPhase       = Level(ScopePhase) // command and phase spans
	LevelShot        = Level(ScopeShot)  // plus one span per batch job
	LevelBlock       = Level(ScopeBlock) // plus basic block entries
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelPhase:
		return "phase"
	case LevelShot:
		return "shot"
	case LevelBlock:
		return "block"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "", "off":
		return LevelOff, nil
	case "phase":
		return LevelPhase, nil
	case "shot":
		return LevelShot, nil
	case "block":
		return LevelBlock, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|phase|shot|block)", s)
	}
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return l != LevelOff && uint8(scope) <= uint8(l)
}
