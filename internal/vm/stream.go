package vm

import (
	"fmt"
	"strings"
)

// ExhaustionMode selects what a measurement reads once a supplied result
// stream has no entries left.
type ExhaustionMode uint8

const (
	// ExhaustError fails the evaluation with ResultStreamExhausted.
	ExhaustError ExhaustionMode = iota
	// ExhaustZero reads false, matching legacy callers.
	ExhaustZero
)

func (m ExhaustionMode) String() string {
	if m == ExhaustZero {
		return "zero"
	}
	return "error"
}

// ParseExhaustionMode accepts "error" or "zero".
func ParseExhaustionMode(s string) (ExhaustionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return ExhaustError, nil
	case "zero", "false", "default":
		return ExhaustZero, nil
	default:
		return ExhaustError, fmt.Errorf("unknown exhaustion mode %q (want error|zero)", s)
	}
}

// ResultStream supplies measurement outcomes in execution order. A nil
// stream means none was supplied and every measurement reads false.
type ResultStream struct {
	values []bool
	next   int
	mode   ExhaustionMode
}

// NewResultStream copies values into a fresh stream.
func NewResultStream(values []bool) *ResultStream {
	return &ResultStream{values: append([]bool(nil), values...)}
}

// WithMode sets the exhaustion mode and returns s.
func (s *ResultStream) WithMode(mode ExhaustionMode) *ResultStream {
	if s != nil {
		s.mode = mode
	}
	return s
}

// Next pops the front outcome. ok is false when a supplied stream is
// exhausted in ExhaustError mode.
func (s *ResultStream) Next() (bit bool, ok bool) {
	if s == nil {
		return false, true
	}
	if s.next >= len(s.values) {
		return false, s.mode == ExhaustZero
	}
	bit = s.values[s.next]
	s.next++
	return bit, true
}

// Consumed returns how many outcomes have been popped.
func (s *ResultStream) Consumed() int {
	if s == nil {
		return 0
	}
	return s.next
}

// Remaining returns how many outcomes are left.
func (s *ResultStream) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.values) - s.next
}

// Len returns the total number of supplied outcomes.
func (s *ResultStream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// ParseResults parses "1,0,1", "101", "true false" and similar forms.
// An empty string yields an empty, non-nil slice.
func ParseResults(s string) ([]bool, error) {
	out := []bool{}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == ';'
	})
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "true", "t", "one":
			out = append(out, true)
			continue
		case "false", "f", "zero":
			out = append(out, false)
			continue
		}
		for _, ch := range f {
			switch ch {
			case '1':
				out = append(out, true)
			case '0':
				out = append(out, false)
			default:
				return nil, fmt.Errorf("invalid result %q: want 0/1 or true/false", f)
			}
		}
	}
	return out, nil
}
