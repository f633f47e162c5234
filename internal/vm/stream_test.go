package vm_test

import (
	"testing"

	"qirkit/internal/vm"
)

func TestResultStreamNext(t *testing.T) {
	s := vm.NewResultStream([]bool{true, false})
	for i, want := range []bool{true, false} {
		bit, ok := s.Next()
		if !ok || bit != want {
			t.Fatalf("Next %d = %v,%v", i, bit, ok)
		}
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("expected exhaustion")
	}
	if s.Consumed() != 2 || s.Remaining() != 0 || s.Len() != 2 {
		t.Fatalf("consumed=%d remaining=%d len=%d", s.Consumed(), s.Remaining(), s.Len())
	}
}

func TestNilStreamDefaultsToZero(t *testing.T) {
	var s *vm.ResultStream
	for range 3 {
		bit, ok := s.Next()
		if bit || !ok {
			t.Fatalf("nil stream Next = %v,%v", bit, ok)
		}
	}
}

func TestExhaustZero(t *testing.T) {
	s := vm.NewResultStream(nil).WithMode(vm.ExhaustZero)
	if bit, ok := s.Next(); bit || !ok {
		t.Fatalf("Next = %v,%v", bit, ok)
	}
}

func TestParseResults(t *testing.T) {
	tests := []struct {
		in   string
		want []bool
		err  bool
	}{
		{in: "", want: []bool{}},
		{in: "1,0,1", want: []bool{true, false, true}},
		{in: "101", want: []bool{true, false, true}},
		{in: "true false", want: []bool{true, false}},
		{in: "1;zero", want: []bool{true, false}},
		{in: "2", err: true},
	}
	for _, tt := range tests {
		got, err := vm.ParseResults(tt.in)
		if tt.err {
			if err == nil {
				t.Fatalf("ParseResults(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseResults(%q): %v", tt.in, err)
		}
		if got == nil || len(got) != len(tt.want) {
			t.Fatalf("ParseResults(%q) = %v", tt.in, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("ParseResults(%q) = %v", tt.in, got)
			}
		}
	}
}

func TestParseExhaustionMode(t *testing.T) {
	for in, want := range map[string]vm.ExhaustionMode{"error": vm.ExhaustError, "zero": vm.ExhaustZero} {
		got, err := vm.ParseExhaustionMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseExhaustionMode(%q) = %v, %v", in, got, err)
		}
		if got.String() != in {
			t.Fatalf("String() = %q", got.String())
		}
	}
	if _, err := vm.ParseExhaustionMode("random"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestErrorFormatting(t *testing.T) {
	code, ok := vm.ParseErrorCode("EV1201")
	if !ok || code != vm.CodeResultStreamExhausted {
		t.Fatalf("ParseErrorCode = %v,%v", code, ok)
	}
	if _, ok := vm.ParseErrorCode("VM1201"); ok {
		t.Fatalf("expected failure for foreign prefix")
	}
	e := &vm.EvalError{Code: vm.CodeReachedUnreachable, Message: "unreachable code executed", Func: "main", Block: "exit", Instr: "unreachable"}
	want := "EV1301 ReachedUnreachable: unreachable code executed (at main/exit: unreachable)"
	if e.Error() != want {
		t.Fatalf("Error() = %q", e.Error())
	}
}
