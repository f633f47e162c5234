package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qirkit/internal/loader"
	"qirkit/internal/qir"
	"qirkit/internal/testkit"
)

const bellIR = `
%Qubit = type opaque
%Result = type opaque

define void @main() #0 {
entry:
  call void @__quantum__qis__h__body(%Qubit* null)
  call void @__quantum__qis__cnot__body(%Qubit* null, %Qubit* inttoptr (i64 1 to %Qubit*))
  call void @__quantum__qis__mz__body(%Qubit* null, %Result* null)
  call void @__quantum__qis__mz__body(%Qubit* inttoptr (i64 1 to %Qubit*), %Result* inttoptr (i64 1 to %Result*))
  ret void
}

declare void @__quantum__qis__h__body(%Qubit*)
declare void @__quantum__qis__cnot__body(%Qubit*, %Qubit*)
declare void @__quantum__qis__mz__body(%Qubit*, %Result*)

attributes #0 = { "EntryPoint" "requiredQubits"="2" "requiredResults"="2" }
`

const loopIR = `
%Qubit = type opaque

define void @loop() #0 {
entry:
  br label %body

body:
  %i = phi i64 [ 0, %entry ], [ %next, %body ]
  call void @__quantum__qis__h__body(%Qubit* null)
  %next = add i64 %i, 1
  %done = icmp eq i64 %next, 3
  br i1 %done, label %exit, label %body

exit:
  ret void
}

declare void @__quantum__qis__h__body(%Qubit*)

attributes #0 = { "EntryPoint" }
`

func mustLoad(t *testing.T, name, src string) *qir.Module {
	t.Helper()
	m, err := loader.LoadBytes(name, []byte(src))
	if err != nil {
		t.Fatalf("LoadBytes(%s): %v", name, err)
	}
	if err := testkit.CheckModelInvariants(m); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	return m
}

func TestLoadBell(t *testing.T) {
	m := mustLoad(t, "bell.ll", bellIR)
	if m.Name != "bell" {
		t.Fatalf("module name = %q", m.Name)
	}
	eps := m.EntryPoints()
	if len(eps) != 1 || eps[0].Name != "main" {
		t.Fatalf("entry points = %v", eps)
	}
	main := eps[0]
	if n, ok := main.Attrs.RequiredResults(); !ok || n != 2 {
		t.Fatalf("requiredResults = %d, %v", n, ok)
	}
	if len(main.Blocks) != 1 || main.Blocks[0].Name != "entry" {
		t.Fatalf("unexpected blocks: %+v", main.Blocks)
	}
	instrs := main.Blocks[0].Instrs
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(instrs))
	}
	cx := instrs[1].Call
	if cx.Callee != "__quantum__qis__cnot__body" || cx.Kind != qir.CallQIS {
		t.Fatalf("unexpected call %+v", cx)
	}
	if cx.Args[0].Const.Kind != qir.ConstQubit || cx.Args[0].Const.ID != 0 {
		t.Fatalf("null qubit should decode to id 0, got %+v", cx.Args[0].Const)
	}
	if cx.Args[1].Const.Kind != qir.ConstQubit || cx.Args[1].Const.ID != 1 {
		t.Fatalf("inttoptr qubit should decode to id 1, got %+v", cx.Args[1].Const)
	}
	mz := instrs[3].Call
	if mz.Args[1].Const.Kind != qir.ConstResult || mz.Args[1].Const.ID != 1 {
		t.Fatalf("inttoptr result should decode to id 1, got %+v", mz.Args[1].Const)
	}
	if m.Type(mz.Args[1].Type).Kind != qir.TypeResult {
		t.Fatalf("result operand type = %s", m.TypeString(mz.Args[1].Type))
	}
	if len(m.Declarations()) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(m.Declarations()))
	}
}

func TestLoadLoopWithPhi(t *testing.T) {
	m := mustLoad(t, "loop.ll", loopIR)
	f := m.Func("loop")
	if f == nil || !f.IsEntryPoint() {
		t.Fatalf("loop entry point not found")
	}
	body := f.BlockByName("body")
	if body == nil {
		t.Fatalf("body block missing")
	}
	phi := body.Instrs[0]
	if phi.Kind != qir.InstrPhi || !phi.HasDst {
		t.Fatalf("expected phi first in body, got %+v", phi)
	}
	if len(phi.Phi.Incoming) != 2 {
		t.Fatalf("expected 2 incoming values, got %d", len(phi.Phi.Incoming))
	}
	if phi.Phi.Incoming[0].Block != f.BlockByName("entry").ID || phi.Phi.Incoming[1].Block != body.ID {
		t.Fatalf("unexpected incoming blocks %+v", phi.Phi.Incoming)
	}
	// %next is referenced by the phi before its definition.
	next := phi.Phi.Incoming[1].Value
	if next.Kind != qir.OperandLocal || f.Locals[next.Local].Name != "next" {
		t.Fatalf("forward reference not resolved: %+v", next)
	}
	if body.Term.Kind != qir.TermCondBr {
		t.Fatalf("expected conditional branch, got %v", body.Term.Kind)
	}
	if body.Instrs[3].Kind != qir.InstrICmp || body.Instrs[3].ICmp.Pred != qir.IntEQ {
		t.Fatalf("expected icmp eq, got %+v", body.Instrs[3])
	}
}

func TestLoadFloatWidths(t *testing.T) {
	src := `
define void @main() #0 {
entry:
  ret void
}

declare void @widths(half, float, double)

attributes #0 = { "EntryPoint" }
`
	m := mustLoad(t, "widths.ll", src)
	f := m.Func("widths")
	if f == nil || len(f.Params) != 3 {
		t.Fatalf("widths declaration not loaded: %+v", f)
	}
	for i, want := range []uint32{16, 32, 64} {
		ty := m.Type(f.Locals[f.Params[i]].Type)
		if ty.Kind != qir.TypeFloat || ty.Width != want {
			t.Fatalf("param %d: got %s, want %d-bit float", i, m.TypeString(f.Locals[f.Params[i]].Type), want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ll")
	if err := os.WriteFile(path, []byte(bellIR), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m.Name != "prog" {
		t.Fatalf("module name = %q", m.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		want string
	}{
		{"bitcode magic", "prog", "BC\xc0\xde\x35\x14", "bitcode"},
		{"bitcode extension", "prog.bc", "whatever", "bitcode"},
		{"empty", "empty.ll", "  \n", "empty module"},
		{"syntax", "bad.ll", "define void @main( {", "bad.ll"},
		{"negative id", "neg.ll", `
%Qubit = type opaque
define void @main() {
entry:
  call void @__quantum__qis__h__body(%Qubit* inttoptr (i64 -1 to %Qubit*))
  ret void
}
declare void @__quantum__qis__h__body(%Qubit*)
`, "invalid static id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadBytes(tt.file, []byte(tt.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			var le *loader.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.ll"))
	var le *loader.LoadError
	if !errors.As(err, &le) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected LoadError wrapping ErrNotExist, got %v", err)
	}
}
