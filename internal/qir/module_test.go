package qir_test

import (
	"strings"
	"testing"

	"qirkit/internal/qir"
)

// buildBell builds main: h q0; cx q0,q1; mz q0->r0; mz q1->r1; ret.
func buildBell(t *testing.T) *qir.Module {
	t.Helper()
	m := qir.NewModule("bell")
	void := m.InternType(qir.Type{Kind: qir.TypeVoid})
	qubit := m.InternType(qir.Type{Kind: qir.TypeQubit})
	result := m.InternType(qir.Type{Kind: qir.TypeResult})

	q := func(id uint64) qir.Operand { return qir.ConstOperand(qir.QubitConst(id), qubit) }
	r := func(id uint64) qir.Operand { return qir.ConstOperand(qir.ResultConst(id), result) }
	call := func(name string, args ...qir.Operand) qir.Instr {
		return qir.Instr{Kind: qir.InstrCall, Dst: qir.NoLocalID, Call: qir.CallInstr{
			Callee: name, Kind: qir.CallQIS, Args: args, Ret: void,
		}}
	}

	main := &qir.Func{Name: "main", Result: void, Entry: 0}
	main.Attrs.Set(qir.AttrEntryPoint, "")
	main.Attrs.Set(qir.AttrRequiredQubits, "2")
	main.Blocks = []qir.Block{{
		ID:   0,
		Name: "entry",
		Instrs: []qir.Instr{
			call("__quantum__qis__h__body", q(0)),
			call("__quantum__qis__cnot__body", q(0), q(1)),
			call("__quantum__qis__mz__body", q(0), r(0)),
			call("__quantum__qis__mz__body", q(1), r(1)),
		},
		Term: qir.Terminator{Kind: qir.TermRet},
	}}
	m.AddFunc(main)
	for _, name := range []string{"__quantum__qis__h__body", "__quantum__qis__cnot__body", "__quantum__qis__mz__body"} {
		m.AddFunc(&qir.Func{Name: name, Result: void, Entry: qir.NoBlockID, IsDecl: true})
	}
	return m
}

func TestInternTypeDeduplicates(t *testing.T) {
	m := qir.NewModule("types")
	a := m.InternType(qir.Type{Kind: qir.TypeInt, Width: 64})
	b := m.InternType(qir.Type{Kind: qir.TypeInt, Width: 64})
	c := m.InternType(qir.Type{Kind: qir.TypeInt, Width: 1})
	if a != b {
		t.Fatalf("expected i64 to intern once, got %d and %d", a, b)
	}
	if a == c {
		t.Fatalf("expected i1 and i64 to differ")
	}
	if got := m.TypeString(c); got != "i1" {
		t.Fatalf("TypeString(i1) = %q", got)
	}
}

func TestEntryPointsAndAttrs(t *testing.T) {
	m := buildBell(t)
	eps := m.EntryPoints()
	if len(eps) != 1 || eps[0].Name != "main" {
		t.Fatalf("unexpected entry points: %v", eps)
	}
	n, ok := eps[0].Attrs.RequiredQubits()
	if !ok || n != 2 {
		t.Fatalf("RequiredQubits = %d, %v", n, ok)
	}
	if _, ok := eps[0].Attrs.RequiredResults(); ok {
		t.Fatalf("requiredResults should be absent")
	}
	if len(m.Declarations()) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(m.Declarations()))
	}
	if len(m.InteropFuncs()) != 0 {
		t.Fatalf("expected no interop functions")
	}
}

func TestValidateAcceptsBell(t *testing.T) {
	if err := qir.Validate(buildBell(t)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateReportsBrokenBlocks(t *testing.T) {
	m := buildBell(t)
	main := m.Func("main")
	main.Blocks = append(main.Blocks, qir.Block{ID: 1, Name: "dangling"})
	main.Blocks[0].Term = qir.Terminator{Kind: qir.TermBr, Br: qir.BrTerm{Target: 7}}
	main.Blocks[0].Instrs = append(main.Blocks[0].Instrs, qir.Instr{
		Kind: qir.InstrCall,
		Call: qir.CallInstr{Callee: "missing"},
	})

	err := qir.Validate(m)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"bb1: unterminated block",
		"bb0: branch target bb7 out of range",
		"call to undeclared function missing",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestDumpModule(t *testing.T) {
	var sb strings.Builder
	if err := qir.DumpModule(&sb, buildBell(t), qir.DumpOptions{Declarations: true}); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"module bell",
		"fn main() -> void [EntryPoint requiredQubits=\"2\"]:",
		"  bb0(entry):",
		"    call __quantum__qis__cnot__body(%Qubit* qubit[0], %Qubit* qubit[1])",
		"    call __quantum__qis__mz__body(%Qubit* qubit[1], %Result* result[1])",
		"    ret void",
		"declare __quantum__qis__h__body() -> void",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestSignExtend(t *testing.T) {
	if got := qir.SignExtend(0xff, 8); got != -1 {
		t.Fatalf("SignExtend(0xff, 8) = %d", got)
	}
	if got := qir.SignExtend(0x7f, 8); got != 127 {
		t.Fatalf("SignExtend(0x7f, 8) = %d", got)
	}
	if got := qir.MaskBits(^uint64(0), 1); got != 1 {
		t.Fatalf("MaskBits(all, 1) = %d", got)
	}
}
