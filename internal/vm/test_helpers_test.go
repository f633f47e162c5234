package vm_test

import (
	"errors"
	"fmt"
	"testing"

	"qirkit/internal/gates"
	"qirkit/internal/loader"
	"qirkit/internal/qir"
	"qirkit/internal/vm"
)

// callLog records gate callbacks as compact strings like "mz(0,1)".
type callLog struct {
	gates.Base
	calls    []string
	finished int
	meta     map[string]any
}

func (c *callLog) add(format string, args ...any) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *callLog) CX(a, b uint64) { c.add("cx(%d,%d)", a, b) }
func (c *callLog) CZ(a, b uint64) { c.add("cz(%d,%d)", a, b) }
func (c *callLog) H(q uint64) { c.add("h(%d)", q) }
func (c *callLog) MZ(q, r uint64) { c.add("mz(%d,%d)", q, r) }
func (c *callLog) Reset(q uint64) { c.add("reset(%d)", q) }
func (c *callLog) RX(theta float64, q uint64) { c.add("rx(%g,%d)", theta, q) }
func (c *callLog) RY(theta float64, q uint64) { c.add("ry(%g,%d)", theta, q) }
func (c *callLog) RZ(theta float64, q uint64) { c.add("rz(%g,%d)", theta, q) }
func (c *callLog) S(q uint64) { c.add("s(%d)", q) }
func (c *callLog) SAdj(q uint64) { c.add("s_adj(%d)", q) }
func (c *callLog) T(q uint64) { c.add("t(%d)", q) }
func (c *callLog) TAdj(q uint64) { c.add("t_adj(%d)", q) }
func (c *callLog) X(q uint64) { c.add("x(%d)", q) }
func (c *callLog) Y(q uint64) { c.add("y(%d)", q) }
func (c *callLog) Z(q uint64) { c.add("z(%d)", q) }

func (c *callLog) M(q uint64) uint64 {
	id := c.Base.M(q)
	c.add("m(%d)=%d", q, id)
	return id
}

func (c *callLog) Finish(meta map[string]any) {
	c.finished++
	c.meta = meta
}

func mustLoad(t *testing.T, src string) *qir.Module {
	t.Helper()
	m, err := loader.LoadBytes("test.ll", []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

// run loads src, resolves its only entry point and evaluates it.
func run(t *testing.T, src string, stream *vm.ResultStream) (*callLog, *vm.VM, *vm.EvalError) {
	t.Helper()
	m := mustLoad(t, src)
	entry, err := vm.ResolveEntryPoint(m, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	log := &callLog{}
	machine := vm.New(m, entry, log, stream)
	return log, machine, machine.Run()
}

func expectCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func expectCode(t *testing.T, err error, code vm.ErrorCode) *vm.EvalError {
	t.Helper()
	var ee *vm.EvalError
	if !errors.As(err, &ee) || ee == nil {
		t.Fatalf("expected EvalError %s, got %v", code, err)
	}
	if ee.Code != code {
		t.Fatalf("expected %s, got %s: %s", code, ee.Code, ee.Message)
	}
	return ee
}

const header = `
%Qubit = type opaque
%Result = type opaque
`

const qisDecls = `
declare void @__quantum__qis__h__body(%Qubit*)
declare void @__quantum__qis__x__body(%Qubit*)
declare void @__quantum__qis__z__body(%Qubit*)
declare void @__quantum__qis__cnot__body(%Qubit*, %Qubit*)
declare void @__quantum__qis__mz__body(%Qubit*, %Result*)
declare i1 @__quantum__qis__read_result__body(%Result*)
`
