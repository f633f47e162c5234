package vm_test

import (
	"errors"
	"testing"

	"qirkit/internal/vm"
)

const twoEntries = `
%Qubit = type opaque

define void @first() #0 {
entry:
  call void @__quantum__qis__h__body(%Qubit* null)
  ret void
}

define void @second() #0 {
entry:
  call void @__quantum__qis__x__body(%Qubit* null)
  ret void
}

define void @helper() {
entry:
  ret void
}

define i64 @bad() #0 {
entry:
  ret i64 0
}

declare void @__quantum__qis__h__body(%Qubit*)
declare void @__quantum__qis__x__body(%Qubit*)

attributes #0 = { "EntryPoint" }
`

func TestResolveEntryPoint(t *testing.T) {
	m := mustLoad(t, twoEntries)
	tests := []struct {
		name string
		want string
		code vm.ErrorCode
	}{
		{name: "", code: vm.CodeMultipleEntryPoints},
		{name: "first", want: "first"},
		{name: "second", want: "second"},
		{name: "helper", code: vm.CodeNotFound},
		{name: "missing", code: vm.CodeNotFound},
		{name: "bad", code: vm.CodeInvalidEntryPoint},
	}
	for _, tt := range tests {
		fn, err := vm.ResolveEntryPoint(m, tt.name)
		if tt.code != 0 {
			expectCode(t, err, tt.code)
			continue
		}
		if err != nil {
			t.Fatalf("resolve %q: %v", tt.name, err)
		}
		if fn.Name != tt.want {
			t.Fatalf("resolve %q = %s", tt.name, fn.Name)
		}
	}
}

func TestNamedEntryPointRunsOnlyThatFunction(t *testing.T) {
	m := mustLoad(t, twoEntries)
	for name, want := range map[string]string{"first": "h(0)", "second": "x(0)"} {
		entry, err := vm.ResolveEntryPoint(m, name)
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		log := &callLog{}
		if vmErr := vm.New(m, entry, log, nil).Run(); vmErr != nil {
			t.Fatalf("run %s: %v", name, vmErr)
		}
		expectCalls(t, log.calls, want)
	}
}

func TestNoEntryPoint(t *testing.T) {
	src := `
%Qubit = type opaque

define void @main() {
entry:
  call void @__quantum__qis__h__body(%Qubit* null)
  ret void
}

declare void @__quantum__qis__h__body(%Qubit*)
`
	m := mustLoad(t, src)
	_, err := vm.ResolveEntryPoint(m, "")
	ee := expectCode(t, err, vm.CodeAmbiguousEntryPoint)
	if ee.Message != "No matching entry point found." {
		t.Fatalf("message = %q", ee.Message)
	}
	if !errors.Is(err, vm.ErrAmbiguousEntryPoint) || errors.Is(err, vm.ErrNotFound) {
		t.Fatalf("sentinel matching is wrong for %v", err)
	}
}
