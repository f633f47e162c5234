package vm_test

import (
	"testing"

	"qirkit/internal/vm"
)

func TestPreflight(t *testing.T) {
	tests := []struct {
		name  string
		decls []string
		msg   string
	}{
		{
			name:  "supported only",
			decls: []string{"declare void @__quantum__rt__initialize(i8*)"},
		},
		{
			name:  "unknown qis is left to dispatch",
			decls: []string{"declare void @__quantum__qis__swap__body(%Qubit*, %Qubit*)"},
		},
		{
			name:  "one external",
			decls: []string{"declare void @print()"},
			msg:   "Unsupported function `print`.",
		},
		{
			name: "several",
			decls: []string{
				"declare void @print()",
				"declare void @__quantum__rt__message(i8*)",
			},
			msg: "Unsupported functions `print`, `__quantum__rt__message`.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustLoad(t, program(bellBody, tt.decls...))
			err := vm.Preflight(m)
			if tt.msg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ee := expectCode(t, err, vm.CodeUnsupportedExternalCall)
			if ee.Message != tt.msg {
				t.Fatalf("message = %q, want %q", ee.Message, tt.msg)
			}
		})
	}
}
