package qir_test

import (
	"testing"

	"qirkit/internal/qir"
)

func TestClassifyCallee(t *testing.T) {
	tests := []struct {
		name    string
		defined bool
		want    qir.CallKind
	}{
		{"__quantum__qis__h__body", false, qir.CallQIS},
		{"__quantum__qis__h__body", true, qir.CallQIS},
		{"__quantum__qis__foo__body", true, qir.CallQIS},
		{"__quantum__rt__result_equal", false, qir.CallRT},
		{"__quantum__qir__callable_invoke", false, qir.CallQIR},
		{"helper", true, qir.CallInternal},
		{"puts", false, qir.CallExternal},
	}
	for _, tt := range tests {
		if got := qir.ClassifyCallee(tt.name, tt.defined); got != tt.want {
			t.Errorf("ClassifyCallee(%q, %v) = %s, want %s", tt.name, tt.defined, got, tt.want)
		}
	}
}

func TestLookupGate(t *testing.T) {
	tests := map[string]qir.Gate{
		"__quantum__qis__cnot__body":        qir.GateCX,
		"__quantum__qis__cx__body":          qir.GateCX,
		"__quantum__qis__s__adj":            qir.GateSAdj,
		"__quantum__qis__t__adj":            qir.GateTAdj,
		"__quantum__qis__mz__body":          qir.GateMZ,
		"__quantum__qis__read_result__body": qir.GateReadResult,
		"__quantum__qis__rz__body":          qir.GateRZ,
		"__quantum__qis__h__ctl":            qir.GateUnknown,
		"__quantum__qis__swap__body":        qir.GateUnknown,
		"__quantum__rt__h__body":            qir.GateUnknown,
	}
	for name, want := range tests {
		if got := qir.LookupGate(name); got != want {
			t.Errorf("LookupGate(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestSplitQIS(t *testing.T) {
	op, suffix, ok := qir.SplitQIS("__quantum__qis__read_result__body")
	if !ok || op != "read_result" || suffix != "body" {
		t.Fatalf("SplitQIS = (%q, %q, %v)", op, suffix, ok)
	}
	if _, _, ok := qir.SplitQIS("__quantum__rt__initialize"); ok {
		t.Fatalf("expected runtime name to be rejected")
	}
}

func TestIsSupportedExternal(t *testing.T) {
	supported := []string{
		"__quantum__qis__h__body",
		"__quantum__rt__result_get_one",
		"__quantum__rt__qubit_allocate",
		"__quantum__rt__tuple_record_output",
	}
	for _, name := range supported {
		if !qir.IsSupportedExternal(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	unsupported := []string{
		"__quantum__qis__swap__body",
		"__quantum__rt__array_create_1d",
		"__quantum__qir__callable_invoke",
		"malloc",
	}
	for _, name := range unsupported {
		if qir.IsSupportedExternal(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}
