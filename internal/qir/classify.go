package qir

import "strings"

// Name prefixes of the QIR calling conventions.
const (
	QISPrefix = "__quantum__qis__"
	RTPrefix  = "__quantum__rt__"
	QIRPrefix = "__quantum__qir__"
)

// CallKind classifies a callee by name and by whether the module defines it.
type CallKind uint8

const (
	// CallExternal is a declared function outside the QIR namespaces.
	CallExternal CallKind = iota
	// CallInternal is a function with a body in the same module.
	CallInternal
	CallQIS
	CallRT
	CallQIR
)

func (k CallKind) String() string {
	switch k {
	case CallInternal:
		return "internal"
	case CallQIS:
		return "qis"
	case CallRT:
		return "rt"
	case CallQIR:
		return "qir"
	default:
		return "external"
	}
}

// ClassifyCallee reports the call kind for name. defined says whether the
// module carries a body for it; the QIR prefixes take precedence.
func ClassifyCallee(name string, defined bool) CallKind {
	switch {
	case strings.HasPrefix(name, QISPrefix):
		return CallQIS
	case strings.HasPrefix(name, RTPrefix):
		return CallRT
	case strings.HasPrefix(name, QIRPrefix):
		return CallQIR
	case defined:
		return CallInternal
	default:
		return CallExternal
	}
}

// Gate identifies a quantum instruction from the QIS vocabulary.
type Gate uint8

const (
	GateUnknown Gate = iota
	GateCX
	GateCZ
	GateH
	GateM
	GateMZ
	GateReset
	GateRX
	GateRY
	GateRZ
	GateS
	GateSAdj
	GateT
	GateTAdj
	GateX
	GateY
	GateZ
	// GateReadResult is not a gate; it reads a cached measurement.
	GateReadResult
)

var gateNames = [...]string{
	GateUnknown:    "?",
	GateCX:         "cx",
	GateCZ:         "cz",
	GateH:          "h",
	GateM:          "m",
	GateMZ:         "mz",
	GateReset:      "reset",
	GateRX:         "rx",
	GateRY:         "ry",
	GateRZ:         "rz",
	GateS:          "s",
	GateSAdj:       "s_adj",
	GateT:          "t",
	GateTAdj:       "t_adj",
	GateX:          "x",
	GateY:          "y",
	GateZ:          "z",
	GateReadResult: "read_result",
}

func (g Gate) String() string {
	if int(g) < len(gateNames) {
		return gateNames[g]
	}
	return "?"
}

var qisGates = map[string]Gate{
	"cnot__body":        GateCX,
	"cx__body":          GateCX,
	"cz__body":          GateCZ,
	"h__body":           GateH,
	"m__body":           GateM,
	"mz__body":          GateMZ,
	"reset__body":       GateReset,
	"rx__body":          GateRX,
	"ry__body":          GateRY,
	"rz__body":          GateRZ,
	"s__body":           GateS,
	"s__adj":            GateSAdj,
	"t__body":           GateT,
	"t__adj":            GateTAdj,
	"x__body":           GateX,
	"y__body":           GateY,
	"z__body":           GateZ,
	"read_result__body": GateReadResult,
}

// LookupGate maps a full QIS function name to its gate.
func LookupGate(name string) Gate {
	rest, ok := strings.CutPrefix(name, QISPrefix)
	if !ok {
		return GateUnknown
	}
	return qisGates[rest]
}

// SplitQIS splits "__quantum__qis__{op}__{suffix}" into op and suffix.
func SplitQIS(name string) (op, suffix string, ok bool) {
	rest, ok := strings.CutPrefix(name, QISPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, "__")
	if i <= 0 {
		return rest, "", true
	}
	return rest[:i], rest[i+2:], true
}

// RTCall identifies a runtime function the evaluator interprets itself.
type RTCall uint8

const (
	RTUnknown RTCall = iota
	RTInitialize
	RTResultGetOne
	RTResultGetZero
	RTResultEqual
	RTResultUpdateRefCount
	RTQubitAllocate
	RTQubitRelease
	RTResultRecordOutput
	RTBoolRecordOutput
	RTIntRecordOutput
	RTDoubleRecordOutput
	RTArrayRecordOutput
	RTTupleRecordOutput
)

var rtCalls = map[string]RTCall{
	"initialize":                    RTInitialize,
	"result_get_one":                RTResultGetOne,
	"result_get_zero":               RTResultGetZero,
	"result_equal":                  RTResultEqual,
	"result_update_reference_count": RTResultUpdateRefCount,
	"qubit_allocate":                RTQubitAllocate,
	"qubit_release":                 RTQubitRelease,
	"result_record_output":          RTResultRecordOutput,
	"bool_record_output":            RTBoolRecordOutput,
	"int_record_output":             RTIntRecordOutput,
	"double_record_output":          RTDoubleRecordOutput,
	"array_record_output":           RTArrayRecordOutput,
	"tuple_record_output":           RTTupleRecordOutput,
}

// LookupRT maps a full runtime function name to its RTCall.
func LookupRT(name string) RTCall {
	rest, ok := strings.CutPrefix(name, RTPrefix)
	if !ok {
		return RTUnknown
	}
	return rtCalls[rest]
}

// IsSupportedExternal reports whether a declaration named name can be
// satisfied by the evaluator.
func IsSupportedExternal(name string) bool {
	switch ClassifyCallee(name, false) {
	case CallQIS:
		return LookupGate(name) != GateUnknown
	case CallRT:
		return LookupRT(name) != RTUnknown
	default:
		return false
	}
}
