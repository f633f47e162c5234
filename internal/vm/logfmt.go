package vm

import (
	"fmt"
)

// LogVersion is the version of the NDJSON execution log format.
const LogVersion = 1

// LogHeader represents the header of a log file.
type LogHeader struct {
	V      int    `json:"v"`
	Kind   string `json:"kind"`
	Qirkit string `json:"qirkit"`
	Module string `json:"module,omitempty"`
	Entry  string `json:"entry,omitempty"`
}

// LogGateEvent represents a non-measurement gate callback.
type LogGateEvent struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	Qubits []uint64 `json:"qubits"`
	Theta  *float64 `json:"theta,omitempty"`
}

// LogMeasureEvent represents a measurement and the outcome it produced.
type LogMeasureEvent struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Qubit  uint64 `json:"qubit"`
	Result uint64 `json:"result"`
	Bit    bool   `json:"bit"`
}

// LogExitEvent represents successful completion.
type LogExitEvent struct {
	Kind         string `json:"kind"`
	Measurements int    `json:"measurements"`
}

// LogErrorEvent represents an evaluation failure.
type LogErrorEvent struct {
	Kind string   `json:"kind"`
	Code string   `json:"code"`
	Msg  string   `json:"msg"`
	At   string   `json:"at,omitempty"`
	Bt   []string `json:"bt,omitempty"`
}

// NewLogHeader creates a new log header with default values.
func NewLogHeader(version, module, entry string) LogHeader {
	return LogHeader{
		V:      LogVersion,
		Kind:   "header",
		Qirkit: version,
		Module: module,
		Entry:  entry,
	}
}

// NewLogErrorEvent creates a LogErrorEvent from an EvalError.
func NewLogErrorEvent(e *EvalError) LogErrorEvent {
	if e == nil {
		return LogErrorEvent{Kind: "error"}
	}
	ev := LogErrorEvent{
		Kind: "error",
		Code: e.Code.String(),
		Msg:  e.Message,
	}
	if e.Func != "" {
		ev.At = e.Func + "/" + e.Block
	}
	for _, f := range e.Backtrace {
		ev.Bt = append(ev.Bt, fmt.Sprintf("%s/%s:%d", f.FuncName, f.Block, f.IP))
	}
	return ev
}
