package vm

import (
	"fmt"
	"strings"

	"qirkit/internal/qir"
)

// ErrorCode identifies the kind of evaluation failure.
type ErrorCode int

// Stable error codes - do not change values.
const (
	CodeAmbiguousEntryPoint     ErrorCode = 1001 // EV1001: no entry point to choose
	CodeMultipleEntryPoints     ErrorCode = 1002 // EV1002: several entry points, none named
	CodeNotFound                ErrorCode = 1003 // EV1003: named entry point missing
	CodeInvalidEntryPoint       ErrorCode = 1004 // EV1004: entry point takes parameters or returns a value
	CodeUnsupportedInstruction  ErrorCode = 1101 // EV1101: unknown QIS call or non-executable instruction
	CodeUnsupportedExternalCall ErrorCode = 1102 // EV1102: unlinked external function
	CodeFailedToEvaluateOperand ErrorCode = 1103 // EV1103: operand did not resolve to a concrete value
	CodeResultStreamExhausted   ErrorCode = 1201 // EV1201: more measurements than stream entries
	CodeReachedUnreachable      ErrorCode = 1301 // EV1301: unreachable terminator executed
	CodeStepLimitExceeded       ErrorCode = 1302 // EV1302: MaxSteps reached
	CodeReplayMismatch          ErrorCode = 1401 // EV1401: run diverged from a replay log
	CodeInvalidReplayLog        ErrorCode = 1402 // EV1402: replay log is malformed
)

var codeNames = map[ErrorCode]string{
	CodeAmbiguousEntryPoint:     "AmbiguousEntryPoint",
	CodeMultipleEntryPoints:     "MultipleEntryPoints",
	CodeNotFound:                "NotFound",
	CodeInvalidEntryPoint:       "InvalidEntryPoint",
	CodeUnsupportedInstruction:  "UnsupportedInstruction",
	CodeUnsupportedExternalCall: "UnsupportedExternalCall",
	CodeFailedToEvaluateOperand: "FailedToEvaluateOperand",
	CodeResultStreamExhausted:   "ResultStreamExhausted",
	CodeReachedUnreachable:      "ReachedUnreachable",
	CodeStepLimitExceeded:       "StepLimitExceeded",
	CodeReplayMismatch:          "ReplayMismatch",
	CodeInvalidReplayLog:        "InvalidReplayLog",
}

// String returns the code as "EV1001" format.
func (c ErrorCode) String() string {
	return fmt.Sprintf("EV%d", int(c))
}

// Name returns the symbolic name of the code.
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Sentinels for errors.Is. They match any EvalError with the same code.
var (
	ErrAmbiguousEntryPoint     = &EvalError{Code: CodeAmbiguousEntryPoint}
	ErrMultipleEntryPoints     = &EvalError{Code: CodeMultipleEntryPoints}
	ErrNotFound                = &EvalError{Code: CodeNotFound}
	ErrInvalidEntryPoint       = &EvalError{Code: CodeInvalidEntryPoint}
	ErrUnsupportedInstruction  = &EvalError{Code: CodeUnsupportedInstruction}
	ErrUnsupportedExternalCall = &EvalError{Code: CodeUnsupportedExternalCall}
	ErrFailedToEvaluateOperand = &EvalError{Code: CodeFailedToEvaluateOperand}
	ErrResultStreamExhausted   = &EvalError{Code: CodeResultStreamExhausted}
	ErrReachedUnreachable      = &EvalError{Code: CodeReachedUnreachable}
	ErrStepLimitExceeded       = &EvalError{Code: CodeStepLimitExceeded}
	ErrReplayMismatch          = &EvalError{Code: CodeReplayMismatch}
	ErrInvalidReplayLog        = &EvalError{Code: CodeInvalidReplayLog}
)

// BacktraceFrame represents one frame in the error backtrace.
type BacktraceFrame struct {
	FuncName string
	Block    string
	IP       int
}

// EvalError is a structured evaluation failure. Func, Block and Instr name
// the offending location when one is known.
type EvalError struct {
	Code      ErrorCode
	Message   string
	Func      string
	Block     string
	Instr     string
	Backtrace []BacktraceFrame // Stack frames from top to bottom
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Code, e.Code.Name(), e.Message)
	if e.Func == "" {
		return msg
	}
	if e.Block == "" {
		return fmt.Sprintf("%s (in %s)", msg, e.Func)
	}
	if e.Instr != "" {
		return fmt.Sprintf("%s (at %s/%s: %s)", msg, e.Func, e.Block, e.Instr)
	}
	return fmt.Sprintf("%s (at %s/%s)", msg, e.Func, e.Block)
}

// Is matches the code-only sentinels.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	if !ok || t.Message != "" {
		return false
	}
	return t.Code == e.Code
}

// Detailed renders the error with its backtrace on separate lines.
func (e *EvalError) Detailed() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error %s %s: %s\n", e.Code, e.Code.Name(), e.Message)
	if e.Func != "" {
		fmt.Fprintf(&sb, "at %s/%s", e.Func, e.Block)
		if e.Instr != "" {
			fmt.Fprintf(&sb, ": %s", e.Instr)
		}
		sb.WriteString("\n")
	}
	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, f := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s %s:%d\n", i, f.FuncName, f.Block, f.IP)
		}
	}
	return sb.String()
}

// ParseErrorCode parses "EV1201" into an ErrorCode.
func ParseErrorCode(code string) (ErrorCode, bool) {
	code = strings.TrimSpace(code)
	rest, ok := strings.CutPrefix(code, "EV")
	if !ok || rest == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	if n == 0 {
		return 0, false
	}
	return ErrorCode(n), true
}

func newError(code ErrorCode, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// errorBuilder helps construct EvalError values located at the VM's current
// instruction.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code ErrorCode, msg string) *EvalError {
	e := &EvalError{
		Code:    code,
		Message: msg,
	}
	stack := eb.vm.Stack
	if len(stack) > 0 {
		frame := &stack[len(stack)-1]
		e.Func = frame.Func.Name
		if b := frame.CurrentBlock(); b != nil {
			e.Block = b.Name
			if in := frame.CurrentInstr(); in != nil {
				e.Instr = qir.FormatInstr(eb.vm.M, frame.Func, in)
			} else {
				e.Instr = qir.FormatTerm(eb.vm.M, frame.Func, &b.Term)
			}
		}
	}

	// Build backtrace from stack (top to bottom)
	e.Backtrace = make([]BacktraceFrame, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		frame := &stack[i]
		bf := BacktraceFrame{FuncName: frame.Func.Name, IP: frame.IP}
		if b := frame.CurrentBlock(); b != nil {
			bf.Block = b.Name
		}
		e.Backtrace[len(stack)-1-i] = bf
	}
	return e
}

func (eb *errorBuilder) unsupportedInstruction(what string) *EvalError {
	return eb.makeError(CodeUnsupportedInstruction, fmt.Sprintf("unsupported instruction: %s", what))
}

func (eb *errorBuilder) unsupportedExternal(name string) *EvalError {
	return eb.makeError(CodeUnsupportedExternalCall, fmt.Sprintf("Unsupported function `%s`.", name))
}

func (eb *errorBuilder) failedOperand(format string, args ...any) *EvalError {
	return eb.makeError(CodeFailedToEvaluateOperand, fmt.Sprintf(format, args...))
}

func (eb *errorBuilder) streamExhausted(consumed int) *EvalError {
	return eb.makeError(CodeResultStreamExhausted, fmt.Sprintf("result stream exhausted after %d measurement(s)", consumed))
}

func (eb *errorBuilder) unreachable() *EvalError {
	return eb.makeError(CodeReachedUnreachable, "unreachable code executed")
}

func (eb *errorBuilder) stepLimit(limit int) *EvalError {
	return eb.makeError(CodeStepLimitExceeded, fmt.Sprintf("step limit of %d exceeded", limit))
}

func (eb *errorBuilder) replayMismatch(msg string) *EvalError {
	return eb.makeError(CodeReplayMismatch, msg)
}

func (eb *errorBuilder) invalidReplayLog(msg string) *EvalError {
	return eb.makeError(CodeInvalidReplayLog, msg)
}
