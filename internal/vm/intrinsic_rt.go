package vm

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"qirkit/internal/qir"
)

// callRT interprets a runtime library call.
func (vm *VM) callRT(frame *Frame, instr *qir.Instr) {
	call := &instr.Call
	switch rt := qir.LookupRT(call.Callee); rt {
	case qir.RTInitialize, qir.RTResultUpdateRefCount:
	case qir.RTResultGetOne:
		vm.writeLocal(frame, instr, MakeDynamicResult(1, true))
	case qir.RTResultGetZero:
		vm.writeLocal(frame, instr, MakeDynamicResult(0, false))
	case qir.RTResultEqual:
		vm.checkArity(call, 2)
		a := vm.resultBit(vm.resultArg(frame, call, 0))
		b := vm.resultBit(vm.resultArg(frame, call, 1))
		vm.writeLocal(frame, instr, MakeBool(a == b))
	case qir.RTQubitAllocate:
		id := vm.nextQubit
		vm.nextQubit++
		vm.noteQubit(id)
		vm.writeLocal(frame, instr, MakeQubit(id))
	case qir.RTQubitRelease:
		vm.checkArity(call, 1)
		vm.qubitArg(frame, call, 0)
		if vm.nextQubit > 0 {
			vm.nextQubit--
		}
	case qir.RTResultRecordOutput:
		r := vm.resultArg(frame, call, 0)
		vm.recordOutput(frame, call, OutputResult, vm.resultBit(r))
	case qir.RTBoolRecordOutput:
		vm.recordOutput(frame, call, OutputBool, vm.boolArg(frame, call, 0))
	case qir.RTIntRecordOutput:
		vm.recordOutput(frame, call, OutputInt, vm.intArg(frame, call, 0).Signed())
	case qir.RTDoubleRecordOutput:
		vm.recordOutput(frame, call, OutputDouble, vm.floatArg(frame, call, 0))
	case qir.RTArrayRecordOutput:
		vm.recordOutput(frame, call, OutputArray, vm.intArg(frame, call, 0).Signed())
	case qir.RTTupleRecordOutput:
		vm.recordOutput(frame, call, OutputTuple, vm.intArg(frame, call, 0).Signed())
	default:
		vm.panic(CodeUnsupportedExternalCall, fmt.Sprintf("Unsupported function `%s`.", call.Callee))
	}
}

func (vm *VM) intArg(frame *Frame, call *qir.CallInstr, i int) Value {
	v := vm.arg(frame, call, i)
	if v.Kind != VKInt {
		panic(vm.eb.failedOperand("argument %d of %s is not an integer: %s", i, call.Callee, v))
	}
	return v
}

// recordOutput appends an output entry. The optional second argument is a
// label pointing at a constant string.
func (vm *VM) recordOutput(frame *Frame, call *qir.CallInstr, kind OutputKind, value any) {
	if len(call.Args) == 0 {
		panic(vm.eb.failedOperand("%s expects a value argument", call.Callee))
	}
	out := Output{Kind: kind, Value: value}
	if len(call.Args) > 1 {
		out.Label = vm.label(vm.evalOperand(frame, call.Args[1]))
	}
	vm.outputs = append(vm.outputs, out)
}

func (vm *VM) label(v Value) string {
	if v.Kind != VKGlobal {
		return ""
	}
	g := vm.M.Global(v.Name)
	if g == nil {
		return ""
	}
	data := g.Data
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if !utf8.Valid(data) {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
	return norm.NFC.String(string(data))
}
