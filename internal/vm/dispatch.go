package vm

import (
	"fmt"

	"qirkit/internal/qir"
)

// execCall dispatches a call instruction by the callee's classification.
func (vm *VM) execCall(frame *Frame, instr *qir.Instr) (*Frame, *EvalError) {
	call := &instr.Call
	switch call.Kind {
	case qir.CallQIS:
		vm.callQIS(frame, instr)
		return nil, nil
	case qir.CallRT:
		vm.callRT(frame, instr)
		return nil, nil
	case qir.CallInternal:
		return vm.callInternal(frame, call)
	default:
		return nil, vm.eb.unsupportedExternal(call.Callee)
	}
}

// callInternal evaluates the arguments in the caller and returns the callee
// frame. The call's destination is written when the callee returns.
func (vm *VM) callInternal(frame *Frame, call *qir.CallInstr) (*Frame, *EvalError) {
	fn := vm.M.Func(call.Callee)
	if fn == nil || fn.IsDecl {
		return nil, vm.eb.unsupportedExternal(call.Callee)
	}
	if len(call.Args) != len(fn.Params) {
		return nil, vm.eb.failedOperand("%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(call.Args))
	}
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = vm.evalOperand(frame, a)
	}
	callee := NewFrame(fn)
	for i, p := range fn.Params {
		callee.Locals[p] = args[i]
		callee.Defined[p] = true
	}
	return callee, nil
}

// callQIS executes a quantum instruction. Measurements pop the result stream
// and check the replay log before the gate callback, so neither an exhausted
// stream nor a diverging replay issues a callback.
func (vm *VM) callQIS(frame *Frame, instr *qir.Instr) {
	call := &instr.Call
	g := qir.LookupGate(call.Callee)
	switch g {
	case qir.GateCX, qir.GateCZ:
		vm.checkArity(call, 2)
		c, t := vm.qubitArg(frame, call, 0), vm.qubitArg(frame, call, 1)
		vm.gate(g, nil, c, t)
		if g == qir.GateCX {
			vm.Gates.CX(c, t)
		} else {
			vm.Gates.CZ(c, t)
		}
	case qir.GateRX, qir.GateRY, qir.GateRZ:
		vm.checkArity(call, 2)
		theta := vm.floatArg(frame, call, 0)
		q := vm.qubitArg(frame, call, 1)
		vm.gate(g, &theta, q)
		switch g {
		case qir.GateRX:
			vm.Gates.RX(theta, q)
		case qir.GateRY:
			vm.Gates.RY(theta, q)
		default:
			vm.Gates.RZ(theta, q)
		}
	case qir.GateM:
		vm.checkArity(call, 1)
		q := vm.qubitArg(frame, call, 0)
		bit := vm.nextOutcome()
		vm.replayMeasure(g, q, bit)
		id := vm.Gates.M(q)
		vm.results[id] = bit
		vm.noteResult(id)
		vm.measured(g, q, id, bit)
		vm.writeLocal(frame, instr, MakeDynamicResult(id, bit))
	case qir.GateMZ:
		vm.checkArity(call, 2)
		q := vm.qubitArg(frame, call, 0)
		r := vm.resultArg(frame, call, 1)
		bit := vm.nextOutcome()
		vm.replayMeasure(g, q, bit)
		vm.Gates.MZ(q, r.ID)
		vm.results[r.ID] = bit
		vm.noteResult(r.ID)
		vm.measured(g, q, r.ID, bit)
	case qir.GateReadResult:
		vm.checkArity(call, 1)
		r := vm.resultArg(frame, call, 0)
		vm.writeLocal(frame, instr, MakeBool(vm.resultBit(r)))
	case qir.GateUnknown:
		vm.panic(CodeUnsupportedInstruction, fmt.Sprintf("unsupported instruction: %s", call.Callee))
	default:
		vm.checkArity(call, 1)
		q := vm.qubitArg(frame, call, 0)
		vm.gate(g, nil, q)
		vm.singleQubit(g, q)
	}
}

func (vm *VM) singleQubit(g qir.Gate, q uint64) {
	switch g {
	case qir.GateH:
		vm.Gates.H(q)
	case qir.GateReset:
		vm.Gates.Reset(q)
	case qir.GateS:
		vm.Gates.S(q)
	case qir.GateSAdj:
		vm.Gates.SAdj(q)
	case qir.GateT:
		vm.Gates.T(q)
	case qir.GateTAdj:
		vm.Gates.TAdj(q)
	case qir.GateX:
		vm.Gates.X(q)
	case qir.GateY:
		vm.Gates.Y(q)
	case qir.GateZ:
		vm.Gates.Z(q)
	}
}

// nextOutcome pops the result stream.
func (vm *VM) nextOutcome() bool {
	bit, ok := vm.Stream.Next()
	if !ok {
		panic(vm.eb.streamExhausted(vm.Stream.Consumed()))
	}
	return bit
}

// gate records and checks a non-measurement gate before its callback.
func (vm *VM) gate(g qir.Gate, theta *float64, qubits ...uint64) {
	if vm.Replayer != nil {
		vm.Replayer.ConsumeGate(vm, g.String(), qubits, theta)
	}
	if vm.Recorder != nil {
		vm.Recorder.RecordGate(g.String(), qubits, theta)
	}
	if vm.Trace != nil {
		vm.Trace.TraceGate(g.String(), qubits, theta)
	}
}

// replayMeasure checks a measurement against the replay log before its
// callback, as gate does for the other instructions.
func (vm *VM) replayMeasure(g qir.Gate, q uint64, bit bool) {
	if vm.Replayer != nil {
		vm.Replayer.ConsumeMeasure(vm, g.String(), q, bit)
	}
}

func (vm *VM) measured(g qir.Gate, q, result uint64, bit bool) {
	vm.Measurements++
	if vm.Recorder != nil {
		vm.Recorder.RecordMeasure(g.String(), q, result, bit)
	}
	if vm.Trace != nil {
		vm.Trace.TraceMeasure(g.String(), q, result, bit)
	}
}
