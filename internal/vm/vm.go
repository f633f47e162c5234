// Package vm interprets the control-flow graph of a QIR entry point,
// dispatching quantum instructions to a GateSet.
package vm

import (
	"fmt"

	"qirkit/internal/gates"
	"qirkit/internal/qir"
	"qirkit/internal/trace"
)

// Options configures VM execution.
type Options struct {
	// MaxSteps bounds executed instructions plus terminators; 0 means no limit.
	MaxSteps int
}

// VM executes one entry point of an immutable program model. A VM is
// single-use and not safe for concurrent use.
type VM struct {
	M        *qir.Module
	Entry    *qir.Func
	Gates    gates.GateSet
	Stream   *ResultStream
	Stack    []Frame
	Recorder *Recorder
	Replayer *Replayer
	Trace    *Tracer
	Events   trace.Tracer
	// EventParent is the span block events are attached to.
	EventParent trace.SpanContext
	Options     Options

	Steps        int
	Measurements int
	Halted       bool
	started      bool

	// results caches measurement outcomes by result id.
	results   map[uint64]bool
	maxQubit  uint64
	anyQubit  bool
	maxResult uint64
	anyResult bool
	nextQubit uint64
	memory    []Value
	outputs   []Output

	eb *errorBuilder
}

// New creates a VM that will run entry with gate callbacks sent to gs. A nil
// stream makes every measurement read false.
func New(m *qir.Module, entry *qir.Func, gs gates.GateSet, stream *ResultStream) *VM {
	vm := &VM{
		M:       m,
		Entry:   entry,
		Gates:   gs,
		Stream:  stream,
		Events:  trace.Nop,
		results: make(map[uint64]bool),
	}
	vm.eb = &errorBuilder{vm: vm}
	return vm
}

// StopPoint describes the current instruction/terminator that would execute next.
type StopPoint struct {
	FuncName string
	BB       qir.BlockID
	Block    string
	IP       int

	IsTerm bool
	Instr  *qir.Instr
	Term   *qir.Terminator
}

// Run executes the entry point to completion and calls Finish on success.
// Returns an EvalError if execution fails, nil on successful completion.
func (vm *VM) Run() (vmErr *EvalError) {
	if vmErr := vm.Start(); vmErr != nil {
		return vmErr
	}
	for !vm.Halted && len(vm.Stack) > 0 {
		if stepErr := vm.Step(); stepErr != nil {
			if vm.Replayer != nil {
				stepErr = vm.Replayer.CheckError(vm, stepErr)
			}
			if vm.Recorder != nil {
				vm.Recorder.RecordError(stepErr)
			}
			vm.Halted = true
			return stepErr
		}
	}

	if vm.Replayer != nil {
		if vmErr := vm.Replayer.FinalizeExit(vm); vmErr != nil {
			return vmErr
		}
	}
	meta := vm.Metadata()
	vm.Gates.Finish(meta)
	if vm.Recorder != nil && !vm.Recorder.Done() {
		vm.Recorder.RecordExit(vm.Measurements)
	}
	return nil
}

// Start pushes the entry frame.
func (vm *VM) Start() *EvalError {
	if vm.started || vm.Halted {
		return nil
	}
	vm.started = true
	if vm.Entry == nil {
		return newError(CodeNotFound, "No matching entry point found.")
	}
	if vm.Gates == nil {
		vm.Gates = &gates.Base{}
	}
	if vm.Replayer != nil {
		if err := vm.Replayer.Validate(); err != nil {
			return vm.eb.invalidReplayLog(err.Error())
		}
	}
	vm.Stack = append(vm.Stack, *NewFrame(vm.Entry))
	vm.traceBlock(&vm.Stack[0])
	return nil
}

// Step executes exactly one instruction or terminator transition.
// It returns an EvalError if execution fails.
func (vm *VM) Step() (vmErr *EvalError) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*EvalError); ok {
				vmErr = e
				return
			}
			panic(r)
		}
	}()

	if vm.Halted || len(vm.Stack) == 0 {
		return nil
	}
	if vm.Options.MaxSteps > 0 && vm.Steps >= vm.Options.MaxSteps {
		return vm.eb.stepLimit(vm.Options.MaxSteps)
	}
	vm.Steps++

	preDepth := len(vm.Stack)
	frameIdx := preDepth - 1
	frame := &vm.Stack[frameIdx]
	block := frame.CurrentBlock()
	if block == nil {
		return vm.eb.unsupportedInstruction(fmt.Sprintf("invalid block id: %d", frame.BB))
	}

	if frame.AtTerminator() {
		return vm.execTerminator(frame, &block.Term)
	}

	instr := frame.CurrentInstr()
	if instr == nil {
		return vm.eb.unsupportedInstruction(fmt.Sprintf("invalid instruction pointer: ip=%d", frame.IP))
	}

	pushFrame, vmErr := vm.execInstr(frame, instr)
	if vmErr != nil {
		return vmErr
	}
	if pushFrame != nil {
		vm.Stack = append(vm.Stack, *pushFrame)
		vm.traceBlock(&vm.Stack[len(vm.Stack)-1])
		return nil
	}
	if !vm.Halted && len(vm.Stack) == preDepth {
		vm.Stack[frameIdx].IP++
	}
	return nil
}

// StopPoint returns the next instruction/terminator that would execute.
// ok=false indicates the VM is halted or has finished execution.
func (vm *VM) StopPoint() (sp StopPoint, ok bool) {
	if vm == nil || vm.Halted || len(vm.Stack) == 0 {
		return StopPoint{}, false
	}
	frame := &vm.Stack[len(vm.Stack)-1]
	block := frame.CurrentBlock()
	if block == nil {
		return StopPoint{}, false
	}
	sp = StopPoint{
		FuncName: frame.Func.Name,
		BB:       frame.BB,
		Block:    block.Name,
		IP:       frame.IP,
	}
	if frame.AtTerminator() {
		sp.IsTerm = true
		sp.Term = &block.Term
		return sp, true
	}
	sp.Instr = frame.CurrentInstr()
	return sp, sp.Instr != nil
}

// RunUntilStop runs the VM until it halts, fails, or stopFn returns true for
// the current stop point. The VM is stopped before executing that point.
func (vm *VM) RunUntilStop(stopFn func(StopPoint) bool) (stop StopPoint, stopped bool, vmErr *EvalError) {
	if vmErr := vm.Start(); vmErr != nil {
		return StopPoint{}, false, vmErr
	}
	for !vm.Halted && len(vm.Stack) > 0 {
		sp, ok := vm.StopPoint()
		if !ok {
			break
		}
		if stopFn != nil && stopFn(sp) {
			return sp, true, nil
		}
		if vmErr := vm.Step(); vmErr != nil {
			vm.Halted = true
			return StopPoint{}, false, vmErr
		}
	}
	return StopPoint{}, false, nil
}

// execInstr executes a non-terminator instruction. A non-nil frame is pushed
// by the caller for internal calls.
func (vm *VM) execInstr(frame *Frame, instr *qir.Instr) (*Frame, *EvalError) {
	if vm.Trace != nil {
		vm.Trace.TraceInstr(len(vm.Stack), frame, instr)
	}
	switch instr.Kind {
	case qir.InstrCall:
		return vm.execCall(frame, instr)
	case qir.InstrPhi:
		// Phis are resolved on block entry; reaching one here means it does
		// not lead its block.
		return nil, vm.eb.unsupportedInstruction("phi after non-phi instruction")
	case qir.InstrICmp, qir.InstrFCmp, qir.InstrSelect, qir.InstrBinary, qir.InstrCast:
		v := vm.evalPure(frame, instr)
		vm.writeLocal(frame, instr, v)
	case qir.InstrAlloca:
		vm.writeLocal(frame, instr, vm.alloca(instr.Alloca.Elem))
	case qir.InstrLoad:
		vm.writeLocal(frame, instr, vm.load(frame, &instr.Load))
	case qir.InstrStore:
		vm.store(frame, &instr.Store)
	default:
		return nil, vm.eb.unsupportedInstruction(qir.FormatInstr(vm.M, frame.Func, instr))
	}
	return nil, nil
}

func (vm *VM) panic(code ErrorCode, msg string) {
	panic(vm.eb.makeError(code, msg))
}

func (vm *VM) traceBlock(frame *Frame) {
	if !vm.Events.Level().ShouldEmit(trace.ScopeBlock) {
		return
	}
	name := frame.Func.Name
	if b := frame.CurrentBlock(); b != nil {
		name = frame.Func.Name + "/" + b.Name
	}
	trace.Point(vm.Events, trace.ScopeBlock, name, vm.EventParent, "")
}
