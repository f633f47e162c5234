package vm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

type replayEvent struct {
	Kind    string
	Gate    *LogGateEvent
	Measure *LogMeasureEvent
	Exit    *LogExitEvent
	Error   *LogErrorEvent
}

// Replayer reads an NDJSON execution log and checks that a run reproduces
// it. The log's measurement outcomes are served through Stream.
type Replayer struct {
	header   LogHeader
	events   []replayEvent
	next     int
	parseErr error

	consumedTerm bool
}

func NewReplayerFromBytes(data []byte) *Replayer {
	r := &Replayer{}
	r.parse(bytes.NewReader(data))
	return r
}

func NewReplayerFromReader(rd io.Reader) *Replayer {
	r := &Replayer{}
	r.parse(rd)
	return r
}

// Header returns the parsed log header.
func (r *Replayer) Header() LogHeader {
	return r.header
}

func (r *Replayer) Validate() error {
	if r == nil {
		return fmt.Errorf("nil replayer")
	}
	if r.parseErr != nil {
		return r.parseErr
	}
	if r.header.Kind != "header" {
		return fmt.Errorf("missing header")
	}
	if r.header.V != LogVersion {
		return fmt.Errorf("unsupported log version %d", r.header.V)
	}
	return nil
}

// Stream returns the recorded measurement outcomes in order.
func (r *Replayer) Stream() *ResultStream {
	var bits []bool
	if r != nil {
		for _, ev := range r.events {
			if ev.Measure != nil {
				bits = append(bits, ev.Measure.Bit)
			}
		}
	}
	return NewResultStream(bits)
}

func (r *Replayer) Remaining() int {
	if r == nil || r.next >= len(r.events) {
		return 0
	}
	return len(r.events) - r.next
}

func (r *Replayer) ConsumeGate(vm *VM, name string, qubits []uint64, theta *float64) {
	ev := r.expectNext(vm, "gate")
	if ev.Gate.Name != name || !slices.Equal(ev.Gate.Qubits, qubits) {
		vm.panic(CodeReplayMismatch, fmt.Sprintf("replay mismatch: expected gate %s %v, got %s %v", ev.Gate.Name, ev.Gate.Qubits, name, qubits))
	}
	if (ev.Gate.Theta == nil) != (theta == nil) || (theta != nil && *ev.Gate.Theta != *theta) {
		vm.panic(CodeReplayMismatch, fmt.Sprintf("replay mismatch: rotation angle differs for %s", name))
	}
}

func (r *Replayer) ConsumeMeasure(vm *VM, name string, qubit uint64, bit bool) {
	ev := r.expectNext(vm, "measure")
	if ev.Measure.Name != name || ev.Measure.Qubit != qubit {
		vm.panic(CodeReplayMismatch, fmt.Sprintf("replay mismatch: expected %s qubit[%d], got %s qubit[%d]", ev.Measure.Name, ev.Measure.Qubit, name, qubit))
	}
	if ev.Measure.Bit != bit {
		vm.panic(CodeReplayMismatch, "replay mismatch: measurement outcome differs")
	}
}

// CheckError matches a failed run against the log's error event.
func (r *Replayer) CheckError(vm *VM, actual *EvalError) *EvalError {
	if r == nil || actual == nil || vm == nil {
		return actual
	}
	if err := r.Validate(); err != nil {
		return vm.eb.invalidReplayLog(err.Error())
	}
	if actual.Code == CodeReplayMismatch || actual.Code == CodeInvalidReplayLog {
		return actual
	}
	if r.next >= len(r.events) {
		return vm.eb.replayMismatch("replay mismatch: log ended before the error")
	}
	ev := r.events[r.next]
	if ev.Kind != "error" {
		return vm.eb.replayMismatch(fmt.Sprintf("replay mismatch: expected error, got %s", ev.Kind))
	}
	got := NewLogErrorEvent(actual)
	if ev.Error.Code != got.Code || ev.Error.Msg != got.Msg || ev.Error.At != got.At {
		return vm.eb.replayMismatch("replay mismatch: error does not match log")
	}
	r.next++
	r.consumedTerm = true
	return actual
}

// FinalizeExit matches a successful run against the log's exit event.
func (r *Replayer) FinalizeExit(vm *VM) *EvalError {
	if r == nil || vm == nil {
		return nil
	}
	if err := r.Validate(); err != nil {
		return vm.eb.invalidReplayLog(err.Error())
	}
	if r.consumedTerm {
		if r.next != len(r.events) {
			return vm.eb.replayMismatch("replay mismatch: extra log events after termination")
		}
		return nil
	}
	if r.next >= len(r.events) {
		return vm.eb.replayMismatch("replay mismatch: log has no exit event")
	}
	ev := r.events[r.next]
	if ev.Kind != "exit" {
		return vm.eb.replayMismatch(fmt.Sprintf("replay mismatch: expected exit, got %s", ev.Kind))
	}
	if ev.Exit.Measurements != vm.Measurements {
		return vm.eb.replayMismatch(fmt.Sprintf("replay mismatch: expected %d measurement(s), got %d", ev.Exit.Measurements, vm.Measurements))
	}
	r.next++
	r.consumedTerm = true
	if r.next != len(r.events) {
		return vm.eb.replayMismatch("replay mismatch: extra log events after termination")
	}
	return nil
}

func (r *Replayer) expectNext(vm *VM, kind string) replayEvent {
	if err := r.Validate(); err != nil {
		vm.panic(CodeInvalidReplayLog, err.Error())
	}
	if r.next >= len(r.events) {
		vm.panic(CodeReplayMismatch, fmt.Sprintf("replay mismatch: log ended, expected %s", kind))
	}
	ev := r.events[r.next]
	if ev.Kind != kind {
		vm.panic(CodeReplayMismatch, fmt.Sprintf("replay mismatch: expected %s, got %s", kind, ev.Kind))
	}
	r.next++
	return ev
}

func (r *Replayer) parse(rd io.Reader) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || r.parseErr != nil {
			continue
		}
		if line[0] != '{' {
			r.parseErr = fmt.Errorf("invalid JSON on line %d", lineNo)
			continue
		}

		if r.header.Kind == "" {
			var h LogHeader
			if err := json.Unmarshal([]byte(line), &h); err != nil {
				r.parseErr = fmt.Errorf("invalid header: %w", err)
				continue
			}
			r.header = h
			continue
		}

		var k struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal([]byte(line), &k); err != nil {
			r.parseErr = fmt.Errorf("invalid event on line %d: %w", lineNo, err)
			continue
		}
		ev := replayEvent{Kind: k.Kind}
		var target any
		switch k.Kind {
		case "gate":
			ev.Gate = &LogGateEvent{}
			target = ev.Gate
		case "measure":
			ev.Measure = &LogMeasureEvent{}
			target = ev.Measure
		case "exit":
			ev.Exit = &LogExitEvent{}
			target = ev.Exit
		case "error":
			ev.Error = &LogErrorEvent{}
			target = ev.Error
		default:
			r.parseErr = fmt.Errorf("unknown event kind %q on line %d", k.Kind, lineNo)
			continue
		}
		if err := json.Unmarshal([]byte(line), target); err != nil {
			r.parseErr = fmt.Errorf("invalid %s event on line %d: %w", k.Kind, lineNo, err)
			continue
		}
		r.events = append(r.events, ev)
	}
	if err := sc.Err(); err != nil && r.parseErr == nil {
		r.parseErr = err
	}
	if r.header.Kind == "" && r.parseErr == nil {
		r.parseErr = fmt.Errorf("missing header")
	}
}
