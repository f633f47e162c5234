package vm

import (
	"encoding/json"
	"io"
	"sync"
)

// Recorder writes a deterministic NDJSON execution log.
type Recorder struct {
	mu   sync.Mutex
	enc  *json.Encoder
	err  error
	done bool
}

// NewRecorder writes the log header to w and returns a recorder for the
// rest of the run.
func NewRecorder(w io.Writer, header LogHeader) *Recorder {
	r := &Recorder{enc: json.NewEncoder(w)}
	r.enc.SetEscapeHTML(false)
	r.record(header)
	return r
}

func (r *Recorder) Err() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) Done() bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Recorder) RecordGate(name string, qubits []uint64, theta *float64) {
	ev := LogGateEvent{
		Kind:   "gate",
		Name:   name,
		Qubits: append([]uint64(nil), qubits...),
	}
	if theta != nil {
		t := *theta
		ev.Theta = &t
	}
	r.record(ev)
}

func (r *Recorder) RecordMeasure(name string, qubit, result uint64, bit bool) {
	r.record(LogMeasureEvent{Kind: "measure", Name: name, Qubit: qubit, Result: result, Bit: bit})
}

func (r *Recorder) RecordExit(measurements int) {
	r.finish(LogExitEvent{Kind: "exit", Measurements: measurements})
}

func (r *Recorder) RecordError(e *EvalError) {
	r.finish(NewLogErrorEvent(e))
}

func (r *Recorder) record(v any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.recordLocked(v)
}

func (r *Recorder) finish(v any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.recordLocked(v)
	r.done = true
}

func (r *Recorder) recordLocked(v any) {
	if r.enc == nil || r.err != nil {
		return
	}
	if err := r.enc.Encode(v); err != nil {
		r.err = err
	}
}
