package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"qirkit/internal/vm"
)

func recordRun(t *testing.T, src string, stream *vm.ResultStream) []byte {
	t.Helper()
	m := mustLoad(t, src)
	entry, err := vm.ResolveEntryPoint(m, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var buf bytes.Buffer
	machine := vm.New(m, entry, &callLog{}, stream)
	machine.Recorder = vm.NewRecorder(&buf, vm.NewLogHeader("test", m.Name, entry.Name))
	_ = machine.Run()
	if err := machine.Recorder.Err(); err != nil {
		t.Fatalf("recorder: %v", err)
	}
	if !machine.Recorder.Done() {
		t.Fatalf("recorder not finished")
	}
	return buf.Bytes()
}

func replayRun(t *testing.T, src string, log []byte) (*callLog, *vm.EvalError) {
	t.Helper()
	m := mustLoad(t, src)
	entry, err := vm.ResolveEntryPoint(m, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	rp := vm.NewReplayerFromBytes(log)
	gs := &callLog{}
	machine := vm.New(m, entry, gs, rp.Stream())
	machine.Replayer = rp
	return gs, machine.Run()
}

func TestRecordThenReplay(t *testing.T) {
	src := program(branchBody)
	log := recordRun(t, src, vm.NewResultStream([]bool{true}))

	lines := strings.Split(strings.TrimSpace(string(log)), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, h, measure, x, exit; got:\n%s", log)
	}
	if !strings.Contains(lines[0], `"kind":"header"`) || !strings.Contains(lines[4], `"kind":"exit"`) {
		t.Fatalf("unexpected log:\n%s", log)
	}

	gs, err := replayRun(t, src, log)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	expectCalls(t, gs.calls, "h(0)", "mz(0,0)", "x(1)")
}

func TestReplayFailedRun(t *testing.T) {
	src := program(loopBody)
	log := recordRun(t, src, vm.NewResultStream([]bool{true}))
	if !strings.Contains(string(log), `"code":"EV1201"`) {
		t.Fatalf("expected error event:\n%s", log)
	}
	_, err := replayRun(t, src, log)
	expectCode(t, err, vm.CodeResultStreamExhausted)
}

func TestReplayMismatch(t *testing.T) {
	log := recordRun(t, program(bellBody), nil)
	_, err := replayRun(t, program(branchBody), log)
	expectCode(t, err, vm.CodeReplayMismatch)
}

func TestReplayInvalidLog(t *testing.T) {
	tests := []struct {
		name string
		log  string
	}{
		{"empty", ""},
		{"not json", "hello\n"},
		{"bad version", `{"v":9,"kind":"header"}` + "\n"},
		{"unknown event", `{"v":1,"kind":"header"}` + "\n" + `{"kind":"teleport"}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := replayRun(t, program(bellBody), []byte(tt.log))
			expectCode(t, err, vm.CodeInvalidReplayLog)
		})
	}
}

func TestReplayMeasureMismatchSkipsCallback(t *testing.T) {
	const mDecl = "declare %Result* @__quantum__qis__m__body(%Qubit*)"
	measure := func(call string) string {
		return `
define void @main() #0 {
entry:
  call void @__quantum__qis__h__body(%Qubit* null)
  ` + call + `
  ret void
}
`
	}
	tests := []struct {
		name     string
		recorded string
		replayed string
	}{
		{
			name:     "mz",
			recorded: "call void @__quantum__qis__mz__body(%Qubit* null, %Result* null)",
			replayed: "call void @__quantum__qis__mz__body(%Qubit* inttoptr (i64 1 to %Qubit*), %Result* null)",
		},
		{
			name:     "m",
			recorded: "%r = call %Result* @__quantum__qis__m__body(%Qubit* null)",
			replayed: "%r = call %Result* @__quantum__qis__m__body(%Qubit* inttoptr (i64 1 to %Qubit*))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := recordRun(t, program(measure(tt.recorded), mDecl), nil)
			gs, err := replayRun(t, program(measure(tt.replayed), mDecl), log)
			ee := expectCode(t, err, vm.CodeReplayMismatch)
			if !strings.Contains(ee.Message, "qubit[1]") {
				t.Fatalf("message = %q", ee.Message)
			}
			expectCalls(t, gs.calls, "h(0)")
		})
	}
}
