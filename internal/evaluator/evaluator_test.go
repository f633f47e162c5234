package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"qirkit/internal/cache"
	"qirkit/internal/evaluator"
	"qirkit/internal/gates"
	"qirkit/internal/loader"
	"qirkit/internal/observ"
	"qirkit/internal/testkit"
	"qirkit/internal/trace"
	"qirkit/internal/vm"
)

func fixture(name string) evaluator.Source {
	return evaluator.Source{Path: filepath.Join("testdata", name)}
}

func printed(t *testing.T, l *gates.Logger) string {
	t.Helper()
	var buf bytes.Buffer
	if err := l.Print(&buf); err != nil {
		t.Fatalf("print: %v", err)
	}
	return buf.String()
}

func TestEvalBellFixture(t *testing.T) {
	l := gates.NewLogger()
	res, err := evaluator.Eval(context.Background(), fixture("bell.ll"), l, evaluator.Options{
		Stream: vm.NewResultStream([]bool{true, true}),
	})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := "qubits[2]\nout[2]\nh qubit[0]\ncx qubit[0], qubit[1]\nm qubit[0] => out[0]\nm qubit[1] => out[1]\n"
	if got := printed(t, l); got != want {
		t.Fatalf("gate log:\n%s\nwant:\n%s", got, want)
	}
	if err := testkit.CheckModelInvariants(res.Module); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if res.Entry.Name != "main" || res.Measurements != 2 {
		t.Fatalf("unexpected result: entry=%s measurements=%d", res.Entry.Name, res.Measurements)
	}
	outs, ok := res.Metadata[gates.MetaOutputs].([]vm.Output)
	if !ok || len(outs) != 3 {
		t.Fatalf("outputs: %#v", res.Metadata[gates.MetaOutputs])
	}
	if outs[0].Kind != vm.OutputArray || outs[0].Value != int64(2) {
		t.Fatalf("array output: %+v", outs[0])
	}
	if outs[1].Label != "r0" || outs[1].Value != true || outs[2].Label != "r1" {
		t.Fatalf("result outputs: %+v %+v", outs[1], outs[2])
	}
	if res.Metadata[gates.MetaRequiredNumQubits] != uint64(2) {
		t.Fatalf("required qubits: %v", res.Metadata[gates.MetaRequiredNumQubits])
	}
}

func TestEvalTeleportBranches(t *testing.T) {
	tests := []struct {
		name    string
		results []bool
		tail    []string
	}{
		{"none", []bool{false, false}, nil},
		{"x only", []bool{false, true}, []string{"x qubit[2]"}},
		{"z only", []bool{true, false}, []string{"z qubit[2]"}},
		{"both", []bool{true, true}, []string{"x qubit[2]", "z qubit[2]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := gates.NewLogger()
			_, err := evaluator.Eval(context.Background(), fixture("teleport.ll"), l, evaluator.Options{
				Stream: vm.NewResultStream(tt.results),
			})
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			got := l.Instructions[6:]
			if len(got) != len(tt.tail) {
				t.Fatalf("corrections %v, want %v", got, tt.tail)
			}
			for i := range got {
				if got[i] != tt.tail[i] {
					t.Fatalf("corrections %v, want %v", got, tt.tail)
				}
			}
			if l.NumQubits != 3 {
				t.Fatalf("qubits = %d", l.NumQubits)
			}
		})
	}
}

func TestEvalInMemorySource(t *testing.T) {
	src := evaluator.Source{Name: "x.ll", Data: []byte(`
%Qubit = type opaque
define void @main() #0 {
entry:
  call void @__quantum__qis__rx__body(double 1.000000e+00, %Qubit* null)
  ret void
}
declare void @__quantum__qis__rx__body(double, %Qubit*)
attributes #0 = { "EntryPoint" }
`)}
	l := gates.NewLogger()
	res, err := evaluator.Eval(context.Background(), src, l, evaluator.Options{})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(l.Instructions) != 1 || l.Instructions[0] != "rx theta[1.0] qubit[0]" {
		t.Fatalf("instructions: %v", l.Instructions)
	}
	if res.Module.Name != "x" {
		t.Fatalf("module name %q", res.Module.Name)
	}
}

func TestEvalEntryPointSelection(t *testing.T) {
	tests := []struct {
		entry string
		code  vm.ErrorCode
		want  string
	}{
		{"", vm.CodeMultipleEntryPoints, ""},
		{"first", 0, "x qubit[0]"},
		{"second", 0, "y qubit[0]"},
		{"third", vm.CodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run("entry="+tt.entry, func(t *testing.T) {
			l := gates.NewLogger()
			_, err := evaluator.Eval(context.Background(), fixture("two_entries.ll"), l, evaluator.Options{EntryPoint: tt.entry})
			if tt.code != 0 {
				var ee *vm.EvalError
				if !errors.As(err, &ee) || ee.Code != tt.code {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				if len(l.Instructions) != 0 {
					t.Fatalf("gates issued on failure: %v", l.Instructions)
				}
				return
			}
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if len(l.Instructions) != 1 || l.Instructions[0] != tt.want {
				t.Fatalf("instructions: %v", l.Instructions)
			}
		})
	}
}

func TestEvalPreflightRejectsExternals(t *testing.T) {
	l := gates.NewLogger()
	_, err := evaluator.Eval(context.Background(), fixture("externals.ll"), l, evaluator.Options{})
	if !errors.Is(err, vm.ErrUnsupportedExternalCall) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "Unsupported functions `log_gate`, `flush_log`.") {
		t.Fatalf("message: %v", err)
	}
	if len(l.Instructions) != 0 {
		t.Fatalf("preflight must run before any gate: %v", l.Instructions)
	}
}

func TestEvalLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  evaluator.Source
	}{
		{"missing file", fixture("nope.ll")},
		{"malformed", fixture("malformed.ll")},
		{"bitcode", evaluator.Source{Name: "a.bc", Data: []byte{'B', 'C', 0xC0, 0xDE}}},
		{"no source", evaluator.Source{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Eval(context.Background(), tt.src, gates.NewLogger(), evaluator.Options{})
			var le *loader.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err = %T %v, want *loader.LoadError", err, err)
			}
		})
	}
}

func TestEvalHugeResultID(t *testing.T) {
	src := evaluator.Source{Name: "big.ll", Data: []byte(`
%Qubit = type opaque
%Result = type opaque
define void @main() #0 {
entry:
  call void @__quantum__qis__mz__body(%Qubit* null, %Result* inttoptr (i64 4611686018427387904 to %Result*))
  ret void
}
declare void @__quantum__qis__mz__body(%Qubit*, %Result*)
attributes #0 = { "EntryPoint" }
`)}
	res, err := evaluator.Eval(context.Background(), src, gates.NewLogger(), evaluator.Options{})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != 1<<62 || res.Results[0].One {
		t.Fatalf("results = %+v", res.Results)
	}
}

func TestEvalStreamExhausted(t *testing.T) {
	l := gates.NewLogger()
	res, err := evaluator.Eval(context.Background(), fixture("bell.ll"), l, evaluator.Options{
		Stream: vm.NewResultStream([]bool{true}),
	})
	if !errors.Is(err, vm.ErrResultStreamExhausted) {
		t.Fatalf("err = %v", err)
	}
	if res == nil || res.Measurements != 1 || res.Metadata != nil {
		t.Fatalf("result after failure: %+v", res)
	}
	if l.Metadata != nil {
		t.Fatalf("finish called on failure")
	}
}

func TestEvalRecordReplay(t *testing.T) {
	var log bytes.Buffer
	_, err := evaluator.Eval(context.Background(), fixture("teleport.ll"), gates.NewLogger(), evaluator.Options{
		Stream: vm.NewResultStream([]bool{true, false}),
		Record: &log,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	l := gates.NewLogger()
	_, err = evaluator.Eval(context.Background(), fixture("teleport.ll"), l, evaluator.Options{
		Replay: vm.NewReplayerFromBytes(log.Bytes()),
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if last := l.Instructions[len(l.Instructions)-1]; last != "z qubit[2]" {
		t.Fatalf("replayed corrections: %v", l.Instructions)
	}

	_, err = evaluator.Eval(context.Background(), fixture("bell.ll"), gates.NewLogger(), evaluator.Options{
		Replay: vm.NewReplayerFromBytes(log.Bytes()),
	})
	if !errors.Is(err, vm.ErrReplayMismatch) {
		t.Fatalf("replaying another program: err = %v", err)
	}
}

func TestEvalVMTraceAndMaxSteps(t *testing.T) {
	var buf bytes.Buffer
	_, err := evaluator.Eval(context.Background(), fixture("bell.ll"), gates.NewLogger(), evaluator.Options{
		VMTrace:  &buf,
		MaxSteps: 3,
	})
	if !errors.Is(err, vm.ErrStepLimitExceeded) {
		t.Fatalf("err = %v", err)
	}
	if got := strings.Count(buf.String(), "[depth=1]"); got != 3 {
		t.Fatalf("traced %d steps:\n%s", got, buf.String())
	}
}

func TestEvalPhasesAndEvents(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelBlock)
	ctx := trace.WithTracer(context.Background(), ring)
	timer := observ.NewTimer()

	_, err := evaluator.Eval(ctx, fixture("teleport.ll"), gates.NewLogger(), evaluator.Options{
		Stream: vm.NewResultStream([]bool{false, true}),
		Timer:  timer,
	})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	var names []string
	for _, p := range timer.Phases() {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "load,resolve,preflight,execute" {
		t.Fatalf("phases: %v", names)
	}

	seen := map[string]bool{}
	var execID uint64
	for _, ev := range ring.Snapshot() {
		seen[ev.Kind.String()+" "+ev.Name] = true
		if ev.Kind == trace.KindSpanBegin && ev.Name == "execute" {
			execID = ev.SpanID
		}
	}
	for _, want := range []string{"begin execute", "end execute", "point teleport/fix_x"} {
		if !seen[want] {
			t.Fatalf("missing event %q in %v", want, seen)
		}
	}
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Name == "teleport/fix_x" && ev.ParentID != execID {
			t.Fatalf("block event parent %d, want %d", ev.ParentID, execID)
		}
	}
	if seen["point teleport/fix_z"] {
		t.Fatalf("fix_z entered with result 0 = false")
	}
}

func TestEvalUsesCache(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := evaluator.Options{Cache: c, Stream: vm.NewResultStream([]bool{false, false})}
	first, err := evaluator.Eval(context.Background(), fixture("bell.ll"), gates.NewLogger(), opts)
	if err != nil {
		t.Fatalf("first eval: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("first run hit the cache")
	}

	l := gates.NewLogger()
	opts.Stream = vm.NewResultStream([]bool{false, false})
	second, err := evaluator.Eval(context.Background(), fixture("bell.ll"), l, opts)
	if err != nil {
		t.Fatalf("second eval: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("second run missed the cache")
	}
	if len(l.Instructions) != 4 {
		t.Fatalf("cached model ran %v", l.Instructions)
	}
}

func TestRunConcurrentOverSharedModel(t *testing.T) {
	m, _, err := evaluator.Load(context.Background(), fixture("teleport.ll"), nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	done := make(chan []string, 4)
	for i := 0; i < 4; i++ {
		bits := []bool{i&1 == 1, i&2 == 2}
		go func() {
			l := gates.NewLogger()
			if _, err := evaluator.Run(context.Background(), m, l, evaluator.Options{Stream: vm.NewResultStream(bits)}); err != nil {
				done <- []string{err.Error()}
				return
			}
			done <- l.Instructions
		}()
	}
	total := 0
	for i := 0; i < 4; i++ {
		total += len(<-done) - 6
	}
	if total != 4 {
		t.Fatalf("expected 4 corrections across runs, got %d", total)
	}
}
