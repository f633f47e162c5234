package gates_test

import (
	"sync"
	"testing"

	"qirkit/internal/gates"
)

func TestCounterConcurrent(t *testing.T) {
	c := gates.NewCounter()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.H(0)
			c.CX(0, 1)
			c.MZ(0, 0)
			c.Finish(nil)
		}()
	}
	wg.Wait()
	if c.Count("h") != 8 || c.Count("cx") != 8 || c.Count("mz") != 8 {
		t.Fatalf("counts = %s", c)
	}
	if c.Runs() != 8 {
		t.Fatalf("runs = %d", c.Runs())
	}
	if got := c.String(); got != "cx=8 h=8 mz=8" {
		t.Fatalf("String() = %q", got)
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := gates.NewLogger(), gates.NewCounter()
	m := gates.Multi{a, b}
	m.H(1)
	id := m.M(1)
	m.Finish(map[string]any{gates.MetaNumQubits: uint64(2)})
	if id != 0 {
		t.Fatalf("M returned %d from the first member", id)
	}
	if len(a.Instructions) != 2 || b.Count("h") != 1 || b.Count("mz") != 1 {
		t.Fatalf("logger=%v counter=%s", a.Instructions, b)
	}
	if a.NumQubits != 2 || b.Runs() != 1 {
		t.Fatalf("finish not forwarded")
	}
}
