package gates

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Counter tallies callbacks by gate name. It is safe for concurrent use so
// one Counter can aggregate a whole batch.
type Counter struct {
	mu     sync.Mutex
	counts map[string]uint64
	runs   uint64
}

var _ GateSet = (*Counter)(nil)

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]uint64)}
}

func (c *Counter) inc(name string) {
	c.mu.Lock()
	if c.counts == nil {
		c.counts = make(map[string]uint64)
	}
	c.counts[name]++
	c.mu.Unlock()
}

func (c *Counter) CX(uint64, uint64) { c.inc("cx") }
func (c *Counter) CZ(uint64, uint64) { c.inc("cz") }
func (c *Counter) H(uint64) { c.inc("h") }
func (c *Counter) MZ(uint64, uint64) { c.inc("mz") }
func (c *Counter) Reset(uint64) { c.inc("reset") }
func (c *Counter) RX(float64, uint64) { c.inc("rx") }
func (c *Counter) RY(float64, uint64) { c.inc("ry") }
func (c *Counter) RZ(float64, uint64) { c.inc("rz") }
func (c *Counter) S(uint64) { c.inc("s") }
func (c *Counter) SAdj(uint64) { c.inc("s_adj") }
func (c *Counter) T(uint64) { c.inc("t") }
func (c *Counter) TAdj(uint64) { c.inc("t_adj") }
func (c *Counter) X(uint64) { c.inc("x") }
func (c *Counter) Y(uint64) { c.inc("y") }
func (c *Counter) Z(uint64) { c.inc("z") }

// M counts the measurement and returns the qubit id as the result id.
func (c *Counter) M(qubit uint64) uint64 {
	c.inc("m")
	return qubit
}

func (c *Counter) Finish(map[string]any) {
	c.mu.Lock()
	c.runs++
	c.mu.Unlock()
}

// Count returns how often the named gate was called.
func (c *Counter) Count(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Runs returns how many evaluations finished successfully.
func (c *Counter) Runs() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

// String renders the counts sorted by gate name, e.g. "cx=1 h=2".
func (c *Counter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	parts := make([]string, 0, len(c.counts))
	for _, k := range slices.Sorted(maps.Keys(c.counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, c.counts[k]))
	}
	return strings.Join(parts, " ")
}
