package vm

import (
	"slices"
	"strconv"
	"strings"

	"qirkit/internal/gates"
)

// OutputKind names the runtime function that produced an output entry.
type OutputKind string

const (
	OutputResult OutputKind = "result"
	OutputBool   OutputKind = "bool"
	OutputInt    OutputKind = "int"
	OutputDouble OutputKind = "double"
	OutputArray  OutputKind = "array"
	OutputTuple  OutputKind = "tuple"
)

// Output is one value recorded by a *_record_output call. Array and tuple
// entries carry their element count.
type Output struct {
	Kind  OutputKind `json:"kind" msgpack:"kind"`
	Value any        `json:"value" msgpack:"value"`
	Label string     `json:"label,omitempty" msgpack:"label,omitempty"`
}

// Outputs returns the outputs recorded so far.
func (vm *VM) Outputs() []Output {
	return append([]Output(nil), vm.outputs...)
}

// NumQubits is one more than the highest qubit id seen, or 0.
func (vm *VM) NumQubits() uint64 {
	if !vm.anyQubit {
		return 0
	}
	return vm.maxQubit + 1
}

// NumResults is one more than the highest result id measured into, or 0.
func (vm *VM) NumResults() uint64 {
	if !vm.anyResult {
		return 0
	}
	return vm.maxResult + 1
}

// Outcome is the cached measurement of one result id.
type Outcome struct {
	ID  uint64 `json:"id"`
	One bool   `json:"one"`
}

// Outcomes lists measured result ids in ascending order. Result ids are
// arbitrary non-negative integers, so outcomes are kept sparse.
type Outcomes []Outcome

// maxDenseOutcomes bounds the bit string form of Outcomes.
const maxDenseOutcomes = 4096

// Get returns the outcome of id. Unmeasured ids read false.
func (o Outcomes) Get(id uint64) bool {
	i, ok := slices.BinarySearchFunc(o, id, func(out Outcome, id uint64) int {
		switch {
		case out.ID < id:
			return -1
		case out.ID > id:
			return 1
		}
		return 0
	})
	return ok && o[i].One
}

// String renders the outcomes as a bit string indexed by result id, "01"
// meaning result 1 was one and result 0 zero. Past maxDenseOutcomes ids it
// falls back to "id:bit" pairs, e.g. "3:1,4611686018427387904:0".
func (o Outcomes) String() string {
	if len(o) == 0 {
		return ""
	}
	var sb strings.Builder
	if last := o[len(o)-1].ID; last < maxDenseOutcomes {
		for id := uint64(0); id <= last; id++ {
			if o.Get(id) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		return sb.String()
	}
	for i, out := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(out.ID, 10))
		if out.One {
			sb.WriteString(":1")
		} else {
			sb.WriteString(":0")
		}
	}
	return sb.String()
}

// Results returns the cached measurement outcomes ordered by result id.
func (vm *VM) Results() Outcomes {
	out := make(Outcomes, 0, len(vm.results))
	for id, bit := range vm.results {
		out = append(out, Outcome{ID: id, One: bit})
	}
	slices.SortFunc(out, func(a, b Outcome) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Metadata builds the map handed to GateSet.Finish.
func (vm *VM) Metadata() map[string]any {
	meta := map[string]any{
		gates.MetaNumQubits:  vm.NumQubits(),
		gates.MetaNumResults: vm.NumResults(),
		gates.MetaOutputs:    vm.Outputs(),
	}
	if vm.Entry != nil {
		meta[gates.MetaEntryPoint] = vm.Entry.Name
		if n, ok := vm.Entry.Attrs.RequiredQubits(); ok {
			meta[gates.MetaRequiredNumQubits] = n
		}
		if n, ok := vm.Entry.Attrs.RequiredResults(); ok {
			meta[gates.MetaRequiredNumResults] = n
		}
	}
	return meta
}
