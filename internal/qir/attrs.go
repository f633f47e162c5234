package qir

import (
	"sort"
	"strconv"
)

// Attribute keys recognised on functions. Both the legacy and the current
// profile spellings are accepted.
const (
	AttrEntryPoint        = "EntryPoint"
	AttrEntryPointV2      = "entry_point"
	AttrInteropFriendly   = "InteropFriendly"
	AttrRequiredQubits    = "requiredQubits"
	AttrRequiredQubitsV2  = "required_num_qubits"
	AttrRequiredResults   = "requiredResults"
	AttrRequiredResultsV2 = "required_num_results"
	AttrOutputLabeling    = "output_labeling_schema"
	AttrQIRProfiles       = "qir_profiles"
)

// FuncAttrs holds the string attributes attached to a function, either
// directly or through an attribute group.
type FuncAttrs struct {
	EntryPoint      bool
	InteropFriendly bool
	// Strings maps every string attribute key to its value ("" for flags).
	Strings map[string]string
}

// Set records a string attribute and updates the derived flags.
func (a *FuncAttrs) Set(key, value string) {
	if a.Strings == nil {
		a.Strings = make(map[string]string)
	}
	a.Strings[key] = value
	switch key {
	case AttrEntryPoint, AttrEntryPointV2:
		a.EntryPoint = true
	case AttrInteropFriendly:
		a.InteropFriendly = true
	}
}

// Value returns the value of attribute key.
func (a FuncAttrs) Value(key string) (string, bool) {
	v, ok := a.Strings[key]
	return v, ok
}

// RequiredQubits returns the declared qubit count, if any.
func (a FuncAttrs) RequiredQubits() (uint64, bool) {
	return a.uintAttr(AttrRequiredQubits, AttrRequiredQubitsV2)
}

// RequiredResults returns the declared result count, if any.
func (a FuncAttrs) RequiredResults() (uint64, bool) {
	return a.uintAttr(AttrRequiredResults, AttrRequiredResultsV2)
}

func (a FuncAttrs) uintAttr(keys ...string) (uint64, bool) {
	for _, k := range keys {
		v, ok := a.Strings[k]
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Keys returns the attribute keys in sorted order.
func (a FuncAttrs) Keys() []string {
	keys := make([]string, 0, len(a.Strings))
	for k := range a.Strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
