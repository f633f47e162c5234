package vm

import (
	"fmt"
	"strings"

	"qirkit/internal/qir"
)

// Preflight rejects modules that declare external functions the evaluator
// cannot execute. QIS declarations are left to the dispatcher so that an
// unknown gate only fails if it is actually executed.
func Preflight(m *qir.Module) error {
	var names []string
	for _, f := range m.Declarations() {
		if qir.ClassifyCallee(f.Name, false) == qir.CallQIS {
			continue
		}
		if qir.IsSupportedExternal(f.Name) {
			continue
		}
		names = append(names, f.Name)
	}
	switch len(names) {
	case 0:
		return nil
	case 1:
		return newError(CodeUnsupportedExternalCall, "Unsupported function `%s`.", names[0])
	default:
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = fmt.Sprintf("`%s`", n)
		}
		return newError(CodeUnsupportedExternalCall, "Unsupported functions %s.", strings.Join(quoted, ", "))
	}
}
