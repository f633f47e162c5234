package vm

import "qirkit/internal/qir"

// ResolveEntryPoint picks the function evaluation starts in. With a name,
// only entry-point-attributed functions of that name match. Without one, the
// module must have exactly one entry point.
func ResolveEntryPoint(m *qir.Module, name string) (*qir.Func, error) {
	var fn *qir.Func
	if name != "" {
		for _, f := range m.EntryPoints() {
			if f.Name == name {
				fn = f
				break
			}
		}
		if fn == nil {
			return nil, newError(CodeNotFound, "No matching entry point found.")
		}
	} else {
		eps := m.EntryPoints()
		switch len(eps) {
		case 0:
			return nil, newError(CodeAmbiguousEntryPoint, "No matching entry point found.")
		case 1:
			fn = eps[0]
		default:
			return nil, newError(CodeMultipleEntryPoints, "Multiple matching entry points found.")
		}
	}
	if err := checkEntrySignature(m, fn); err != nil {
		return nil, err
	}
	return fn, nil
}

func checkEntrySignature(m *qir.Module, fn *qir.Func) error {
	if fn.IsDecl || len(fn.Params) != 0 || fn.Variadic || m.Type(fn.Result).Kind != qir.TypeVoid {
		return &EvalError{
			Code:    CodeInvalidEntryPoint,
			Message: "Entry point has parameters or a non-void return type.",
			Func:    fn.Name,
		}
	}
	return nil
}
