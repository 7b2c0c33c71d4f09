package loader

import "github.com/sourcegraph/move-env/internal/model"

// buildCallGraphs derives the caller/callee adjacency maps from every
// function's rewritten code, total over the function index range (every
// function gets an entry, even if empty). Implements spec.md §4.10.
func buildCallGraphs(functions []model.Function) (callers, callees map[model.FunctionIndex]map[model.FunctionIndex]struct{}) {
	callers = make(map[model.FunctionIndex]map[model.FunctionIndex]struct{}, len(functions))
	callees = make(map[model.FunctionIndex]map[model.FunctionIndex]struct{}, len(functions))

	for i := range functions {
		callers[i] = map[model.FunctionIndex]struct{}{}
		callees[i] = map[model.FunctionIndex]struct{}{}
	}

	for i := range functions {
		fn := &functions[i]
		if fn.Code == nil {
			continue
		}
		for _, bc := range fn.Code.Code {
			if bc.Op != model.BCall && bc.Op != model.BCallGeneric {
				continue
			}
			callees[fn.SelfIdx][bc.Function] = struct{}{}
			callers[bc.Function][fn.SelfIdx] = struct{}{}
		}
	}

	return callers, callees
}
