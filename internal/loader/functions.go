package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/model"
)

// loadFunctions materializes every function definition across all modules
// and keys each one as "{pkg_id}::{mod_name}::{function_name}". Parameter
// and return types are resolved via the type builder at load time so every
// operand is already environment-typed. Implements spec.md §4.8 (signature
// pass, before code rewriting).
func loadFunctions(
	idents *identifierTable,
	modules []model.Module,
	tb *typeBuilder,
) ([]model.Function, map[string]model.FunctionIndex, error) {
	var functions []model.Function
	functionMap := map[string]model.FunctionIndex{}

	for midx := range modules {
		module := &modules[midx]
		raw := module.Raw()

		for defIdx, fdef := range raw.FunctionDefs {
			fh := raw.FunctionHandles[fdef.Function]
			funcName := raw.Identifiers[fh.Name]

			params, err := makeTypeList(tb, module, raw.Signatures[fh.Parameters].Tokens)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parameters of function %s", funcName)
			}
			returns, err := makeTypeList(tb, module, raw.Signatures[fh.Return].Tokens)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "returns of function %s", funcName)
			}

			fn := model.Function{
				SelfIdx:        len(functions),
				Package:        module.Package,
				Module:         module.SelfIdx,
				Name:           idents.intern(funcName),
				DefIdx:         defIdx,
				TypeParameters: fh.TypeParameters,
				Parameters:     params,
				Returns:        returns,
				Visibility:     fdef.Visibility,
				IsEntry:        fdef.IsEntry,
			}
			functions = append(functions, fn)
			module.Functions = append(module.Functions, fn.SelfIdx)

			key := model.FunctionKey(tb.packages[module.Package].ID, module.ModuleName, funcName)
			functionMap[key] = fn.SelfIdx
		}
	}

	return functions, functionMap, nil
}

func makeTypeList(tb *typeBuilder, module *model.Module, toks []model.SignatureToken) ([]model.Type, error) {
	out := make([]model.Type, 0, len(toks))
	for _, tok := range toks {
		t, err := tb.makeType(module, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
