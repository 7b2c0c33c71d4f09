package loader

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// loadModules deserializes every module of every package and appends it to
// the global module list in a deterministic order: packages in input
// order, modules within a package sorted by name (the wire format's
// module-name map carries no order of its own, so a canonical order is
// imposed here to satisfy the determinism property of spec.md §8).
// Implements spec.md §4.3.
func loadModules(
	idents *identifierTable,
	packages []model.Package,
	rawPackages []model.MovePackage,
) ([]model.Module, map[string]model.ModuleIndex, error) {
	var modules []model.Module
	moduleMap := map[string]model.ModuleIndex{}

	for i := range packages {
		raw := rawPackages[i]

		names := make([]string, 0, len(raw.Modules))
		for name := range raw.Modules {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			blob := raw.Modules[name]
			compiled, err := model.DeserializeModule(blob)
			if err != nil {
				return nil, nil, errors.Wrapf(errs.ErrModuleDeserialize, "package %s: module %s: %v", raw.ID, name, err)
			}
			if compiled.SelfName() != name {
				return nil, nil, errors.Wrapf(errs.ErrModuleNameMismatch,
					"package %s: stored name %s, self-name %s", raw.ID, name, compiled.SelfName())
			}

			nameIdx := idents.intern(name)
			idx := len(modules)
			module := model.Module{
				SelfIdx:       idx,
				Package:       i,
				Name:          nameIdx,
				ModuleAddress: compiled.SelfAddress(),
				ModuleName:    name,
				Dependencies:  map[model.ObjectID]struct{}{},
			}
			module.SetRaw(compiled)

			modules = append(modules, module)
			packages[i].Modules = append(packages[i].Modules, idx)
			moduleMap[model.ModuleKey(packages[i].ID, name)] = idx
		}
	}

	return modules, moduleMap, nil
}
