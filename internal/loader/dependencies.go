package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// moduleDependencies computes, for every module, the set of package ids
// referenced by any module handle other than its own self handle, and
// rejects a dependency on a prior version of the module's own logical
// package. Implements the module half of spec.md §4.5.
func moduleDependencies(packages []model.Package, modules []model.Module) error {
	for _, pkg := range packages {
		root := pkg
		if pkg.RootVersion != nil {
			root = packages[*pkg.RootVersion]
		}
		priorVersions := make(map[model.ObjectID]struct{}, len(root.Versions))
		for _, vIdx := range root.Versions {
			priorVersions[packages[vIdx].ID] = struct{}{}
		}

		for _, midx := range pkg.Modules {
			module := &modules[midx]
			raw := module.Raw()

			deps := map[model.ObjectID]struct{}{}
			for mhIdx, mh := range raw.ModuleHandles {
				if mhIdx == raw.SelfModuleHandleIdx {
					continue
				}
				deps[raw.AddressIdentifiers[mh.Address]] = struct{}{}
			}

			for dep := range deps {
				if _, bad := priorVersions[dep]; bad {
					return errors.Wrapf(errs.ErrBackwardVersionDependency,
						"module %s in package %s depends on prior version %s", module.ModuleName, pkg.ID, dep)
				}
			}

			module.Dependencies = deps
		}
	}
	return nil
}

// packageDependencies computes each package's direct dependencies (the
// union over its modules' dependencies, translated through its linkage
// table) and transitive dependencies subset check. Implements the package
// half of spec.md §4.5.
func packageDependencies(
	packages []model.Package,
	modules []model.Module,
	packageMap map[model.ObjectID]model.PackageIndex,
) error {
	for i := range packages {
		pkg := &packages[i]
		directDeps := map[model.PackageIndex]struct{}{}

		for _, midx := range pkg.Modules {
			for dep := range modules[midx].Dependencies {
				depIdx, ok := packageMap[dep]
				if !ok {
					return errors.Wrapf(errs.ErrMissingLinkage, "package %s: dependency %s not loaded", pkg.ID, dep)
				}
				if depIdx == pkg.SelfIdx || (pkg.RootVersion != nil && *pkg.RootVersion == depIdx) {
					continue
				}
				upgradedIdx, ok := pkg.LinkageTable[depIdx]
				if !ok {
					return errors.Wrapf(errs.ErrMissingLinkage, "package %s: missing linkage for dependency %s", pkg.ID, dep)
				}
				directDeps[upgradedIdx] = struct{}{}
			}
		}
		pkg.DirectDependencies = directDeps

		for dep := range directDeps {
			if _, ok := pkg.Dependencies[dep]; !ok {
				return errors.Wrapf(errs.ErrMissingLinkage, "package %s: direct dependency %d missing from transitive dependencies", pkg.ID, dep)
			}
		}
	}
	return nil
}
