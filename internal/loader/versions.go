package loader

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// loadVersions discovers versioned packages, links each non-root to its
// root, and sorts each root's version list by ascending version.
// Implements spec.md §4.4.
func loadVersions(
	packages []model.Package,
	packageMap map[model.ObjectID]model.PackageIndex,
	modules []model.Module,
	framework map[model.PackageIndex]model.ObjectID,
) error {
	if err := checkPackageAddresses(packages, modules); err != nil {
		return err
	}

	versions := map[model.ObjectID][]model.PackageIndex{}
	for _, pkg := range packages {
		if len(pkg.Modules) == 0 {
			if _, ok := versions[pkg.ID]; !ok {
				versions[pkg.ID] = nil
			}
			continue
		}
		origin := modules[pkg.Modules[0]].ModuleAddress
		if origin != pkg.ID {
			versions[origin] = append(versions[origin], pkg.SelfIdx)
			continue
		}

		if _, isFramework := framework[pkg.SelfIdx]; !isFramework {
			if pkg.Version != 1 {
				return errors.Wrapf(errs.ErrVersionTopologyInvalid, "package %s is not version 1", pkg.ID)
			}
		}
		if _, ok := versions[pkg.ID]; !ok {
			versions[pkg.ID] = nil
		}
	}

	for id := range versions {
		bucket := versions[id]
		sort.Slice(bucket, func(i, j int) bool {
			return packages[bucket[i]].Version < packages[bucket[j]].Version
		})
		versions[id] = bucket
	}

	for id, bucket := range versions {
		rootIdx, ok := packageMap[id]
		if !ok {
			return errors.Wrapf(errs.ErrVersionTopologyInvalid, "root package %s referenced by a version chain was not loaded", id)
		}
		for _, pkgIdx := range bucket {
			rv := rootIdx
			packages[pkgIdx].RootVersion = &rv
		}
		packages[rootIdx].Versions = bucket
	}

	return verifyVersions(packages, framework)
}

// checkPackageAddresses asserts every module in a package was compiled
// against the same on-chain address.
func checkPackageAddresses(packages []model.Package, modules []model.Module) error {
	for _, pkg := range packages {
		seen := map[model.ObjectID]struct{}{}
		for _, midx := range pkg.Modules {
			seen[modules[midx].ModuleAddress] = struct{}{}
		}
		if len(seen) > 1 {
			return errors.Wrapf(errs.ErrVersionTopologyInvalid,
				"modules in package %s have different origins", pkg.ID)
		}
	}
	return nil
}

// verifyVersions checks the invariants of spec.md §4.4: framework packages
// have no version chain; roots have no RootVersion and every listed version
// points back; non-roots have an empty Versions list, a RootVersion, and
// sit at the right position in their root's list. Every violation is
// collected so a single failing build reports every broken chain at once.
func verifyVersions(packages []model.Package, framework map[model.PackageIndex]model.ObjectID) error {
	var result *multierror.Error

	for _, pkg := range packages {
		if _, isFramework := framework[pkg.SelfIdx]; isFramework {
			if len(pkg.Versions) != 0 || pkg.RootVersion != nil {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"framework package %s must have exactly one version", pkg.ID))
			}
			continue
		}

		if pkg.Version == 1 {
			if pkg.RootVersion != nil {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"package %s at version 1 must not have a root", pkg.ID))
				continue
			}
			for _, vIdx := range pkg.Versions {
				versioned := packages[vIdx]
				if versioned.RootVersion == nil || *versioned.RootVersion != pkg.SelfIdx {
					result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
						"package %s at version %d must point to root %s", versioned.ID, versioned.Version, pkg.ID))
				}
			}
			continue
		}

		if len(pkg.Versions) != 0 {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
				"non-root package %s must have no entries in Versions", pkg.ID))
		}
		if pkg.RootVersion == nil {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
				"non-root package %s must point to a root", pkg.ID))
			continue
		}
		root := packages[*pkg.RootVersion]
		pos := int(pkg.Version) - 2
		if pos < 0 || pos >= len(root.Versions) || root.Versions[pos] != pkg.SelfIdx {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
				"package %s at version %d must be at index %d in root package %s", pkg.ID, pkg.Version, pos, root.ID))
		}
	}

	return result.ErrorOrNil()
}
