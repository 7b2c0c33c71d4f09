package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// loadPackages assigns each surviving package a dense PackageIndex in input
// order, builds the id -> PackageIndex reverse index, and rewrites each
// package's raw linkage entries into index space. Implements spec.md §4.2.
func loadPackages(
	rawPackages []model.MovePackage,
	framework map[model.ObjectID]struct{},
) ([]model.Package, map[model.ObjectID]model.PackageIndex, map[model.PackageIndex]model.ObjectID, error) {
	packages := make([]model.Package, len(rawPackages))
	for i, raw := range rawPackages {
		packages[i] = model.Package{
			SelfIdx:            i,
			ID:                 raw.ID,
			Version:            raw.Version,
			TypeOrigin:         raw.TypeOrigin,
			LinkageTable:       map[model.PackageIndex]model.PackageIndex{},
			Dependencies:       map[model.PackageIndex]struct{}{},
			DirectDependencies: map[model.PackageIndex]struct{}{},
		}
	}

	packageMap := make(map[model.ObjectID]model.PackageIndex, len(packages))
	for _, pkg := range packages {
		if _, exists := packageMap[pkg.ID]; exists {
			return nil, nil, nil, errors.Wrapf(errs.ErrDuplicateNonFrameworkVersion, "package id %s", pkg.ID)
		}
		packageMap[pkg.ID] = pkg.SelfIdx
	}

	frameworkIdx := map[model.PackageIndex]model.ObjectID{}
	for _, pkg := range packages {
		if _, ok := framework[pkg.ID]; ok {
			frameworkIdx[pkg.SelfIdx] = pkg.ID
		}
	}

	for i, raw := range rawPackages {
		linkage := make(map[model.PackageIndex]model.PackageIndex, len(raw.LinkageTable))
		for baseID, upgrade := range raw.LinkageTable {
			baseIdx, ok := packageMap[baseID]
			if !ok {
				return nil, nil, nil, errors.Wrapf(errs.ErrUnknownLinkTarget, "package %s: base link target %s unknown (closest known id: %s)",
					raw.ID, baseID, errs.Suggest(string(baseID), packageIDs(packageMap)))
			}
			upgradedIdx, ok := packageMap[upgrade.UpgradedID]
			if !ok {
				return nil, nil, nil, errors.Wrapf(errs.ErrUnknownLinkTarget, "package %s: upgraded link target %s unknown (closest known id: %s)",
					raw.ID, upgrade.UpgradedID, errs.Suggest(string(upgrade.UpgradedID), packageIDs(packageMap)))
			}
			linkage[baseIdx] = upgradedIdx
		}
		packages[i].LinkageTable = linkage

		deps := make(map[model.PackageIndex]struct{}, len(linkage))
		for _, upgradedIdx := range linkage {
			deps[upgradedIdx] = struct{}{}
		}
		packages[i].Dependencies = deps
	}

	return packages, packageMap, frameworkIdx, nil
}

func packageIDs(m map[model.ObjectID]model.PackageIndex) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, string(id))
	}
	return ids
}
