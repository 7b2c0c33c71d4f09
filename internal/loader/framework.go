package loader

import "github.com/sourcegraph/move-env/internal/model"

// DefaultFramework is the compile-time set of well-known framework package
// ids. Only the highest-version instance of each is retained by
// cleanFramework; framework packages never participate in version chains
// (spec.md §4.1, §6).
var DefaultFramework = map[model.ObjectID]struct{}{
	"0x1": {}, // move stdlib
	"0x2": {}, // base framework
	"0x3": {}, // system package
}

// cleanFramework keeps only the maximum-version instance of each framework
// id present in packages; non-framework packages pass through unchanged.
// Order among the non-dropped packages is preserved.
func cleanFramework(packages []model.MovePackage, framework map[model.ObjectID]struct{}) []model.MovePackage {
	latest := map[model.ObjectID]uint64{}
	for _, pkg := range packages {
		if _, ok := framework[pkg.ID]; !ok {
			continue
		}
		if v, ok := latest[pkg.ID]; !ok || pkg.Version > v {
			latest[pkg.ID] = pkg.Version
		}
	}

	out := make([]model.MovePackage, 0, len(packages))
	for _, pkg := range packages {
		if _, ok := framework[pkg.ID]; !ok {
			out = append(out, pkg)
			continue
		}
		if latest[pkg.ID] == pkg.Version {
			out = append(out, pkg)
		}
	}
	return out
}
