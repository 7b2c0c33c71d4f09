// Package query implements read-only lookups over a frozen
// model.GlobalEnv: transitive dependency closures, call-graph reachability,
// and a parallel entry-point filter. Single-entity lookups by id or key are
// methods of model.GlobalEnv, not of this package. Every function here only reads
// its GlobalEnv argument, so callers may run any number of these
// concurrently against the same environment. Implements spec.md §4.12.
package query

import (
	"github.com/sourcegraph/move-env/internal/model"
	"github.com/sourcegraph/move-env/internal/parallel"
)

// TransitiveDependencies returns every package reachable from pkg through
// Package.Dependencies, not including pkg itself.
func TransitiveDependencies(env *model.GlobalEnv, pkg model.PackageIndex) map[model.PackageIndex]struct{} {
	visited := map[model.PackageIndex]struct{}{}
	var visit func(model.PackageIndex)
	visit = func(p model.PackageIndex) {
		for dep := range env.Packages[p].Dependencies {
			if _, seen := visited[dep]; seen {
				continue
			}
			visited[dep] = struct{}{}
			visit(dep)
		}
	}
	visit(pkg)
	return visited
}

// Reachable returns every function transitively reachable from fn through
// the call graph's Callees edges, not including fn itself.
func Reachable(env *model.GlobalEnv, fn model.FunctionIndex) map[model.FunctionIndex]struct{} {
	visited := map[model.FunctionIndex]struct{}{}
	var visit func(model.FunctionIndex)
	visit = func(f model.FunctionIndex) {
		for callee := range env.Callees[f] {
			if _, seen := visited[callee]; seen {
				continue
			}
			visited[callee] = struct{}{}
			visit(callee)
		}
	}
	visit(fn)
	return visited
}

// CallsInto reports whether any function in fromPackage calls into
// toPackage, directly or through any chain of calls. It computes the full
// Reachable set of each function of fromPackage in turn and returns at the
// first reachable function owned by toPackage.
func CallsInto(env *model.GlobalEnv, fromPackage, toPackage model.PackageIndex) bool {
	for _, fnIdx := range packageFunctions(env, fromPackage) {
		for callee := range Reachable(env, fnIdx) {
			if env.Functions[callee].Package == toPackage {
				return true
			}
		}
	}
	return false
}

func packageFunctions(env *model.GlobalEnv, pkg model.PackageIndex) []model.FunctionIndex {
	var out []model.FunctionIndex
	for _, midx := range env.Packages[pkg].Modules {
		out = append(out, env.Modules[midx].Functions...)
	}
	return out
}

// EntryPointResult pairs a function with a predicate result. FindEntryPoints
// does not use it; it returns only the accepted function indices.
type EntryPointResult struct {
	Function model.FunctionIndex
	Match    bool
}

// FindEntryPoints evaluates pred over every entry function of env, split
// across GOMAXPROCS workers via internal/parallel.Run, and returns the
// ones pred accepted. Each worker writes into its own slot of a result
// slice that parallels the entry list, so the returned indices are in
// ascending function-index order regardless of worker scheduling.
func FindEntryPoints(env *model.GlobalEnv, pred func(*model.GlobalEnv, model.FunctionIndex) bool) []model.FunctionIndex {
	var entries []model.FunctionIndex
	for i := range env.Functions {
		if env.Functions[i].IsEntry {
			entries = append(entries, i)
		}
	}

	results := make([]bool, len(entries))
	ch := make(chan func())

	wg, _ := parallel.Run(ch)
	go func() {
		defer close(ch)
		for i, fnIdx := range entries {
			i, fnIdx := i, fnIdx
			ch <- func() {
				results[i] = pred(env, fnIdx)
			}
		}
	}()
	wg.Wait()

	var out []model.FunctionIndex
	for i, matched := range results {
		if matched {
			out = append(out, entries[i])
		}
	}
	return out
}
