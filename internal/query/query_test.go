package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sourcegraph/move-env/internal/model"
)

// chainEnv builds a tiny environment: three packages in a dependency
// chain (0 -> 1 -> 2) and three functions in a call chain (0 -> 1 -> 2),
// one per package, with function i belonging to package i.
func chainEnv() *model.GlobalEnv {
	return &model.GlobalEnv{
		Packages: []model.Package{
			{SelfIdx: 0, ID: "p0", Dependencies: map[model.PackageIndex]struct{}{1: {}}},
			{SelfIdx: 1, ID: "p1", Dependencies: map[model.PackageIndex]struct{}{2: {}}},
			{SelfIdx: 2, ID: "p2", Dependencies: map[model.PackageIndex]struct{}{}},
		},
		Functions: []model.Function{
			{SelfIdx: 0, Package: 0, IsEntry: true},
			{SelfIdx: 1, Package: 1},
			{SelfIdx: 2, Package: 2},
		},
		Modules: []model.Module{
			{SelfIdx: 0, Package: 0, Functions: []model.FunctionIndex{0}},
			{SelfIdx: 1, Package: 1, Functions: []model.FunctionIndex{1}},
			{SelfIdx: 2, Package: 2, Functions: []model.FunctionIndex{2}},
		},
		Callees: map[model.FunctionIndex]map[model.FunctionIndex]struct{}{
			0: {1: {}},
			1: {2: {}},
			2: {},
		},
		Callers: map[model.FunctionIndex]map[model.FunctionIndex]struct{}{
			0: {},
			1: {0: {}},
			2: {1: {}},
		},
	}
}

func TestTransitiveDependencies(t *testing.T) {
	env := chainEnv()
	deps := TransitiveDependencies(env, 0)
	assert.Equal(t, map[model.PackageIndex]struct{}{1: {}, 2: {}}, deps)
	assert.Empty(t, TransitiveDependencies(env, 2))
}

func TestReachable(t *testing.T) {
	env := chainEnv()
	reachable := Reachable(env, 0)
	assert.Equal(t, map[model.FunctionIndex]struct{}{1: {}, 2: {}}, reachable)
	assert.Empty(t, Reachable(env, 2))
}

func TestCallsInto(t *testing.T) {
	env := chainEnv()
	assert.True(t, CallsInto(env, 0, 2))
	assert.False(t, CallsInto(env, 2, 0))
}

func TestFindEntryPoints(t *testing.T) {
	env := chainEnv()
	entries := FindEntryPoints(env, func(e *model.GlobalEnv, fn model.FunctionIndex) bool {
		return e.Functions[fn].Package == 0
	})
	assert.Equal(t, []model.FunctionIndex{0}, entries)
}
