package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/move-env/internal/model"
)

// rawModuleSelfAt0xA builds a minimal compiled module self-addressed at
// 0xA with one struct handle referencing module m at 0xA, used to model
// the original-version declaration site in the clean-upgrade scenario below.
func rawModuleSelfAt0xA() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:         []string{"m", "S"},
		AddressIdentifiers:  []model.ObjectID{"0xA"},
		ModuleHandles:       []model.ModuleHandle{{Address: 0, Name: 0}},
		StructHandles:       []model.StructHandle{{Module: 0, Name: 1}},
		SelfModuleHandleIdx: 0,
	}
}

// TestResolveStructHandle_CleanUpgrade covers spec.md §8 scenario 2: a
// struct handle in an upgraded package's own module, self-addressed at the
// root's original id 0xA, resolves to the struct keyed under 0xA (the type
// origin), not under the upgraded package's own id 0xB.
func TestResolveStructHandle_CleanUpgrade(t *testing.T) {
	origin := model.TypeKey{ModuleName: "m", StructName: "S"}

	root := model.Package{
		SelfIdx:      0,
		ID:           "0xA",
		TypeOrigin:   map[model.TypeKey]model.ObjectID{origin: "0xA"},
		LinkageTable: map[model.PackageIndex]model.PackageIndex{},
	}
	upgraded := model.Package{
		SelfIdx:      1,
		ID:           "0xB",
		TypeOrigin:   map[model.TypeKey]model.ObjectID{origin: "0xA"},
		LinkageTable: map[model.PackageIndex]model.PackageIndex{0: 1},
	}

	tb := &typeBuilder{
		packages:   []model.Package{root, upgraded},
		packageMap: map[model.ObjectID]model.PackageIndex{"0xA": 0, "0xB": 1},
		structMap:  map[string]model.StructIndex{model.StructKey("0xA", "m", "S"): 7},
	}

	module := &model.Module{SelfIdx: 1, Package: 1}
	module.SetRaw(rawModuleSelfAt0xA())

	idx, err := tb.resolveStructHandle(module, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StructIndex(7), idx)
}

// TestResolveStructHandle_AddedTypeInUpgrade covers spec.md §8 scenario 3:
// a type introduced in the v2 package (origin 0xB) and referenced from a
// later v3 package resolves to the struct keyed under 0xB, using the
// referencing package's own type-origin table.
func TestResolveStructHandle_AddedTypeInUpgrade(t *testing.T) {
	added := model.TypeKey{ModuleName: "m", StructName: "T"}

	root := model.Package{SelfIdx: 0, ID: "0xA", LinkageTable: map[model.PackageIndex]model.PackageIndex{}}
	v2 := model.Package{SelfIdx: 1, ID: "0xB", LinkageTable: map[model.PackageIndex]model.PackageIndex{0: 1}}
	v3 := model.Package{
		SelfIdx:      2,
		ID:           "0xC",
		TypeOrigin:   map[model.TypeKey]model.ObjectID{added: "0xB"},
		LinkageTable: map[model.PackageIndex]model.PackageIndex{0: 2},
	}

	tb := &typeBuilder{
		packages:   []model.Package{root, v2, v3},
		packageMap: map[model.ObjectID]model.PackageIndex{"0xA": 0, "0xB": 1, "0xC": 2},
		structMap:  map[string]model.StructIndex{model.StructKey("0xB", "m", "T"): 9},
	}

	raw := &model.CompiledModule{
		Identifiers:         []string{"m", "T"},
		AddressIdentifiers:  []model.ObjectID{"0xA"},
		ModuleHandles:       []model.ModuleHandle{{Address: 0, Name: 0}},
		StructHandles:       []model.StructHandle{{Module: 0, Name: 1}},
		SelfModuleHandleIdx: 0,
	}
	module := &model.Module{SelfIdx: 2, Package: 2}
	module.SetRaw(raw)

	idx, err := tb.resolveStructHandle(module, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StructIndex(9), idx)
}

// TestResolveStructHandle_UnknownPackage covers the error path: a struct
// handle whose address doesn't resolve to any loaded package.
func TestResolveStructHandle_UnknownPackage(t *testing.T) {
	tb := &typeBuilder{
		packages:   []model.Package{{SelfIdx: 0, ID: "0xA", LinkageTable: map[model.PackageIndex]model.PackageIndex{}}},
		packageMap: map[model.ObjectID]model.PackageIndex{"0xA": 0},
		structMap:  map[string]model.StructIndex{},
	}
	raw := &model.CompiledModule{
		Identifiers:         []string{"m", "S"},
		AddressIdentifiers:  []model.ObjectID{"0xDEAD"},
		ModuleHandles:       []model.ModuleHandle{{Address: 0, Name: 0}},
		StructHandles:       []model.StructHandle{{Module: 0, Name: 1}},
		SelfModuleHandleIdx: 0,
	}
	module := &model.Module{SelfIdx: 0, Package: 0}
	module.SetRaw(raw)

	_, err := tb.resolveStructHandle(module, 0)
	require.Error(t, err)
}
