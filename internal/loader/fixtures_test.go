package loader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/move-env/internal/model"
)

// encodeModule is a test helper wrapping model.EncodeModule with a
// require.NoError, since every fixture in this package is expected to
// round-trip cleanly.
func encodeModule(t *testing.T, m *model.CompiledModule) []byte {
	t.Helper()
	blob, err := model.EncodeModule(m)
	require.NoError(t, err)
	return blob
}

// baseModule builds a tiny framework module at 0x1 defining a single
// struct Coin{value: u64} and a function zero(): u64 with no calls.
func baseModule() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:        []string{"base", "Coin", "value", "zero"},
		AddressIdentifiers: []model.ObjectID{"0x1"},
		ModuleHandles: []model.ModuleHandle{
			{Address: 0, Name: 0}, // self: base @ 0x1
		},
		StructHandles: []model.StructHandle{
			{Module: 0, Name: 1}, // Coin
		},
		StructDefs: []model.StructDefinition{
			{
				StructHandle: 0,
				Field: model.StructFieldInformation{
					Fields: []model.FieldDefinition{
						{Name: 2, Signature: model.SignatureToken{Kind: model.SigU64}},
					},
				},
			},
		},
		FunctionHandles: []model.FunctionHandle{
			{Module: 0, Name: 3, Parameters: 0, Return: 1},
		},
		Signatures: []model.Signature{
			{Tokens: nil},
			{Tokens: []model.SignatureToken{{Kind: model.SigU64}}},
		},
		FunctionDefs: []model.FunctionDefinition{
			{
				Function:   0,
				Visibility: model.VisibilityPublic,
				Code: &model.CodeUnit{
					Locals: 0,
					Code: []model.MoveBytecode{
						{Op: model.OpLdU64, U64: 0},
						{Op: model.OpRet},
					},
				},
			},
		},
		SelfModuleHandleIdx: 0,
	}
}

// mModule builds a module m @ 0xA defining Wrapper{coin: Coin} (Coin
// referenced from the base package) and an entry function new() that
// calls base::zero.
func mModule() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:        []string{"m", "Wrapper", "coin", "new", "base", "zero", "Coin"},
		AddressIdentifiers: []model.ObjectID{"0xA", "0x1"},
		ModuleHandles: []model.ModuleHandle{
			{Address: 0, Name: 0}, // self: m @ 0xA
			{Address: 1, Name: 4}, // base @ 0x1
		},
		StructHandles: []model.StructHandle{
			{Module: 0, Name: 1}, // Wrapper
			{Module: 1, Name: 6}, // Coin (declared in base)
		},
		StructDefs: []model.StructDefinition{
			{
				StructHandle: 0,
				Field: model.StructFieldInformation{
					Fields: []model.FieldDefinition{
						{Name: 2, Signature: model.SignatureToken{Kind: model.SigStruct, StructHandle: 1}},
					},
				},
			},
		},
		FunctionHandles: []model.FunctionHandle{
			{Module: 0, Name: 3, Parameters: 0, Return: 0}, // new
			{Module: 1, Name: 5, Parameters: 0, Return: 1}, // base::zero
		},
		Signatures: []model.Signature{
			{Tokens: nil},
			{Tokens: []model.SignatureToken{{Kind: model.SigU64}}},
		},
		FunctionDefs: []model.FunctionDefinition{
			{
				Function:   0,
				Visibility: model.VisibilityPublic,
				IsEntry:    true,
				Code: &model.CodeUnit{
					Locals: 0,
					Code: []model.MoveBytecode{
						{Op: model.OpCall, FunctionHandle: 1},
						{Op: model.OpPop},
						{Op: model.OpRet},
					},
				},
			},
		},
		SelfModuleHandleIdx: 0,
	}
}

// basicFixture returns a two-package environment input: framework package
// 0x1 (base::Coin, base::zero) and root package 0xA (m::Wrapper, m::new),
// where m::Wrapper wraps a Coin and m::new calls base::zero.
func basicFixture(t *testing.T) []model.MovePackage {
	t.Helper()
	return []model.MovePackage{
		{
			ID:      "0x1",
			Version: 1,
			TypeOrigin: map[model.TypeKey]model.ObjectID{
				{ModuleName: "base", StructName: "Coin"}: "0x1",
			},
			LinkageTable: map[model.ObjectID]model.UpgradeInfo{},
			Modules: map[string][]byte{
				"base": encodeModule(t, baseModule()),
			},
		},
		{
			ID:      "0xA",
			Version: 1,
			TypeOrigin: map[model.TypeKey]model.ObjectID{
				{ModuleName: "m", StructName: "Wrapper"}: "0xA",
			},
			LinkageTable: map[model.ObjectID]model.UpgradeInfo{
				"0x1": {BaseID: "0x1", UpgradedID: "0x1"},
			},
			Modules: map[string][]byte{
				"m": encodeModule(t, mModule()),
			},
		},
	}
}

// rootVersionModule builds v1 of the version chain used by
// versionUpgradeFixture: module m @ 0xA declaring S{x: u64} and nothing
// else.
func rootVersionModule() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:        []string{"m", "S", "x"},
		AddressIdentifiers: []model.ObjectID{"0xA"},
		ModuleHandles: []model.ModuleHandle{
			{Address: 0, Name: 0}, // self: m @ 0xA
		},
		StructHandles: []model.StructHandle{
			{Module: 0, Name: 1}, // S
		},
		StructDefs: []model.StructDefinition{
			{
				StructHandle: 0,
				Field: model.StructFieldInformation{
					Fields: []model.FieldDefinition{
						{Name: 2, Signature: model.SignatureToken{Kind: model.SigU64}},
					},
				},
			},
		},
		SelfModuleHandleIdx: 0,
	}
}

// v2VersionModule builds v2 of the chain: module m @ 0xA (same address as
// root, per a clean upgrade), which does not redeclare S but introduces
// T{y: u64} and a function useS(S): u64 whose parameter references S
// across the version boundary.
func v2VersionModule() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:        []string{"m", "S", "T", "y", "useS"},
		AddressIdentifiers: []model.ObjectID{"0xA"},
		ModuleHandles: []model.ModuleHandle{
			{Address: 0, Name: 0}, // self: m @ 0xA
		},
		StructHandles: []model.StructHandle{
			{Module: 0, Name: 1}, // S, declared by v1
			{Module: 0, Name: 2}, // T, declared here
		},
		StructDefs: []model.StructDefinition{
			{
				StructHandle: 1,
				Field: model.StructFieldInformation{
					Fields: []model.FieldDefinition{
						{Name: 3, Signature: model.SignatureToken{Kind: model.SigU64}},
					},
				},
			},
		},
		FunctionHandles: []model.FunctionHandle{
			{Module: 0, Name: 4, Parameters: 0, Return: 1},
		},
		Signatures: []model.Signature{
			{Tokens: []model.SignatureToken{{Kind: model.SigStruct, StructHandle: 0}}},
			{Tokens: []model.SignatureToken{{Kind: model.SigU64}}},
		},
		FunctionDefs: []model.FunctionDefinition{
			{
				Function:   0,
				Visibility: model.VisibilityPublic,
				Code: &model.CodeUnit{
					Locals: 0,
					Code: []model.MoveBytecode{
						{Op: model.OpLdU64, U64: 0},
						{Op: model.OpRet},
					},
				},
			},
		},
		SelfModuleHandleIdx: 0,
	}
}

// v3VersionModule builds v3 of the chain: module m @ 0xA referencing T
// (introduced in v2) from a function useT(T): u64, exercising resolution
// of a type across more than one version boundary.
func v3VersionModule() *model.CompiledModule {
	return &model.CompiledModule{
		Identifiers:        []string{"m", "T", "useT"},
		AddressIdentifiers: []model.ObjectID{"0xA"},
		ModuleHandles: []model.ModuleHandle{
			{Address: 0, Name: 0}, // self: m @ 0xA
		},
		StructHandles: []model.StructHandle{
			{Module: 0, Name: 1}, // T, declared by v2
		},
		FunctionHandles: []model.FunctionHandle{
			{Module: 0, Name: 2, Parameters: 0, Return: 1},
		},
		Signatures: []model.Signature{
			{Tokens: []model.SignatureToken{{Kind: model.SigStruct, StructHandle: 0}}},
			{Tokens: []model.SignatureToken{{Kind: model.SigU64}}},
		},
		FunctionDefs: []model.FunctionDefinition{
			{
				Function:   0,
				Visibility: model.VisibilityPublic,
				Code: &model.CodeUnit{
					Locals: 0,
					Code: []model.MoveBytecode{
						{Op: model.OpLdU64, U64: 0},
						{Op: model.OpRet},
					},
				},
			},
		},
		SelfModuleHandleIdx: 0,
	}
}

// versionUpgradeFixture returns a three-version chain rooted at 0xA
// (v1 0xA, v2 0xB, v3 0xC), all sharing module m's on-chain address 0xA:
// v1 declares S, v2 declares T and references S, v3 references T.
// Implements spec.md §8 scenarios 2 and 3.
func versionUpgradeFixture(t *testing.T) []model.MovePackage {
	t.Helper()
	sKey := model.TypeKey{ModuleName: "m", StructName: "S"}
	tKey := model.TypeKey{ModuleName: "m", StructName: "T"}

	return []model.MovePackage{
		{
			ID:           "0xA",
			Version:      1,
			TypeOrigin:   map[model.TypeKey]model.ObjectID{sKey: "0xA"},
			LinkageTable: map[model.ObjectID]model.UpgradeInfo{},
			Modules:      map[string][]byte{"m": encodeModule(t, rootVersionModule())},
		},
		{
			ID:      "0xB",
			Version: 2,
			TypeOrigin: map[model.TypeKey]model.ObjectID{
				sKey: "0xA",
				tKey: "0xB",
			},
			LinkageTable: map[model.ObjectID]model.UpgradeInfo{},
			Modules:      map[string][]byte{"m": encodeModule(t, v2VersionModule())},
		},
		{
			ID:      "0xC",
			Version: 3,
			TypeOrigin: map[model.TypeKey]model.ObjectID{
				sKey: "0xA",
				tKey: "0xB",
			},
			LinkageTable: map[model.ObjectID]model.UpgradeInfo{},
			Modules:      map[string][]byte{"m": encodeModule(t, v3VersionModule())},
		},
	}
}
