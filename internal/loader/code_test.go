package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/move-env/internal/model"
)

func TestLoadCode_RewritesCallAndVectorOps(t *testing.T) {
	raw := baseModule()
	raw.FunctionDefs[0].Code.Code = []model.MoveBytecode{
		{Op: model.OpCall, FunctionHandle: 0},
		{Op: model.OpLdU64, U64: 0},
		{Op: model.OpVecPack, VecElemType: 1, VecCount: 0},
		{Op: model.OpRet},
	}

	packages := []model.Package{{SelfIdx: 0, ID: "0x1", Version: 1, TypeOrigin: map[model.TypeKey]model.ObjectID{
		{ModuleName: "base", StructName: "Coin"}: "0x1",
	}}}
	packageMap := map[model.ObjectID]model.PackageIndex{"0x1": 0}

	module := model.Module{SelfIdx: 0, Package: 0, ModuleName: "base", ModuleAddress: "0x1"}
	module.SetRaw(raw)
	modules := []model.Module{module}

	structs, structMap, err := loadStructs(newIdentifierTable(), modules, packages)
	require.NoError(t, err)

	tb := &typeBuilder{packages: packages, packageMap: packageMap, structMap: structMap}
	functions, functionMap, err := loadFunctions(newIdentifierTable(), modules, tb)
	require.NoError(t, err)
	_ = structs

	rw := &codeRewriter{tb: tb, functionMap: functionMap}
	require.NoError(t, loadCode(rw, modules, functions))

	want := []model.Bytecode{
		{Op: model.BCall, Function: 0},
		{Op: model.BLdU64, U64: 0},
		{Op: model.BVecPack, VecElemType: model.U64(), VecCount: 0},
		{Op: model.BRet},
	}
	if diff := cmp.Diff(want, functions[0].Code.Code); diff != "" {
		t.Errorf("unexpected rewritten code (-want +got):\n%s", diff)
	}
}
