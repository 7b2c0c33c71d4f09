package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// typeBuilder resolves signature tokens against a module into environment
// types, following a package's linkage table and a struct's declaring
// package's type-origin table. It is a plain local value (spec.md §9):
// packages and structMap are destructured back out by Build once loading
// completes. Implements spec.md §4.6.
type typeBuilder struct {
	packages   []model.Package
	packageMap map[model.ObjectID]model.PackageIndex
	structMap  map[string]model.StructIndex
}

func (tb *typeBuilder) makeType(module *model.Module, tok model.SignatureToken) (model.Type, error) {
	switch tok.Kind {
	case model.SigBool:
		return model.Bool(), nil
	case model.SigU8:
		return model.U8(), nil
	case model.SigU16:
		return model.U16(), nil
	case model.SigU32:
		return model.U32(), nil
	case model.SigU64:
		return model.U64(), nil
	case model.SigU128:
		return model.U128(), nil
	case model.SigU256:
		return model.U256(), nil
	case model.SigAddress:
		return model.Address(), nil
	case model.SigVector:
		elem, err := tb.makeType(module, *tok.Inner)
		if err != nil {
			return model.Type{}, err
		}
		return model.Vector(elem), nil
	case model.SigStruct:
		idx, err := tb.resolveStructHandle(module, tok.StructHandle)
		if err != nil {
			return model.Type{}, err
		}
		return model.StructType(idx), nil
	case model.SigStructInstantiation:
		idx, err := tb.resolveStructHandle(module, tok.StructHandle)
		if err != nil {
			return model.Type{}, err
		}
		args := make([]model.Type, 0, len(tok.TypeArguments))
		for _, argTok := range tok.TypeArguments {
			arg, err := tb.makeType(module, argTok)
			if err != nil {
				return model.Type{}, err
			}
			args = append(args, arg)
		}
		return model.StructInstantiationType(idx, args), nil
	case model.SigReference:
		elem, err := tb.makeType(module, *tok.Inner)
		if err != nil {
			return model.Type{}, err
		}
		return model.Reference(elem), nil
	case model.SigMutableReference:
		elem, err := tb.makeType(module, *tok.Inner)
		if err != nil {
			return model.Type{}, err
		}
		return model.MutableReference(elem), nil
	case model.SigTypeParameter:
		return model.TypeParameter(tok.TypeParamIdx), nil
	default:
		return model.Type{}, errors.Wrapf(errs.ErrMalformedSignature, "package %s, module %s: unknown signature token kind %d",
			tb.packages[module.Package].ID, module.ModuleName, tok.Kind)
	}
}

// resolveStructHandle resolves a StructHandle to the StructIndex of its
// origin definition: first through the owning module's package's linkage
// table to reach the concrete declaring package, then through that
// package's type-origin table to reach the package where the type was
// first introduced. Implements spec.md §4.6 steps 1-4.
func (tb *typeBuilder) resolveStructHandle(module *model.Module, structHandleIdx model.StructHandleIndex) (model.StructIndex, error) {
	raw := module.Raw()
	modulePkg := &tb.packages[module.Package]

	sh := raw.StructHandles[structHandleIdx]
	mh := raw.ModuleHandles[sh.Module]
	moduleName := raw.Identifiers[mh.Name]
	structName := raw.Identifiers[sh.Name]
	structPkgID := raw.AddressIdentifiers[mh.Address]

	structPkgIdx, ok := tb.packageMap[structPkgID]
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnresolvedStruct, "package %s: struct handle references unknown package %s", modulePkg.ID, structPkgID)
	}

	structPackage := modulePkg
	if idx, ok := modulePkg.LinkageTable[structPkgIdx]; ok {
		structPackage = &tb.packages[idx]
	}

	key := model.TypeKey{ModuleName: moduleName, StructName: structName}
	originID, ok := structPackage.TypeOrigin[key]
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnresolvedStruct, "package %s: no type origin for %s::%s", structPackage.ID, moduleName, structName)
	}

	structKey := model.StructKey(originID, moduleName, structName)
	idx, ok := tb.structMap[structKey]
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnresolvedStruct, "struct %s not found (closest known key: %s)",
			structKey, errs.Suggest(structKey, keysOf(tb.structMap)))
	}
	return idx, nil
}

func keysOf(m map[string]model.StructIndex) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
