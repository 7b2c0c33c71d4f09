package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// codeRewriter holds the tables needed to translate a function's raw code
// unit into environment-level Bytecode: the type builder (for struct/type
// resolution) and the function reverse index (for call targets), which
// only exists once loadFunctions has run over every module.
type codeRewriter struct {
	tb          *typeBuilder
	functionMap map[string]model.FunctionIndex
}

// loadCode rewrites the body of every non-native function. Implements
// spec.md §4.8 (code pass, after the signature pass in functions.go).
func loadCode(rw *codeRewriter, modules []model.Module, functions []model.Function) error {
	for i := range functions {
		fn := &functions[i]
		module := &modules[fn.Module]
		raw := module.Raw()
		fdef := raw.FunctionDefs[fn.DefIdx]

		if fdef.Code == nil {
			continue
		}

		funcName := raw.Identifiers[raw.FunctionHandles[fdef.Function].Name]

		locals, err := makeTypeList(rw.tb, module, raw.Signatures[fdef.Code.Locals].Tokens)
		if err != nil {
			return errors.Wrapf(err, "locals of function %s", funcName)
		}

		code := make([]model.Bytecode, 0, len(fdef.Code.Code))
		for offset, instr := range fdef.Code.Code {
			bc, err := rw.rewrite(module, instr)
			if err != nil {
				return errors.Wrapf(err, "instruction %d of function %s", offset, funcName)
			}
			code = append(code, bc)
		}

		fn.Code = &model.Code{Locals: locals, Code: code}
	}
	return nil
}

// rewrite translates one raw MoveBytecode instruction into its
// environment-level equivalent, resolving every embedded handle index
// along the way.
func (rw *codeRewriter) rewrite(module *model.Module, instr model.MoveBytecode) (model.Bytecode, error) {
	out := model.Bytecode{
		CodeOffset: instr.CodeOffset,
		LocalIdx:   instr.LocalIdx,
		ConstIdx:   instr.ConstIdx,
		U8:         instr.U8,
		U16:        instr.U16,
		U32:        instr.U32,
		U64:        instr.U64,
		U128:       instr.U128,
		U256:       instr.U256,
		VecCount:   instr.VecCount,
	}

	switch instr.Op {
	case model.OpNop:
		out.Op = model.BNop
	case model.OpPop:
		out.Op = model.BPop
	case model.OpRet:
		out.Op = model.BRet
	case model.OpBrTrue:
		out.Op = model.BBrTrue
	case model.OpBrFalse:
		out.Op = model.BBrFalse
	case model.OpBranch:
		out.Op = model.BBranch
	case model.OpLdConst:
		out.Op = model.BLdConst
	case model.OpLdTrue:
		out.Op = model.BLdTrue
	case model.OpLdFalse:
		out.Op = model.BLdFalse
	case model.OpLdU8:
		out.Op = model.BLdU8
	case model.OpLdU16:
		out.Op = model.BLdU16
	case model.OpLdU32:
		out.Op = model.BLdU32
	case model.OpLdU64:
		out.Op = model.BLdU64
	case model.OpLdU128:
		out.Op = model.BLdU128
	case model.OpLdU256:
		out.Op = model.BLdU256
	case model.OpCastU8:
		out.Op = model.BCastU8
	case model.OpCastU16:
		out.Op = model.BCastU16
	case model.OpCastU32:
		out.Op = model.BCastU32
	case model.OpCastU64:
		out.Op = model.BCastU64
	case model.OpCastU128:
		out.Op = model.BCastU128
	case model.OpCastU256:
		out.Op = model.BCastU256
	case model.OpAdd:
		out.Op = model.BAdd
	case model.OpSub:
		out.Op = model.BSub
	case model.OpMul:
		out.Op = model.BMul
	case model.OpMod:
		out.Op = model.BMod
	case model.OpDiv:
		out.Op = model.BDiv
	case model.OpBitOr:
		out.Op = model.BBitOr
	case model.OpBitAnd:
		out.Op = model.BBitAnd
	case model.OpXor:
		out.Op = model.BXor
	case model.OpOr:
		out.Op = model.BOr
	case model.OpAnd:
		out.Op = model.BAnd
	case model.OpNot:
		out.Op = model.BNot
	case model.OpEq:
		out.Op = model.BEq
	case model.OpNeq:
		out.Op = model.BNeq
	case model.OpLt:
		out.Op = model.BLt
	case model.OpGt:
		out.Op = model.BGt
	case model.OpLe:
		out.Op = model.BLe
	case model.OpGe:
		out.Op = model.BGe
	case model.OpShl:
		out.Op = model.BShl
	case model.OpShr:
		out.Op = model.BShr
	case model.OpAbort:
		out.Op = model.BAbort
	case model.OpCopyLoc:
		out.Op = model.BCopyLoc
	case model.OpMoveLoc:
		out.Op = model.BMoveLoc
	case model.OpStLoc:
		out.Op = model.BStLoc
	case model.OpMutBorrowLoc:
		out.Op = model.BMutBorrowLoc
	case model.OpImmBorrowLoc:
		out.Op = model.BImmBorrowLoc
	case model.OpReadRef:
		out.Op = model.BReadRef
	case model.OpWriteRef:
		out.Op = model.BWriteRef
	case model.OpFreezeRef:
		out.Op = model.BFreezeRef

	case model.OpCall:
		out.Op = model.BCall
		fn, err := rw.resolveFunctionHandle(module, instr.FunctionHandle)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Function = fn

	case model.OpCallGeneric:
		out.Op = model.BCallGeneric
		raw := module.Raw()
		inst := raw.FunctionInstantiations[instr.FunctionInst]
		fn, err := rw.resolveFunctionHandle(module, inst.Handle)
		if err != nil {
			return model.Bytecode{}, err
		}
		args, err := makeTypeList(rw.tb, module, raw.Signatures[inst.TypeParameters].Tokens)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Function = fn
		out.TypeArgs = args

	case model.OpPack:
		out.Op = model.BPack
		idx, err := rw.tb.structKeyFromDef(module, instr.StructDef)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Struct = idx

	case model.OpUnpack:
		out.Op = model.BUnpack
		idx, err := rw.tb.structKeyFromDef(module, instr.StructDef)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Struct = idx

	case model.OpPackGeneric, model.OpUnpackGeneric:
		if instr.Op == model.OpPackGeneric {
			out.Op = model.BPackGeneric
		} else {
			out.Op = model.BUnpackGeneric
		}
		raw := module.Raw()
		inst := raw.StructDefInstantiations[instr.StructInst]
		idx, err := rw.tb.structKeyFromDef(module, inst.Def)
		if err != nil {
			return model.Bytecode{}, err
		}
		args, err := makeTypeList(rw.tb, module, raw.Signatures[inst.TypeParameters].Tokens)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Struct = idx
		out.TypeArgs = args

	case model.OpImmBorrowField, model.OpMutBorrowField:
		if instr.Op == model.OpImmBorrowField {
			out.Op = model.BImmBorrowField
		} else {
			out.Op = model.BMutBorrowField
		}
		raw := module.Raw()
		fh := raw.FieldHandles[instr.FieldHandle]
		structIdx, err := rw.tb.structKeyFromDef(module, fh.Owner)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Field = model.FieldRef{StructIdx: structIdx, FieldIdx: fh.Field}

	case model.OpImmBorrowFieldGeneric, model.OpMutBorrowFieldGeneric:
		if instr.Op == model.OpImmBorrowFieldGeneric {
			out.Op = model.BImmBorrowFieldGeneric
		} else {
			out.Op = model.BMutBorrowFieldGeneric
		}
		raw := module.Raw()
		inst := raw.FieldInstantiations[instr.FieldInst]
		fh := raw.FieldHandles[inst.Handle]
		structIdx, err := rw.tb.structKeyFromDef(module, fh.Owner)
		if err != nil {
			return model.Bytecode{}, err
		}
		args, err := makeTypeList(rw.tb, module, raw.Signatures[inst.TypeParameters].Tokens)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.Field = model.FieldRef{StructIdx: structIdx, FieldIdx: fh.Field}
		out.TypeArgs = args

	case model.OpVecPack, model.OpVecUnpack, model.OpVecLen, model.OpVecImmBorrow,
		model.OpVecMutBorrow, model.OpVecPushBack, model.OpVecPopBack, model.OpVecSwap:
		switch instr.Op {
		case model.OpVecPack:
			out.Op = model.BVecPack
		case model.OpVecUnpack:
			out.Op = model.BVecUnpack
		case model.OpVecLen:
			out.Op = model.BVecLen
		case model.OpVecImmBorrow:
			out.Op = model.BVecImmBorrow
		case model.OpVecMutBorrow:
			out.Op = model.BVecMutBorrow
		case model.OpVecPushBack:
			out.Op = model.BVecPushBack
		case model.OpVecPopBack:
			out.Op = model.BVecPopBack
		case model.OpVecSwap:
			out.Op = model.BVecSwap
		}
		raw := module.Raw()
		elemTok := raw.Signatures[instr.VecElemType].Tokens[0]
		elem, err := rw.tb.makeType(module, elemTok)
		if err != nil {
			return model.Bytecode{}, err
		}
		out.VecElemType = elem

	default:
		return model.Bytecode{}, errors.Wrapf(errs.ErrUnsupportedOpcode, "package %s, module %s: opcode %d",
			rw.tb.packages[module.Package].ID, module.ModuleName, instr.Op)
	}

	return out, nil
}

// resolveFunctionHandle resolves a FunctionHandle to its FunctionIndex. A
// call whose target module address equals the calling module's own
// self-address is an intra-package call: it resolves against the current
// package's id directly rather than the handle's literal address, which
// (for a non-root version of an upgraded package) would otherwise name an
// older version of the same package. All other calls resolve the target
// address to a package index and follow the calling package's linkage
// table, mirroring resolveStructHandle.
func (rw *codeRewriter) resolveFunctionHandle(module *model.Module, fhIdx model.FunctionHandleIndex) (model.FunctionIndex, error) {
	raw := module.Raw()
	pkg := &rw.tb.packages[module.Package]

	fh := raw.FunctionHandles[fhIdx]
	mh := raw.ModuleHandles[fh.Module]
	moduleName := raw.Identifiers[mh.Name]
	funcName := raw.Identifiers[fh.Name]
	targetAddr := raw.AddressIdentifiers[mh.Address]

	var targetPkgID model.ObjectID
	if targetAddr == raw.SelfAddress() {
		targetPkgID = pkg.ID
	} else {
		targetPkgIdx, ok := rw.tb.packageMap[targetAddr]
		if !ok {
			return 0, errors.Wrapf(errs.ErrUnresolvedCall, "package %s: call references unknown package %s", pkg.ID, targetAddr)
		}
		resolvedIdx := targetPkgIdx
		if upgraded, ok := pkg.LinkageTable[targetPkgIdx]; ok {
			resolvedIdx = upgraded
		}
		targetPkgID = rw.tb.packages[resolvedIdx].ID
	}

	key := model.FunctionKey(targetPkgID, moduleName, funcName)
	idx, ok := rw.functionMap[key]
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnresolvedCall, "function %s not found (closest known key: %s)",
			key, errs.Suggest(key, functionKeys(rw.functionMap)))
	}
	return idx, nil
}

// structKeyFromDef resolves a struct definition index, as referenced
// directly by Pack/Unpack/BorrowField opcodes, to its StructIndex. Unlike
// resolveStructHandle, this never crosses a linkage table: the definition
// always names a struct declared in the current module. It consults the
// current package's own type-origin table, falling back to the module's
// compiled-against address when the struct predates that table (e.g. a
// framework package with no explicit type-origin entries).
func (tb *typeBuilder) structKeyFromDef(module *model.Module, defIdx model.StructDefinitionIndex) (model.StructIndex, error) {
	raw := module.Raw()
	pkg := &tb.packages[module.Package]
	sdef := raw.StructDefs[defIdx]
	sh := raw.StructHandles[sdef.StructHandle]
	structName := raw.Identifiers[sh.Name]
	moduleName := module.ModuleName

	originID, ok := pkg.TypeOrigin[model.TypeKey{ModuleName: moduleName, StructName: structName}]
	if !ok {
		originID = raw.SelfAddress()
	}

	key := model.StructKey(originID, moduleName, structName)
	idx, ok := tb.structMap[key]
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnresolvedStruct, "struct %s not found (closest known key: %s)",
			key, errs.Suggest(key, keysOf(tb.structMap)))
	}
	return idx, nil
}

func functionKeys(m map[string]model.FunctionIndex) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
