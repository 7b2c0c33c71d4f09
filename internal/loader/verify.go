package loader

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// verifyStructuralInvariants re-checks every cross-reference built over the
// course of loading once the environment is otherwise complete, the way
// verifyVersions re-checks the version chain in versions.go. Every
// violation found is collected rather than returned on the first one, so a
// single bad package surfaces every inconsistency it caused in one error.
// Implements spec.md §4.11.
func verifyStructuralInvariants(env *model.GlobalEnv) error {
	var result *multierror.Error

	for i := range env.Modules {
		m := &env.Modules[i]
		if m.SelfIdx != i {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "module %d: SelfIdx %d does not match position", i, m.SelfIdx))
		}
		if int(m.Package) < 0 || int(m.Package) >= len(env.Packages) {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "module %d: package index %d out of range", i, m.Package))
		}
	}

	for i := range env.Structs {
		s := &env.Structs[i]
		if s.SelfIdx != i {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "struct %d: SelfIdx %d does not match position", i, s.SelfIdx))
		}
		if int(s.Module) < 0 || int(s.Module) >= len(env.Modules) {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "struct %d: module index %d out of range", i, s.Module))
		}
	}

	for i := range env.Functions {
		f := &env.Functions[i]
		if f.SelfIdx != i {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "function %d: SelfIdx %d does not match position", i, f.SelfIdx))
		}
		if int(f.Module) < 0 || int(f.Module) >= len(env.Modules) {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "function %d: module index %d out of range", i, f.Module))
		}
		if f.Code == nil {
			continue
		}
		for offset, bc := range f.Code.Code {
			switch bc.Op {
			case model.BCall, model.BCallGeneric:
				if int(bc.Function) < 0 || int(bc.Function) >= len(env.Functions) {
					result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
						"function %d, instruction %d: call target %d out of range", i, offset, bc.Function))
				}
			case model.BPack, model.BPackGeneric, model.BUnpack, model.BUnpackGeneric:
				if int(bc.Struct) < 0 || int(bc.Struct) >= len(env.Structs) {
					result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
						"function %d, instruction %d: struct target %d out of range", i, offset, bc.Struct))
				}
			case model.BImmBorrowField, model.BImmBorrowFieldGeneric, model.BMutBorrowField, model.BMutBorrowFieldGeneric:
				if int(bc.Field.StructIdx) < 0 || int(bc.Field.StructIdx) >= len(env.Structs) {
					result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
						"function %d, instruction %d: field owner %d out of range", i, offset, bc.Field.StructIdx))
					continue
				}
				owner := &env.Structs[bc.Field.StructIdx]
				if int(bc.Field.FieldIdx) >= len(owner.Fields) {
					result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
						"function %d, instruction %d: field ordinal %d out of range for struct %d (%d fields)",
						i, offset, bc.Field.FieldIdx, bc.Field.StructIdx, len(owner.Fields)))
				}
			}
		}
	}

	for fn, edges := range env.Callees {
		if int(fn) < 0 || int(fn) >= len(env.Functions) {
			result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid, "call graph: callee map has out-of-range key %d", fn))
			continue
		}
		for callee := range edges {
			if _, ok := env.Callers[callee][fn]; !ok {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"call graph: %d -> %d missing from reverse index", fn, callee))
			}
		}
	}

	// Forward round-trip: every index a package/module claims to own must
	// point back at a module/struct/function that agrees it is the owner.
	// The reverse checks above catch an out-of-range or self-contradictory
	// owner field; these catch a module/struct/function silently dropped
	// from (or duplicated into) its owner's list.
	for i := range env.Packages {
		pkg := &env.Packages[i]
		for _, midx := range pkg.Modules {
			if int(midx) < 0 || int(midx) >= len(env.Modules) {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"package %d: module index %d out of range", i, midx))
				continue
			}
			if env.Modules[midx].Package != i {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"package %d: module %d claims package %d", i, midx, env.Modules[midx].Package))
			}
		}
	}

	for i := range env.Modules {
		m := &env.Modules[i]
		for _, sidx := range m.Structs {
			if int(sidx) < 0 || int(sidx) >= len(env.Structs) {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"module %d: struct index %d out of range", i, sidx))
				continue
			}
			if env.Structs[sidx].Module != i {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"module %d: struct %d claims module %d", i, sidx, env.Structs[sidx].Module))
			}
		}
		for _, fidx := range m.Functions {
			if int(fidx) < 0 || int(fidx) >= len(env.Functions) {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"module %d: function index %d out of range", i, fidx))
				continue
			}
			if env.Functions[fidx].Module != i {
				result = multierror.Append(result, errors.Wrapf(errs.ErrVersionTopologyInvalid,
					"module %d: function %d claims module %d", i, fidx, env.Functions[fidx].Module))
			}
		}
	}

	return result.ErrorOrNil()
}
