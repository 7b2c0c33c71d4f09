package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/errs"
	"github.com/sourcegraph/move-env/internal/model"
)

// loadStructs materializes every struct definition across all modules, in
// module-definition order, and keys each one as
// "{pkg_id}::{mod_name}::{struct_name}". Implements spec.md §4.7 (struct
// pass).
func loadStructs(
	idents *identifierTable,
	modules []model.Module,
	packages []model.Package,
) ([]model.Struct, map[string]model.StructIndex, error) {
	var structs []model.Struct
	structMap := map[string]model.StructIndex{}

	for midx := range modules {
		module := &modules[midx]
		raw := module.Raw()

		for defIdx, sdef := range raw.StructDefs {
			sh := raw.StructHandles[sdef.StructHandle]
			structName := raw.Identifiers[sh.Name]
			nameIdx := idents.intern(structName)

			s := model.Struct{
				SelfIdx:        len(structs),
				Package:        module.Package,
				Module:         module.SelfIdx,
				Name:           nameIdx,
				DefIdx:         defIdx,
				Abilities:      sh.Abilities,
				TypeParameters: sh.TypeParameters,
			}
			structs = append(structs, s)
			module.Structs = append(module.Structs, s.SelfIdx)

			key := model.StructKey(packages[module.Package].ID, module.ModuleName, structName)
			structMap[key] = s.SelfIdx
		}
	}

	return structs, structMap, nil
}

// loadFields populates each struct's field list by resolving its field
// signatures through the type builder. Native structs are rejected unless
// they belong to a framework package. Implements spec.md §4.7 (field pass).
func loadFields(
	structs []model.Struct,
	idents *identifierTable,
	tb *typeBuilder,
	modules []model.Module,
	framework map[model.PackageIndex]model.ObjectID,
) error {
	for i := range structs {
		s := &structs[i]
		module := &modules[s.Module]
		raw := module.Raw()
		sdef := raw.StructDefs[s.DefIdx]

		if sdef.Field.Native {
			if _, isFramework := framework[s.Package]; isFramework {
				s.Fields = []model.Field{}
				continue
			}
			return errors.Wrapf(errs.ErrNativeFieldNotSupported, "struct %s in module %s (package %s)",
				idents.name(s.Name), module.ModuleName, tb.packages[s.Package].ID)
		}

		fields := make([]model.Field, 0, len(sdef.Field.Fields))
		for _, fd := range sdef.Field.Fields {
			name := raw.Identifiers[fd.Name]
			typ, err := tb.makeType(module, fd.Signature)
			if err != nil {
				return errors.Wrapf(err, "field %s of struct %s", name, idents.name(s.Name))
			}
			fields = append(fields, model.Field{Name: idents.intern(name), Type: typ})
		}
		s.Fields = fields
	}
	return nil
}
