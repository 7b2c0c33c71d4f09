package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/model"
)

// loadConstants maps each module's raw constant pool entry to its resolved
// type, preserving the raw pool index so callers can recover the original
// bytes. Implements spec.md §4.9.
func loadConstants(tb *typeBuilder, modules []model.Module) error {
	for i := range modules {
		module := &modules[i]
		raw := module.Raw()

		constants := make([]model.Constant, 0, len(raw.ConstantPool))
		for ci, c := range raw.ConstantPool {
			typ, err := tb.makeType(module, c.Type)
			if err != nil {
				return errors.Wrapf(err, "constant %d in module %s", ci, module.ModuleName)
			}
			constants = append(constants, model.Constant{Type: typ, RawIndex: ci})
		}
		module.Constants = constants
	}
	return nil
}
