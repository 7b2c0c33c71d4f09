package loader

import "github.com/sourcegraph/move-env/internal/model"

// identifierTable interns identifier strings to dense indices. It is a
// plain local value threaded through the pipeline functions below and
// never stored at package scope (see SPEC_FULL.md §9): its two fields are
// copied directly into the frozen GlobalEnv at the end of Build.
type identifierTable struct {
	identifiers []string
	index       map[string]model.IdentifierIndex
}

func newIdentifierTable() *identifierTable {
	return &identifierTable{
		index: map[string]model.IdentifierIndex{},
	}
}

// intern returns the dense index for name, assigning a new one the first
// time name is seen.
func (t *identifierTable) intern(name string) model.IdentifierIndex {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	idx := len(t.identifiers)
	t.identifiers = append(t.identifiers, name)
	t.index[name] = idx
	return idx
}

// name returns the interned string for idx.
func (t *identifierTable) name(idx model.IdentifierIndex) string {
	return t.identifiers[idx]
}
