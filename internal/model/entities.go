package model

// Package is one loaded, addressable unit of Move code, at a single
// on-chain version. See internal/loader/packages.go and
// internal/loader/versions.go for how these fields are populated.
type Package struct {
	SelfIdx PackageIndex
	ID      ObjectID
	Version uint64

	// TypeOrigin maps a type visible from this package to the package id
	// where it was first introduced (copied from the input MovePackage).
	TypeOrigin map[TypeKey]ObjectID

	// LinkageTable maps a referenced package's PackageIndex to the
	// PackageIndex of the concrete upgraded package it resolves to in this
	// environment.
	LinkageTable map[PackageIndex]PackageIndex

	// Dependencies is every package index reachable through LinkageTable.
	Dependencies map[PackageIndex]struct{}

	// DirectDependencies is the set of packages directly referenced by any
	// module of this package, translated through LinkageTable.
	DirectDependencies map[PackageIndex]struct{}

	// RootVersion is the PackageIndex of the version-1 package with the
	// same logical identity, set only when Version > 1.
	RootVersion *PackageIndex

	// Versions is, for a root package, the ordered list of its non-root
	// versions in ascending version order. Empty for non-roots and for
	// roots with no upgrades.
	Versions []PackageIndex

	// Modules is the set of module indices defined by this package.
	Modules []ModuleIndex
}

// IsRoot reports whether this package is a version-1 (or framework) root,
// i.e. it has no RootVersion pointer.
func (p *Package) IsRoot() bool {
	return p.RootVersion == nil
}

// Module is one deserialized compiled module, bound to its owning package.
type Module struct {
	SelfIdx ModuleIndex
	Package PackageIndex
	Name    IdentifierIndex

	// ModuleAddress is the on-chain address this module was compiled
	// against (see CompiledModule.SelfAddress).
	ModuleAddress ObjectID
	// ModuleName is this module's own name, redundant with Name but kept
	// as a plain string for convenient key construction.
	ModuleName string

	// Dependencies is the set of package ids directly referenced by any
	// module handle other than the module's own self handle.
	Dependencies map[ObjectID]struct{}

	Structs   []StructIndex
	Functions []FunctionIndex
	Constants []Constant

	// raw is the deserialized module backing this entity. Build clears it
	// with ClearRaw before returning unless LoaderConfig.KeepRawModules is set.
	raw *CompiledModule
}

// Raw exposes the deserialized CompiledModule backing this module, or nil
// if the environment was built with KeepRawModules: false (see the raw
// module retention entry in DESIGN.md). Downstream consumers such as a disassembler
// use this for signatures and constant bytes a GlobalEnv doesn't otherwise
// expose.
func (m *Module) Raw() *CompiledModule {
	return m.raw
}

// SetRaw attaches the deserialized module backing this entity. Called only
// by internal/loader while building the environment.
func (m *Module) SetRaw(raw *CompiledModule) {
	m.raw = raw
}

// ClearRaw drops the raw module reference. Called by internal/loader after
// construction when the caller's LoaderConfig asks not to retain it.
func (m *Module) ClearRaw() {
	m.raw = nil
}

// Field is one resolved field of a Struct.
type Field struct {
	Name IdentifierIndex
	Type Type
}

// Struct is one materialized Move struct declaration.
type Struct struct {
	SelfIdx StructIndex
	Package PackageIndex
	Module  ModuleIndex
	Name    IdentifierIndex

	// DefIdx is the struct's definition-index within its module, preserved
	// so downstream consumers can correlate back to CompiledModule.StructDefs.
	DefIdx StructDefinitionIndex

	Abilities      AbilitySet
	TypeParameters []StructTypeParameter

	Fields []Field
}

// Code is the rewritten body of a Function.
type Code struct {
	Locals []Type
	Code   []Bytecode
}

// Constant is one resolved entry of a module's constant pool.
type Constant struct {
	Type     Type
	RawIndex ConstantPoolIndex
}

// Function is one materialized Move function declaration.
type Function struct {
	SelfIdx FunctionIndex
	Package PackageIndex
	Module  ModuleIndex
	Name    IdentifierIndex

	DefIdx FunctionDefinitionIndex

	TypeParameters []AbilitySet
	Parameters     []Type
	Returns        []Type
	Visibility     Visibility
	IsEntry        bool

	Code *Code
}
