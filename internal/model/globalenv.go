package model

import "fmt"

// GlobalEnv is the fully linked, in-memory program database produced by
// internal/loader.Build. It is immutable after construction: every field is
// populated once, in the leaves-first order described in SPEC_FULL.md §2,
// and never mutated again. Concurrent reads (including through
// internal/query) are always safe.
type GlobalEnv struct {
	Packages  []Package
	Modules   []Module
	Structs   []Struct
	Functions []Function

	// Identifiers is the interned name table; Identifiers[i] is the name
	// for IdentifierIndex i.
	Identifiers []string

	// PackageByID, ModuleByKey, StructByKey, FunctionByKey, and
	// IdentifierByName are the reverse indexes described in spec.md §3.
	PackageByID      map[ObjectID]PackageIndex
	ModuleByKey      map[string]ModuleIndex
	StructByKey      map[string]StructIndex
	FunctionByKey    map[string]FunctionIndex
	IdentifierByName map[string]IdentifierIndex

	// Callers[f] is the set of functions that call f; Callees[f] is the set
	// of functions f calls. Both are total over the function index range.
	Callers map[FunctionIndex]map[FunctionIndex]struct{}
	Callees map[FunctionIndex]map[FunctionIndex]struct{}

	// Framework maps the PackageIndex of every retained framework package
	// to its id.
	Framework map[PackageIndex]ObjectID
}

// ModuleKey builds the "{pkg_id}::{module_name}" reverse-index key.
func ModuleKey(pkgID ObjectID, moduleName string) string {
	return fmt.Sprintf("%s::%s", pkgID, moduleName)
}

// StructKey builds the "{pkg_id}::{module_name}::{struct_name}" reverse-index key.
func StructKey(pkgID ObjectID, moduleName, structName string) string {
	return fmt.Sprintf("%s::%s::%s", pkgID, moduleName, structName)
}

// FunctionKey builds the "{pkg_id}::{module_name}::{function_name}" reverse-index key.
func FunctionKey(pkgID ObjectID, moduleName, functionName string) string {
	return fmt.Sprintf("%s::%s::%s", pkgID, moduleName, functionName)
}

// Identifier returns the interned name for idx.
func (e *GlobalEnv) Identifier(idx IdentifierIndex) string {
	return e.Identifiers[idx]
}

// Package returns the package at idx.
func (e *GlobalEnv) Package(idx PackageIndex) *Package {
	return &e.Packages[idx]
}

// Module returns the module at idx.
func (e *GlobalEnv) Module(idx ModuleIndex) *Module {
	return &e.Modules[idx]
}

// Struct returns the struct at idx.
func (e *GlobalEnv) Struct(idx StructIndex) *Struct {
	return &e.Structs[idx]
}

// Function returns the function at idx.
func (e *GlobalEnv) Function(idx FunctionIndex) *Function {
	return &e.Functions[idx]
}

// LookupPackage resolves a package by its on-chain id.
func (e *GlobalEnv) LookupPackage(id ObjectID) (PackageIndex, bool) {
	idx, ok := e.PackageByID[id]
	return idx, ok
}

// LookupModule resolves a module by "{pkg_id}::{module_name}".
func (e *GlobalEnv) LookupModule(key string) (ModuleIndex, bool) {
	idx, ok := e.ModuleByKey[key]
	return idx, ok
}

// LookupStruct resolves a struct by "{pkg_id}::{module_name}::{struct_name}".
func (e *GlobalEnv) LookupStruct(key string) (StructIndex, bool) {
	idx, ok := e.StructByKey[key]
	return idx, ok
}

// LookupFunction resolves a function by "{pkg_id}::{module_name}::{function_name}".
func (e *GlobalEnv) LookupFunction(key string) (FunctionIndex, bool) {
	idx, ok := e.FunctionByKey[key]
	return idx, ok
}

// IsFramework reports whether pkg is one of the retained framework packages.
func (e *GlobalEnv) IsFramework(pkg PackageIndex) bool {
	_, ok := e.Framework[pkg]
	return ok
}
