package model

// PackageIndex is the position of a Package in GlobalEnv.Packages.
type PackageIndex = int

// ModuleIndex is the position of a Module in GlobalEnv.Modules.
type ModuleIndex = int

// StructIndex is the position of a Struct in GlobalEnv.Structs.
type StructIndex = int

// FunctionIndex is the position of a Function in GlobalEnv.Functions.
type FunctionIndex = int

// IdentifierIndex is the position of an interned name in GlobalEnv.Identifiers.
type IdentifierIndex = int

// ObjectID is a stable on-chain address identifying a package or a module.
// Packages that share a logical identity across upgrades have different
// ObjectIDs but the same root identity (see Package.RootVersion).
type ObjectID string
