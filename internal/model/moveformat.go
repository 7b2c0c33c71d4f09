package model

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
)

// This file describes the external, consumed shape of a deployed Move
// package: the MovePackage record the on-chain storage layer hands the
// loader, and the compiled module binary format nested inside it. Both are
// read-only inputs to internal/loader; nothing in this package mutates them.
//
// Byte-for-byte compatibility with the production Move bytecode wire format
// is out of scope here (see DESIGN.md): CompiledModule blobs are encoded
// with encoding/gob, a stand-in wire format that preserves the same table
// structure (identifier pool, handle tables, definition tables, signature
// pool, constant pool) the real format uses, so every resolution rule in
// internal/loader operates on the same shape the production format would
// present.

// UpgradeInfo records, for one entry of a package's linkage table, the
// concrete upgraded package a referenced base package currently resolves
// against.
type UpgradeInfo struct {
	BaseID     ObjectID
	UpgradedID ObjectID
}

// TypeKey names a struct independent of which package version declares it.
type TypeKey struct {
	ModuleName string
	StructName string
}

// MovePackage is the external record the storage/consensus layer produces
// for one deployed (and possibly upgraded) package version.
type MovePackage struct {
	ID ObjectID

	// Version is the on-chain version number of this package, starting at 1.
	Version uint64

	// TypeOrigin maps a type visible from this package to the package id in
	// which it was first introduced.
	TypeOrigin map[TypeKey]ObjectID

	// LinkageTable maps a referenced base package id to the upgrade record
	// describing which concrete package this package resolves it against.
	LinkageTable map[ObjectID]UpgradeInfo

	// Modules maps a module name to its gob-encoded CompiledModule blob.
	Modules map[string][]byte
}

// DeserializeModule decodes a module blob produced by EncodeModule. A
// malformed blob surfaces as ErrModuleDeserialize-class error from the
// caller (internal/loader wraps it with package/module context).
func DeserializeModule(blob []byte) (*CompiledModule, error) {
	var m CompiledModule
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode compiled module")
	}
	return &m, nil
}

// EncodeModule is the inverse of DeserializeModule, used by callers and
// tests to build MovePackage.Modules blobs from a CompiledModule value.
func EncodeModule(m *CompiledModule) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, errors.Wrap(err, "encode compiled module")
	}
	return buf.Bytes(), nil
}

// Raw, module-local index types. These index into a single CompiledModule's
// own pools and tables, distinct from the environment-wide index types in
// ids.go which index into GlobalEnv's flat containers.
type (
	AddressIndex           = int
	LocalIdentifierIndex   = int
	ModuleHandleIndex      = int
	StructHandleIndex      = int
	FunctionHandleIndex    = int
	SignatureIndex         = int
	StructDefinitionIndex  = int
	FunctionDefinitionIndex = int
	FieldHandleIndex       = int
	ConstantPoolIndex      = int
)

// ModuleHandle identifies a module by its address (into AddressIdentifiers)
// and name (into Identifiers).
type ModuleHandle struct {
	Address AddressIndex
	Name    LocalIdentifierIndex
}

// Ability mirrors a Move struct ability (copy/drop/store/key); the analyzer
// only needs to carry the set through, never interpret it.
type Ability int

// AbilitySet is a small bitset of Ability values.
type AbilitySet uint8

// StructTypeParameter carries the constraint set and phantom flag of one
// generic type parameter on a struct.
type StructTypeParameter struct {
	Constraints AbilitySet
	IsPhantom   bool
}

// StructHandle identifies a struct by its declaring module (into
// ModuleHandles) and name (into Identifiers), plus its ability and type
// parameter metadata.
type StructHandle struct {
	Module         ModuleHandleIndex
	Name           LocalIdentifierIndex
	Abilities      AbilitySet
	TypeParameters []StructTypeParameter
}

// SignatureTokenKind discriminates the sum type of SignatureToken.
type SignatureTokenKind int

const (
	SigBool SignatureTokenKind = iota
	SigU8
	SigU16
	SigU32
	SigU64
	SigU128
	SigU256
	SigAddress
	SigVector
	SigStruct
	SigStructInstantiation
	SigReference
	SigMutableReference
	SigTypeParameter
)

// SignatureToken is a raw, unresolved type as it appears in a compiled
// module's signature pool. Struct references are StructHandleIndex values
// that must be resolved against the owning package's linkage and
// type-origin tables (see internal/loader/types.go) to become a model.Type.
type SignatureToken struct {
	Kind SignatureTokenKind

	// Valid when Kind is SigVector, SigReference, or SigMutableReference.
	Inner *SignatureToken

	// Valid when Kind is SigStruct or SigStructInstantiation.
	StructHandle StructHandleIndex

	// Valid when Kind is SigStructInstantiation.
	TypeArguments []SignatureToken

	// Valid when Kind is SigTypeParameter.
	TypeParamIdx uint16
}

// Signature is one entry of a compiled module's signature pool: a flat list
// of tokens, used for parameter lists, return lists, locals, and
// instantiation type argument lists.
type Signature struct {
	Tokens []SignatureToken
}

// StructFieldInformation is either a list of declared fields or a marker
// that the struct is native (has no Move-level field layout).
type StructFieldInformation struct {
	Native bool
	Fields []FieldDefinition
}

// FieldDefinition names one field of a struct definition and gives its
// unresolved signature token.
type FieldDefinition struct {
	Name      LocalIdentifierIndex
	Signature SignatureToken
}

// StructDefinition binds a StructHandle to its field layout.
type StructDefinition struct {
	StructHandle StructHandleIndex
	Field        StructFieldInformation
}

// FunctionHandle identifies a function by its declaring module (into
// ModuleHandles) and name (into Identifiers), plus parameter/return
// signature indices and type parameter constraints.
type FunctionHandle struct {
	Module         ModuleHandleIndex
	Name           LocalIdentifierIndex
	Parameters     SignatureIndex
	Return         SignatureIndex
	TypeParameters []AbilitySet
}

// Visibility mirrors Move function visibility.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
	VisibilityFriend
)

// CodeUnit is the raw bytecode body of a function definition.
type CodeUnit struct {
	Locals SignatureIndex
	Code   []MoveBytecode
}

// FunctionDefinition binds a FunctionHandle to its visibility, entry flag,
// and (for non-native functions) its CodeUnit.
type FunctionDefinition struct {
	Function       FunctionHandleIndex
	Visibility     Visibility
	IsEntry        bool
	Code           *CodeUnit
}

// RawConstant is one entry of a compiled module's constant pool: an
// unresolved type plus the raw encoded value bytes.
type RawConstant struct {
	Type SignatureToken
	Data []byte
}

// FieldHandle names one field of a struct definition by ordinal.
type FieldHandle struct {
	Owner StructDefinitionIndex
	Field uint16
}

// StructDefInstantiation pairs a struct definition with a signature of type
// arguments, used by the generic Pack/Unpack/BorrowField opcodes.
type StructDefInstantiation struct {
	Def            StructDefinitionIndex
	TypeParameters SignatureIndex
}

// FunctionInstantiation pairs a function handle with a signature of type
// arguments, used by CallGeneric.
type FunctionInstantiation struct {
	Handle         FunctionHandleIndex
	TypeParameters SignatureIndex
}

// FieldInstantiation pairs a field handle with a signature of type
// arguments, used by the generic BorrowField opcodes.
type FieldInstantiation struct {
	Handle         FieldHandleIndex
	TypeParameters SignatureIndex
}

// MoveBytecodeOp discriminates the sum type of MoveBytecode, the raw
// instruction set as it appears in a compiled module's code unit, before
// handle indices are rewritten to environment indices.
type MoveBytecodeOp int

const (
	OpNop MoveBytecodeOp = iota
	OpPop
	OpRet
	OpBrTrue
	OpBrFalse
	OpBranch
	OpLdConst
	OpLdTrue
	OpLdFalse
	OpLdU8
	OpLdU16
	OpLdU32
	OpLdU64
	OpLdU128
	OpLdU256
	OpCastU8
	OpCastU16
	OpCastU32
	OpCastU64
	OpCastU128
	OpCastU256
	OpAdd
	OpSub
	OpMul
	OpMod
	OpDiv
	OpBitOr
	OpBitAnd
	OpXor
	OpOr
	OpAnd
	OpNot
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpShl
	OpShr
	OpAbort
	OpCopyLoc
	OpMoveLoc
	OpStLoc
	OpCall
	OpCallGeneric
	OpPack
	OpPackGeneric
	OpUnpack
	OpUnpackGeneric
	OpMutBorrowLoc
	OpImmBorrowLoc
	OpMutBorrowField
	OpMutBorrowFieldGeneric
	OpImmBorrowField
	OpImmBorrowFieldGeneric
	OpReadRef
	OpWriteRef
	OpFreezeRef
	OpVecPack
	OpVecLen
	OpVecImmBorrow
	OpVecMutBorrow
	OpVecPushBack
	OpVecPopBack
	OpVecUnpack
	OpVecSwap
)

// MoveBytecode is one raw instruction. Only the fields relevant to Op are
// populated; this mirrors the teacher's practice of a single payload struct
// per LSIF vertex/edge kind rather than one Go type per opcode, trading a
// little field waste for a straight-line rewrite pass in internal/loader.
type MoveBytecode struct {
	Op MoveBytecodeOp

	CodeOffset  uint16 // BrTrue, BrFalse, Branch
	LocalIdx    uint8  // CopyLoc, MoveLoc, StLoc, MutBorrowLoc, ImmBorrowLoc
	ConstIdx    ConstantPoolIndex
	U8          uint8
	U16         uint16
	U32         uint32
	U64         uint64
	U128        [16]byte
	U256        [32]byte
	VecCount    uint64

	FunctionHandle FunctionHandleIndex // Call
	FunctionInst   int                 // CallGeneric: index into FunctionInstantiations

	StructDef  StructDefinitionIndex // Pack, Unpack
	StructInst int                   // PackGeneric, UnpackGeneric: index into StructDefInstantiations

	FieldHandle FieldHandleIndex // ImmBorrowField, MutBorrowField
	FieldInst   int              // generic variants: index into FieldInstantiations

	VecElemType SignatureIndex // index into Signatures, whose single token is the element type
}

// CompiledModule is the deserialized, in-memory form of one compiled Move
// module, structurally equivalent to the production bytecode format's
// tables (see the comment at the top of this file for the wire-format caveat).
type CompiledModule struct {
	Identifiers         []string
	AddressIdentifiers  []ObjectID
	ModuleHandles       []ModuleHandle
	StructHandles       []StructHandle
	StructDefs          []StructDefinition
	FunctionHandles     []FunctionHandle
	FunctionDefs        []FunctionDefinition
	Signatures          []Signature
	ConstantPool        []RawConstant
	FieldHandles        []FieldHandle
	StructDefInstantiations []StructDefInstantiation
	FunctionInstantiations  []FunctionInstantiation
	FieldInstantiations     []FieldInstantiation

	// SelfModuleHandleIdx is this module's own entry in ModuleHandles.
	SelfModuleHandleIdx ModuleHandleIndex
}

// SelfHandle returns this module's own module handle.
func (m *CompiledModule) SelfHandle() *ModuleHandle {
	return &m.ModuleHandles[m.SelfModuleHandleIdx]
}

// SelfAddress returns the on-chain address this module was compiled
// against. For a versioned package this is the root package's address,
// since upgraded modules keep their original address.
func (m *CompiledModule) SelfAddress() ObjectID {
	return m.AddressIdentifiers[m.SelfHandle().Address]
}

// SelfName returns this module's own name.
func (m *CompiledModule) SelfName() string {
	return m.Identifiers[m.SelfHandle().Name]
}
