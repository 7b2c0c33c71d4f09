package model

// TypeKind discriminates the sum type of Type, the resolved type of a
// signature token once every struct reference has been pinned to a
// concrete StructIndex in the environment.
type TypeKind int

const (
	TBool TypeKind = iota
	TU8
	TU16
	TU32
	TU64
	TU128
	TU256
	TAddress
	TVector
	TStruct
	TStructInstantiation
	TReference
	TMutableReference
	TTypeParameter
)

// Type is a resolved, environment-level type. Exactly one of the payload
// fields is meaningful, selected by Kind; this is the idiomatic Go rendering
// of the closed sum type from the spec (Bool | U8 | ... | TypeParameter).
type Type struct {
	Kind TypeKind

	// Elem holds the element type for TVector, TReference, and
	// TMutableReference.
	Elem *Type

	// Struct holds the resolved struct for TStruct and TStructInstantiation.
	Struct StructIndex

	// TypeArgs holds the instantiation arguments for TStructInstantiation.
	TypeArgs []Type

	// ParamIdx holds the type parameter ordinal for TTypeParameter.
	ParamIdx uint16
}

// Bool, U8, ... are convenience constructors for the primitive Type values.
func Bool() Type    { return Type{Kind: TBool} }
func U8() Type      { return Type{Kind: TU8} }
func U16() Type     { return Type{Kind: TU16} }
func U32() Type     { return Type{Kind: TU32} }
func U64() Type     { return Type{Kind: TU64} }
func U128() Type    { return Type{Kind: TU128} }
func U256() Type    { return Type{Kind: TU256} }
func Address() Type { return Type{Kind: TAddress} }

// Vector constructs a TVector of elem.
func Vector(elem Type) Type { return Type{Kind: TVector, Elem: &elem} }

// StructType constructs a TStruct referencing idx.
func StructType(idx StructIndex) Type { return Type{Kind: TStruct, Struct: idx} }

// StructInstantiationType constructs a TStructInstantiation referencing idx
// with the given type arguments.
func StructInstantiationType(idx StructIndex, typeArgs []Type) Type {
	return Type{Kind: TStructInstantiation, Struct: idx, TypeArgs: typeArgs}
}

// Reference constructs a TReference of elem.
func Reference(elem Type) Type { return Type{Kind: TReference, Elem: &elem} }

// MutableReference constructs a TMutableReference of elem.
func MutableReference(elem Type) Type { return Type{Kind: TMutableReference, Elem: &elem} }

// TypeParameter constructs a TTypeParameter referencing ordinal idx.
func TypeParameter(idx uint16) Type { return Type{Kind: TTypeParameter, ParamIdx: idx} }
