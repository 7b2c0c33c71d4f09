package model

// FieldRef is a resolved field reference: the struct it belongs to and its
// ordinal position among that struct's fields.
type FieldRef struct {
	StructIdx StructIndex
	FieldIdx  uint16
}

// BytecodeOp discriminates the sum type of Bytecode, the rewritten
// instruction set: every handle index a raw MoveBytecode carried has been
// resolved to an environment-level index, and every embedded signature has
// been expanded to a Type.
type BytecodeOp int

const (
	BNop BytecodeOp = iota
	BPop
	BRet
	BBrTrue
	BBrFalse
	BBranch
	BLdConst
	BLdTrue
	BLdFalse
	BLdU8
	BLdU16
	BLdU32
	BLdU64
	BLdU128
	BLdU256
	BCastU8
	BCastU16
	BCastU32
	BCastU64
	BCastU128
	BCastU256
	BAdd
	BSub
	BMul
	BMod
	BDiv
	BBitOr
	BBitAnd
	BXor
	BOr
	BAnd
	BNot
	BEq
	BNeq
	BLt
	BGt
	BLe
	BGe
	BShl
	BShr
	BAbort
	BCopyLoc
	BMoveLoc
	BStLoc
	BCall
	BCallGeneric
	BPack
	BPackGeneric
	BUnpack
	BUnpackGeneric
	BMutBorrowLoc
	BImmBorrowLoc
	BMutBorrowField
	BMutBorrowFieldGeneric
	BImmBorrowField
	BImmBorrowFieldGeneric
	BReadRef
	BWriteRef
	BFreezeRef
	BVecPack
	BVecLen
	BVecImmBorrow
	BVecMutBorrow
	BVecPushBack
	BVecPopBack
	BVecUnpack
	BVecSwap
)

// Bytecode is one rewritten instruction. As with MoveBytecode, exactly the
// fields relevant to Op are populated.
type Bytecode struct {
	Op BytecodeOp

	CodeOffset uint16
	LocalIdx   uint8
	ConstIdx   ConstantPoolIndex
	U8         uint8
	U16        uint16
	U32        uint32
	U64        uint64
	U128       [16]byte
	U256       [32]byte
	VecCount   uint64

	Function     FunctionIndex
	TypeArgs     []Type
	Struct       StructIndex
	Field        FieldRef
	VecElemType  Type
}
