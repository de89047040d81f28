package mir

// BlockID identifies a basic block within a function.
type BlockID int32

// NoBlockID marks an absent block reference.
const NoBlockID BlockID = -1

// TypeKind distinguishes MIR type kinds.
type TypeKind uint8

const (
	// TypeUnit represents the unit type.
	TypeUnit TypeKind = iota
	// TypeInt represents a 64-bit signed integer.
	TypeInt
	// TypeFloat represents a 64-bit float.
	TypeFloat
	// TypeBool represents a boolean.
	TypeBool
	// TypeString represents a string constant reference.
	TypeString
	// TypeRecord represents a named multi-field record.
	TypeRecord
	// TypeArray represents a fixed-size array.
	TypeArray
	// TypeBox represents a box pointer to a stack-simulated payload.
	TypeBox
	// TypeRc represents a reference-counted pointer.
	TypeRc
)

// Type is the small structural type carried on params, returns and
// globals. It is only as precise as the backend's layout decisions
// require; full inference happens upstream.
type Type struct {
	Kind TypeKind `msgpack:"kind"`

	// Name is the record type name for TypeRecord.
	Name string `msgpack:"name,omitempty"`
	// Elem is the element type for TypeArray, TypeBox and TypeRc.
	Elem *Type `msgpack:"elem,omitempty"`
	// Len is the element count for TypeArray.
	Len int `msgpack:"len,omitempty"`
}

// IsRecord reports whether t names a record type.
func (t Type) IsRecord() bool { return t.Kind == TypeRecord }

// IsRecordArray reports whether t is a fixed array of records.
func (t Type) IsRecordArray() bool {
	return t.Kind == TypeArray && t.Elem != nil && t.Elem.Kind == TypeRecord
}

// PlaceProjKind distinguishes place projection kinds.
type PlaceProjKind uint8

const (
	// PlaceProjDeref projects through a pointer.
	PlaceProjDeref PlaceProjKind = iota
	// PlaceProjField projects to a named field.
	PlaceProjField
	// PlaceProjIndex projects to an array element.
	PlaceProjIndex
)

// PlaceProj is one projection step applied to a place base.
type PlaceProj struct {
	Kind PlaceProjKind `msgpack:"kind"`

	Field string  `msgpack:"field,omitempty"`
	Index Operand `msgpack:"index,omitempty"`
}

// Place is an addressable location: a named local plus zero or more
// projections (field, index, deref) applied left to right.
type Place struct {
	Local string      `msgpack:"local"`
	Proj  []PlaceProj `msgpack:"proj,omitempty"`
}

// IsLocal reports whether p is a bare local with no projections.
func (p Place) IsLocal() bool { return len(p.Proj) == 0 }

// LocalPlace returns a projection-free place for name.
func LocalPlace(name string) Place { return Place{Local: name} }

// FieldPlace returns p extended with a field projection.
func FieldPlace(p Place, field string) Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, PlaceProj{Kind: PlaceProjField, Field: field})
	return Place{Local: p.Local, Proj: proj}
}

// IndexPlace returns p extended with an index projection.
func IndexPlace(p Place, index Operand) Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, PlaceProj{Kind: PlaceProjIndex, Index: index})
	return Place{Local: p.Local, Proj: proj}
}

// DerefPlace returns p extended with a deref projection.
func DerefPlace(p Place) Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, PlaceProj{Kind: PlaceProjDeref})
	return Place{Local: p.Local, Proj: proj}
}

// OperandKind distinguishes operand kinds.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy represents a copy of a place.
	OperandCopy
	// OperandMove represents a move of a place. The backend lowers copy
	// and move identically; the distinction is upstream bookkeeping.
	OperandMove
)

// Operand represents where a value comes from.
type Operand struct {
	Kind OperandKind `msgpack:"kind"`

	Const Const `msgpack:"const,omitempty"`
	Place Place `msgpack:"place,omitempty"`
}

// ConstOperand wraps a constant into an operand.
func ConstOperand(c Const) Operand { return Operand{Kind: OperandConst, Const: c} }

// CopyOperand wraps a place copy into an operand.
func CopyOperand(p Place) Operand { return Operand{Kind: OperandCopy, Place: p} }

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstUnit represents the unit constant.
	ConstUnit ConstKind = iota
	// ConstInt represents an integer constant.
	ConstInt
	// ConstFloat represents a float constant.
	ConstFloat
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstString represents a string constant.
	ConstString
)

// Const represents a MIR constant.
type Const struct {
	Kind ConstKind `msgpack:"kind"`

	IntValue    int64   `msgpack:"int,omitempty"`
	FloatValue  float64 `msgpack:"float,omitempty"`
	BoolValue   bool    `msgpack:"bool,omitempty"`
	StringValue string  `msgpack:"str,omitempty"`
}

// IntConst returns an integer constant.
func IntConst(v int64) Const { return Const{Kind: ConstInt, IntValue: v} }

// FloatConst returns a float constant.
func FloatConst(v float64) Const { return Const{Kind: ConstFloat, FloatValue: v} }

// BoolConst returns a boolean constant.
func BoolConst(v bool) Const { return Const{Kind: ConstBool, BoolValue: v} }

// StringConst returns a string constant.
func StringConst(s string) Const { return Const{Kind: ConstString, StringValue: s} }
