package mir

// BinOp enumerates binary operators.
type BinOp uint8

const (
	// BinAdd represents integer/float addition.
	BinAdd BinOp = iota
	// BinSub represents subtraction.
	BinSub
	// BinMul represents multiplication.
	BinMul
	// BinDiv represents division.
	BinDiv
	// BinMod represents remainder.
	BinMod
	// BinEq represents equality comparison.
	BinEq
	// BinNe represents inequality comparison.
	BinNe
	// BinLt represents less-than comparison.
	BinLt
	// BinLe represents less-or-equal comparison.
	BinLe
	// BinGt represents greater-than comparison.
	BinGt
	// BinGe represents greater-or-equal comparison.
	BinGe
	// BinAnd represents logical and. Both operands are always
	// evaluated; the language has no short-circuit at MIR level.
	BinAnd
	// BinOr represents logical or. Both operands are always evaluated.
	BinOr
	// BinBitAnd represents bitwise and.
	BinBitAnd
	// BinBitOr represents bitwise or.
	BinBitOr
	// BinBitXor represents bitwise xor.
	BinBitXor
	// BinShl represents left shift.
	BinShl
	// BinShr represents arithmetic right shift.
	BinShr
)

// UnOp enumerates unary operators.
type UnOp uint8

const (
	// UnNeg represents arithmetic negation.
	UnNeg UnOp = iota
	// UnNot represents logical not.
	UnNot
)

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse represents a use of an operand.
	RValueUse RValueKind = iota
	// RValueUnary represents a unary operation.
	RValueUnary
	// RValueBinary represents a binary operation.
	RValueBinary
	// RValueCall represents a function call.
	RValueCall
	// RValueAggregate represents record construction.
	RValueAggregate
	// RValueArray represents fixed array construction.
	RValueArray
	// RValueField represents a field access.
	RValueField
	// RValueIndex represents an index access.
	RValueIndex
	// RValueClosure represents closure construction.
	RValueClosure
	// RValueDeref represents a pointer dereference.
	RValueDeref
	// RValueRef represents taking the address of a place.
	RValueRef
)

// RValue represents a right-hand value in MIR.
type RValue struct {
	Kind RValueKind `msgpack:"kind"`

	Use       Operand       `msgpack:"use,omitempty"`
	Unary     UnaryExpr     `msgpack:"unary,omitempty"`
	Binary    BinaryExpr    `msgpack:"binary,omitempty"`
	Call      CallExpr      `msgpack:"call,omitempty"`
	Aggregate AggregateExpr `msgpack:"aggregate,omitempty"`
	Array     ArrayExpr     `msgpack:"array,omitempty"`
	Field     FieldExpr     `msgpack:"field,omitempty"`
	Index     IndexExpr     `msgpack:"index,omitempty"`
	Closure   ClosureExpr   `msgpack:"closure,omitempty"`
	Deref     DerefExpr     `msgpack:"deref,omitempty"`
	Ref       RefExpr       `msgpack:"ref,omitempty"`
}

// UnaryExpr represents a unary operation.
type UnaryExpr struct {
	Op      UnOp    `msgpack:"op"`
	Operand Operand `msgpack:"operand"`
}

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	Op    BinOp   `msgpack:"op"`
	Left  Operand `msgpack:"left"`
	Right Operand `msgpack:"right"`
}

// CallExpr represents a call by symbol name.
type CallExpr struct {
	Callee string    `msgpack:"callee"`
	Args   []Operand `msgpack:"args,omitempty"`
}

// AggregateExpr represents record construction: operands in declared
// field order of the named record type.
type AggregateExpr struct {
	TypeName string    `msgpack:"type_name"`
	Fields   []Operand `msgpack:"fields,omitempty"`
}

// ArrayExpr represents fixed array construction.
type ArrayExpr struct {
	Elems []Operand `msgpack:"elems,omitempty"`
}

// FieldExpr represents a field read.
type FieldExpr struct {
	Place Place  `msgpack:"place"`
	Name  string `msgpack:"name"`
}

// IndexExpr represents an index read. Index may be a constant or a
// runtime operand; both must resolve to the same addressing.
type IndexExpr struct {
	Place Place   `msgpack:"place"`
	Index Operand `msgpack:"index"`
}

// ClosureExpr represents closure construction: a code symbol plus
// captures copied by value into the closure block.
type ClosureExpr struct {
	Code     string    `msgpack:"code"`
	Captures []Operand `msgpack:"captures,omitempty"`
}

// DerefExpr represents a pointer dereference read.
type DerefExpr struct {
	Place Place `msgpack:"place"`
}

// RefExpr represents taking the address of a place.
type RefExpr struct {
	Place Place `msgpack:"place"`
}

// Statement assigns an rvalue to a place.
type Statement struct {
	Dst Place  `msgpack:"dst"`
	Src RValue `msgpack:"src"`
}
