package mir

// TermKind distinguishes terminator kinds.
type TermKind uint8

const (
	// TermNone marks a block that has not been terminated yet.
	TermNone TermKind = iota
	// TermGoto is an unconditional jump.
	TermGoto
	// TermIf is a conditional jump on a boolean operand.
	TermIf
	// TermReturn returns from the function, with or without a value.
	TermReturn
	// TermUnreachable marks a block the front-end proved unreachable.
	TermUnreachable
)

// Terminator ends a basic block.
type Terminator struct {
	Kind TermKind `msgpack:"kind"`

	Goto   GotoTerm   `msgpack:"goto,omitempty"`
	If     IfTerm     `msgpack:"if,omitempty"`
	Return ReturnTerm `msgpack:"return,omitempty"`
}

// GotoTerm is an unconditional jump target.
type GotoTerm struct {
	Target BlockID `msgpack:"target"`
}

// IfTerm is a conditional jump.
type IfTerm struct {
	Cond Operand `msgpack:"cond"`
	Then BlockID `msgpack:"then"`
	Else BlockID `msgpack:"else"`
}

// ReturnTerm returns from the function.
type ReturnTerm struct {
	HasValue bool    `msgpack:"has_value"`
	Value    Operand `msgpack:"value,omitempty"`
}
