package mir

// Block is a basic block: straight-line statements plus one terminator.
type Block struct {
	ID    BlockID     `msgpack:"id"`
	Stmts []Statement `msgpack:"stmts,omitempty"`
	Term  Terminator  `msgpack:"term"`
}

// Terminated reports whether the block has a terminator.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
