package mir

// EachRValue visits every statement rvalue in the module. Walk order is
// deterministic: functions then blocks then statements, in declaration
// order. Consumers that assign identities by first sighting (enum
// variant tags) depend on this.
func (m *Module) EachRValue(fn func(*RValue)) {
	if m == nil {
		return
	}
	for fi := range m.Funcs {
		f := &m.Funcs[fi]
		for bi := range f.Blocks {
			b := &f.Blocks[bi]
			for si := range b.Stmts {
				fn(&b.Stmts[si].Src)
			}
		}
	}
}
