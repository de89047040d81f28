package x86

import "rift/internal/mir"

// resolveSimple maps an operand to a machine operand usable directly as
// an instruction source: an immediate, or an rbp-relative slot. Operands
// that need address arithmetic or a pointer chase report ok=false and
// must be materialized through rax instead.
func (fe *funcEmitter) resolveSimple(op mir.Operand) (Operand, bool) {
	switch op.Kind {
	case mir.OperandConst:
		switch op.Const.Kind {
		case mir.ConstInt:
			return ImmOp(op.Const.IntValue), true
		case mir.ConstBool:
			if op.Const.BoolValue {
				return ImmOp(1), true
			}
			return ImmOp(0), true
		case mir.ConstUnit:
			return ImmOp(0), true
		}
		return Operand{}, false
	case mir.OperandCopy, mir.OperandMove:
		p := op.Place
		if !p.IsLocal() {
			return Operand{}, false
		}
		loc, ok := fe.fr.lookup(p.Local)
		if !ok || loc.Kind != StoreInline {
			return Operand{}, false
		}
		if fe.fr.isFloat(loc.Offset) {
			return Operand{}, false
		}
		if _, isArr := fe.fr.array(p.Local); isArr {
			return Operand{}, false
		}
		if _, isRec := fe.fr.recordType(p.Local); isRec {
			return Operand{}, false
		}
		return MemOp(RBP, loc.Offset), true
	}
	return Operand{}, false
}

// loadValue materializes an operand's value: integers, booleans and
// addresses land in rax; scalar doubles land in xmm0 and the return
// value reports which happened. Composite locals yield their base
// address, which is what every consumer of a composite value wants.
func (fe *funcEmitter) loadValue(op mir.Operand) bool {
	switch op.Kind {
	case mir.OperandConst:
		return fe.loadConst(op.Const)
	case mir.OperandCopy, mir.OperandMove:
		return fe.loadPlaceValue(op.Place)
	}
	fe.degradeZero("operand of unknown kind")
	return false
}

func (fe *funcEmitter) loadConst(c mir.Const) bool {
	switch c.Kind {
	case mir.ConstInt:
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: ImmOp(c.IntValue)})
	case mir.ConstBool:
		v := int64(0)
		if c.BoolValue {
			v = 1
		}
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: ImmOp(v)})
	case mir.ConstUnit:
		fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
	case mir.ConstFloat:
		lbl := fe.e.floatLabel(c.FloatValue)
		fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM0), Src: LabelOp(lbl)})
		return true
	case mir.ConstString:
		lbl := fe.e.strLabel(c.StringValue)
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: LabelOp(lbl)})
	default:
		fe.degradeZero("constant of unknown kind")
	}
	return false
}

// loadPlaceValue reads a place. Bare scalar locals read straight from
// their slot; composites yield their base address; projected places go
// through the address path and a final load.
func (fe *funcEmitter) loadPlaceValue(p mir.Place) bool {
	if p.IsLocal() {
		loc, ok := fe.fr.lookup(p.Local)
		if !ok {
			if g, isGlobal := fe.e.globals[p.Local]; isGlobal {
				return fe.loadGlobal(g)
			}
			fe.degradeZero("unknown local %q", p.Local)
			return false
		}
		_, isRec := fe.fr.recordType(p.Local)
		_, isArr := fe.fr.array(p.Local)
		switch {
		case loc.Kind == StoreIndirect:
			// The slot already holds the data's address.
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		case isRec || isArr:
			fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		case fe.fr.isFloat(loc.Offset):
			fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM0), Src: MemOp(RBP, loc.Offset)})
			return true
		default:
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		}
		return false
	}
	if !fe.placeAddr(p) {
		return false
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
	return false
}

// loadGlobal reads a module global through its rip-relative symbol.
// Strings yield the label's address, floats land in xmm0 and integers
// in rax, mirroring loadPlaceValue for frame slots.
func (fe *funcEmitter) loadGlobal(g mir.Global) bool {
	switch {
	case g.IsString:
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: LabelOp(g.Name)})
	case g.Type.Kind == mir.TypeFloat:
		fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM0), Src: LabelOp(g.Name)})
		return true
	default:
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: LabelOp(g.Name)})
	}
	return false
}

// loadArg materializes an operand the way the calling convention wants
// it: scalars by value, composites and strings by address. Floats are
// moved from xmm0 into rax bit-for-bit through a scratch slot so they
// ride the integer argument registers.
func (fe *funcEmitter) loadArg(op mir.Operand) {
	if fe.loadValue(op) {
		tmp := fe.fr.allocSlot()
		fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, tmp), Src: RegOp(XMM0)})
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, tmp)})
	}
}
