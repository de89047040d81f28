package x86

import "rift/internal/mir"

func (fe *funcEmitter) lowerStatement(st *mir.Statement) {
	src := &st.Src
	switch src.Kind {
	case mir.RValueUse:
		fe.lowerUse(st.Dst, src.Use)
	case mir.RValueUnary:
		fe.lowerUnary(st.Dst, &src.Unary)
	case mir.RValueBinary:
		fe.lowerBinary(st.Dst, &src.Binary)
	case mir.RValueCall:
		fe.lowerCall(st.Dst, &src.Call)
	case mir.RValueAggregate:
		fe.lowerAggregate(st.Dst, &src.Aggregate)
	case mir.RValueArray:
		fe.lowerArray(st.Dst, &src.Array)
	case mir.RValueClosure:
		fe.lowerClosure(st.Dst, &src.Closure)
	case mir.RValueField:
		fe.lowerField(st.Dst, &src.Field)
	case mir.RValueIndex:
		fe.lowerIndex(st.Dst, &src.Index)
	case mir.RValueDeref:
		fe.lowerDeref(st.Dst, &src.Deref)
	case mir.RValueRef:
		fe.lowerRef(st.Dst, &src.Ref)
	}
}

// lowerUse assigns one operand. Whole composites copy word by word into
// fresh storage; everything else goes through the scalar path.
func (fe *funcEmitter) lowerUse(dst mir.Place, op mir.Operand) {
	if op.Kind != mir.OperandConst && op.Place.IsLocal() && dst.IsLocal() {
		local := op.Place.Local
		if fe.fr.isElemAddr(local) {
			fe.aliasElemAddr(dst.Local, local)
			return
		}
		if arr, ok := fe.fr.array(local); ok {
			fe.copyArray(dst.Local, local, arr)
			return
		}
		if recType, ok := fe.fr.recordType(local); ok {
			fe.copyRecord(dst.Local, local, recType)
			return
		}
	}
	isFloat := fe.loadValue(op)
	fe.storeScalar(dst, isFloat)
}

// storeScalar commits the value in rax (xmm0 for floats) to a place.
// Bare locals write their slot and update the float tag; projected
// places go through the address path.
func (fe *funcEmitter) storeScalar(dst mir.Place, isFloat bool) {
	if dst.IsLocal() {
		if _, bound := fe.fr.lookup(dst.Local); !bound {
			if g, isGlobal := fe.e.globals[dst.Local]; isGlobal && g.Kind == mir.GlobalStatic {
				if isFloat {
					fe.ins(Instr{Kind: InstrMovsd, Dst: LabelOp(g.Name), Src: RegOp(XMM0)})
				} else {
					fe.ins(Instr{Kind: InstrMov, Dst: LabelOp(g.Name), Src: RegOp(RAX)})
				}
				return
			}
		}
		off := fe.fr.getOrAlloc(dst.Local)
		if isFloat {
			fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, off), Src: RegOp(XMM0)})
			fe.fr.markFloat(off)
		} else {
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(RAX)})
			fe.fr.clearFloat(off)
		}
		return
	}
	if isFloat {
		tmp := fe.fr.allocSlot()
		fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, tmp), Src: RegOp(XMM0)})
		if !fe.placeAddr(dst) {
			return
		}
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: MemOp(RBP, tmp)})
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RAX, 0), Src: RegOp(RCX)})
		return
	}
	fe.ins(Instr{Kind: InstrPush, Src: RegOp(RAX)})
	if !fe.placeAddr(dst) {
		fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RAX)})
		return
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RCX, 0), Src: RegOp(RAX)})
}

// aliasElemAddr copies an element handle: the new name shares the
// element's address instead of snapshotting the record, so writes
// through either name land in the array.
func (fe *funcEmitter) aliasElemAddr(dst, src string) {
	loc, ok := fe.fr.lookup(src)
	if !ok || loc.Kind != StoreIndirect {
		fe.degradeZero("unknown local %q", src)
		return
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
	off := fe.bindIndirectLocal(dst)
	fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(RAX)})
	if recType, ok := fe.fr.recordType(src); ok {
		fe.fr.setRecordType(dst, recType)
	}
	fe.fr.markElemAddr(dst)
}

// copyRecord copies a whole record into fresh inline storage for dst.
func (fe *funcEmitter) copyRecord(dst, src, recType string) {
	words := fe.e.recordArityOf(recType)
	base := fe.fr.allocBlock(words)
	fe.copyWords(base, src, words)
	fe.fr.bindInline(dst, base)
	fe.fr.setRecordType(dst, recType)
}

// copyArray copies a whole fixed array into fresh inline storage.
func (fe *funcEmitter) copyArray(dst, src string, arr arrayInfo) {
	words := arr.Len * arr.ElemWords
	if words < 1 {
		words = 1
	}
	base := fe.fr.allocBlock(words)
	fe.copyWords(base, src, words)
	fe.fr.bindInline(dst, base)
	fe.fr.setArray(dst, arrayInfo{Base: base, Len: arr.Len, ElemWords: arr.ElemWords, ElemType: arr.ElemType})
}

// copyWords moves words consecutive slots from the local src into the
// block rooted at base, chasing src's pointer when it lives indirect.
func (fe *funcEmitter) copyWords(base int64, src string, words int) {
	loc, ok := fe.fr.lookup(src)
	if !ok {
		fe.degradeZero("unknown local %q", src)
		for i := 0; i < words; i++ {
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base-int64(i)*wordSize), Src: ImmOp(0)})
		}
		return
	}
	if loc.Kind == StoreIndirect {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RDX), Src: MemOp(RBP, loc.Offset)})
	}
	for i := 0; i < words; i++ {
		d := int64(i) * wordSize
		if loc.Kind == StoreIndirect {
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RDX, -d)})
		} else {
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset-d)})
		}
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base-d), Src: RegOp(RAX)})
	}
}
