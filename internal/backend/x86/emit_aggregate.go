package x86

import (
	"rift/internal/diag"
	"rift/internal/mir"
)

// lowerAggregate builds a record in a fresh contiguous block. Field i
// lands at base - 8*i in declared order. Record-valued fields store the
// nested record's address and register the nesting for later chained
// field lookups.
func (fe *funcEmitter) lowerAggregate(dst mir.Place, agg *mir.AggregateExpr) {
	if !dst.IsLocal() {
		fe.errorf(diag.LowInfo, "record construction into a projected place")
		return
	}
	words := fe.e.recordArityOf(agg.TypeName)
	if len(agg.Fields) > words {
		words = len(agg.Fields)
	}
	base := fe.fr.allocBlock(words)
	fe.fr.bindInline(dst.Local, base)
	fe.fr.setRecordType(dst.Local, agg.TypeName)

	for j, field := range agg.Fields {
		slot := base - int64(j)*wordSize
		if nested, ok := fe.recordOperand(field); ok {
			fe.loadCompositeAddr(field.Place.Local)
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, slot), Src: RegOp(RAX)})
			fe.e.setFieldRecType(agg.TypeName, j, nested)
			continue
		}
		if fe.loadValue(field) {
			fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, slot), Src: RegOp(XMM0)})
			fe.fr.markFloat(slot)
			continue
		}
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, slot), Src: RegOp(RAX)})
	}
}

// recordOperand reports whether an operand copies a whole record local,
// and which record type it names.
func (fe *funcEmitter) recordOperand(op mir.Operand) (string, bool) {
	if op.Kind == mir.OperandConst || !op.Place.IsLocal() {
		return "", false
	}
	if _, isArr := fe.fr.array(op.Place.Local); isArr {
		return "", false
	}
	recType, ok := fe.fr.recordType(op.Place.Local)
	return recType, ok
}

// loadCompositeAddr puts the address of a composite local's data in rax.
func (fe *funcEmitter) loadCompositeAddr(local string) {
	loc, ok := fe.fr.lookup(local)
	if !ok {
		fe.degradeZero("unknown local %q", local)
		return
	}
	if loc.Kind == StoreIndirect {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		return
	}
	fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
}

// lowerArray builds a fixed array. Scalar elements occupy one word
// each; record elements are copied whole, so the stride grows to the
// record's arity and indexing later scales by it.
func (fe *funcEmitter) lowerArray(dst mir.Place, arr *mir.ArrayExpr) {
	if !dst.IsLocal() {
		fe.errorf(diag.LowInfo, "array construction into a projected place")
		return
	}
	elemWords := 1
	elemType := ""
	if len(arr.Elems) > 0 {
		if t, ok := fe.recordOperand(arr.Elems[0]); ok {
			elemType = t
			elemWords = fe.e.recordArityOf(t)
		}
	}
	words := len(arr.Elems) * elemWords
	if words < 1 {
		words = 1
	}
	base := fe.fr.allocBlock(words)
	fe.fr.bindInline(dst.Local, base)
	fe.fr.setArray(dst.Local, arrayInfo{Base: base, Len: len(arr.Elems), ElemWords: elemWords, ElemType: elemType})

	stride := int64(elemWords) * wordSize
	for i, elem := range arr.Elems {
		elemBase := base - int64(i)*stride
		if elemType != "" {
			if _, ok := fe.recordOperand(elem); ok {
				fe.copyWords(elemBase, elem.Place.Local, elemWords)
				continue
			}
			fe.errorf(diag.LowInfo, "array of records with a non-record element")
			continue
		}
		if fe.loadValue(elem) {
			fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, elemBase), Src: RegOp(XMM0)})
			fe.fr.markFloat(elemBase)
			continue
		}
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, elemBase), Src: RegOp(RAX)})
	}
}

/// lowerClosure builds a closure block: the code address in the first
// word, captured values below it. The block travels by address like any
// composite; a call through the local dispatches on the first word.
func (fe *funcEmitter) lowerClosure(dst mir.Place, clo *mir.ClosureExpr) {
	if !dst.IsLocal() {
		fe.errorf(diag.LowInfo, "closure construction into a projected place")
		return
	}
	words := 1 + len(clo.Captures)
	base := fe.fr.allocBlock(words)
	fe.fr.bindInline(dst.Local, base)
	typeName := "$closure$" + clo.Code
	fe.fr.setRecordType(dst.Local, typeName)
	if words > fe.e.recordArity[typeName] {
		fe.e.recordArity[typeName] = words
	}

	fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: LabelOp(clo.Code)})
	fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base), Src: RegOp(RAX)})
	for i, c := range clo.Captures {
		slot := base - int64(i+1)*wordSize
		fe.loadArg(c)
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, slot), Src: RegOp(RAX)})
	}
}
