package x86

import (
	"fortio.org/safecast"

	"rift/internal/diag"
	"rift/internal/mir"
)

// placeAddr computes the address a place names into rax. Field slots
// count downward from the record base; array elements count downward by
// element stride. Constant and runtime indices reach the same element
// address, the runtime form just computes the scaled displacement in a
// register. Returns false when the place cannot be resolved.
func (fe *funcEmitter) placeAddr(p mir.Place) bool {
	loc, ok := fe.fr.lookup(p.Local)
	switch {
	case ok && loc.Kind == StoreInline:
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
	case ok:
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
	default:
		// Frame names shadow module globals; only an unbound base
		// resolves against the global table.
		g, isGlobal := fe.e.globals[p.Local]
		if !isGlobal {
			fe.degradeZero("unknown local %q", p.Local)
			return false
		}
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: LabelOp(g.Name)})
	}

	curType, _ := fe.fr.recordType(p.Local)
	arr, hasArr := fe.fr.array(p.Local)

	for pi, proj := range p.Proj {
		last := pi == len(p.Proj)-1
		switch proj.Kind {
		case mir.PlaceProjDeref:
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
			curType = ""
			hasArr = false
		case mir.PlaceProjField:
			idx, found := fe.e.fieldIndex(curType, proj.Field, fe.pos)
			if !found {
				fe.fieldMiss(curType, proj.Field)
				return false
			}
			nextType := fe.e.fieldRecType(curType, idx)
			if !last && nextType != "" {
				// A record-typed field stores a pointer to the nested
				// record; chase it before the next projection.
				fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, -int64(idx)*wordSize)})
			} else {
				fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RAX, -int64(idx)*wordSize)})
			}
			curType = nextType
			hasArr = false
		case mir.PlaceProjIndex:
			stride := int64(wordSize)
			elemType := ""
			if hasArr {
				stride = int64(arr.ElemWords) * wordSize
				elemType = arr.ElemType
			}
			if !fe.indexDisp(proj.Index, stride) {
				return false
			}
			curType = elemType
			hasArr = false
		}
	}
	return true
}

// indexDisp folds a constant index straight into the address in rax and
// computes runtime indices with a scaled subtract. Both shapes land on
// base - stride*i.
func (fe *funcEmitter) indexDisp(index mir.Operand, stride int64) bool {
	if index.Kind == mir.OperandConst {
		if index.Const.Kind != mir.ConstInt {
			fe.errorf(diag.LowBadIndex, "index constant is not an integer")
			return false
		}
		k, err := safecast.Conv[int32](index.Const.IntValue)
		if err != nil || k < 0 {
			fe.errorf(diag.LowBadIndex, "index %d out of range", index.Const.IntValue)
			return false
		}
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RAX, -int64(k)*stride)})
		return true
	}
	fe.ins(Instr{Kind: InstrPush, Src: RegOp(RAX)})
	fe.loadValue(index)
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrIMul, Dst: RegOp(RCX), Src: ImmOp(stride)})
	fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrSub, Dst: RegOp(RAX), Src: RegOp(RCX)})
	return true
}

// bindIndirectLocal gives a local a pointer slot, reusing an existing
// indirect binding when the name was seen before.
func (fe *funcEmitter) bindIndirectLocal(name string) int64 {
	if loc, ok := fe.fr.lookup(name); ok && loc.Kind == StoreIndirect {
		return loc.Offset
	}
	off := fe.fr.allocSlot()
	fe.fr.bindIndirect(name, off)
	return off
}

func (fe *funcEmitter) fieldMiss(recType, field string) {
	if fe.e.opts.DegradeMissing {
		fe.warnf(diag.LowDegradedToZero, "unknown field %q on %q; degraded to zero", field, recType)
		fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
		return
	}
	fe.errorf(diag.LowUnknownField, "unknown field %q on record type %q", field, recType)
}

// lowerField reads one field. The base resolves through the location
// registry: inline records read at base-8i directly, indirect ones
// chase the pointer first.
func (fe *funcEmitter) lowerField(dst mir.Place, x *mir.FieldExpr) {
	place := mir.FieldPlace(x.Place, x.Name)
	if !fe.placeAddr(place) {
		fe.storeScalar(dst, false)
		return
	}
	// If the field itself holds a nested record pointer, the
	// destination becomes an indirect record binding.
	if nested := fe.nestedFieldType(x); nested != "" && dst.IsLocal() {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
		off := fe.bindIndirectLocal(dst.Local)
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(RAX)})
		fe.fr.setRecordType(dst.Local, nested)
		return
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
	fe.storeScalar(dst, false)
}

// nestedFieldType reports the record type a field holds, if any.
func (fe *funcEmitter) nestedFieldType(x *mir.FieldExpr) string {
	base := x.Place
	if !base.IsLocal() {
		return ""
	}
	recType, ok := fe.fr.recordType(base.Local)
	if !ok {
		return ""
	}
	idx, found := fe.e.fieldIndex(recType, x.Name, fe.pos)
	if !found {
		return ""
	}
	return fe.e.fieldRecType(recType, idx)
}

// lowerIndex reads one element. Scalar arrays produce the element's
// value; arrays of records produce the element's address, and the
// destination temporary is tagged so later field accesses treat it as
// a pointer to record data.
func (fe *funcEmitter) lowerIndex(dst mir.Place, x *mir.IndexExpr) {
	var elemType string
	if x.Place.IsLocal() {
		if arr, ok := fe.fr.array(x.Place.Local); ok {
			elemType = arr.ElemType
		}
	}
	place := mir.IndexPlace(x.Place, x.Index)
	if !fe.placeAddr(place) {
		fe.storeScalar(dst, false)
		return
	}
	if elemType != "" && dst.IsLocal() {
		off := fe.bindIndirectLocal(dst.Local)
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(RAX)})
		fe.fr.setRecordType(dst.Local, elemType)
		fe.fr.markElemAddr(dst.Local)
		return
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
	fe.storeScalar(dst, false)
}

func (fe *funcEmitter) lowerDeref(dst mir.Place, x *mir.DerefExpr) {
	fe.loadPlaceValue(x.Place)
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
	fe.storeScalar(dst, false)
}

// lowerRef takes a place's address. For indirect locals the stored
// pointer already is the address.
func (fe *funcEmitter) lowerRef(dst mir.Place, x *mir.RefExpr) {
	if x.Place.IsLocal() {
		loc, ok := fe.fr.lookup(x.Place.Local)
		if !ok {
			fe.degradeZero("unknown local %q", x.Place.Local)
			fe.storeScalar(dst, false)
			return
		}
		if loc.Kind == StoreIndirect {
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		} else {
			fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
		}
		fe.storeScalar(dst, false)
		return
	}
	if fe.placeAddr(x.Place) {
		fe.storeScalar(dst, false)
	}
}
