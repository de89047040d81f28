package x86

import (
	"rift/internal/diag"
	"rift/internal/mir"
)

// operandIsFloat reports whether an operand carries a scalar double:
// either a float literal or a copy of a slot tagged float.
func (fe *funcEmitter) operandIsFloat(op mir.Operand) bool {
	switch op.Kind {
	case mir.OperandConst:
		return op.Const.Kind == mir.ConstFloat
	case mir.OperandCopy, mir.OperandMove:
		if !op.Place.IsLocal() {
			return false
		}
		loc, ok := fe.fr.lookup(op.Place.Local)
		return ok && loc.Kind == StoreInline && fe.fr.isFloat(loc.Offset)
	}
	return false
}

func (fe *funcEmitter) lowerUnary(dst mir.Place, x *mir.UnaryExpr) {
	switch x.Op {
	case mir.UnNeg:
		if fe.operandIsFloat(x.Operand) {
			fe.loadValue(x.Operand)
			fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM1), Src: RegOp(XMM0)})
			fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
			fe.ins(Instr{Kind: InstrCvtsi2sd, Dst: RegOp(XMM0), Src: RegOp(RAX)})
			fe.ins(Instr{Kind: InstrSubsd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
			fe.storeScalar(dst, true)
			return
		}
		fe.loadValue(x.Operand)
		fe.ins(Instr{Kind: InstrNeg, Dst: RegOp(RAX)})
		fe.storeScalar(dst, false)
	case mir.UnNot:
		fe.loadValue(x.Operand)
		fe.ins(Instr{Kind: InstrTest, Dst: RegOp(RAX), Src: RegOp(RAX)})
		fe.ins(Instr{Kind: InstrSet, Cc: CondE, Dst: RegOp(RAX)})
		fe.ins(Instr{Kind: InstrMovzx, Dst: RegOp(RAX), Src: RegOp(RAX)})
		fe.storeScalar(dst, false)
	}
}

func (fe *funcEmitter) lowerBinary(dst mir.Place, x *mir.BinaryExpr) {
	if fe.operandIsFloat(x.Left) || fe.operandIsFloat(x.Right) {
		fe.lowerFloatBinary(dst, x)
		return
	}
	switch x.Op {
	case mir.BinAdd, mir.BinSub, mir.BinMul, mir.BinBitAnd, mir.BinBitOr, mir.BinBitXor:
		fe.intArith(x)
		fe.storeScalar(dst, false)
	case mir.BinDiv, mir.BinMod:
		fe.intDivide(x)
		fe.storeScalar(dst, false)
	case mir.BinShl, mir.BinShr:
		fe.intShift(x)
		fe.storeScalar(dst, false)
	case mir.BinEq, mir.BinNe, mir.BinLt, mir.BinLe, mir.BinGt, mir.BinGe:
		fe.intCompare(x)
		fe.storeScalar(dst, false)
	case mir.BinAnd, mir.BinOr:
		fe.logicalBinary(x)
		fe.storeScalar(dst, false)
	}
}

// rightInto evaluates the right operand into rcx while the left value
// sits in rax, spilling across the evaluation when needed.
func (fe *funcEmitter) rightInto(right mir.Operand) {
	if src, ok := fe.resolveSimple(right); ok {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: src})
		return
	}
	fe.ins(Instr{Kind: InstrPush, Src: RegOp(RAX)})
	fe.loadValue(right)
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RAX)})
}

var intArithKind = map[mir.BinOp]InstrKind{
	mir.BinAdd:    InstrAdd,
	mir.BinSub:    InstrSub,
	mir.BinMul:    InstrIMul,
	mir.BinBitAnd: InstrAnd,
	mir.BinBitOr:  InstrOr,
	mir.BinBitXor: InstrXor,
}

func (fe *funcEmitter) intArith(x *mir.BinaryExpr) {
	fe.loadValue(x.Left)
	fe.rightInto(x.Right)
	fe.ins(Instr{Kind: intArithKind[x.Op], Dst: RegOp(RAX), Src: RegOp(RCX)})
}

func (fe *funcEmitter) intDivide(x *mir.BinaryExpr) {
	fe.loadValue(x.Left)
	fe.rightInto(x.Right)
	fe.ins(Instr{Kind: InstrCqo})
	fe.ins(Instr{Kind: InstrIDiv, Src: RegOp(RCX)})
	if x.Op == mir.BinMod {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: RegOp(RDX)})
	}
}

func (fe *funcEmitter) intShift(x *mir.BinaryExpr) {
	fe.loadValue(x.Left)
	fe.rightInto(x.Right)
	kind := InstrShl
	if x.Op == mir.BinShr {
		kind = InstrSar
	}
	fe.ins(Instr{Kind: kind, Dst: RegOp(RAX)})
}

var intCompareCond = map[mir.BinOp]Cond{
	mir.BinEq: CondE,
	mir.BinNe: CondNE,
	mir.BinLt: CondL,
	mir.BinLe: CondLE,
	mir.BinGt: CondG,
	mir.BinGe: CondGE,
}

func (fe *funcEmitter) intCompare(x *mir.BinaryExpr) {
	fe.loadValue(x.Left)
	fe.rightInto(x.Right)
	fe.ins(Instr{Kind: InstrCmp, Dst: RegOp(RAX), Src: RegOp(RCX)})
	fe.ins(Instr{Kind: InstrSet, Cc: intCompareCond[x.Op], Dst: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrMovzx, Dst: RegOp(RAX), Src: RegOp(RAX)})
}

// logicalBinary lowers logical and/or. Both sides are always evaluated
// and normalized to 0/1 before combining; there is no short-circuit.
func (fe *funcEmitter) logicalBinary(x *mir.BinaryExpr) {
	fe.loadValue(x.Left)
	fe.normalizeBool()
	fe.ins(Instr{Kind: InstrPush, Src: RegOp(RAX)})
	fe.loadValue(x.Right)
	fe.normalizeBool()
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RAX)})
	kind := InstrAnd
	if x.Op == mir.BinOr {
		kind = InstrOr
	}
	fe.ins(Instr{Kind: kind, Dst: RegOp(RAX), Src: RegOp(RCX)})
}

func (fe *funcEmitter) normalizeBool() {
	fe.ins(Instr{Kind: InstrTest, Dst: RegOp(RAX), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrSet, Cc: CondNE, Dst: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrMovzx, Dst: RegOp(RAX), Src: RegOp(RAX)})
}

var floatCompareCond = map[mir.BinOp]Cond{
	mir.BinEq: CondE,
	mir.BinNe: CondNE,
	mir.BinLt: CondB,
	mir.BinLe: CondBE,
	mir.BinGt: CondA,
	mir.BinGe: CondAE,
}

// lowerFloatBinary evaluates both sides as doubles, promoting integer
// operands with cvtsi2sd. Arithmetic stays in xmm0; comparisons come
// back as 0/1 integers via the unsigned condition codes ucomisd sets.
func (fe *funcEmitter) lowerFloatBinary(dst mir.Place, x *mir.BinaryExpr) {
	tmp := fe.fr.allocSlot()
	fe.loadFloat(x.Left)
	fe.ins(Instr{Kind: InstrMovsd, Dst: MemOp(RBP, tmp), Src: RegOp(XMM0)})
	fe.loadFloat(x.Right)
	fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM1), Src: RegOp(XMM0)})
	fe.ins(Instr{Kind: InstrMovsd, Dst: RegOp(XMM0), Src: MemOp(RBP, tmp)})

	switch x.Op {
	case mir.BinAdd:
		fe.ins(Instr{Kind: InstrAddsd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
	case mir.BinSub:
		fe.ins(Instr{Kind: InstrSubsd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
	case mir.BinMul:
		fe.ins(Instr{Kind: InstrMulsd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
	case mir.BinDiv:
		fe.ins(Instr{Kind: InstrDivsd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
	case mir.BinEq, mir.BinNe, mir.BinLt, mir.BinLe, mir.BinGt, mir.BinGe:
		fe.ins(Instr{Kind: InstrUcomisd, Dst: RegOp(XMM0), Src: RegOp(XMM1)})
		fe.ins(Instr{Kind: InstrSet, Cc: floatCompareCond[x.Op], Dst: RegOp(RAX)})
		fe.ins(Instr{Kind: InstrMovzx, Dst: RegOp(RAX), Src: RegOp(RAX)})
		fe.storeScalar(dst, false)
		return
	default:
		fe.errorf(diag.LowInfo, "operator %v has no double form", x.Op)
		fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
		fe.storeScalar(dst, false)
		return
	}
	fe.storeScalar(dst, true)
}

// loadFloat evaluates an operand and guarantees the result in xmm0.
func (fe *funcEmitter) loadFloat(op mir.Operand) {
	if !fe.loadValue(op) {
		fe.ins(Instr{Kind: InstrCvtsi2sd, Dst: RegOp(XMM0), Src: RegOp(RAX)})
	}
}
