package x86

import (
	"fmt"

	"rift/internal/diag"
	"rift/internal/mir"
)

// funcEmitter lowers one function. It owns the frame registry and the
// position cursor used for diagnostics; all instructions land in the
// shared Emitter text stream.
type funcEmitter struct {
	e  *Emitter
	f  *mir.Func
	fr *frame

	info funcInfo
	// retSlot holds the caller-provided return buffer address when the
	// function returns by reference.
	retSlot    int64
	hasRetSlot bool

	// placeholder indexes the prologue's sub rsp instruction in the
	// text stream. Nothing may be inserted at or before it afterwards;
	// the fixup re-checks that before patching the frame size in.
	placeholder int

	pos diag.Pos
}

func newFuncEmitter(e *Emitter, f *mir.Func) *funcEmitter {
	return &funcEmitter{
		e:    e,
		f:    f,
		fr:   newFrame(),
		info: e.funcs[f.Name],
		pos:  diag.FuncPos(f.Name),
	}
}

func (fe *funcEmitter) ins(in Instr) { fe.e.ins(in) }

func (fe *funcEmitter) errorf(code diag.Code, format string, args ...any) {
	fe.e.errorf(code, fe.pos, format, args...)
}

func (fe *funcEmitter) warnf(code diag.Code, format string, args ...any) {
	fe.e.rep.Report(code, diag.SevWarning, fe.pos, fmt.Sprintf(format, args...))
}

func (fe *funcEmitter) blockLabel(id mir.BlockID) string {
	return fmt.Sprintf(".L%s_bb%d", fe.f.Name, id)
}

func (fe *funcEmitter) emit() {
	fe.ins(Instr{Kind: InstrLabel, Label: fe.f.Name})
	fe.ins(Instr{Kind: InstrPush, Src: RegOp(RBP)})
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RBP), Src: RegOp(RSP)})
	fe.placeholder = len(fe.e.text)
	fe.ins(Instr{Kind: InstrSub, Dst: RegOp(RSP), Src: ImmOp(0)})

	fe.landParams()

	for bi := range fe.f.Blocks {
		b := &fe.f.Blocks[bi]
		fe.ins(Instr{Kind: InstrLabel, Label: fe.blockLabel(b.ID)})
		for si := range b.Stmts {
			fe.pos = diag.StmtPos(fe.f.Name, bi, si)
			fe.lowerStatement(&b.Stmts[si])
		}
		fe.pos = diag.StmtPos(fe.f.Name, bi, -1)
		fe.lowerTerminator(&b.Term)
	}

	fe.fixupFrame()
}

// landParams stores incoming arguments into frame slots. A by-reference
// return shifts everything by one: the buffer address arrives in the
// first register. Arguments past the register file were pushed by the
// caller and sit above the saved rbp and return address.
func (fe *funcEmitter) landParams() {
	regIdx := 0
	stackIdx := 0
	if fe.info.Conv == RetByReference {
		fe.retSlot = fe.fr.allocSlot()
		fe.hasRetSlot = true
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, fe.retSlot), Src: RegOp(argRegs[0])})
		regIdx = 1
	}
	for _, p := range fe.f.Params {
		off := fe.fr.allocSlot()
		switch {
		case p.Type.IsRecord():
			// Records travel by address.
			fe.fr.bindIndirect(p.Name, off)
			fe.fr.setRecordType(p.Name, p.Type.Name)
		case p.Type.Kind == mir.TypeArray:
			fe.fr.bindIndirect(p.Name, off)
			info := arrayInfo{Len: p.Type.Len, ElemWords: 1}
			if p.Type.IsRecordArray() {
				info.ElemType = p.Type.Elem.Name
				info.ElemWords = fe.e.recordArityOf(info.ElemType)
			}
			fe.fr.setArray(p.Name, info)
		case p.Type.Kind == mir.TypeFloat:
			fe.fr.bindInline(p.Name, off)
			fe.fr.markFloat(off)
		default:
			fe.fr.bindInline(p.Name, off)
		}
		if regIdx < len(argRegs) {
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(argRegs[regIdx])})
			regIdx++
		} else {
			src := MemOp(RBP, 16+int64(stackIdx)*wordSize)
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: src})
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, off), Src: RegOp(RAX)})
			stackIdx++
		}
	}
}

func (fe *funcEmitter) lowerTerminator(t *mir.Terminator) {
	switch t.Kind {
	case mir.TermGoto:
		fe.ins(Instr{Kind: InstrJmp, Label: fe.blockLabel(t.Goto.Target)})
	case mir.TermIf:
		fe.lowerIf(&t.If)
	case mir.TermReturn:
		fe.lowerReturn(&t.Return)
	case mir.TermUnreachable:
		fe.ins(Instr{Kind: InstrNop})
	default:
		fe.errorf(diag.LowInfo, "block without terminator")
	}
}

// lowerIf folds constant conditions into a plain jump; runtime
// conditions test the materialized value against zero.
func (fe *funcEmitter) lowerIf(t *mir.IfTerm) {
	if t.Cond.Kind == mir.OperandConst && t.Cond.Const.Kind == mir.ConstBool {
		target := t.Else
		if t.Cond.Const.BoolValue {
			target = t.Then
		}
		fe.ins(Instr{Kind: InstrJmp, Label: fe.blockLabel(target)})
		return
	}
	fe.loadValue(t.Cond)
	fe.ins(Instr{Kind: InstrCmp, Dst: RegOp(RAX), Src: ImmOp(0)})
	fe.ins(Instr{Kind: InstrJcc, Cc: CondE, Label: fe.blockLabel(t.Else)})
	fe.ins(Instr{Kind: InstrJmp, Label: fe.blockLabel(t.Then)})
}

func (fe *funcEmitter) lowerReturn(t *mir.ReturnTerm) {
	switch {
	case !t.HasValue:
		fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
	case fe.info.Conv == RetByReference:
		fe.returnComposite(t.Value)
	case fe.info.Result.IsRecord():
		fe.returnRecordWord(t.Value)
	default:
		fe.loadValue(t.Value)
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RSP), Src: RegOp(RBP)})
	fe.ins(Instr{Kind: InstrPop, Dst: RegOp(RBP)})
	fe.ins(Instr{Kind: InstrRet})
}

// returnRecordWord loads a single-field record's one word into rax.
// The record's frame address dies with the epilogue, so the field
// value itself travels back and the caller rebuilds the record.
func (fe *funcEmitter) returnRecordWord(val mir.Operand) {
	if val.Kind == mir.OperandConst {
		fe.loadConst(val.Const)
		return
	}
	p := val.Place
	if p.IsLocal() {
		if loc, ok := fe.fr.lookup(p.Local); ok {
			_, isRec := fe.fr.recordType(p.Local)
			switch {
			case loc.Kind == StoreIndirect:
				fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
				fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RAX, 0)})
				return
			case isRec:
				fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset)})
				return
			}
		}
	}
	fe.loadValue(val)
}

// returnComposite copies the returned composite into the caller's
// buffer word by word and leaves the buffer address in rax.
func (fe *funcEmitter) returnComposite(val mir.Operand) {
	if !fe.hasRetSlot {
		fe.errorf(diag.LowInfo, "composite return without a return buffer")
		return
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: MemOp(RBP, fe.retSlot)})
	if val.Kind == mir.OperandConst {
		for i := 0; i < fe.info.Words; i++ {
			fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RCX, -int64(i)*wordSize), Src: ImmOp(0)})
		}
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: RegOp(RCX)})
		return
	}
	place := val.Place
	if !place.IsLocal() {
		fe.errorf(diag.LowInfo, "composite return from projected place")
		return
	}
	loc, ok := fe.fr.lookup(place.Local)
	if !ok {
		fe.degradeZero("unknown local %q in return", place.Local)
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: RegOp(RCX)})
		return
	}
	for i := 0; i < fe.info.Words; i++ {
		d := -int64(i) * wordSize
		if loc.Kind == StoreInline {
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset+d)})
		} else {
			if i == 0 {
				fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RDX), Src: MemOp(RBP, loc.Offset)})
			}
			fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RDX, d)})
		}
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RCX, d), Src: RegOp(RAX)})
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: RegOp(RCX)})
}

// fixupFrame patches the prologue's sub rsp with the final frame size.
// The placeholder must still be where the prologue put it; anything
// else means an emitter bug inserted code before it.
func (fe *funcEmitter) fixupFrame() {
	in := &fe.e.text[fe.placeholder]
	if in.Kind != InstrSub || in.Dst.Reg != RSP || in.Src.Kind != OpImm || in.Src.Imm != 0 {
		panic(fmt.Sprintf("x86: frame placeholder for %s was displaced", fe.f.Name))
	}
	in.Src = ImmOp(fe.fr.size())
}

// degradeZero lowers an unresolvable read to a zero placeholder when
// the compat flag allows it, and hard-fails otherwise.
func (fe *funcEmitter) degradeZero(format string, args ...any) {
	if fe.e.opts.DegradeMissing {
		fe.warnf(diag.LowDegradedToZero, format+"; degraded to zero", args...)
		fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
		return
	}
	fe.errorf(diag.LowUnknownLocal, format, args...)
	fe.ins(Instr{Kind: InstrXor, Dst: RegOp(RAX), Src: RegOp(RAX)})
}
