package x86

import (
	"fmt"
	"strconv"
)

// Cond enumerates condition codes used by set<cc> and j<cc>.
type Cond uint8

const (
	CondNone Cond = iota
	// CondE tests equality.
	CondE
	// CondNE tests inequality.
	CondNE
	// CondL tests signed less-than.
	CondL
	// CondLE tests signed less-or-equal.
	CondLE
	// CondG tests signed greater-than.
	CondG
	// CondGE tests signed greater-or-equal.
	CondGE
	// CondB tests unsigned below; used after ucomisd.
	CondB
	// CondBE tests unsigned below-or-equal; used after ucomisd.
	CondBE
	// CondA tests unsigned above; used after ucomisd.
	CondA
	// CondAE tests unsigned above-or-equal; used after ucomisd.
	CondAE
)

var condNames = [...]string{
	CondNone: "?",
	CondE:    "e", CondNE: "ne",
	CondL: "l", CondLE: "le", CondG: "g", CondGE: "ge",
	CondB: "b", CondBE: "be", CondA: "a", CondAE: "ae",
}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "?"
}

// OperandKind distinguishes machine operand kinds.
type OperandKind uint8

const (
	// OpNone marks an absent operand.
	OpNone OperandKind = iota
	// OpReg is a register operand.
	OpReg
	// OpImm is an immediate operand.
	OpImm
	// OpMem is a memory operand with base register and displacement.
	OpMem
	// OpSym is a bare symbol reference (call/jump targets).
	OpSym
)

// Mem is a base+displacement memory reference. When Sym is non-empty
// the reference is label-relative (base is normally RIP).
type Mem struct {
	Base   Reg
	Offset int64
	Sym    string
}

// Operand is one machine operand.
type Operand struct {
	Kind OperandKind
	Reg  Reg
	Imm  int64
	Mem  Mem
	Sym  string
}

// RegOp returns a register operand.
func RegOp(r Reg) Operand { return Operand{Kind: OpReg, Reg: r} }

// ImmOp returns an immediate operand.
func ImmOp(v int64) Operand { return Operand{Kind: OpImm, Imm: v} }

// MemOp returns an rbp-relative (or other base-relative) memory operand.
func MemOp(base Reg, offset int64) Operand {
	return Operand{Kind: OpMem, Mem: Mem{Base: base, Offset: offset}}
}

// LabelOp returns a rip-relative reference to a data label.
func LabelOp(sym string) Operand {
	return Operand{Kind: OpMem, Mem: Mem{Base: RIP, Sym: sym}}
}

// SymOp returns a bare symbol operand.
func SymOp(sym string) Operand { return Operand{Kind: OpSym, Sym: sym} }

func (o Operand) String() string {
	switch o.Kind {
	case OpReg:
		return o.Reg.String()
	case OpImm:
		return strconv.FormatInt(o.Imm, 10)
	case OpMem:
		m := o.Mem
		if m.Sym != "" {
			return fmt.Sprintf("qword ptr [%s + %s]", m.Base.String(), m.Sym)
		}
		if m.Offset == 0 {
			return fmt.Sprintf("qword ptr [%s]", m.Base.String())
		}
		if m.Offset < 0 {
			return fmt.Sprintf("qword ptr [%s - %d]", m.Base.String(), -m.Offset)
		}
		return fmt.Sprintf("qword ptr [%s + %d]", m.Base.String(), m.Offset)
	case OpSym:
		return o.Sym
	}
	return "?"
}

// addr renders a memory operand without the size prefix, for lea.
func (o Operand) addr() string {
	if o.Kind != OpMem {
		return o.String()
	}
	m := o.Mem
	if m.Sym != "" {
		return fmt.Sprintf("[%s + %s]", m.Base.String(), m.Sym)
	}
	if m.Offset == 0 {
		return fmt.Sprintf("[%s]", m.Base.String())
	}
	if m.Offset < 0 {
		return fmt.Sprintf("[%s - %d]", m.Base.String(), -m.Offset)
	}
	return fmt.Sprintf("[%s + %d]", m.Base.String(), m.Offset)
}

// InstrKind enumerates the closed machine instruction set the lowering
// emits. The model is purely data; String renders GNU-as Intel syntax.
type InstrKind uint8

const (
	// InstrNop is the inert placeholder instruction.
	InstrNop InstrKind = iota
	InstrMov
	InstrLea
	InstrAdd
	InstrSub
	InstrIMul
	// InstrCqo sign-extends rax into rdx:rax before idiv.
	InstrCqo
	// InstrIDiv divides rdx:rax by Src; quotient rax, remainder rdx.
	InstrIDiv
	InstrNeg
	InstrAnd
	InstrOr
	InstrXor
	// InstrShl shifts Dst left by cl.
	InstrShl
	// InstrSar shifts Dst right arithmetically by cl.
	InstrSar
	InstrCmp
	InstrTest
	// InstrSet materializes a condition into Dst's byte alias.
	InstrSet
	// InstrMovzx zero-extends Src's byte alias into Dst.
	InstrMovzx
	InstrPush
	InstrPop
	InstrCall
	// InstrCallReg calls through a register (closure code pointers).
	InstrCallReg
	InstrRet
	InstrJmp
	// InstrJcc jumps when Cc holds.
	InstrJcc
	InstrLabel
	// SSE2 scalar double path.
	InstrMovsd
	InstrAddsd
	InstrSubsd
	InstrMulsd
	InstrDivsd
	// InstrCvtsi2sd converts an integer operand to scalar double.
	InstrCvtsi2sd
	// InstrUcomisd compares scalar doubles, setting CF/ZF.
	InstrUcomisd
)

// Instr is one emitted machine instruction.
type Instr struct {
	Kind  InstrKind
	Dst   Operand
	Src   Operand
	Cc    Cond
	Label string
}

func (in Instr) String() string {
	switch in.Kind {
	case InstrNop:
		return "    nop"
	case InstrMov:
		return "    mov " + in.Dst.String() + ", " + in.Src.String()
	case InstrLea:
		return "    lea " + in.Dst.String() + ", " + in.Src.addr()
	case InstrAdd:
		return "    add " + in.Dst.String() + ", " + in.Src.String()
	case InstrSub:
		return "    sub " + in.Dst.String() + ", " + in.Src.String()
	case InstrIMul:
		return "    imul " + in.Dst.String() + ", " + in.Src.String()
	case InstrCqo:
		return "    cqo"
	case InstrIDiv:
		return "    idiv " + in.Src.String()
	case InstrNeg:
		return "    neg " + in.Dst.String()
	case InstrAnd:
		return "    and " + in.Dst.String() + ", " + in.Src.String()
	case InstrOr:
		return "    or " + in.Dst.String() + ", " + in.Src.String()
	case InstrXor:
		return "    xor " + in.Dst.String() + ", " + in.Src.String()
	case InstrShl:
		return "    shl " + in.Dst.String() + ", cl"
	case InstrSar:
		return "    sar " + in.Dst.String() + ", cl"
	case InstrCmp:
		return "    cmp " + in.Dst.String() + ", " + in.Src.String()
	case InstrTest:
		return "    test " + in.Dst.String() + ", " + in.Src.String()
	case InstrSet:
		return "    set" + in.Cc.String() + " " + in.Dst.Reg.byteName()
	case InstrMovzx:
		return "    movzx " + in.Dst.String() + ", " + in.Src.Reg.byteName()
	case InstrPush:
		return "    push " + in.Src.String()
	case InstrPop:
		return "    pop " + in.Dst.String()
	case InstrCall:
		return "    call " + in.Src.Sym
	case InstrCallReg:
		return "    call " + in.Src.String()
	case InstrRet:
		return "    ret"
	case InstrJmp:
		return "    jmp " + in.Label
	case InstrJcc:
		return "    j" + in.Cc.String() + " " + in.Label
	case InstrLabel:
		return in.Label + ":"
	case InstrMovsd:
		return "    movsd " + in.Dst.String() + ", " + in.Src.String()
	case InstrAddsd:
		return "    addsd " + in.Dst.String() + ", " + in.Src.String()
	case InstrSubsd:
		return "    subsd " + in.Dst.String() + ", " + in.Src.String()
	case InstrMulsd:
		return "    mulsd " + in.Dst.String() + ", " + in.Src.String()
	case InstrDivsd:
		return "    divsd " + in.Dst.String() + ", " + in.Src.String()
	case InstrCvtsi2sd:
		return "    cvtsi2sd " + in.Dst.String() + ", " + in.Src.String()
	case InstrUcomisd:
		return "    ucomisd " + in.Dst.String() + ", " + in.Src.String()
	}
	return "    nop"
}
