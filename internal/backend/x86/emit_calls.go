package x86

import (
	"rift/internal/diag"
	"rift/internal/mir"
)

// lowerCall dispatches a call rvalue. Intrinsics and enum variant
// constructors were classified in the pre-pass; a callee matching a
// live local is a closure call; everything else is a plain symbol call,
// possibly to an external runtime function.
func (fe *funcEmitter) lowerCall(dst mir.Place, call *mir.CallExpr) {
	if intr, ok := intrinsicFor(call.Callee); ok {
		fe.lowerIntrinsic(dst, call, intr)
		return
	}
	if tag, ok := fe.e.enumTags[call.Callee]; ok {
		fe.lowerVariantCtor(dst, call, tag)
		return
	}
	if _, isLocal := fe.fr.lookup(call.Callee); isLocal {
		fe.lowerClosureCall(dst, call)
		return
	}
	fe.lowerDirectCall(dst, call)
}

// evalArgsToSlots evaluates every argument into a scratch slot before
// any register is loaded, so later evaluations cannot clobber earlier
// argument registers.
func (fe *funcEmitter) evalArgsToSlots(args []mir.Operand) []int64 {
	slots := make([]int64, len(args))
	for i, a := range args {
		fe.loadArg(a)
		s := fe.fr.allocSlot()
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, s), Src: RegOp(RAX)})
		slots[i] = s
	}
	return slots
}

func (fe *funcEmitter) lowerDirectCall(dst mir.Place, call *mir.CallExpr) {
	info, known := fe.e.funcs[call.Callee]
	sret := known && info.Conv == RetByReference

	slots := fe.evalArgsToSlots(call.Args)

	argc := len(slots)
	if sret {
		argc++
	}
	regN := argc
	if regN > len(argRegs) {
		regN = len(argRegs)
	}

	var retBase int64
	ri := 0
	if sret {
		retBase = fe.fr.allocBlock(info.Words)
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(argRegs[0]), Src: MemOp(RBP, retBase)})
		ri = 1
	}
	consumed := 0
	for ; ri < regN; ri++ {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(argRegs[ri]), Src: MemOp(RBP, slots[consumed])})
		consumed++
	}

	// Overflow arguments go on the stack right to left. An odd count
	// would leave rsp misaligned at the call, so pad first; the callee
	// addresses them off rbp either way.
	over := len(slots) - consumed
	pad := over%2 == 1
	if pad {
		fe.ins(Instr{Kind: InstrSub, Dst: RegOp(RSP), Src: ImmOp(wordSize)})
	}
	for j := len(slots) - 1; j >= consumed; j-- {
		fe.ins(Instr{Kind: InstrPush, Src: MemOp(RBP, slots[j])})
	}
	fe.ins(Instr{Kind: InstrCall, Src: SymOp(call.Callee)})
	cleanup := int64(over) * wordSize
	if pad {
		cleanup += wordSize
	}
	if cleanup > 0 {
		fe.ins(Instr{Kind: InstrAdd, Dst: RegOp(RSP), Src: ImmOp(cleanup)})
	}

	if sret {
		fe.bindCallResult(dst, info, retBase)
		return
	}
	if known && info.Result.IsRecord() {
		fe.bindValueRecord(dst, info.Result.Name)
		return
	}
	if known && info.Result.Kind == mir.TypeFloat {
		fe.storeScalar(dst, true)
		return
	}
	fe.storeScalar(dst, false)
}

// bindValueRecord re-materializes a by-value record result: the single
// field comes back in rax and gets a one-word block of its own so
// later field reads resolve against a record base.
func (fe *funcEmitter) bindValueRecord(dst mir.Place, typeName string) {
	if !dst.IsLocal() {
		fe.storeScalar(dst, false)
		return
	}
	base := fe.fr.allocBlock(1)
	fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base), Src: RegOp(RAX)})
	fe.fr.bindInline(dst.Local, base)
	fe.fr.setRecordType(dst.Local, typeName)
}

// bindCallResult wires a by-reference result buffer to the destination
// local, with the layout metadata call sites downstream will need.
func (fe *funcEmitter) bindCallResult(dst mir.Place, info funcInfo, retBase int64) {
	if !dst.IsLocal() {
		fe.errorf(diag.LowInfo, "composite call result needs a plain destination")
		return
	}
	fe.fr.bindInline(dst.Local, retBase)
	switch {
	case info.Result.IsRecord():
		fe.fr.setRecordType(dst.Local, info.Result.Name)
	case info.Result.IsRecordArray():
		elem := info.Result.Elem.Name
		fe.fr.setArray(dst.Local, arrayInfo{
			Base:      retBase,
			Len:       info.Result.Len,
			ElemWords: fe.e.recordArityOf(elem),
			ElemType:  elem,
		})
	}
}

// lowerClosureCall calls through a closure block: code address in the
// first word, environment pointer handed over in r10.
func (fe *funcEmitter) lowerClosureCall(dst mir.Place, call *mir.CallExpr) {
	slots := fe.evalArgsToSlots(call.Args)
	regN := len(slots)
	if regN > len(argRegs) {
		fe.errorf(diag.LowInfo, "closure call with more than %d arguments", len(argRegs))
		regN = len(argRegs)
	}
	fe.loadCompositeAddr(call.Callee)
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(R10), Src: RegOp(RAX)})
	for i := 0; i < regN; i++ {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(argRegs[i]), Src: MemOp(RBP, slots[i])})
	}
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(R10, 0)})
	fe.ins(Instr{Kind: InstrCallReg, Src: RegOp(RAX)})
	fe.storeScalar(dst, false)
}

// lowerVariantCtor builds a tagged two-word block for an enum variant:
// the tag assigned in first-seen order, then at most one payload word.
func (fe *funcEmitter) lowerVariantCtor(dst mir.Place, call *mir.CallExpr, tag int64) {
	if len(call.Args) > 1 {
		fe.errorf(diag.LowPayloadTooWide, "variant %s carries %d payload words; at most one fits", call.Callee, len(call.Args))
		return
	}
	var payload *mir.Operand
	if len(call.Args) == 1 {
		payload = &call.Args[0]
	}
	enumName := call.Callee
	if idx := indexOfSep(enumName); idx > 0 {
		enumName = enumName[:idx]
	}
	fe.taggedBlock(dst, tag, payload, enumName)
}

// taggedBlock lays out [tag, payload] with the payload one word below
// the tag, the shape the option/result runtime helpers read.
func (fe *funcEmitter) taggedBlock(dst mir.Place, tag int64, payload *mir.Operand, typeName string) {
	if !dst.IsLocal() {
		fe.errorf(diag.LowInfo, "tagged value construction into a projected place")
		return
	}
	base := fe.fr.allocBlock(2)
	fe.fr.bindInline(dst.Local, base)
	fe.fr.setRecordType(dst.Local, typeName)
	if fe.e.recordArity[typeName] < 2 {
		fe.e.recordArity[typeName] = 2
	}
	fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base), Src: ImmOp(tag)})
	if payload != nil {
		fe.loadArg(*payload)
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base-wordSize), Src: RegOp(RAX)})
	} else {
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base-wordSize), Src: ImmOp(0)})
	}
}

func indexOfSep(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && s[i+1] == ':' {
			return i
		}
	}
	return -1
}
