package x86

import (
	"rift/internal/diag"
	"rift/internal/mir"
	"rift/internal/runtimeglue"
)

// intrinsicOp says how an intrinsic lowers. Most are plain calls into
// the runtime; a handful construct or pick apart tagged blocks inline.
type intrinsicOp uint8

const (
	// opRuntimeCall calls the runtime symbol with the usual convention.
	opRuntimeCall intrinsicOp = iota
	// opSome builds [1, payload] inline.
	opSome
	// opNoneCtor builds [0, 0] inline.
	opNoneCtor
	// opOk builds [1, payload] inline.
	opOk
	// opErrCtor builds [0, payload] inline.
	opErrCtor
	// opUnwrap reads the payload word inline, without the tag check the
	// runtime helper performs.
	opUnwrap
	// opBoxNew stores the payload in a slot and yields its address.
	opBoxNew
	// opRcNew builds [count=1, payload] and yields the block address.
	opRcNew
	// opIterFromArray wraps a fixed array as an iterator source.
	opIterFromArray
)

type intrinsic struct {
	Op   intrinsicOp
	Sym  string
	Args int
}

// intrinsics maps callee names to their lowering. Qualified names are
// canonical; the bare aliases cover front ends that emit method names
// without a receiver type.
var intrinsics = buildIntrinsics()

func buildIntrinsics() map[string]intrinsic {
	m := make(map[string]intrinsic, 96)
	add := func(in intrinsic, names ...string) {
		for _, n := range names {
			m[n] = in
		}
	}

	add(intrinsic{Sym: "rt_vec_new"}, "Vec::new")
	add(intrinsic{Sym: "rt_vec_push", Args: 2}, "Vec::push", "push")
	add(intrinsic{Sym: "rt_vec_pop", Args: 1}, "Vec::pop", "pop")
	add(intrinsic{Sym: "rt_vec_get", Args: 2}, "Vec::get", "get")
	add(intrinsic{Sym: "rt_vec_insert", Args: 3}, "Vec::insert", "insert")
	add(intrinsic{Sym: "rt_vec_remove", Args: 2}, "Vec::remove", "remove")
	add(intrinsic{Sym: "rt_vec_len", Args: 1}, "Vec::len", "len")
	add(intrinsic{Sym: "rt_vec_clear", Args: 1}, "Vec::clear", "clear")
	add(intrinsic{Sym: "rt_vec_contains", Args: 2}, "Vec::contains", "contains")

	add(intrinsic{Sym: "rt_set_new"}, "Set::new", "HashSet::new")
	add(intrinsic{Sym: "rt_set_insert", Args: 2}, "Set::insert")
	add(intrinsic{Sym: "rt_set_remove", Args: 2}, "Set::remove")
	add(intrinsic{Sym: "rt_set_contains", Args: 2}, "Set::contains")
	add(intrinsic{Sym: "rt_set_len", Args: 1}, "Set::len")
	add(intrinsic{Sym: "rt_set_union", Args: 2}, "Set::union", "union")
	add(intrinsic{Sym: "rt_set_intersection", Args: 2}, "Set::intersection", "intersection")
	add(intrinsic{Sym: "rt_set_difference", Args: 2}, "Set::difference", "difference")

	add(intrinsic{Sym: "rt_str_len", Args: 1}, "Str::len", "str_len")
	add(intrinsic{Sym: "rt_str_is_empty", Args: 1}, "Str::is_empty", "is_empty")
	add(intrinsic{Sym: "rt_str_starts_with", Args: 2}, "Str::starts_with", "starts_with")
	add(intrinsic{Sym: "rt_str_ends_with", Args: 2}, "Str::ends_with", "ends_with")
	add(intrinsic{Sym: "rt_str_substr", Args: 3}, "Str::substr", "substr")

	add(intrinsic{Op: opSome, Args: 1}, "Option::Some", "Some")
	add(intrinsic{Op: opNoneCtor}, "Option::None", "None")
	add(intrinsic{Op: opOk, Args: 1}, "Result::Ok", "Ok")
	add(intrinsic{Op: opErrCtor, Args: 1}, "Result::Err", "Err")
	add(intrinsic{Sym: "rt_option_is_some", Args: 1}, "Option::is_some", "is_some")
	add(intrinsic{Sym: "rt_option_is_none", Args: 1}, "Option::is_none", "is_none")
	add(intrinsic{Op: opUnwrap, Args: 1}, "Option::unwrap", "unwrap")
	add(intrinsic{Sym: "rt_option_unwrap_or", Args: 2}, "Option::unwrap_or", "unwrap_or")
	add(intrinsic{Sym: "rt_result_is_ok", Args: 1}, "Result::is_ok", "is_ok")
	add(intrinsic{Sym: "rt_result_is_err", Args: 1}, "Result::is_err", "is_err")

	add(intrinsic{Op: opIterFromArray, Args: 1}, "Iter::into_iter", "into_iter")
	add(intrinsic{Sym: "rt_iter_map", Args: 2}, "Iter::map", "map")
	add(intrinsic{Sym: "rt_iter_filter", Args: 2}, "Iter::filter", "filter")
	add(intrinsic{Sym: "rt_iter_fold", Args: 3}, "Iter::fold", "fold")
	add(intrinsic{Sym: "rt_iter_for_each", Args: 2}, "Iter::for_each", "for_each")
	add(intrinsic{Sym: "rt_iter_sum", Args: 1}, "Iter::sum", "sum")
	add(intrinsic{Sym: "rt_iter_count", Args: 1}, "Iter::count", "count")
	add(intrinsic{Sym: "rt_iter_take", Args: 2}, "Iter::take", "take")
	add(intrinsic{Sym: "rt_iter_skip", Args: 2}, "Iter::skip", "skip")
	add(intrinsic{Sym: "rt_iter_chain", Args: 2}, "Iter::chain", "chain")
	add(intrinsic{Sym: "rt_iter_find", Args: 2}, "Iter::find", "find")
	add(intrinsic{Sym: "rt_iter_any", Args: 2}, "Iter::any", "any")
	add(intrinsic{Sym: "rt_iter_all", Args: 2}, "Iter::all", "all")

	add(intrinsic{Op: opBoxNew, Args: 1}, "Box::new")
	add(intrinsic{Op: opRcNew, Args: 1}, "Rc::new", "Arc::new")

	return m
}

// intrinsicFor resolves a callee name against the intrinsic table.
func intrinsicFor(name string) (intrinsic, bool) {
	in, ok := intrinsics[name]
	return in, ok
}

func (fe *funcEmitter) lowerIntrinsic(dst mir.Place, call *mir.CallExpr, intr intrinsic) {
	if len(call.Args) != intr.Args {
		fe.errorf(diag.LowIntrinsicArity, "%s takes %d argument(s), got %d",
			call.Callee, intr.Args, len(call.Args))
		return
	}
	switch intr.Op {
	case opSome, opOk:
		fe.taggedBlock(dst, 1, &call.Args[0], taggedTypeName(intr.Op))
	case opNoneCtor:
		fe.taggedBlock(dst, 0, nil, taggedTypeName(intr.Op))
	case opErrCtor:
		fe.taggedBlock(dst, 0, &call.Args[0], taggedTypeName(intr.Op))
	case opUnwrap:
		fe.lowerUnwrap(dst, call.Args[0])
	case opBoxNew:
		slot := fe.fr.allocSlot()
		fe.loadArg(call.Args[0])
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, slot), Src: RegOp(RAX)})
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, slot)})
		fe.storeScalar(dst, false)
	case opRcNew:
		base := fe.fr.allocBlock(2)
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base), Src: ImmOp(1)})
		fe.loadArg(call.Args[0])
		fe.ins(Instr{Kind: InstrMov, Dst: MemOp(RBP, base-wordSize), Src: RegOp(RAX)})
		fe.ins(Instr{Kind: InstrLea, Dst: RegOp(RAX), Src: MemOp(RBP, base)})
		fe.storeScalar(dst, false)
	case opIterFromArray:
		fe.lowerIterFromArray(dst, call.Args[0])
	default:
		fe.runtimeCall(dst, intr.Sym, call.Args)
	}
}

func taggedTypeName(op intrinsicOp) string {
	if op == opOk || op == opErrCtor {
		return "$result"
	}
	return "$option"
}

// lowerUnwrap reads the payload word directly. The runtime helper also
// checks the tag; MIR that wants the checked form calls unwrap_or or
// goes through is_some first.
func (fe *funcEmitter) lowerUnwrap(dst mir.Place, arg mir.Operand) {
	if arg.Kind == mir.OperandConst || !arg.Place.IsLocal() {
		fe.errorf(diag.LowInfo, "unwrap of a non-place operand")
		return
	}
	loc, ok := fe.fr.lookup(arg.Place.Local)
	if !ok {
		fe.degradeZero("unknown local %q", arg.Place.Local)
		fe.storeScalar(dst, false)
		return
	}
	if loc.Kind == StoreIndirect {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RCX), Src: MemOp(RBP, loc.Offset)})
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RCX, -wordSize)})
	} else {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RAX), Src: MemOp(RBP, loc.Offset-wordSize)})
	}
	fe.storeScalar(dst, false)
}

func (fe *funcEmitter) lowerIterFromArray(dst mir.Place, arg mir.Operand) {
	if arg.Kind == mir.OperandConst || !arg.Place.IsLocal() {
		fe.errorf(diag.LowInfo, "into_iter of a non-array operand")
		return
	}
	arr, ok := fe.fr.array(arg.Place.Local)
	if !ok {
		fe.errorf(diag.LowInfo, "into_iter of %q, which is not a fixed array", arg.Place.Local)
		return
	}
	fe.loadCompositeAddr(arg.Place.Local)
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RDI), Src: RegOp(RAX)})
	fe.ins(Instr{Kind: InstrMov, Dst: RegOp(RSI), Src: ImmOp(int64(arr.Len))})
	fe.ins(Instr{Kind: InstrCall, Src: SymOp("rt_iter_from_array")})
	fe.storeScalar(dst, false)
}

// runtimeCall lowers a passthrough intrinsic: registers only, since the
// runtime surface never exceeds three arguments.
func (fe *funcEmitter) runtimeCall(dst mir.Place, sym string, args []mir.Operand) {
	if s, ok := runtimeglue.Lookup(sym); ok && s.Args != runtimeglue.ArgsVariadic && s.Args != len(args) {
		fe.errorf(diag.LowIntrinsicArity, "%s takes %d argument(s), got %d", sym, s.Args, len(args))
		return
	}
	slots := fe.evalArgsToSlots(args)
	for i := range slots {
		fe.ins(Instr{Kind: InstrMov, Dst: RegOp(argRegs[i]), Src: MemOp(RBP, slots[i])})
	}
	fe.ins(Instr{Kind: InstrCall, Src: SymOp(sym)})
	fe.storeScalar(dst, false)
}
