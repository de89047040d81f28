package x86

import (
	"strconv"
	"strings"
	"testing"

	"rift/internal/diag"
	"rift/internal/mir"
)

func ci(v int64) mir.Operand   { return mir.ConstOperand(mir.IntConst(v)) }
func cb(v bool) mir.Operand    { return mir.ConstOperand(mir.BoolConst(v)) }
func cf(v float64) mir.Operand { return mir.ConstOperand(mir.FloatConst(v)) }
func cs(s string) mir.Operand  { return mir.ConstOperand(mir.StringConst(s)) }
func cp(name string) mir.Operand {
	return mir.CopyOperand(mir.LocalPlace(name))
}

func assign(dst string, rv mir.RValue) mir.Statement {
	return mir.Statement{Dst: mir.LocalPlace(dst), Src: rv}
}

func useStmt(dst string, op mir.Operand) mir.Statement {
	return assign(dst, mir.RValue{Kind: mir.RValueUse, Use: op})
}

var retZero = mir.Terminator{
	Kind:   mir.TermReturn,
	Return: mir.ReturnTerm{HasValue: true, Value: mir.ConstOperand(mir.IntConst(0))},
}

func mainFunc(stmts ...mir.Statement) mir.Func {
	return mir.Func{
		Name:   "main",
		Result: mir.Type{Kind: mir.TypeInt},
		Blocks: []mir.Block{{ID: 0, Stmts: stmts, Term: retZero}},
	}
}

func mustEmit(t *testing.T, mod *mir.Module, opts Options) string {
	t.Helper()
	asm, err := EmitModule(mod, opts, diag.NopReporter{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	return asm
}

func wantContains(t *testing.T, asm string, subs ...string) {
	t.Helper()
	for _, s := range subs {
		if !strings.Contains(asm, s) {
			t.Errorf("listing is missing %q", s)
		}
	}
}

func TestRecordConstructAndFieldRead(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []mir.Func{mainFunc(
			assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Point", Fields: []mir.Operand{ci(3), ci(4)},
			}}),
			assign("a", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("p"), Name: "x"}}),
			assign("b", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("p"), Name: "y"}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	// Fields land at base and base-8; y reads back through the
	// computed address.
	wantContains(t, asm,
		"mov rax, 3",
		"mov rax, 4",
		"lea rax, [rax - 8]",
		"mov rax, qword ptr [rax]",
	)
}

func TestArrayConstAndRuntimeIndexAgree(t *testing.T) {
	mod := &mir.Module{
		Name: "t",
		Funcs: []mir.Func{mainFunc(
			assign("arr", mir.RValue{Kind: mir.RValueArray, Array: mir.ArrayExpr{
				Elems: []mir.Operand{ci(10), ci(20), ci(30)},
			}}),
			useStmt("i", ci(1)),
			assign("x", mir.RValue{Kind: mir.RValueIndex, Index: mir.IndexExpr{Place: mir.LocalPlace("arr"), Index: ci(2)}}),
			assign("y", mir.RValue{Kind: mir.RValueIndex, Index: mir.IndexExpr{Place: mir.LocalPlace("arr"), Index: cp("i")}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	// Constant index folds into the displacement; runtime index scales
	// by the same stride and subtracts.
	wantContains(t, asm,
		"lea rax, [rax - 16]",
		"imul rcx, 8",
		"sub rax, rcx",
	)
}

func TestCompositeReturnGoesThroughBuffer(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Pair", Fields: []string{"a", "b"}}},
		Funcs: []mir.Func{
			{
				Name:   "make_pair",
				Result: mir.Type{Kind: mir.TypeRecord, Name: "Pair"},
				Blocks: []mir.Block{{ID: 0,
					Stmts: []mir.Statement{
						assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
							TypeName: "Pair", Fields: []mir.Operand{ci(1), ci(2)},
						}}),
					},
					Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: cp("p")}},
				}},
			},
			mainFunc(
				assign("q", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "make_pair"}}),
				assign("a", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("q"), Name: "b"}}),
			),
		},
	}
	asm := mustEmit(t, mod, Options{})
	wantContains(t, asm,
		// Callee banks the buffer address, fills it and echoes it.
		"mov qword ptr [rbp - 8], rdi",
		"mov qword ptr [rcx - 8], rax",
		"mov rax, rcx",
		// Caller allocates the buffer and passes its address first.
		"lea rdi, [rbp - ",
		"call make_pair",
	)
}

func TestLogicalAndEvaluatesBothSides(t *testing.T) {
	mod := &mir.Module{
		Name: "t",
		Funcs: []mir.Func{mainFunc(
			useStmt("a", cb(true)),
			useStmt("b", cb(false)),
			assign("c", mir.RValue{Kind: mir.RValueBinary, Binary: mir.BinaryExpr{
				Op: mir.BinAnd, Left: cp("a"), Right: cp("b"),
			}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	if n := strings.Count(asm, "setne al"); n < 2 {
		t.Errorf("want both operands normalized, saw %d setne", n)
	}
	wantContains(t, asm, "and rax, rcx")
}

func TestFramePlaceholderIsPatched(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{mainFunc(
		useStmt("a", ci(1)),
		useStmt("b", ci(2)),
	)}}
	asm := mustEmit(t, mod, Options{})
	if strings.Contains(asm, "sub rsp, 0\n") {
		t.Fatal("prologue still carries the unpatched placeholder")
	}
	idx := strings.Index(asm, "sub rsp, ")
	if idx < 0 {
		t.Fatal("no frame reservation emitted")
	}
	rest := asm[idx+len("sub rsp, "):]
	end := strings.IndexByte(rest, '\n')
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		t.Fatalf("frame size not numeric: %v", err)
	}
	if n%16 != 0 {
		t.Errorf("frame size %d not 16-byte aligned", n)
	}
}

func TestOverflowArgsPushedAndPopped(t *testing.T) {
	params := make([]mir.Param, 7)
	args := make([]mir.Operand, 7)
	for i := range params {
		params[i] = mir.Param{Name: string(rune('a' + i)), Type: mir.Type{Kind: mir.TypeInt}}
		args[i] = ci(int64(i))
	}
	mod := &mir.Module{
		Name: "t",
		Funcs: []mir.Func{
			{Name: "wide", Params: params, Result: mir.Type{Kind: mir.TypeInt},
				Blocks: []mir.Block{{ID: 0, Term: retZero}}},
			mainFunc(assign("r", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "wide", Args: args}})),
		},
	}
	asm := mustEmit(t, mod, Options{})
	// One overflow arg: pad to keep rsp 16-aligned at the call, push,
	// and pop both words after.
	wantContains(t, asm,
		"sub rsp, 8",
		"push qword ptr [rbp - ",
		"call wide",
		"add rsp, 16",
	)
	// The callee reads the seventh parameter above the frame.
	wantContains(t, asm, "mov rax, qword ptr [rbp + 16]")
}

func TestConstantConditionFolds(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{{
		Name:   "main",
		Result: mir.Type{Kind: mir.TypeInt},
		Blocks: []mir.Block{
			{ID: 0, Term: mir.Terminator{Kind: mir.TermIf, If: mir.IfTerm{Cond: cb(true), Then: 1, Else: 2}}},
			{ID: 1, Term: retZero},
			{ID: 2, Term: retZero},
		},
	}}}
	asm := mustEmit(t, mod, Options{})
	wantContains(t, asm, "jmp .Lmain_bb1")
	if strings.Contains(asm, "cmp rax, 0") {
		t.Error("constant condition still emitted a runtime test")
	}
}

func TestUnknownLocalIsHardErrorByDefault(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{mainFunc(
		useStmt("x", cp("ghost")),
	)}}
	if _, err := EmitModule(mod, Options{}, diag.NopReporter{}); err == nil {
		t.Fatal("unknown local lowered without error")
	}

	bag := diag.NewBag(16)
	asm, err := EmitModule(mod, Options{DegradeMissing: true}, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("degrade mode failed: %v", err)
	}
	if !bag.HasWarnings() {
		t.Error("degrade mode reported no warning")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LowDegradedToZero {
			found = true
		}
	}
	if !found {
		t.Error("no degraded-to-zero warning in the bag")
	}
	wantContains(t, asm, "xor rax, rax")
}

func TestMissingMainFails(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{{
		Name: "helper", Result: mir.Type{Kind: mir.TypeUnit},
		Blocks: []mir.Block{{ID: 0, Term: mir.Terminator{Kind: mir.TermReturn}}},
	}}}
	if _, err := EmitModule(mod, Options{}, diag.NopReporter{}); err == nil {
		t.Fatal("module without main lowered without error")
	}
}

func TestIntrinsicArityIsCheckedEvenWhenDegrading(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{mainFunc(
		useStmt("o", ci(0)),
		assign("x", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{
			Callee: "unwrap", Args: []mir.Operand{cp("o"), cp("o")},
		}}),
	)}}
	bag := diag.NewBag(16)
	_, err := EmitModule(mod, Options{DegradeMissing: true}, diag.BagReporter{Bag: bag})
	if err == nil {
		t.Fatal("bad unwrap arity lowered without error")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LowIntrinsicArity && d.Severity == diag.SevError {
			found = true
		}
	}
	if !found {
		t.Fatalf("no intrinsic arity error in the bag: %+v", bag.Items())
	}
}

func TestEnumVariantTagsFollowFirstSighting(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{mainFunc(
		assign("r", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "Color::Red"}}),
		assign("g", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "Color::Green", Args: []mir.Operand{ci(7)}}}),
	)}}
	asm := mustEmit(t, mod, Options{})
	// First variant takes tag 0 at the first block, second takes tag 1
	// in the next two-word block.
	wantContains(t, asm,
		"mov qword ptr [rbp - 8], 0",
		"mov qword ptr [rbp - 24], 1",
		"mov rax, 7",
	)
}

func TestLiteralPoolsAndGlue(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{mainFunc(
		useStmt("s", cs("hello")),
		assign("f", mir.RValue{Kind: mir.RValueBinary, Binary: mir.BinaryExpr{
			Op: mir.BinAdd, Left: cf(1.5), Right: cf(2.5),
		}}),
	)}}
	asm := mustEmit(t, mod, Options{AppendText: []string{"# appended glue"}})
	wantContains(t, asm,
		".intel_syntax noprefix",
		".globl main",
		".Lstr0:",
		".quad 5",
		`.ascii "hello"`,
		".Lflt0:",
		".Lflt1:",
		"addsd xmm0, xmm1",
		"# appended glue",
	)
}

func TestNestedRecordChainResolves(t *testing.T) {
	mod := &mir.Module{
		Name: "t",
		Records: []mir.RecordDecl{
			{Name: "Point", Fields: []string{"x", "y"}},
			{Name: "Wrapper", Fields: []string{"p"}},
		},
		Funcs: []mir.Func{mainFunc(
			assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Point", Fields: []mir.Operand{ci(1), ci(2)},
			}}),
			assign("w", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Wrapper", Fields: []mir.Operand{cp("p")},
			}}),
			assign("q", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("w"), Name: "p"}}),
			assign("x", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("q"), Name: "x"}}),
		)},
	}
	bag := diag.NewBag(16)
	_, err := EmitModule(mod, Options{}, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("nested chain failed: %v", err)
	}
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatalf("nested chain produced diagnostics: %+v", bag.Items())
	}
}

func TestRecordArrayIndexYieldsElementAddress(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []mir.Func{mainFunc(
			assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Point", Fields: []mir.Operand{ci(1), ci(2)},
			}}),
			assign("arr", mir.RValue{Kind: mir.RValueArray, Array: mir.ArrayExpr{
				Elems: []mir.Operand{cp("p"), cp("p")},
			}}),
			assign("e", mir.RValue{Kind: mir.RValueIndex, Index: mir.IndexExpr{Place: mir.LocalPlace("arr"), Index: ci(1)}}),
			assign("ex", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("e"), Name: "x"}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	// Element 1 of a two-word-stride array: address folds to -16 from
	// the array base, and the field read chases the stored pointer.
	wantContains(t, asm, "lea rax, [rax - 16]")
}

func TestSingleFieldRecordReturnsByValue(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "One", Fields: []string{"x"}}},
		Funcs: []mir.Func{
			{
				Name:   "make_one",
				Result: mir.Type{Kind: mir.TypeRecord, Name: "One"},
				Blocks: []mir.Block{{ID: 0,
					Stmts: []mir.Statement{
						assign("r", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
							TypeName: "One", Fields: []mir.Operand{ci(42)},
						}}),
					},
					Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: cp("r")}},
				}},
			},
			mainFunc(
				assign("q", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "make_one"}}),
				assign("a", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("q"), Name: "x"}}),
			),
		},
	}
	asm := mustEmit(t, mod, Options{})
	start := strings.Index(asm, "make_one:")
	end := strings.Index(asm, "main:")
	if start < 0 || end < start {
		t.Fatalf("unexpected listing layout:\n%s", asm)
	}
	callee := asm[start:end]
	// The single word rides back in rax. Returning the record's frame
	// address would dangle the moment the epilogue runs.
	wantContains(t, callee, "mov rax, qword ptr [rbp - 8]")
	if strings.Contains(callee, "lea rax, [rbp - 8]") {
		t.Error("callee returns the frame address of its result")
	}
	// The caller gives the word a block of its own so the field read
	// resolves against a record base.
	wantContains(t, asm[end:], "call make_one", "mov qword ptr [rbp - 8], rax")
}

func TestUnreachableTerminatorStaysInert(t *testing.T) {
	mod := &mir.Module{Name: "t", Funcs: []mir.Func{{
		Name:   "main",
		Result: mir.Type{Kind: mir.TypeInt},
		Blocks: []mir.Block{
			{ID: 0,
				Stmts: []mir.Statement{useStmt("c", cb(true))},
				Term:  mir.Terminator{Kind: mir.TermIf, If: mir.IfTerm{Cond: cp("c"), Then: 1, Else: 2}}},
			{ID: 1, Term: retZero},
			{ID: 2, Term: mir.Terminator{Kind: mir.TermUnreachable}},
		},
	}}}
	asm := mustEmit(t, mod, Options{})
	wantContains(t, asm, "nop")
	if strings.Contains(asm, "rt_exit") {
		t.Error("unreachable block calls into the runtime")
	}
}

func TestFieldWriteRoundTrip(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []mir.Func{mainFunc(
			assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Point", Fields: []mir.Operand{ci(1), ci(2)},
			}}),
			mir.Statement{Dst: mir.FieldPlace(mir.LocalPlace("p"), "y"), Src: mir.RValue{Kind: mir.RValueUse, Use: ci(9)}},
			assign("a", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("p"), Name: "y"}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	// Projected store: bank the value, compute the slot address, write
	// through it. The read takes the same address path back.
	wantContains(t, asm,
		"mov rax, 9",
		"mov rcx, rax",
		"mov qword ptr [rcx], rax",
		"mov rax, qword ptr [rax]",
	)
}

func TestFieldWriteThroughRecordParam(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []mir.Func{
			{
				Name:   "bump",
				Params: []mir.Param{{Name: "p", Type: mir.Type{Kind: mir.TypeRecord, Name: "Point"}}},
				Result: mir.Type{Kind: mir.TypeInt},
				Blocks: []mir.Block{{ID: 0,
					Stmts: []mir.Statement{
						{Dst: mir.FieldPlace(mir.LocalPlace("p"), "x"), Src: mir.RValue{Kind: mir.RValueUse, Use: ci(5)}},
						assign("a", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("p"), Name: "x"}}),
					},
					Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: cp("a")}},
				}},
			},
			mainFunc(
				assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
					TypeName: "Point", Fields: []mir.Operand{ci(1), ci(2)},
				}}),
				assign("r", mir.RValue{Kind: mir.RValueCall, Call: mir.CallExpr{Callee: "bump", Args: []mir.Operand{cp("p")}}}),
			),
		},
	}
	asm := mustEmit(t, mod, Options{})
	start := strings.Index(asm, "bump:")
	end := strings.Index(asm, "main:")
	if start < 0 || end < start {
		t.Fatalf("unexpected listing layout:\n%s", asm)
	}
	body := asm[start:end]
	// The param slot holds the caller's record address; write and read
	// both chase it.
	wantContains(t, body,
		"mov qword ptr [rbp - 8], rdi",
		"mov rax, qword ptr [rbp - 8]",
		"mov qword ptr [rcx], rax",
	)
}

func TestElementHandleCopyAliasesTheElement(t *testing.T) {
	mod := &mir.Module{
		Name:    "t",
		Records: []mir.RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []mir.Func{mainFunc(
			assign("p", mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateExpr{
				TypeName: "Point", Fields: []mir.Operand{ci(1), ci(2)},
			}}),
			assign("arr", mir.RValue{Kind: mir.RValueArray, Array: mir.ArrayExpr{
				Elems: []mir.Operand{cp("p"), cp("p")},
			}}),
			assign("e", mir.RValue{Kind: mir.RValueIndex, Index: mir.IndexExpr{Place: mir.LocalPlace("arr"), Index: ci(0)}}),
			useStmt("q", cp("e")),
			mir.Statement{Dst: mir.FieldPlace(mir.LocalPlace("q"), "x"), Src: mir.RValue{Kind: mir.RValueUse, Use: ci(7)}},
			assign("ex", mir.RValue{Kind: mir.RValueField, Field: mir.FieldExpr{Place: mir.LocalPlace("e"), Name: "x"}}),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	// q shares e's element address. A snapshot copy would stage the
	// element's words through rdx and writes through q would miss the
	// array.
	if strings.Contains(asm, "qword ptr [rdx") {
		t.Error("element handle was deep-copied instead of aliased")
	}
	wantContains(t, asm, "mov qword ptr [rcx], rax")
}

func TestGlobalsResolveThroughRipRelativeSymbols(t *testing.T) {
	mod := &mir.Module{
		Name: "t",
		Globals: []mir.Global{
			{Name: "counter", Kind: mir.GlobalStatic, Type: mir.Type{Kind: mir.TypeInt}, IntValue: 3},
			{Name: "limit", Kind: mir.GlobalConst, Type: mir.Type{Kind: mir.TypeInt}, IntValue: 10},
		},
		Funcs: []mir.Func{mainFunc(
			assign("s", mir.RValue{Kind: mir.RValueBinary, Binary: mir.BinaryExpr{
				Op: mir.BinAdd, Left: cp("counter"), Right: cp("limit"),
			}}),
			useStmt("counter", cp("s")),
		)},
	}
	asm := mustEmit(t, mod, Options{})
	wantContains(t, asm,
		"mov rax, qword ptr [rip + counter]",
		"mov rax, qword ptr [rip + limit]",
		"mov qword ptr [rip + counter], rax",
	)
}
