package mir

import (
	"strings"
	"testing"
)

func intOp(v int64) Operand { return ConstOperand(IntConst(v)) }

func retBlock(val Operand) Block {
	return Block{Term: Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: val}}}
}

func TestValidateAcceptsWellFormedModule(t *testing.T) {
	m := &Module{
		Name: "main",
		Funcs: []Func{{
			Name:   "main",
			Result: Type{Kind: TypeInt},
			Blocks: []Block{{
				Stmts: []Statement{{
					Dst: LocalPlace("x"),
					Src: RValue{Kind: RValueUse, Use: intOp(1)},
				}},
				Term: Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 1}},
			}, retBlock(CopyOperand(LocalPlace("x")))},
		}},
	}
	if err := Validate(m); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBrokenModules(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
		want string
	}{
		{
			name: "unterminated block",
			fn: Func{
				Name:   "f",
				Blocks: []Block{{}},
			},
			want: "missing terminator",
		},
		{
			name: "goto out of range",
			fn: Func{
				Name:   "f",
				Blocks: []Block{{Term: Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 7}}}},
			},
			want: "out of range",
		},
		{
			name: "if else-target out of range",
			fn: Func{
				Name: "f",
				Blocks: []Block{
					{Term: Terminator{Kind: TermIf, If: IfTerm{Cond: intOp(1), Then: 1, Else: 5}}},
					retBlock(intOp(0)),
				},
			},
			want: "else-target",
		},
		{
			name: "empty callee",
			fn: Func{
				Name: "f",
				Blocks: []Block{{
					Stmts: []Statement{{Dst: LocalPlace("t"), Src: RValue{Kind: RValueCall}}},
					Term:  Terminator{Kind: TermReturn},
				}},
			},
			want: "empty callee",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&Module{Name: "m", Funcs: []Func{tt.fn}})
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestModuleCodecRoundTrip(t *testing.T) {
	m := &Module{
		Name:    "demo",
		Records: []RecordDecl{{Name: "Point", Fields: []string{"x", "y"}}},
		Funcs: []Func{{
			Name:   "make_point",
			Result: Type{Kind: TypeRecord, Name: "Point"},
			Blocks: []Block{{
				Stmts: []Statement{{
					Dst: LocalPlace("p"),
					Src: RValue{Kind: RValueAggregate, Aggregate: AggregateExpr{
						TypeName: "Point",
						Fields:   []Operand{intOp(3), intOp(4)},
					}},
				}},
				Term: Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: CopyOperand(LocalPlace("p"))}},
			}},
		}},
	}
	data, err := EncodeModule(m)
	if err != nil {
		t.Fatalf("EncodeModule() error: %v", err)
	}
	got, err := DecodeModule(data)
	if err != nil {
		t.Fatalf("DecodeModule() error: %v", err)
	}
	if got.Name != "demo" || len(got.Funcs) != 1 {
		t.Fatalf("decoded module mismatch: %+v", got)
	}
	fields, ok := got.RecordFields("Point")
	if !ok || len(fields) != 2 || fields[0] != "x" {
		t.Fatalf("RecordFields(Point) = %v, %v", fields, ok)
	}
	stmt := got.Funcs[0].Blocks[0].Stmts[0]
	if stmt.Src.Kind != RValueAggregate || len(stmt.Src.Aggregate.Fields) != 2 {
		t.Fatalf("decoded statement mismatch: %+v", stmt)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate(decoded) = %v, want nil", err)
	}
}

func TestDecodeModuleRejectsWrongSchema(t *testing.T) {
	data, err := EncodeModule(&Module{Name: "m", Funcs: []Func{{Name: "f", Blocks: []Block{retBlock(intOp(0))}}}})
	if err != nil {
		t.Fatalf("EncodeModule() error: %v", err)
	}
	// Corrupt the payload so the schema check cannot pass.
	if _, err := DecodeModule(data[:len(data)/2]); err == nil {
		t.Fatal("DecodeModule(truncated) = nil, want error")
	}
}

func TestPlaceAndRValueStrings(t *testing.T) {
	p := IndexPlace(FieldPlace(LocalPlace("w"), "items"), intOp(2))
	if got := p.String(); got != "w.items[2]" {
		t.Fatalf("Place.String() = %q", got)
	}
	r := RValue{Kind: RValueBinary, Binary: BinaryExpr{Op: BinAdd, Left: intOp(1), Right: CopyOperand(LocalPlace("n"))}}
	if got := r.String(); got != "1 + copy n" {
		t.Fatalf("RValue.String() = %q", got)
	}
}
