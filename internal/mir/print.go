package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes a human-readable listing of the module, one function at
// a time in declaration order.
func Fprint(w io.Writer, m *Module) error {
	if m == nil {
		return nil
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		kind := "const"
		if g.Kind == GlobalStatic {
			kind = "static"
		}
		if g.IsString {
			fmt.Fprintf(w, "%s %s = %q\n", kind, g.Name, g.StringValue)
		} else {
			fmt.Fprintf(w, "%s %s = %d\n", kind, g.Name, g.IntValue)
		}
	}
	for i := range m.Funcs {
		if err := fprintFunc(w, &m.Funcs[i]); err != nil {
			return err
		}
	}
	return nil
}

func fprintFunc(w io.Writer, f *Func) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	if _, err := fmt.Fprintf(w, "fn %s(%s) -> %s\n", f.Name, strings.Join(params, ", "), f.Result.String()); err != nil {
		return err
	}
	for i := range f.Blocks {
		fmt.Fprintf(w, "bb%d:\n", i)
		bb := &f.Blocks[i]
		for j := range bb.Stmts {
			fmt.Fprintf(w, "  %s = %s\n", bb.Stmts[j].Dst.String(), bb.Stmts[j].Src.String())
		}
		fmt.Fprintf(w, "  %s\n", bb.Term.String())
	}
	return nil
}

// String renders a type the way the front-end spells it.
func (t Type) String() string {
	switch t.Kind {
	case TypeUnit:
		return "()"
	case TypeInt:
		return "i64"
	case TypeFloat:
		return "f64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "str"
	case TypeRecord:
		return t.Name
	case TypeArray:
		elem := "?"
		if t.Elem != nil {
			elem = t.Elem.String()
		}
		return fmt.Sprintf("[%s; %d]", elem, t.Len)
	case TypeBox:
		if t.Elem != nil {
			return "Box<" + t.Elem.String() + ">"
		}
		return "Box<?>"
	case TypeRc:
		if t.Elem != nil {
			return "Rc<" + t.Elem.String() + ">"
		}
		return "Rc<?>"
	}
	return "?"
}

// String renders a place as base plus projections.
func (p Place) String() string {
	out := p.Local
	for _, proj := range p.Proj {
		switch proj.Kind {
		case PlaceProjDeref:
			out = "*" + out
		case PlaceProjField:
			out += "." + proj.Field
		case PlaceProjIndex:
			out += "[" + proj.Index.String() + "]"
		}
	}
	return out
}

// String renders an operand.
func (o Operand) String() string {
	switch o.Kind {
	case OperandConst:
		return o.Const.String()
	case OperandCopy:
		return "copy " + o.Place.String()
	case OperandMove:
		return "move " + o.Place.String()
	}
	return "?"
}

// String renders a constant.
func (c Const) String() string {
	switch c.Kind {
	case ConstUnit:
		return "()"
	case ConstInt:
		return strconv.FormatInt(c.IntValue, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.BoolValue)
	case ConstString:
		return strconv.Quote(c.StringValue)
	}
	return "?"
}

var binOpNames = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||",
	BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^", BinShl: "<<", BinShr: ">>",
}

// String renders a binary operator.
func (op BinOp) String() string {
	if int(op) < len(binOpNames) && binOpNames[op] != "" {
		return binOpNames[op]
	}
	return "?"
}

// String renders an rvalue.
func (r RValue) String() string {
	switch r.Kind {
	case RValueUse:
		return r.Use.String()
	case RValueUnary:
		if r.Unary.Op == UnNot {
			return "!" + r.Unary.Operand.String()
		}
		return "-" + r.Unary.Operand.String()
	case RValueBinary:
		return fmt.Sprintf("%s %s %s", r.Binary.Left.String(), r.Binary.Op.String(), r.Binary.Right.String())
	case RValueCall:
		return r.Call.Callee + "(" + operandList(r.Call.Args) + ")"
	case RValueAggregate:
		return r.Aggregate.TypeName + " { " + operandList(r.Aggregate.Fields) + " }"
	case RValueArray:
		return "[" + operandList(r.Array.Elems) + "]"
	case RValueField:
		return r.Field.Place.String() + "." + r.Field.Name
	case RValueIndex:
		return r.Index.Place.String() + "[" + r.Index.Index.String() + "]"
	case RValueClosure:
		return "closure " + r.Closure.Code + " [" + operandList(r.Closure.Captures) + "]"
	case RValueDeref:
		return "*" + r.Deref.Place.String()
	case RValueRef:
		return "&" + r.Ref.Place.String()
	}
	return "?"
}

// String renders a terminator.
func (t Terminator) String() string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s goto bb%d else bb%d", t.If.Cond.String(), t.If.Then, t.If.Else)
	case TermReturn:
		if t.Return.HasValue {
			return "return " + t.Return.Value.String()
		}
		return "return"
	case TermUnreachable:
		return "unreachable"
	}
	return "<unterminated>"
}

func operandList(ops []Operand) string {
	parts := make([]string, len(ops))
	for i := range ops {
		parts[i] = ops[i].String()
	}
	return strings.Join(parts, ", ")
}
