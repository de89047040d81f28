package x86

import (
	"fmt"
	"math"
	"strings"

	"rift/internal/diag"
	"rift/internal/mir"
)

// Options configures lowering.
type Options struct {
	// DegradeMissing makes unknown locals and fields lower to a zero
	// placeholder with a warning instead of failing the build.
	DegradeMissing bool
	// AppendText is opaque assembly appended after the module's own
	// sections: the entry wrapper and runtime stubs.
	AppendText []string
}

// Emitter lowers one MIR module to x86-64 assembly text. It owns the
// whole-program state: per-function metadata from the pre-pass, record
// field orders, enum variant tags and the literal pools. Per-function
// state lives in funcEmitter.
type Emitter struct {
	mod  *mir.Module
	opts Options
	rep  diag.Reporter

	text []Instr

	funcs        map[string]funcInfo
	globals      map[string]mir.Global
	recordFields map[string][]string
	recordArity  map[string]int
	// fieldRecTypes remembers which fields hold nested record pointers,
	// keyed by record type then slot index. Filled while lowering
	// aggregates; read when chaining field projections.
	fieldRecTypes map[string]map[int]string
	enumTags      map[string]int64

	strPool    map[string]string
	strOrder   []string
	floatPool  map[uint64]string
	floatOrder []uint64

	// fellBack records record types already warned about positional
	// field resolution so the warning fires once per type.
	fellBack map[string]bool

	nerr int
}

// EmitModule lowers mod and returns the complete assembly listing.
// Hard lowering errors go through rep and fail the call; degrade paths
// report warnings and keep going.
func EmitModule(mod *mir.Module, opts Options, rep diag.Reporter) (string, error) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	e := &Emitter{
		mod:           mod,
		opts:          opts,
		rep:           rep,
		funcs:         make(map[string]funcInfo, len(mod.Funcs)),
		globals:       make(map[string]mir.Global, len(mod.Globals)),
		recordFields:  make(map[string][]string, len(mod.Records)),
		recordArity:   make(map[string]int, len(mod.Records)),
		fieldRecTypes: make(map[string]map[int]string, 2),
		enumTags:      make(map[string]int64, 8),
		strPool:       make(map[string]string, 8),
		floatPool:     make(map[uint64]string, 4),
		fellBack:      make(map[string]bool, 2),
	}
	e.prepass()
	if e.nerr > 0 {
		return "", fmt.Errorf("lowering %s: %d error(s)", mod.Name, e.nerr)
	}
	for i := range mod.Funcs {
		newFuncEmitter(e, &mod.Funcs[i]).emit()
	}
	if e.nerr > 0 {
		return "", fmt.Errorf("lowering %s: %d error(s)", mod.Name, e.nerr)
	}
	return e.render(), nil
}

// prepass walks the module once before any code is emitted. It indexes
// module globals by name, fixes the declared record field orders,
// infers arities for undeclared
// record types from aggregate widths, assigns enum variant tags in
// first-seen order and decides every function's return convention so
// call sites and callees agree.
func (e *Emitter) prepass() {
	for i := range e.mod.Records {
		r := &e.mod.Records[i]
		e.recordFields[r.Name] = r.Fields
		e.recordArity[r.Name] = len(r.Fields)
	}
	for i := range e.mod.Globals {
		g := &e.mod.Globals[i]
		e.globals[g.Name] = *g
	}
	e.mod.EachRValue(func(rv *mir.RValue) {
		switch rv.Kind {
		case mir.RValueAggregate:
			agg := &rv.Aggregate
			if n := len(agg.Fields); n > e.recordArity[agg.TypeName] {
				if _, declared := e.recordFields[agg.TypeName]; !declared {
					e.recordArity[agg.TypeName] = n
				}
			}
		case mir.RValueCall:
			e.noteVariant(rv.Call.Callee)
		}
	})
	seen := make(map[string]bool, len(e.mod.Funcs))
	for i := range e.mod.Funcs {
		f := &e.mod.Funcs[i]
		if seen[f.Name] {
			e.errorf(diag.ModDuplicateFunc, diag.FuncPos(f.Name), "duplicate function %q", f.Name)
			continue
		}
		seen[f.Name] = true
		conv, words := e.returnConvention(f.Result)
		e.funcs[f.Name] = funcInfo{Result: f.Result, Conv: conv, Words: words}
	}
	if !seen["main"] {
		e.errorf(diag.ModMissingEntry, diag.Pos{}, "module %s has no main function", e.mod.Name)
	}
}

// noteVariant assigns a tag to an Enum::Variant constructor the first
// time its name is seen. Tags count up per enum in encounter order.
func (e *Emitter) noteVariant(callee string) {
	idx := strings.Index(callee, "::")
	if idx <= 0 {
		return
	}
	if _, isIntrinsic := intrinsicFor(callee); isIntrinsic {
		return
	}
	if _, ok := e.enumTags[callee]; ok {
		return
	}
	prefix := callee[:idx+2]
	var tag int64
	for name := range e.enumTags {
		if strings.HasPrefix(name, prefix) {
			tag++
		}
	}
	e.enumTags[callee] = tag
	if e.recordArity[callee[:idx]] < 2 {
		e.recordArity[callee[:idx]] = 2
	}
}

// recordArityOf returns a record type's field count, defaulting to one
// word for types never declared and never constructed.
func (e *Emitter) recordArityOf(name string) int {
	if n, ok := e.recordArity[name]; ok && n > 0 {
		return n
	}
	return 1
}

// fieldIndex resolves a field name to its slot index within a record
// type. Undeclared types fall back to positional names with a one-shot
// warning; ok is false when the name cannot be resolved at all.
func (e *Emitter) fieldIndex(recType, field string, pos diag.Pos) (int, bool) {
	if fields, ok := e.recordFields[recType]; ok {
		for i, f := range fields {
			if f == field {
				return i, true
			}
		}
		return 0, false
	}
	if idx, ok := positionalIndex(field); ok {
		if !e.fellBack[recType] {
			e.fellBack[recType] = true
			e.rep.Report(diag.LowPositionalFallback, diag.SevWarning, pos,
				fmt.Sprintf("record type %q has no declared fields; resolving %q positionally", recType, field))
		}
		return idx, true
	}
	return 0, false
}

// positionalIndex maps conventional field names to slot indexes for
// record types without a declared field order.
func positionalIndex(field string) (int, bool) {
	switch field {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "z":
		return 2, true
	case "w":
		return 3, true
	}
	if len(field) > 1 && (field[0] == '_' || field[0] == 'f') {
		n := 0
		for _, c := range field[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		return n, true
	}
	return 0, false
}

// setFieldRecType records that slot idx of recType holds a pointer to
// a nested record of type nested.
func (e *Emitter) setFieldRecType(recType string, idx int, nested string) {
	m := e.fieldRecTypes[recType]
	if m == nil {
		m = make(map[int]string, 2)
		e.fieldRecTypes[recType] = m
	}
	m[idx] = nested
}

// fieldRecType returns the nested record type stored at slot idx of
// recType, or empty.
func (e *Emitter) fieldRecType(recType string, idx int) string {
	return e.fieldRecTypes[recType][idx]
}

func (e *Emitter) ins(in Instr) { e.text = append(e.text, in) }

func (e *Emitter) errorf(code diag.Code, pos diag.Pos, format string, args ...any) {
	e.nerr++
	e.rep.Report(code, diag.SevError, pos, fmt.Sprintf(format, args...))
}

// strLabel interns a string literal and returns its rodata label.
func (e *Emitter) strLabel(s string) string {
	if lbl, ok := e.strPool[s]; ok {
		return lbl
	}
	lbl := fmt.Sprintf(".Lstr%d", len(e.strOrder))
	e.strPool[s] = lbl
	e.strOrder = append(e.strOrder, s)
	return lbl
}

// floatLabel interns a double literal by bit pattern.
func (e *Emitter) floatLabel(v float64) string {
	bits := math.Float64bits(v)
	if lbl, ok := e.floatPool[bits]; ok {
		return lbl
	}
	lbl := fmt.Sprintf(".Lflt%d", len(e.floatOrder))
	e.floatPool[bits] = lbl
	e.floatOrder = append(e.floatOrder, bits)
	return lbl
}

// render assembles the final listing: text, writable data, read-only
// data, then the appended runtime text verbatim.
func (e *Emitter) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# module %s\n", e.mod.Name)
	b.WriteString("    .intel_syntax noprefix\n\n")
	b.WriteString("    .text\n")
	for i := range e.mod.Funcs {
		fmt.Fprintf(&b, "    .globl %s\n", e.mod.Funcs[i].Name)
	}
	for i := range e.text {
		b.WriteString(e.text[i].String())
		b.WriteByte('\n')
	}

	var data, rodata []mir.Global
	for _, g := range e.mod.Globals {
		if g.Kind == mir.GlobalStatic {
			data = append(data, g)
		} else {
			rodata = append(rodata, g)
		}
	}
	if len(data) > 0 {
		b.WriteString("\n    .data\n")
		for _, g := range data {
			writeGlobal(&b, g)
		}
	}
	if len(rodata) > 0 || len(e.strOrder) > 0 || len(e.floatOrder) > 0 {
		b.WriteString("\n    .section .rodata\n")
		for _, g := range rodata {
			writeGlobal(&b, g)
		}
		for i, s := range e.strOrder {
			writeString(&b, fmt.Sprintf(".Lstr%d", i), s)
		}
		for i, bits := range e.floatOrder {
			fmt.Fprintf(&b, ".Lflt%d:\n    .quad 0x%016x # %g\n", i, bits, math.Float64frombits(bits))
		}
	}

	for _, chunk := range e.opts.AppendText {
		b.WriteByte('\n')
		b.WriteString(chunk)
		if !strings.HasSuffix(chunk, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeGlobal(b *strings.Builder, g mir.Global) {
	if g.IsString {
		writeString(b, g.Name, g.StringValue)
		return
	}
	fmt.Fprintf(b, "%s:\n    .quad %d\n", g.Name, g.IntValue)
}

// writeString lays a literal out as a length word followed by the raw
// bytes and a trailing NUL, matching the runtime string shape.
func writeString(b *strings.Builder, label, s string) {
	fmt.Fprintf(b, "%s:\n    .quad %d\n", label, len(s))
	if len(s) > 0 {
		fmt.Fprintf(b, "    .ascii \"%s\"\n", escapeASM(s))
	}
	b.WriteString("    .byte 0\n")
}

func escapeASM(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
