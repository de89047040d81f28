package mir

import (
	"errors"
	"fmt"
)

// Validate checks module structural invariants before lowering.
// Returns a joined error listing every violation found.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for i := range m.Funcs {
		if err := validateFunc(&m.Funcs[i]); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", m.Funcs[i].Name, err))
		}
	}
	for i := range m.Records {
		if m.Records[i].Name == "" {
			errs = append(errs, fmt.Errorf("record %d: empty type name", i))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func) error {
	if f == nil {
		return nil
	}
	var errs []error
	if f.Name == "" {
		errs = append(errs, errors.New("empty function name"))
	}
	if len(f.Blocks) == 0 {
		errs = append(errs, errors.New("no basic blocks"))
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if !bb.Terminated() {
			errs = append(errs, fmt.Errorf("bb%d: missing terminator", i))
		}
		if err := validateTargets(f, bb); err != nil {
			errs = append(errs, fmt.Errorf("bb%d: %w", i, err))
		}
		for j := range bb.Stmts {
			if err := validateStatement(&bb.Stmts[j]); err != nil {
				errs = append(errs, fmt.Errorf("bb%d stmt %d: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

func validateTargets(f *Func, bb *Block) error {
	inRange := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	switch bb.Term.Kind {
	case TermGoto:
		if !inRange(bb.Term.Goto.Target) {
			return fmt.Errorf("goto target bb%d out of range", bb.Term.Goto.Target)
		}
	case TermIf:
		if !inRange(bb.Term.If.Then) {
			return fmt.Errorf("if then-target bb%d out of range", bb.Term.If.Then)
		}
		if !inRange(bb.Term.If.Else) {
			return fmt.Errorf("if else-target bb%d out of range", bb.Term.If.Else)
		}
	}
	return nil
}

func validateStatement(s *Statement) error {
	if s.Dst.Local == "" {
		return errors.New("statement destination has no local")
	}
	for i := range s.Dst.Proj {
		p := &s.Dst.Proj[i]
		if p.Kind == PlaceProjField && p.Field == "" {
			return fmt.Errorf("projection %d: empty field name", i)
		}
	}
	if s.Src.Kind == RValueCall && s.Src.Call.Callee == "" {
		return errors.New("call with empty callee name")
	}
	if s.Src.Kind == RValueAggregate && s.Src.Aggregate.TypeName == "" {
		return errors.New("aggregate with empty type name")
	}
	return nil
}
