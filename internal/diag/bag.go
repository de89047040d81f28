package diag

import (
	"fmt"
	"sort"
)

// Bag накапливает диагностики одной единицы компиляции с лимитом.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sorted returns diagnostics ordered by function, block, statement and
// finally severity (errors first within one position).
func (b *Bag) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Primary, out[j].Primary
		if pi.Func != pj.Func {
			return pi.Func < pj.Func
		}
		if pi.Block != pj.Block {
			return pi.Block < pj.Block
		}
		if pi.Stmt != pj.Stmt {
			return pi.Stmt < pj.Stmt
		}
		return out[i].Severity > out[j].Severity
	})
	return out
}

// FirstError returns the first error-severity diagnostic as an error
// value, or nil when the bag holds no errors.
func (b *Bag) FirstError() error {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			d := b.items[i]
			return fmt.Errorf("%s: %s: %s", d.Primary.String(), d.Code.String(), d.Message)
		}
	}
	return nil
}
