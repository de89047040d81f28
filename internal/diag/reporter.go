package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter — минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary Pos, msg string)
}

// BagReporter stores every reported diagnostic in a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(code Code, sev Severity, primary Pos, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary})
}

// NopReporter discards diagnostics.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Pos, string) {}

var posColor = color.New(color.Faint)

// Render writes human-readable diagnostics.
func Render(w io.Writer, items []Diagnostic) {
	for i := range items {
		d := &items[i]
		fmt.Fprintf(w, "%s[%s] %s %s\n", d.Severity.label(), d.Code.String(), posColor.Sprint(d.Primary.String()), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s %s\n", posColor.Sprint(n.Pos.String()), n.Msg)
		}
	}
}
