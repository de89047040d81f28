package diag

import "fmt"

// Pos locates a diagnostic inside a MIR module. Stmt is -1 when the
// diagnostic points at a terminator or at the function as a whole.
type Pos struct {
	Func  string
	Block int
	Stmt  int
}

// FuncPos returns a position covering a whole function.
func FuncPos(fn string) Pos { return Pos{Func: fn, Block: -1, Stmt: -1} }

// StmtPos returns a position for one statement.
func StmtPos(fn string, block, stmt int) Pos { return Pos{Func: fn, Block: block, Stmt: stmt} }

func (p Pos) String() string {
	if p.Func == "" {
		return "<module>"
	}
	if p.Block < 0 {
		return p.Func
	}
	if p.Stmt < 0 {
		return fmt.Sprintf("%s/bb%d", p.Func, p.Block)
	}
	return fmt.Sprintf("%s/bb%d/%d", p.Func, p.Block, p.Stmt)
}

type Note struct {
	Pos Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Pos
	Notes    []Note
}
