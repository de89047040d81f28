package diag

import "github.com/fatih/color"

// Severity ranks a diagnostic. Warnings never stop lowering; the first
// error makes the whole run fail after rendering.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "info"
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
)

// label is the colored form Render prints. Colors follow the global
// color.NoColor setting, which the CLI wires to TTY detection.
func (s Severity) label() string {
	switch s {
	case SevError:
		return errorColor.Sprint(s.String())
	case SevWarning:
		return warnColor.Sprint(s.String())
	}
	return infoColor.Sprint(s.String())
}
