package diag

import "fmt"

type Code uint16

const (
	// UnknownCode is the catch-all for uncategorized diagnostics.
	UnknownCode Code = 0

	// Module/input errors
	ModInfo          Code = 1000
	ModBadSchema     Code = 1001
	ModInvalidMIR    Code = 1002
	ModMissingEntry  Code = 1003
	ModDuplicateFunc Code = 1004

	// Lowering errors
	LowInfo             Code = 3000
	LowUnknownLocal     Code = 3001
	LowUnknownField     Code = 3002
	LowUnknownRecord    Code = 3003
	LowIntrinsicArity   Code = 3004
	LowUnsupportedConst Code = 3005
	LowBadIndex         Code = 3006
	LowPayloadTooWide   Code = 3007

	// Lowering warnings (degrade paths)
	LowDegradedToZero     Code = 3100
	LowPositionalFallback Code = 3101
)

func (c Code) String() string {
	return fmt.Sprintf("R%04d", uint16(c))
}
