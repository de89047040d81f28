package x86

import "rift/internal/mir"

// ReturnConvention says how a function hands its result back.
type ReturnConvention uint8

const (
	// RetByValue returns the result in rax (xmm0 for floats).
	RetByValue ReturnConvention = iota
	// RetByReference returns through a caller-allocated buffer whose
	// address travels as an implicit first argument; the callee also
	// leaves the buffer address in rax as a handle.
	RetByReference
)

// funcInfo is the per-function metadata computed once by the whole
// program pre-pass and consumed both at call sites and in the callee's
// own prologue.
type funcInfo struct {
	Result mir.Type
	Conv   ReturnConvention
	// Words is the return buffer size in words for RetByReference.
	Words int
}

// returnConvention decides the convention from a return type: multi
// field records and fixed arrays of records go by reference, everything
// else by value.
func (e *Emitter) returnConvention(result mir.Type) (ReturnConvention, int) {
	switch {
	case result.IsRecord():
		words := e.recordArityOf(result.Name)
		if words > 1 {
			return RetByReference, words
		}
		return RetByValue, 0
	case result.IsRecordArray():
		elem := e.recordArityOf(result.Elem.Name)
		if elem < 1 {
			elem = 1
		}
		return RetByReference, result.Len * elem
	default:
		return RetByValue, 0
	}
}
