// Package x86 lowers MIR modules to System V x86-64 assembly text.
//
// The package is split by concern: instr.go and regs.go hold the
// instruction model, frame.go the per-function location registry,
// operand.go the operand resolver, emit.go the whole-program driver and
// the remaining emit_*.go files the per-statement lowering logic.
//
// Everything but the first six call arguments lives on the stack; there
// is no register allocator and no heap — composite values are
// stack-simulated at negative frame offsets.
package x86
