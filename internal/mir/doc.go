// Package mir defines the mid-level intermediate representation consumed
// by the code-generation backend: functions made of basic blocks of
// assignment statements plus a terminator, over an operand/place/rvalue
// value model.
//
// The front-end serializes typed MIR modules to disk as msgpack; this
// package decodes, validates and pretty-prints them. It never builds MIR
// from source text.
package mir
