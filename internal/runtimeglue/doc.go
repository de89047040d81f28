// Package runtimeglue fixes the runtime ABI surface the backend emits
// calls against, and supplies the textual glue (entry-point wrapper and
// hand-written runtime stubs) appended verbatim after the generated
// sections. The backend treats the glue as an opaque string; the real
// runtime implementations live in a separate library linked by name.
package runtimeglue
