// Package diag collects and renders backend diagnostics. Positions are
// MIR coordinates (function, block, statement) rather than source
// spans: by the time the backend runs, source text is long gone.
package diag
