// Package diagnostics provides an append-only, severity-tagged event log
// for the deobfuscation pipeline. It does no I/O or formatting itself; a
// renderer (the CLI) consumes the recorded entries.
package diagnostics

import "fmt"

// Location identifies a position inside a scanned binary: which span
// (typically a PE section name) and the virtual address within it. It is a
// value type — safe to copy and compare.
type Location struct {
	span    string
	address uint64
}

// Loc creates a Location for the given span name and virtual address.
func Loc(span string, address uint64) Location {
	return Location{span: span, address: address}
}

// Span returns the name of the span (section) the location falls in.
func (l Location) Span() string { return l.span }

// Address returns the virtual address of the location.
func (l Location) Address() uint64 { return l.address }

// String returns a human-readable "span@0xADDR" representation.
func (l Location) String() string {
	return fmt.Sprintf("%s@0x%x", l.span, l.address)
}
