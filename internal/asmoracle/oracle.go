// Package asmoracle is the concrete x86-64 assembler backend behind
// pattern.Oracle: a single-line, Intel-syntax encoder built from scratch,
// adapted from the teacher's register/REX/ModRM tables
// (architecture/x86_64/registers.go, v0/kasm/codegen_encode.go) rather than
// shelling out to an external toolchain. Deterministic and synchronous, as
// spec.md §4.B requires: the same text always assembles to the same bytes,
// and each X86Oracle's mutex serializes every call made through it, since
// encoding discovery issues many probes back to back (spec.md §5).
package asmoracle

import "sync"

// X86Oracle implements pattern.Oracle. The zero value is ready to use.
type X86Oracle struct {
	mu sync.Mutex
}

// New returns a ready-to-use X86Oracle.
func New() *X86Oracle {
	return &X86Oracle{}
}

// Assemble turns a single Intel-syntax x86-64 instruction string into its
// encoded bytes. Safe for concurrent use: calls are serialized internally.
func (o *X86Oracle) Assemble(text string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return assembleLine(text)
}
