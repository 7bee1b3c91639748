package pattern

// Oracle is the pattern engine's only external collaborator: a
// single-operation assembler contract (spec.md §4.B). Implementations must
// be deterministic — the same input text must always produce the same
// byte output — and are expected to serialize concurrent calls themselves,
// since the underlying assembler backend is typically not re-entrant.
type Oracle interface {
	// Assemble turns a single Intel-syntax x86-64 instruction string into
	// its encoded bytes, or reports why it could not be assembled.
	Assemble(text string) ([]byte, error)
}
