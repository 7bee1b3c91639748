package asmoracle

import "fmt"

// AssemblyError reports why a single instruction string could not be
// assembled: an unknown mnemonic, an operand form that mnemonic doesn't
// support, or a malformed operand. It satisfies the pattern.Oracle
// contract's "bytes | error" half (spec.md §4.B).
type AssemblyError struct {
	Text   string
	Reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %q: %s", e.Text, e.Reason)
}

func assemblyErrorf(text, format string, args ...any) *AssemblyError {
	return &AssemblyError{Text: text, Reason: fmt.Sprintf(format, args...)}
}
