package pattern

import "fmt"

// ErrInvalidVariableType is returned at parse time when a pattern uses a
// variable tag other than num, reg, or len.
type ErrInvalidVariableType struct {
	Tag string
}

func (e *ErrInvalidVariableType) Error() string {
	return fmt.Sprintf("invalid variable type: %s", e.Tag)
}

// ErrAssemblyFailed means every probe instantiation of a pattern was
// rejected by the assembler oracle; matcher construction fails.
type ErrAssemblyFailed struct {
	Pattern string
}

func (e *ErrAssemblyFailed) Error() string {
	return fmt.Sprintf("assembly of pattern %q failed for all variable instantiations", e.Pattern)
}

// ErrDetectionError means probes assembled successfully but no sentinel
// byte could be located in any resulting encoding; matcher construction
// fails.
type ErrDetectionError struct {
	Pattern string
}

func (e *ErrDetectionError) Error() string {
	return fmt.Sprintf("detection of the variable in assembled pattern %q failed", e.Pattern)
}

// ErrUnsupportedNumberVariables is returned when an instruction pattern
// contains more than one $num: variable. The spec's core supports at most
// one number variable per instruction (see spec.md §1 Non-goals).
type ErrUnsupportedNumberVariables struct {
	Pattern string
	Count   int
}

func (e *ErrUnsupportedNumberVariables) Error() string {
	return fmt.Sprintf("pattern %q has %d number variables; only one is supported", e.Pattern, e.Count)
}

// ErrNegativeDisplacement is returned when a pattern subtracts a variable
// operand (e.g. "[rip - $num:x]"). The upstream implementation forbids
// negating variable operands; this core keeps that constraint (see
// DESIGN.md, Open Questions resolved).
type ErrNegativeDisplacement struct {
	Pattern string
}

func (e *ErrNegativeDisplacement) Error() string {
	return fmt.Sprintf("pattern %q negates a variable operand, which is not supported", e.Pattern)
}

// ErrReplacementTooLarge is a non-fatal, scan-site error: the assembled
// replacement is larger than the bytes it would replace. The candidate
// match is abandoned; the binary is not modified for this occurrence.
type ErrReplacementTooLarge struct {
	MatchedLength   int
	AssembledLength int
}

func (e *ErrReplacementTooLarge) Error() string {
	return fmt.Sprintf("replacement assembled to %d bytes, which exceeds the matched %d bytes",
		e.AssembledLength, e.MatchedLength)
}

// ErrReplacementAssemblyFailed is a non-fatal, scan-site error: the
// instantiated replacement template failed to assemble.
type ErrReplacementAssemblyFailed struct {
	Template string
	Cause    error
}

func (e *ErrReplacementAssemblyFailed) Error() string {
	return fmt.Sprintf("failed to assemble replacement %q: %v", e.Template, e.Cause)
}

func (e *ErrReplacementAssemblyFailed) Unwrap() error { return e.Cause }
