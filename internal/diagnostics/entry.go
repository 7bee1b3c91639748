package diagnostics

import "fmt"

// Severity constants for entry classification, ordered from least to most
// noisy. -v controls how many of these the CLI renders.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityDebug   = "debug"
	SeverityTrace   = "trace"
)

// Entry is a single diagnostic event recorded during pattern discovery,
// scanning, or substitution. Entries are append-only — once created, their
// core fields are immutable; only the optional hint can be attached via
// WithHint before the entry is handed back to the caller.
type Entry struct {
	severity string
	phase    string
	message  string
	location Location
	hint     string
}

// Severity returns the entry's severity level.
func (e *Entry) Severity() string { return e.severity }

// Phase returns the pipeline phase active when the entry was recorded.
func (e *Entry) Phase() string { return e.phase }

// Message returns the human-readable description.
func (e *Entry) Message() string { return e.message }

// Location returns the position the entry refers to.
func (e *Entry) Location() Location { return e.location }

// Hint returns the optional remediation suggestion, or "".
func (e *Entry) Hint() string { return e.hint }

// WithHint attaches a remediation suggestion and returns the same *Entry
// for chaining at the call site.
func (e *Entry) WithHint(text string) *Entry {
	e.hint = text
	return e
}

// String returns a single-line representation: "severity [phase] location: message".
func (e *Entry) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.severity, e.phase, e.location.String(), e.message)
}
