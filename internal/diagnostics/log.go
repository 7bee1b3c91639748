package diagnostics

import "sync"

// Log is a passive, append-only sink that accumulates diagnostic entries as
// the deobfuscation pipeline progresses. It is safe for concurrent writes —
// the CLI driver may scan several PE sections on separate goroutines while
// sharing one Log.
type Log struct {
	phase   string
	entries []*Entry
	mu      sync.Mutex
}

// NewLog returns an empty Log with no active phase.
func NewLog() *Log {
	return &Log{entries: make([]*Entry, 0)}
}

// SetPhase sets the current pipeline phase ("discover", "scan",
// "substitute", ...). Subsequent entries are tagged with this phase until
// it changes again.
func (l *Log) SetPhase(name string) {
	l.mu.Lock()
	l.phase = name
	l.mu.Unlock()
}

// Phase returns the current pipeline phase name.
func (l *Log) Phase() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

func (l *Log) record(severity string, location Location, message string) *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &Entry{
		severity: severity,
		phase:    l.phase,
		message:  message,
		location: location,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Warning records a SeverityWarning entry. Used for ErrReplacementTooLarge
// and ErrReplacementAssemblyFailed — both leave the scanned bytes untouched.
func (l *Log) Warning(location Location, message string) *Entry {
	return l.record(SeverityWarning, location, message)
}

// Info records a SeverityInfo entry.
func (l *Log) Info(location Location, message string) *Entry {
	return l.record(SeverityInfo, location, message)
}

// Debug records a SeverityDebug entry.
func (l *Log) Debug(location Location, message string) *Entry {
	return l.record(SeverityDebug, location, message)
}

// Trace records a SeverityTrace entry.
func (l *Log) Trace(location Location, message string) *Entry {
	return l.record(SeverityTrace, location, message)
}

// Entries returns all recorded entries in insertion order.
func (l *Log) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]*Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Warnings returns only the SeverityWarning entries.
func (l *Log) Warnings() []*Entry {
	return l.filter(SeverityWarning)
}

// Count returns the total number of recorded entries.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) filter(severity string) []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []*Entry
	for _, e := range l.entries {
		if e.severity == severity {
			result = append(result, e)
		}
	}
	return result
}
