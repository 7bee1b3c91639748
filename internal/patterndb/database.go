// Package patterndb loads and saves the JSON pattern-database file format
// spec.md §6 describes: an ordered list of obfuscation patterns, each a
// pair of plain-string instruction sequences in the pattern package's
// grammar (spec.md §4.A). Deserialization failure of any instruction is a
// fatal load error, matching spec.md §6's "Deserialization failure of any
// instruction is a fatal load error".
package patterndb

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/keurnel/deobfuscator/internal/pattern"
)

// entry is one database record's wire shape: "pattern" and "replacement"
// arrays of plain instruction strings, matching spec.md §6's example
// document exactly.
type entry struct {
	Pattern     []string `json:"pattern"`
	Replacement []string `json:"replacement"`
}

// Database is an ordered list of obfuscation patterns loaded from a JSON
// document. Order is preserved end to end, since the CLI scans patterns in
// database order (SPEC_FULL.md §9).
type Database struct {
	Patterns []pattern.ObfuscationPattern
}

// Load reads and parses the pattern database at path. Any instruction that
// fails to parse (spec.md §4.A) aborts the whole load.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern database %s: %w", path, err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse pattern database %s: %w", path, err)
	}

	db := &Database{Patterns: make([]pattern.ObfuscationPattern, len(entries))}
	for i, e := range entries {
		op, err := pattern.NewObfuscationPattern(e.Pattern, e.Replacement)
		if err != nil {
			return nil, fmt.Errorf("pattern database %s, entry %d: %w", path, i, err)
		}
		db.Patterns[i] = op
	}
	return db, nil
}

// Save renders the database back to the same JSON shape Load reads,
// preserving order; used by round-trip tests (spec.md §8 S6) and by any
// tooling that edits a database programmatically.
func (db *Database) Save(path string) error {
	entries := make([]entry, len(db.Patterns))
	for i, op := range db.Patterns {
		entries[i] = entry{
			Pattern:     sourcesOf(op.Patterns),
			Replacement: sourcesOf(op.Replacements),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pattern database: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pattern database %s: %w", path, err)
	}
	return nil
}

func sourcesOf(patterns []pattern.InstructionPattern) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.Source
	}
	return out
}
