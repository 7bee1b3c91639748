package patterndb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keurnel/deobfuscator/internal/patterndb"
)

const sampleDatabase = `[
  {
    "pattern": ["lea rbp,[rip + $num:disp]", "xchg rbp,[rsp]", "ret"],
    "replacement": ["jmp [rip + $num:disp]"]
  }
]`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pattern_database.json")
	if err := os.WriteFile(path, []byte(sampleDatabase), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db, err := patterndb.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(db.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(db.Patterns))
	}
	op := db.Patterns[0]
	if len(op.Patterns) != 3 || len(op.Replacements) != 1 {
		t.Fatalf("pattern entry shape = %+v", op)
	}
	if op.Patterns[0].Source != "lea rbp,[rip + $num:disp]" {
		t.Errorf("first pattern instruction = %q", op.Patterns[0].Source)
	}
}

func TestLoad_InvalidInstructionIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	bad := `[{"pattern": ["mov eax, $weird:x"], "replacement": ["nop"]}]`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := patterndb.Load(path); err == nil {
		t.Fatal("expected an error for an unknown variable type")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pattern_database.json")
	if err := os.WriteFile(path, []byte(sampleDatabase), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db, err := patterndb.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	roundTripPath := filepath.Join(dir, "roundtrip.json")
	if err := db.Save(roundTripPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := patterndb.Load(roundTripPath)
	if err != nil {
		t.Fatalf("reload after Save: %v", err)
	}
	if len(reloaded.Patterns) != len(db.Patterns) {
		t.Fatalf("round-trip changed pattern count: got %d, want %d", len(reloaded.Patterns), len(db.Patterns))
	}
	for i, op := range reloaded.Patterns {
		want := db.Patterns[i]
		if len(op.Patterns) != len(want.Patterns) || len(op.Replacements) != len(want.Replacements) {
			t.Fatalf("entry %d shape changed: got %+v, want %+v", i, op, want)
		}
		for j, ip := range op.Patterns {
			if ip.Source != want.Patterns[j].Source {
				t.Errorf("entry %d pattern %d = %q, want %q", i, j, ip.Source, want.Patterns[j].Source)
			}
		}
		for j, ip := range op.Replacements {
			if ip.Source != want.Replacements[j].Source {
				t.Errorf("entry %d replacement %d = %q, want %q", i, j, ip.Source, want.Replacements[j].Source)
			}
		}
	}
}
