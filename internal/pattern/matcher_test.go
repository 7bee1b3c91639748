package pattern_test

import (
	"strconv"
	"testing"

	"github.com/keurnel/deobfuscator/internal/asmoracle"
	"github.com/keurnel/deobfuscator/internal/pattern"
)

func mustParse(t *testing.T, source string) pattern.InstructionPattern {
	t.Helper()
	p, err := pattern.ParseInstructionPattern(source)
	if err != nil {
		t.Fatalf("ParseInstructionPattern(%q): %v", source, err)
	}
	return p
}

func mustAssemble(t *testing.T, oracle pattern.Oracle, text string) []byte {
	t.Helper()
	b, err := oracle.Assemble(text)
	if err != nil {
		t.Fatalf("Assemble(%q): %v", text, err)
	}
	return b
}

// TestObfuscationMatcher_FullSequenceMatch is spec.md §8 S1: the three-
// instruction idiom "lea rbp,[rip+d]; xchg rbp,[rsp]; ret" must match as one
// 12-byte span and recover d exactly.
func TestObfuscationMatcher_FullSequenceMatch(t *testing.T) {
	oracle := asmoracle.New()
	patterns := []pattern.InstructionPattern{
		mustParse(t, "lea rbp,[rip + $num:d]"),
		mustParse(t, "xchg rbp,[rsp]"),
		mustParse(t, "ret"),
	}
	m, err := pattern.NewObfuscationMatcher(patterns, oracle)
	if err != nil {
		t.Fatalf("NewObfuscationMatcher: %v", err)
	}

	data := []byte{0x48, 0x8D, 0x2D, 0x47, 0xF7, 0xE4, 0xFF, 0x48, 0x87, 0x2C, 0x24, 0xC3}

	matches := m.MatchAgainst(data)
	if len(matches) != 1 {
		t.Fatalf("MatchAgainst: got %d matches, want 1", len(matches))
	}

	match := matches[0]
	if match.Start != 0 || match.End != 12 {
		t.Errorf("match span = [%d,%d), want [0,12)", match.Start, match.End)
	}

	if len(match.Variables) != 1 {
		t.Fatalf("match.Variables = %v, want exactly one (d)", match.Variables)
	}
	d := match.Variables[0]
	if d.Name != "d" || d.Kind != pattern.Number || d.Value != 0xFFE4F747 {
		t.Errorf("recovered variable = %+v, want d=0xFFE4F747", d)
	}
}

// TestObfuscationMatcher_NumberWidthRecovery is spec.md §8 S2: for a range
// of displacement magnitudes, a single-instruction pattern recovers the
// exact bound value regardless of which probe width the discoverer needed
// to use to find it.
func TestObfuscationMatcher_NumberWidthRecovery(t *testing.T) {
	oracle := asmoracle.New()
	p := mustParse(t, "lea eax,[rip + $num:n]")
	m, err := pattern.NewObfuscationMatcher([]pattern.InstructionPattern{p}, oracle)
	if err != nil {
		t.Fatalf("NewObfuscationMatcher: %v", err)
	}

	values := []uint64{1, 0xFF, 0x100, 0xFFFF, 0x10000, 0x9E3779B1, 0xFFFFFFFF}
	for _, n := range values {
		data := mustAssemble(t, oracle, "lea eax,[rip + 0x"+strconv.FormatUint(n, 16)+"]")

		matches := m.MatchAgainst(data)
		if len(matches) != 1 {
			t.Fatalf("n=0x%x: MatchAgainst got %d matches, want 1", n, len(matches))
		}
		if len(matches[0].Variables) != 1 || matches[0].Variables[0].Value != n {
			t.Errorf("n=0x%x: recovered %+v", n, matches[0].Variables)
		}
	}
}

// TestObfuscationMatcher_RejectsRegisterMismatchAcrossInstructions is
// spec.md §8 S3: the same $reg:r1 variable must bind to the same concrete
// register across every instruction it appears in; an input that uses rbp
// in the first instruction and rcx in the second must not match.
func TestObfuscationMatcher_RejectsRegisterMismatchAcrossInstructions(t *testing.T) {
	oracle := asmoracle.New()
	patterns := []pattern.InstructionPattern{
		mustParse(t, "lea $reg:r1,[rip + $num:n]"),
		mustParse(t, "xchg $reg:r1,[rsp]"),
		mustParse(t, "ret"),
	}
	m, err := pattern.NewObfuscationMatcher(patterns, oracle)
	if err != nil {
		t.Fatalf("NewObfuscationMatcher: %v", err)
	}

	var data []byte
	data = append(data, mustAssemble(t, oracle, "lea rbp,[rip + 0x1234]")...)
	data = append(data, mustAssemble(t, oracle, "xchg rcx,[rsp]")...)
	data = append(data, mustAssemble(t, oracle, "ret")...)

	if matches := m.MatchAgainst(data); len(matches) != 0 {
		t.Errorf("MatchAgainst(mismatched registers) = %v, want no matches", matches)
	}
}

// TestObfuscationMatcher_DuplicateRegisterVariable is spec.md §8 S4: a
// pattern that repeats the same $reg: variable within one instruction only
// ever recognizes encodings where every occurrence binds to the same
// register — the encoding discoverer never even generates a mismatched
// alternative to match against.
func TestObfuscationMatcher_DuplicateRegisterVariable(t *testing.T) {
	oracle := asmoracle.New()
	p := mustParse(t, "lea $reg:r1,[$reg:r1 + $num:n]")
	m, err := pattern.NewObfuscationMatcher([]pattern.InstructionPattern{p}, oracle)
	if err != nil {
		t.Fatalf("NewObfuscationMatcher: %v", err)
	}

	sameReg := mustAssemble(t, oracle, "lea rbp,[rbp + 0x10]")
	matches := m.MatchAgainst(sameReg)
	if len(matches) != 1 {
		t.Fatalf("MatchAgainst(same register) = %d matches, want 1", len(matches))
	}
	var sawRegister, sawNumber bool
	for _, v := range matches[0].Variables {
		switch v.Kind {
		case pattern.Register:
			sawRegister = true
			if v.Reg.Name() != "rbp" {
				t.Errorf("r1 = %s, want rbp", v.Reg.Name())
			}
		case pattern.Number:
			sawNumber = true
			if v.Value != 0x10 {
				t.Errorf("n = 0x%x, want 0x10", v.Value)
			}
		}
	}
	if !sawRegister || !sawNumber {
		t.Errorf("match.Variables = %v, want both a register and a number binding", matches[0].Variables)
	}

	mismatched := mustAssemble(t, oracle, "lea rbp,[rcx + 0x10]")
	if matches := m.MatchAgainst(mismatched); len(matches) != 0 {
		t.Errorf("MatchAgainst(mismatched registers) = %v, want no matches", matches)
	}
}
