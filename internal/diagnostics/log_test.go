package diagnostics_test

import (
	"testing"

	"github.com/keurnel/deobfuscator/internal/diagnostics"
)

func TestLog_RecordsInInsertionOrder(t *testing.T) {
	log := diagnostics.NewLog()
	log.SetPhase("scan")
	log.Info(diagnostics.Loc(".text", 0x1000), "first")
	log.Warning(diagnostics.Loc(".text", 0x1010), "second")

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message() != "first" || entries[1].Message() != "second" {
		t.Fatalf("entries out of order: %v", entries)
	}
	if entries[0].Phase() != "scan" {
		t.Fatalf("expected phase %q, got %q", "scan", entries[0].Phase())
	}
}

func TestLog_WarningsFiltersBySeverity(t *testing.T) {
	log := diagnostics.NewLog()
	log.Info(diagnostics.Loc(".text", 0), "info entry")
	log.Warning(diagnostics.Loc(".text", 4), "replacement too large")
	log.Warning(diagnostics.Loc(".text", 8), "replacement assembly failed")

	warnings := log.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	for _, w := range warnings {
		if w.Severity() != diagnostics.SeverityWarning {
			t.Fatalf("expected warning severity, got %q", w.Severity())
		}
	}
}

func TestLog_Count(t *testing.T) {
	log := diagnostics.NewLog()
	if log.Count() != 0 {
		t.Fatalf("expected empty log, got count %d", log.Count())
	}
	log.Trace(diagnostics.Loc(".text", 0), "probe")
	log.Debug(diagnostics.Loc(".text", 0), "encoded")
	if log.Count() != 2 {
		t.Fatalf("expected count 2, got %d", log.Count())
	}
}

func TestEntry_WithHintAndString(t *testing.T) {
	log := diagnostics.NewLog()
	log.SetPhase("substitute")
	entry := log.Warning(diagnostics.Loc(".text", 0x2000), "replacement too large").
		WithHint("the replacement template assembles to more bytes than the match")

	if entry.Hint() == "" {
		t.Fatalf("expected hint to be set")
	}
	want := "warning [substitute] .text@0x2000: replacement too large"
	if entry.String() != want {
		t.Fatalf("String() = %q, want %q", entry.String(), want)
	}
}

func TestLog_ConcurrentWrites(t *testing.T) {
	log := diagnostics.NewLog()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			log.Info(diagnostics.Loc(".text", uint64(i)), "concurrent")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if log.Count() != 8 {
		t.Fatalf("expected 8 entries after concurrent writes, got %d", log.Count())
	}
}
