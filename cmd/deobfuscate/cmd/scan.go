package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/keurnel/deobfuscator/internal/asmoracle"
	"github.com/keurnel/deobfuscator/internal/binaryscan"
	"github.com/keurnel/deobfuscator/internal/diagnostics"
	"github.com/keurnel/deobfuscator/internal/pattern"
	"github.com/keurnel/deobfuscator/internal/patterndb"
)

var (
	scanOutput   string
	scanDatabase string
	scanVerbose  int
	scanNoOutput bool
)

var scanCmd = &cobra.Command{
	Use:     "scan <input>",
	GroupID: "file-operations",
	Short:   "Scan a PE binary for obfuscation idioms and rewrite matches in place",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "output path (default: <stem>.deobf.<ext> next to input)")
	scanCmd.Flags().StringVarP(&scanDatabase, "database", "d", "pattern_database.json", "pattern database path")
	scanCmd.Flags().CountVarP(&scanVerbose, "verbose", "v", "increase diagnostic verbosity (repeatable)")
	scanCmd.Flags().BoolVarP(&scanNoOutput, "no-output", "n", false, "scan and report matches only; write nothing")
}

// runScan drives one full pass: load the pattern database, build a matcher
// per entry, scan every code span of the input PE file, substitute and
// NOP-pad every accepted match, and (unless -n) write the patched file.
func runScan(cmd *cobra.Command, input string) error {
	log := diagnostics.NewLog()
	oracle := asmoracle.New()

	log.SetPhase("load")
	db, err := patterndb.Load(scanDatabase)
	if err != nil {
		return fmt.Errorf("load pattern database: %w", err)
	}

	matchers := make([]*pattern.ObfuscationMatcher, len(db.Patterns))
	for i, op := range db.Patterns {
		m, err := pattern.NewObfuscationMatcher(op.Patterns, oracle)
		if err != nil {
			return fmt.Errorf("build matcher for pattern database entry %d: %w", i, err)
		}
		matchers[i] = m
	}

	log.SetPhase("scan")
	file, err := binaryscan.Open(input)
	if err != nil {
		return fmt.Errorf("open input binary: %w", err)
	}

	totalMatches := scanSpans(log, oracle, db.Patterns, matchers, file.Spans)

	output := resolveOutputPath(input)
	if !scanNoOutput {
		if err := file.WriteTo(output); err != nil {
			return fmt.Errorf("write output binary: %w", err)
		}
	}

	report(cmd, log, totalMatches, file.TotalCodeSize(), output)
	return nil
}

// scanSpans runs every matcher against every code span concurrently, one
// goroutine per span bounded by GOMAXPROCS workers (SPEC_FULL.md §5): each
// span's bytes are disjoint, so the only shared state is the mutex-guarded
// oracle and the mutex-guarded diagnostics log, both already safe for
// concurrent use.
func scanSpans(log *diagnostics.Log, oracle pattern.Oracle, patterns []pattern.ObfuscationPattern, matchers []*pattern.ObfuscationMatcher, spans []binaryscan.Span) int {
	var total int64
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	for spanIdx := range spans {
		span := &spans[spanIdx]
		wg.Add(1)
		sem <- struct{}{}
		go func(span *binaryscan.Span) {
			defer wg.Done()
			defer func() { <-sem }()
			for patIdx, m := range matchers {
				n := scanSpan(log, oracle, patterns[patIdx], m, span)
				atomic.AddInt64(&total, int64(n))
			}
		}(span)
	}
	wg.Wait()
	return int(total)
}

// scanSpan runs one obfuscation matcher against one code span, substituting
// and NOP-padding every accepted, successfully-replaced match. A match
// whose replacement is too large or fails to assemble is logged as a
// warning and left untouched (spec.md §7); scanning of the rest of the span
// continues regardless.
func scanSpan(log *diagnostics.Log, oracle pattern.Oracle, op pattern.ObfuscationPattern, m *pattern.ObfuscationMatcher, span *binaryscan.Span) int {
	accepted := 0
	for _, match := range m.MatchAgainst(span.Code) {
		loc := diagnostics.Loc(span.Name, span.VirtualAddress+uint64(match.Start))
		length := match.End - match.Start

		patched, err := pattern.Substitute(op.Replacements, match, length, oracle)
		if err != nil {
			log.Warning(loc, err.Error())
			continue
		}

		copy(span.Code[match.Start:match.End], patched)
		accepted++
		log.Info(loc, fmt.Sprintf("replaced %d bytes", length))
	}
	return accepted
}

// resolveOutputPath computes the default "<stem>.deobf.<ext>" output path
// next to input when -o/--output wasn't given (spec.md §6).
func resolveOutputPath(input string) string {
	if scanOutput != "" {
		return scanOutput
	}
	dir := filepath.Dir(input)
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(dir, stem+".deobf"+ext)
}

// report prints the verbosity-gated diagnostic entries and the end-of-scan
// summary SPEC_FULL.md §9 adds: total accepted matches and scanned code
// size.
func report(cmd *cobra.Command, log *diagnostics.Log, totalMatches, totalCodeBytes int, output string) {
	for _, e := range log.Entries() {
		switch e.Severity() {
		case diagnostics.SeverityWarning:
			cmd.PrintErrln(e.String())
		case diagnostics.SeverityInfo:
			if scanVerbose >= 1 {
				cmd.Println(e.String())
			}
		default:
			if scanVerbose >= 2 {
				cmd.Println(e.String())
			}
		}
	}

	cmd.Printf("matched %d occurrence(s) across %.2f KB of code\n", totalMatches, float64(totalCodeBytes)/1024.0)
	if !scanNoOutput {
		cmd.Printf("wrote %s\n", output)
	}
}
