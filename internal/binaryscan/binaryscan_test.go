package binaryscan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// newTestFile builds a File directly from section ranges, bypassing PE
// parsing, so WriteTo/TotalCodeSize can be exercised without constructing a
// full PE image byte-for-byte.
func newTestFile(raw []byte, ranges []sectionRange, spans []Span) *File {
	return &File{raw: raw, sections: ranges, Spans: spans}
}

func TestFile_TotalCodeSize(t *testing.T) {
	raw := make([]byte, 32)
	f := newTestFile(raw, nil, []Span{
		{Name: ".text", Code: raw[0:16], VirtualAddress: 0x1000},
		{Name: ".textbss", Code: raw[16:20], VirtualAddress: 0x2000},
	})
	if got, want := f.TotalCodeSize(), 20; got != want {
		t.Errorf("TotalCodeSize() = %d, want %d", got, want)
	}
}

func TestFile_WriteTo_PatchesOnlyCodeSpans(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAA}, 32)
	codeCopy := make([]byte, 8)
	copy(codeCopy, raw[4:12])

	f := newTestFile(raw, []sectionRange{
		{name: ".text", fileOffset: 4, fileSize: 8, spanIndex: 0},
	}, []Span{
		{Name: ".text", Code: codeCopy, VirtualAddress: 0x1000},
	})

	// Simulate a patch: the caller mutates Span.Code in place.
	f.Spans[0].Code[0] = 0x90
	f.Spans[0].Code[1] = 0x90

	dir := t.TempDir()
	out := filepath.Join(dir, "patched.bin")
	if err := f.WriteTo(out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read patched file: %v", err)
	}
	if written[4] != 0x90 || written[5] != 0x90 {
		t.Errorf("patched bytes not written at file offset 4: % x", written[4:12])
	}
	if written[0] != 0xAA || written[3] != 0xAA {
		t.Errorf("bytes outside the code span were modified: % x", written[:4])
	}
	if written[12] != 0xAA {
		t.Errorf("bytes after the code span were modified: %x", written[12])
	}
}
