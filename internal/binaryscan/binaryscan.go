// Package binaryscan extracts the code-bearing byte spans a PE image
// exposes to the deobfuscation core, and writes patched bytes back in
// place. It is one of the core's opaque external collaborators (spec.md
// §1, §6.3): the core only ever sees (bytes, virtual base address) pairs,
// never a PE structure.
//
// Grounded on original_source/src/main.go's get_code_segments, translated
// from goblin's PE reader to github.com/Binject/debug/pe, a PE/ELF/Mach-O
// manipulation toolkit built for exactly this "read sections, patch bytes
// in place" use case (see SPEC_FULL.md §5.1).
package binaryscan

import (
	"fmt"

	"github.com/Binject/debug/pe"
)

// imageSCNCntCode is IMAGE_SCN_CNT_CODE, the section characteristic flag
// marking a section as containing executable code.
const imageSCNCntCode = 0x00000020

// Span is one contiguous run of code bytes and the virtual address its
// first byte loads at. The core patches Code in place; Span never owns a
// copy beyond what binaryscan hands it.
type Span struct {
	Name           string
	Code           []byte
	VirtualAddress uint64
}

// File wraps an open PE image: its code spans, plus enough bookkeeping to
// write patched bytes back to the same file-offset ranges they came from.
type File struct {
	raw      []byte
	sections []sectionRange
	Spans    []Span
}

type sectionRange struct {
	name       string
	fileOffset int
	fileSize   int
	spanIndex  int
}

// Open reads the PE file at path and extracts its code spans.
func Open(path string) (*File, error) {
	raw, peFile, err := readPE(path)
	if err != nil {
		return nil, err
	}
	defer peFile.Close()

	return newFile(raw, peFile)
}

// readPE is split out from Open so tests can exercise newFile against an
// in-memory *pe.File without touching disk.
func readPE(path string) ([]byte, *pe.File, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, nil, err
	}
	peFile, err := pe.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open PE file %s: %w", path, err)
	}
	return raw, peFile, nil
}

// imageBase reads the image base from whichever OptionalHeader variant
// (PE32 or PE32+) the file carries.
func imageBase(peFile *pe.File) (uint64, error) {
	switch oh := peFile.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		return oh.ImageBase, nil
	case *pe.OptionalHeader32:
		return uint64(oh.ImageBase), nil
	default:
		return 0, fmt.Errorf("unrecognized optional header type %T", peFile.OptionalHeader)
	}
}

// newFile builds a File from an already-parsed *pe.File and the bytes it
// was parsed from, filtering sections to those marked IMAGE_SCN_CNT_CODE
// (spec.md §6.3) and computing each one's virtual address as
// section.VirtualAddress + image base, exactly as the original's
// get_code_segments does.
func newFile(raw []byte, peFile *pe.File) (*File, error) {
	base, err := imageBase(peFile)
	if err != nil {
		return nil, err
	}

	f := &File{raw: raw}
	for _, section := range peFile.Sections {
		if section.Characteristics&imageSCNCntCode == 0 {
			continue
		}

		start := int(section.Offset)
		size := int(section.Size)
		if start < 0 || size < 0 || start+size > len(raw) {
			return nil, fmt.Errorf("section %s: raw-data range [%d:%d) out of bounds (file is %d bytes)",
				section.Name, start, start+size, len(raw))
		}

		f.sections = append(f.sections, sectionRange{
			name:       section.Name,
			fileOffset: start,
			fileSize:   size,
			spanIndex:  len(f.Spans),
		})
		f.Spans = append(f.Spans, Span{
			Name:           section.Name,
			Code:           raw[start : start+size],
			VirtualAddress: uint64(section.VirtualAddress) + base,
		})
	}
	return f, nil
}

// WriteTo writes the (possibly patched) span bytes back to the file at
// path, leaving every byte outside the extracted code spans untouched.
func (f *File) WriteTo(path string) error {
	out := make([]byte, len(f.raw))
	copy(out, f.raw)
	for _, sr := range f.sections {
		copy(out[sr.fileOffset:sr.fileOffset+sr.fileSize], f.Spans[sr.spanIndex].Code)
	}
	return writeAll(path, out)
}

// TotalCodeSize returns the summed length of every extracted code span,
// for the end-of-scan summary SPEC_FULL.md §9 adds.
func (f *File) TotalCodeSize() int {
	total := 0
	for _, s := range f.Spans {
		total += len(s.Code)
	}
	return total
}
