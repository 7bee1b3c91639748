package pattern

import (
	"fmt"
	"strings"
)

// EncodingPart is one piece of a concrete byte-level encoding: either a run
// of literal bytes that must appear verbatim, or a wildcard run whose
// captured bytes are the little-endian value of a Number variable.
type EncodingPart struct {
	Fixed        []byte // nil when this part is an Intermediate
	IsFixed      bool
	Length       int    // byte width of the intermediate: 1, 2, 4, or 8
	VariableName string // name of the Number variable, when !IsFixed
}

func fixedPart(b []byte) EncodingPart {
	cp := make([]byte, len(b))
	copy(cp, b)
	return EncodingPart{Fixed: cp, IsFixed: true}
}

func intermediatePart(length int, variableName string) EncodingPart {
	return EncodingPart{Length: length, VariableName: variableName}
}

// Encoding is one concrete byte-level form an instruction pattern may take.
type Encoding struct {
	Parts            []EncodingPart
	RegisterBindings []RegisterBinding
}

// key returns a canonical string used to deduplicate structurally
// identical encodings (Go slices aren't map-key comparable, so Encoding
// itself can't be used as one).
func (e Encoding) key() string {
	var b strings.Builder
	for _, p := range e.Parts {
		if p.IsFixed {
			fmt.Fprintf(&b, "F%x|", p.Fixed)
		} else {
			fmt.Fprintf(&b, "I%d:%s|", p.Length, p.VariableName)
		}
	}
	b.WriteByte(';')
	for _, r := range e.RegisterBindings {
		fmt.Fprintf(&b, "%s=%s,", r.Name, r.Register.Name())
	}
	return b.String()
}

// numberProbes are the four sentinel-terminated hex literals used to
// discover the byte width of a single $num: variable. Each ends in the
// 0x0F sentinel byte so detect_intermediate_len can locate it regardless
// of whether the assembler chose a 1/2/4/8-byte immediate or displacement
// form (spec.md §4.C).
var numberProbes = []string{
	"0x0F",
	"0xDD0F",
	"0xDDDDDD0F",
	"0xDDDDDDDDDDDDDD0F",
}

// FindEncodings enumerates every concrete byte-level encoding p can take,
// by probing oracle with every combination of register-variable
// instantiation and (for patterns with exactly one $num: variable)
// sentinel-terminated immediate probes (spec.md §4.C).
func (p InstructionPattern) FindEncodings(oracle Oracle) ([]Encoding, error) {
	if len(p.Variables) == 0 {
		bytes, err := oracle.Assemble(p.Source)
		if err != nil {
			return nil, &ErrDetectionError{Pattern: p.Source}
		}
		return []Encoding{{Parts: []EncodingPart{fixedPart(bytes)}}}, nil
	}

	numberVars := p.NumberVariables()
	if len(numberVars) > 1 {
		return nil, &ErrUnsupportedNumberVariables{Pattern: p.Source, Count: len(numberVars)}
	}

	registerVars := p.UniqueRegisterVariables()
	found := make(map[string]Encoding)
	assemblyEverSucceeded := false

	forEachRegisterTuple(len(registerVars), func(tuple []Register) {
		bindings := make([]RegisterBinding, len(registerVars))
		for i, v := range registerVars {
			bindings[i] = RegisterBinding{Name: v.Name, Register: tuple[i]}
		}
		instance := p.substituteRegisters(bindings)

		if len(numberVars) == 0 {
			bytes, err := oracle.Assemble(instance)
			if err != nil {
				return
			}
			assemblyEverSucceeded = true
			enc := Encoding{Parts: []EncodingPart{fixedPart(bytes)}, RegisterBindings: bindings}
			found[enc.key()] = enc
			return
		}

		numberVar := numberVars[0]
		for _, probe := range numberProbes {
			probedText := strings.Replace(instance, numberVar.String(), probe, 1)
			bytes, err := oracle.Assemble(probedText)
			if err != nil {
				continue
			}
			assemblyEverSucceeded = true

			length, err := detectIntermediateLength(bytes)
			if err != nil {
				continue
			}
			prefix := bytes[:len(bytes)-length]
			enc := Encoding{
				Parts: []EncodingPart{
					fixedPart(prefix),
					intermediatePart(length, numberVar.Name),
				},
				RegisterBindings: bindings,
			}
			found[enc.key()] = enc
		}
	})

	if len(found) == 0 {
		if assemblyEverSucceeded {
			return nil, &ErrDetectionError{Pattern: p.Source}
		}
		return nil, &ErrAssemblyFailed{Pattern: p.Source}
	}

	encodings := make([]Encoding, 0, len(found))
	for _, e := range found {
		encodings = append(encodings, e)
	}
	return encodings, nil
}

// detectIntermediateLength scans encoded backwards for the 0x0F sentinel
// byte and returns how many trailing bytes (1, 2, 4, or 8) it delimits.
// The sentinel's high nibble is 0 (never a REX prefix byte) and survives
// little-endian placement as the most-significant byte of an all-0xDD
// probe immediate (spec.md §4.C).
func detectIntermediateLength(encoded []byte) (int, error) {
	n := len(encoded)
	switch {
	case n >= 1 && encoded[n-1] == 0x0F:
		return 1, nil
	case n >= 2 && encoded[n-2] == 0x0F:
		return 2, nil
	case n >= 4 && encoded[n-4] == 0x0F:
		return 4, nil
	case n >= 8 && encoded[n-8] == 0x0F:
		return 8, nil
	default:
		return 0, fmt.Errorf("no sentinel found in %x", encoded)
	}
}

// forEachRegisterTuple calls f once for every k-tuple of registers drawn
// (with repetition) from AllRegisters(), where k = count. Order is
// deterministic so that, together with the map-based dedup in
// FindEncodings, two runs over the same pattern produce the same encoding
// set.
func forEachRegisterTuple(count int, f func(tuple []Register)) {
	if count == 0 {
		f(nil)
		return
	}
	registers := AllRegisters()
	tuple := make([]Register, count)
	var recurse func(i int)
	recurse = func(i int) {
		if i == count {
			f(tuple)
			return
		}
		for _, r := range registers {
			tuple[i] = r
			recurse(i + 1)
		}
	}
	recurse(0)
}
