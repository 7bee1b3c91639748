package pattern

import (
	"strconv"
	"strings"
)

// Substitute renders replacement's instruction patterns into concrete
// assembler text using the variables bound by a Match, instantiates it
// through oracle, and pads the result to exactly matchLength bytes with
// single-byte NOPs (0x90) so the binary's layout is preserved (spec.md
// §4.G). It fails if the assembled replacement is longer than the span it
// would replace.
func Substitute(replacement []InstructionPattern, match Match, matchLength int, oracle Oracle) ([]byte, error) {
	bound := make(map[string]InstantiatedVariable, len(match.Variables))
	for _, v := range match.Variables {
		bound[v.Name] = v
	}

	var text strings.Builder
	for i, p := range replacement {
		if i > 0 {
			text.WriteByte('\n')
		}
		instantiated, err := instantiateTemplate(p, bound)
		if err != nil {
			return nil, err
		}
		text.WriteString(instantiated)
	}

	assembled, err := oracle.Assemble(text.String())
	if err != nil {
		return nil, &ErrReplacementAssemblyFailed{Template: text.String(), Cause: err}
	}
	if len(assembled) > matchLength {
		return nil, &ErrReplacementTooLarge{MatchedLength: matchLength, AssembledLength: len(assembled)}
	}

	padded := make([]byte, matchLength)
	copy(padded, assembled)
	for i := len(assembled); i < matchLength; i++ {
		padded[i] = 0x90 // NOP
	}
	return padded, nil
}

// instantiateTemplate replaces every $reg:/$num: token in p's source with
// the concrete value bound to that name, and erases $len: tokens (they
// contribute no assembler text). A replacement pattern may only reference
// variables the matched obfuscation pattern actually bound.
func instantiateTemplate(p InstructionPattern, bound map[string]InstantiatedVariable) (string, error) {
	text := p.Source
	for _, v := range p.Variables {
		switch v.Type {
		case Length:
			text = strings.ReplaceAll(text, v.String(), "")
		case Register:
			bv, ok := bound[v.Name]
			if !ok || bv.Kind != Register {
				return "", &ErrDetectionError{Pattern: p.Source}
			}
			text = strings.ReplaceAll(text, v.String(), bv.Reg.Name())
		case Number:
			bv, ok := bound[v.Name]
			if !ok || bv.Kind != Number {
				return "", &ErrDetectionError{Pattern: p.Source}
			}
			text = strings.ReplaceAll(text, v.String(), "0x"+strconv.FormatUint(bv.Value, 16))
		}
	}
	return text, nil
}
