package pattern

import (
	"encoding/binary"
	"regexp"
	"strings"
	"unicode/utf8"
)

// InstantiatedVariable is the concrete value a matcher recovered for one
// symbolic variable: either a numeric value or a register, tagged so
// callers can switch on Kind without dynamic dispatch.
type InstantiatedVariable struct {
	Name string
	Kind VariableType // Number or Register; never Length
	// Value holds the captured little-endian, unsigned numeric value when
	// Kind == Number.
	Value uint64
	// Reg holds the bound register when Kind == Register.
	Reg Register
}

func numberVariable(name string, value uint64) InstantiatedVariable {
	return InstantiatedVariable{Name: name, Kind: Number, Value: value}
}

func registerVariable(name string, reg Register) InstantiatedVariable {
	return InstantiatedVariable{Name: name, Kind: Register, Reg: reg}
}

// equalValue reports whether two instantiations of the same variable name
// agree in both type tag and concrete value.
func (v InstantiatedVariable) equalValue(other InstantiatedVariable) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Value == other.Value
	case Register:
		return v.Reg == other.Reg
	default:
		return false
	}
}

// variableStore accumulates InstantiatedVariables for one candidate match,
// rejecting it the moment a variable name is bound to two different
// values (spec.md §4.F).
type variableStore struct {
	values []InstantiatedVariable
	byName map[string]int
}

func newVariableStore() *variableStore {
	return &variableStore{byName: make(map[string]int)}
}

// tryAdd records v, or checks it against an existing binding of the same
// name. It returns false when the candidate match must be rejected.
func (s *variableStore) tryAdd(v InstantiatedVariable) bool {
	if i, ok := s.byName[v.Name]; ok {
		return s.values[i].equalValue(v)
	}
	s.byName[v.Name] = len(s.values)
	s.values = append(s.values, v)
	return true
}

// littleEndianUint interprets b as an unsigned little-endian integer. The
// upstream matcher only ever reads back Number variables of width ≤ 4
// bytes (spec.md §4.F); callers enforce that bound before calling this.
func littleEndianUint(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:])
}

// InstructionMatcher holds one compiled instruction pattern: its source
// pattern, the regex fragment that recognizes every encoding it can take,
// and the capture-group purpose table used to interpret a match against
// that fragment (spec.md §4.E).
type InstructionMatcher struct {
	Pattern         InstructionPattern
	regexFragment   string
	capturePurposes []capturePurpose
}

// NewInstructionMatcher discovers every encoding p can take (via oracle)
// and compiles them into a regex fragment. It is not compiled into a
// runnable regexp in isolation — its fragment is spliced into an
// ObfuscationMatcher's outer regex.
func NewInstructionMatcher(p InstructionPattern, oracle Oracle) (*InstructionMatcher, error) {
	encodings, err := p.FindEncodings(oracle)
	if err != nil {
		return nil, err
	}
	fragment, purposes := encodingsToRegex(encodings)
	return &InstructionMatcher{Pattern: p, regexFragment: fragment, capturePurposes: purposes}, nil
}

// Match is one accepted occurrence of an ObfuscationMatcher's pattern
// sequence: the recovered variable bindings and the byte offsets (relative
// to the scanned span) it spans.
type Match struct {
	Variables []InstantiatedVariable
	Start     int
	End       int
}

// ObfuscationMatcher concatenates a sequence of InstructionMatcher
// fragments — with no separator, so matches require back-to-back encodings
// — and enforces cross-instruction consistency of variable bindings
// (spec.md §4.F).
type ObfuscationMatcher struct {
	instructionMatchers []*InstructionMatcher
	regex               *regexp.Regexp
}

// NewObfuscationMatcher builds an InstructionMatcher for each pattern (in
// order) and compiles their concatenated fragments into one regex.
func NewObfuscationMatcher(patterns []InstructionPattern, oracle Oracle) (*ObfuscationMatcher, error) {
	matchers := make([]*InstructionMatcher, len(patterns))
	for i, p := range patterns {
		m, err := NewInstructionMatcher(p, oracle)
		if err != nil {
			return nil, err
		}
		matchers[i] = m
	}

	var joined strings.Builder
	for _, m := range matchers {
		joined.WriteString(m.regexFragment)
	}
	// (?s): dot matches \n too, since the byte regex must be able to match
	// arbitrary binary content. Go's regexp has no "-u" (disable unicode)
	// flag; MatchAgainst instead widens every input byte to the code point
	// of the same value, which is what each \xHH escape denotes — see
	// SPEC_FULL.md §4.F.
	regex := regexp.MustCompile("(?s)" + joined.String())

	return &ObfuscationMatcher{instructionMatchers: matchers, regex: regex}, nil
}

// InstructionPatterns returns the ordered instruction patterns this matcher
// was built from.
func (m *ObfuscationMatcher) InstructionPatterns() []InstructionPattern {
	out := make([]InstructionPattern, len(m.instructionMatchers))
	for i, im := range m.instructionMatchers {
		out[i] = im.Pattern
	}
	return out
}

// MatchAgainst scans data for every occurrence of the composed pattern,
// reconstructing and consistency-checking variable bindings for each
// candidate. Candidates that bind the same variable name to two different
// concrete values anywhere in the sequence are discarded rather than
// returned.
func (m *ObfuscationMatcher) MatchAgainst(data []byte) []Match {
	// Go's regexp decodes its input as UTF-8, so each byte b is widened to
	// the code point U+00bb; wideToData maps widened offsets back to data.
	wide := make([]byte, 0, 2*len(data))
	wideToData := make([]int, 0, 2*len(data)+1)
	for i, b := range data {
		wide = utf8.AppendRune(wide, rune(b))
		for len(wideToData) < len(wide) {
			wideToData = append(wideToData, i)
		}
	}
	wideToData = append(wideToData, len(data))

	var matches []Match
	for _, captures := range m.regex.FindAllSubmatchIndex(wide, -1) {
		for k, c := range captures {
			if c >= 0 {
				captures[k] = wideToData[c]
			}
		}
		if match, ok := m.reconstructMatch(data, captures); ok {
			matches = append(matches, match)
		}
	}
	return matches
}

// reconstructMatch walks the concatenated capture-group purposes for one
// regex match, recovering each instruction's bound encoding and number
// variables, and checks that repeated variable names agree.
func (m *ObfuscationMatcher) reconstructMatch(data []byte, captures []int) (Match, bool) {
	start, end := captures[0], captures[1]

	store := newVariableStore()
	groupOffset := 1 // group indices within each fragment start at 1; 0 is the whole match

	for _, im := range m.instructionMatchers {
		encodingGroup, ok := findParticipatingEncoding(captures, im.capturePurposes, groupOffset)
		if !ok {
			// A concatenated regex that matched overall must have a
			// participating NewEncoding group in every fragment.
			return Match{}, false
		}

		purpose := im.capturePurposes[encodingGroup]
		for _, b := range purpose.registerBindings {
			if !store.tryAdd(registerVariable(b.Name, b.Register)) {
				return Match{}, false
			}
		}

		for j := encodingGroup + 1; j < len(im.capturePurposes); j++ {
			p := im.capturePurposes[j]
			if p.kind != purposeNumberVariable {
				break
			}
			lo, hi := captures[2*(j+groupOffset)], captures[2*(j+groupOffset)+1]
			captured := data[lo:hi]
			if len(captured) > 4 {
				// Number variables are only ever read back up to 4 bytes
				// wide (spec.md §4.F); a wider capture can't be interpreted
				// and the whole candidate is rejected.
				return Match{}, false
			}
			if !store.tryAdd(numberVariable(p.variableName, littleEndianUint(captured))) {
				return Match{}, false
			}
		}

		groupOffset += len(im.capturePurposes)
	}

	return Match{Variables: store.values, Start: start, End: end}, true
}

// findParticipatingEncoding returns the index (within purposes) of the
// NewEncoding group that participated in this match, i.e. whose capture
// slice is present (non -1). Exactly one such group exists per fragment in
// any overall match, since the fragment is an alternation of encodings.
func findParticipatingEncoding(captures []int, purposes []capturePurpose, groupOffset int) (int, bool) {
	for i, p := range purposes {
		if p.kind != purposeNewEncoding {
			continue
		}
		if captures[2*(i+groupOffset)] != -1 {
			return i, true
		}
	}
	return 0, false
}
