package pattern

import (
	"fmt"
	"strings"
)

// capturePurposeKind tags what a regex capture group index corresponds to.
type capturePurposeKind int

const (
	purposeWholeMatch capturePurposeKind = iota
	purposeNewEncoding
	purposeNumberVariable
)

// capturePurpose is the sum type parallel to a compiled regex's capture
// groups: each index either opens a new encoding alternative (carrying that
// encoding's register bindings), denotes one of its Number-variable
// intermediates, or (index 0 only) is the whole match.
type capturePurpose struct {
	kind             capturePurposeKind
	registerBindings []RegisterBinding // kind == purposeNewEncoding
	variableName     string            // kind == purposeNumberVariable
}

// encodingsToRegex compiles a set of encodings for one instruction pattern
// into a single alternation regex fragment, "(enc1|enc2|...)", with an
// outer capture group per alternative. capturePurposes[0] is always
// purposeWholeMatch; every subsequent entry describes the capture group at
// that same index (spec.md §4.D).
func encodingsToRegex(encodings []Encoding) (string, []capturePurpose) {
	purposes := []capturePurpose{{kind: purposeWholeMatch}}

	fragments := make([]string, len(encodings))
	for i, enc := range encodings {
		fragments[i] = encodingToRegex(&purposes, enc)
	}
	return "(" + strings.Join(fragments, "|") + ")", purposes
}

// encodingToRegex appends one encoding's capture-group purposes to
// purposes and returns its regex fragment, "(fixed-bytes(intermediate)...)".
func encodingToRegex(purposes *[]capturePurpose, enc Encoding) string {
	var regex strings.Builder
	regex.WriteByte('(')
	*purposes = append(*purposes, capturePurpose{kind: purposeNewEncoding, registerBindings: enc.RegisterBindings})

	for _, part := range enc.Parts {
		if part.IsFixed {
			for _, b := range part.Fixed {
				fmt.Fprintf(&regex, `\x%02x`, b)
			}
			continue
		}
		regex.WriteByte('(')
		*purposes = append(*purposes, capturePurpose{kind: purposeNumberVariable, variableName: part.VariableName})
		// With dot-matches-newline enabled, "." matches any single code
		// point, including 0x0A; since ObfuscationMatcher.MatchAgainst
		// widens every input byte to one code point, each "." stands for
		// exactly one byte — see SPEC_FULL.md §3.
		for range part.Length {
			regex.WriteByte('.')
		}
		regex.WriteByte(')')
	}

	regex.WriteByte(')')
	return regex.String()
}
