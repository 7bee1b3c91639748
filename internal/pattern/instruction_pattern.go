package pattern

import (
	"regexp"
	"strings"
)

// InstructionPattern is a single symbolic assembly-language instruction
// with typed holes, e.g. "lea rbp,[rip + $num:disp]".
type InstructionPattern struct {
	Source    string
	Variables []Variable // left-to-right occurrence order, duplicates kept
}

// negatedVariableRegexp flags a variable operand that is subtracted, e.g.
// "[rip - $num:x]". The upstream implementation forbids this;
// ParseInstructionPattern rejects it too (DESIGN.md, Open Questions resolved).
var negatedVariableRegexp = regexp.MustCompile(`-\s*\$\w+:\w+`)

// ParseInstructionPattern parses a single instruction pattern string into
// its source text and ordered, duplicate-preserving variable list.
func ParseInstructionPattern(source string) (InstructionPattern, error) {
	if negatedVariableRegexp.MatchString(source) {
		return InstructionPattern{}, &ErrNegativeDisplacement{Pattern: source}
	}
	vars, err := parseVariables(source)
	if err != nil {
		return InstructionPattern{}, err
	}
	return InstructionPattern{Source: source, Variables: vars}, nil
}

// LengthVariable returns the pattern's $len: variable, if any. Length
// variables contribute no assembler text (see assembledText); this
// accessor is a reserved hook for callers that want to inspect them
// directly (mirrors the upstream's length_variable()).
func (p InstructionPattern) LengthVariable() (Variable, bool) {
	for _, v := range p.Variables {
		if v.Type == Length {
			return v, true
		}
	}
	return Variable{}, false
}

// UniqueRegisterVariables returns the pattern's $reg: variables in order of
// first occurrence, without duplicates. A pattern that repeats the same
// register variable (e.g. "lea $reg:r,[$reg:r + $num:n]") must bind every
// occurrence to the same concrete register.
func (p InstructionPattern) UniqueRegisterVariables() []Variable {
	var out []Variable
	seen := make(map[string]bool)
	for _, v := range p.Variables {
		if v.Type != Register {
			continue
		}
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		out = append(out, v)
	}
	return out
}

// NumberVariables returns the pattern's $num: variables, in occurrence
// order, including duplicates.
func (p InstructionPattern) NumberVariables() []Variable {
	var out []Variable
	for _, v := range p.Variables {
		if v.Type == Number {
			out = append(out, v)
		}
	}
	return out
}

// substituteRegisters replaces every $reg:name token in the source text
// with the mnemonic of the register bound to it, and erases every $len:
// token (length variables contribute no assembler text).
func (p InstructionPattern) substituteRegisters(bindings []RegisterBinding) string {
	text := p.Source
	for _, b := range bindings {
		text = strings.ReplaceAll(text, Variable{Name: b.Name, Type: Register}.String(), b.Register.Name())
	}
	for _, v := range p.Variables {
		if v.Type == Length {
			text = strings.ReplaceAll(text, v.String(), "")
		}
	}
	return text
}

// RegisterBinding records which concrete register a $reg: variable was
// instantiated to for one particular encoding.
type RegisterBinding struct {
	Name     string
	Register Register
}
