package pattern

import (
	"fmt"
	"regexp"
)

// VariableType classifies what a pattern variable is allowed to bind to.
type VariableType int

const (
	// Number denotes an immediate/displacement whose byte width is
	// discovered per encoding.
	Number VariableType = iota
	// Register denotes a general-purpose 32- or 64-bit register drawn
	// from the closed set in register.go.
	Register
	// Length is a marker that contributes no text to the assembler
	// input; its purpose is syntactic only (reserved hook — see
	// InstructionPattern.LengthVariable).
	Length
)

func (t VariableType) tag() string {
	switch t {
	case Number:
		return "num"
	case Register:
		return "reg"
	case Length:
		return "len"
	default:
		return "?"
	}
}

// Variable is a single typed hole in an instruction pattern, identified by
// the syntax $<type>:<name>.
type Variable struct {
	Name string
	Type VariableType
}

// String reproduces the variable's textual form, $type:name, exactly as it
// would appear in pattern source — used both for Display and for the
// textual substitution performed during encoding discovery and
// replacement.
func (v Variable) String() string {
	return fmt.Sprintf("$%s:%s", v.Type.tag(), v.Name)
}

// variableRegexp matches $<type>:<name> tokens; type and name share the
// same identifier grammar ([A-Za-z_][A-Za-z0-9_]*), mirroring the
// upstream pattern \$(\w+):(\w+).
var variableRegexp = regexp.MustCompile(`\$(\w+):(\w+)`)

// parseVariables walks s left to right and returns every $type:name
// occurrence in order, including duplicates. An unknown type tag is a
// parse error.
func parseVariables(s string) ([]Variable, error) {
	matches := variableRegexp.FindAllStringSubmatch(s, -1)
	variables := make([]Variable, 0, len(matches))
	for _, m := range matches {
		tag, name := m[1], m[2]
		var typ VariableType
		switch tag {
		case "num":
			typ = Number
		case "reg":
			typ = Register
		case "len":
			typ = Length
		default:
			return nil, &ErrInvalidVariableType{Tag: tag}
		}
		variables = append(variables, Variable{Name: name, Type: typ})
	}
	return variables, nil
}
