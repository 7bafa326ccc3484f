package dsl

import (
	"strings"

	"github.com/leapstack-labs/forge/pkg/core"
)

// Constraint is one `.name(args)` suffix of a field specification.
type Constraint struct {
	Name string
	Args string // raw text between the parentheses, unparsed
}

// String renders the constraint as "name(args)", or just "name" when there are no args.
func (c Constraint) String() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + "(" + c.Args + ")"
}

// FieldSpec is the decoded form of a field specification string.
type FieldSpec struct {
	BaseType    string // empty when the spec does not start with "ident()"
	Constraints []Constraint
	Optional    bool
}

// ConstraintStrings returns the rendered constraints in source order.
func (s FieldSpec) ConstraintStrings() []string {
	out := make([]string, 0, len(s.Constraints))
	for _, c := range s.Constraints {
		out = append(out, c.String())
	}
	return out
}

// Field builds the model field carrying this spec under the given name.
func (s FieldSpec) Field(name string) core.ModelField {
	return core.ModelField{
		Name:        name,
		Type:        s.BaseType,
		Constraints: s.ConstraintStrings(),
		Optional:    s.Optional,
	}
}

// ParseField decodes a field specification such as "string().min(2).max(100)".
//
// The base type is the identifier at the very start of the input when it is
// immediately followed by "()". Constraints are every later ".ident(args)" run,
// scanned left to right without overlap. Args end at the first ')' so an
// argument that itself contains ')' is truncated; parentheses are not balanced.
func ParseField(spec string) FieldSpec {
	sc := &fieldScanner{input: spec}
	var out FieldSpec

	if ident := sc.word(0); ident != "" && strings.HasPrefix(spec[len(ident):], "()") {
		out.BaseType = ident
	}

	for pos := 0; pos < len(spec); {
		c, next, ok := sc.constraintAt(pos)
		if !ok {
			pos++
			continue
		}
		out.Constraints = append(out.Constraints, c)
		if c.Name == "optional" {
			out.Optional = true
		}
		pos = next
	}

	return out
}

// fieldScanner reads the field grammar byte by byte.
type fieldScanner struct {
	input string
}

// word returns the run of identifier characters starting at pos.
func (s *fieldScanner) word(pos int) string {
	end := pos
	for end < len(s.input) && isWordChar(s.input[end]) {
		end++
	}
	return s.input[pos:end]
}

// constraintAt tries to read ".ident(args)" at pos. On success it returns the
// constraint and the offset just past the closing parenthesis.
func (s *fieldScanner) constraintAt(pos int) (Constraint, int, bool) {
	if s.input[pos] != '.' {
		return Constraint{}, 0, false
	}
	name := s.word(pos + 1)
	if name == "" {
		return Constraint{}, 0, false
	}
	open := pos + 1 + len(name)
	if open >= len(s.input) || s.input[open] != '(' {
		return Constraint{}, 0, false
	}
	closing := strings.IndexByte(s.input[open+1:], ')')
	if closing < 0 {
		return Constraint{}, 0, false
	}
	args := s.input[open+1 : open+1+closing]
	return Constraint{Name: name, Args: args}, open + closing + 2, true
}

func isWordChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
