package core

import "strings"

// ModelField is a single field of a model, decoded from its specification string.
type ModelField struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Constraints []string `json:"constraints" yaml:"constraints"`
	Optional    bool     `json:"optional" yaml:"optional"`
}

// HasConstraint reports whether the field carries a constraint with the given name,
// ignoring any parenthesized arguments.
func (f ModelField) HasConstraint(name string) bool {
	for _, c := range f.Constraints {
		if ConstraintName(c) == name {
			return true
		}
	}
	return false
}

// ConstraintName strips the argument list from a rendered constraint,
// e.g. "min(2)" -> "min".
func ConstraintName(constraint string) string {
	name, _, _ := strings.Cut(constraint, "(")
	return name
}

// Relationship kinds understood by the validator.
const (
	RelationBelongsTo = "belongsTo"
	RelationHasOne    = "hasOne"
	RelationHasMany   = "hasMany"
)

// RelationshipDefinition is a named reference from one model to another.
// Kind is recorded verbatim at extraction time and checked by the validator.
type RelationshipDefinition struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Target     string `json:"target" yaml:"target"`
	ForeignKey string `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
}

// ModelDefinition is a named record type with fields and relationships.
type ModelDefinition struct {
	Name          string                   `json:"name" yaml:"name"`
	Fields        []ModelField             `json:"fields" yaml:"fields"`
	Relationships []RelationshipDefinition `json:"relationships" yaml:"relationships"`
	Location      string                   `json:"location,omitempty" yaml:"location,omitempty"`
}

// Field returns the field with the given name.
func (m *ModelDefinition) Field(name string) (ModelField, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ModelField{}, false
}
