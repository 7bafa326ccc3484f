package dsl

import (
	"regexp"

	"github.com/leapstack-labs/forge/pkg/core"
)

// shorthandPattern matches relationship shorthand strings like `hasMany("Post")`.
var shorthandPattern = regexp.MustCompile(`^(belongsTo|hasOne|hasMany)\("([^"]+)"\)$`)

// ParseRelationshipShorthand decodes a shorthand relationship string.
// It returns false when the value is not a relationship and should be treated as a field.
// The foreign key is never set by the shorthand form.
func ParseRelationshipShorthand(name, value string) (core.RelationshipDefinition, bool) {
	m := shorthandPattern.FindStringSubmatch(value)
	if m == nil {
		return core.RelationshipDefinition{}, false
	}
	return core.RelationshipDefinition{
		Name:   name,
		Kind:   m[1],
		Target: m[2],
	}, true
}
