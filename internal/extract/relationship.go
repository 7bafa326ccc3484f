package extract

import (
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/forge/internal/source"
	"github.com/leapstack-labs/forge/pkg/core"
)

// parseRelationshipCall converts a call such as belongsTo("User", "authorId")
// into a relationship. The callee name is kept verbatim as the kind; whether
// it is a known kind is left to the validator. Calls whose callee is not a
// bare identifier are not relationships and are dropped without a diagnostic.
func parseRelationshipCall(f *source.File, name string, call *syntax.CallExpr) (*core.RelationshipDefinition, []core.Diagnostic) {
	ident, ok := call.Fn.(*syntax.Ident)
	if !ok {
		return nil, nil
	}
	kind := ident.Name
	loc := locate(f, call)

	args := positionalArgs(call)
	if len(args) < 1 {
		return nil, []core.Diagnostic{core.Errorf(loc, "Invalid %s call: expected at least 1 argument", kind)}
	}

	target, ok := stringLiteral(args[0])
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "%s target must be a string literal", kind)}
	}

	rel := &core.RelationshipDefinition{
		Name:   name,
		Kind:   kind,
		Target: target,
	}
	if len(args) > 1 {
		if fk, ok := stringLiteral(args[1]); ok {
			rel.ForeignKey = fk
		}
	}
	return rel, nil
}
