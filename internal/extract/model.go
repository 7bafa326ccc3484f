package extract

import (
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/forge/internal/source"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/dsl"
)

// parseModelCall converts model("Name", {...}) into a model definition.
// A malformed call yields nil and the diagnostics explaining why it was skipped.
func parseModelCall(f *source.File, call *syntax.CallExpr) (*core.ModelDefinition, []core.Diagnostic) {
	loc := locate(f, call)
	args := positionalArgs(call)
	if len(args) != 2 {
		return nil, []core.Diagnostic{core.Errorf(loc, "Invalid model call: expected 2 arguments, got %d", len(args))}
	}

	name, ok := stringLiteral(args[0])
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "Model name must be a string literal")}
	}

	dict, ok := dictLiteral(args[1])
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "Model definition must be an object literal")}
	}

	model := &core.ModelDefinition{
		Name:          name,
		Fields:        []core.ModelField{},
		Relationships: []core.RelationshipDefinition{},
		Location:      loc,
	}
	var diags []core.Diagnostic

	for _, e := range entries(dict) {
		switch v := e.Value.(type) {
		case *syntax.Literal:
			spec, ok := stringLiteral(v)
			if !ok {
				continue
			}
			if rel, ok := dsl.ParseRelationshipShorthand(e.Key, spec); ok {
				model.Relationships = append(model.Relationships, rel)
				continue
			}
			model.Fields = append(model.Fields, dsl.ParseField(spec).Field(e.Key))

		case *syntax.CallExpr:
			rel, relDiags := parseRelationshipCall(f, e.Key, v)
			diags = append(diags, relDiags...)
			if rel != nil {
				model.Relationships = append(model.Relationships, *rel)
			}
		}
	}

	return model, diags
}
