package rules

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
)

// RelationshipKinds are the accepted relationship kinds.
var RelationshipKinds = []string{core.RelationBelongsTo, core.RelationHasOne, core.RelationHasMany}

func init() {
	validate.Register(validate.RuleDef{
		ID:          "DSL04",
		Name:        "relationship-definitions",
		Group:       "relationships",
		Description: "Relationships target existing models and belongsTo has a foreign key field",
		Checks: []string{
			"target model does not exist (error)",
			"unknown relationship kind (error)",
			"belongsTo without its foreign key field (warning)",
		},
		Check: checkRelationships,

		Rationale: `A relationship is only usable when both ends exist. For belongsTo the owning
model holds the key: either the explicit foreign key, or <target in lowercase>Id.`,

		BadExample: `model("Post", {
    "id": "uuid().primary()",
    "author": belongsTo("Author"),
})`,

		GoodExample: `model("Post", {
    "id": "uuid().primary()",
    "userId": 'uuid().references("User", "id")',
    "author": belongsTo("User", "userId"),
})`,
	})
}

func checkRelationships(ctx *validate.Context) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	for _, model := range ctx.Models() {
		loc := modelLocation(model)

		for _, rel := range model.Relationships {
			if !ctx.IsModel(rel.Target) {
				diagnostics = append(diagnostics, core.Errorf(loc, "Relationship %s in model %s references non-existent model %s", rel.Name, model.Name, rel.Target))
			}

			if !slices.Contains(RelationshipKinds, rel.Kind) {
				diagnostics = append(diagnostics, core.Errorf(loc, "Invalid relationship type: %s for relationship %s in model %s", rel.Kind, rel.Name, model.Name))
			}

			if rel.Kind == core.RelationBelongsTo {
				fk := foreignKeyName(rel)
				if _, ok := model.Field(fk); !ok {
					diagnostics = append(diagnostics, core.Warnf(loc, "belongsTo relationship %s in model %s expects foreign key field %s but it's not defined", rel.Name, model.Name, fk))
				}
			}
		}
	}

	return diagnostics
}

// foreignKeyName returns the explicit foreign key, or the conventional
// lowercase target name followed by "Id".
func foreignKeyName(rel core.RelationshipDefinition) string {
	if rel.ForeignKey != "" {
		return rel.ForeignKey
	}
	return strings.ToLower(rel.Target) + "Id"
}
