package rules

import (
	"strings"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
)

func init() {
	validate.Register(validate.RuleDef{
		ID:          "DSL01",
		Name:        "model-definitions",
		Group:       "models",
		Description: "Model names are unique identifiers and every model declares a primary key",
		Checks: []string{
			"duplicate model name (error)",
			"model name is not an identifier (error)",
			"no field carries a primary constraint (warning)",
		},
		Check: checkModels,

		Rationale: `Model names become type and table names downstream, so they must be valid
identifiers and unique across the whole project. Names are compared case-sensitively.
A model without a primary key cannot be addressed by single-record routes.`,

		BadExample: `model("User", {"email": "string().email()"})
model("User", {"id": "uuid().primary()"})`,

		GoodExample: `model("User", {
    "id": "uuid().primary()",
    "email": "string().email()",
})`,
	})
}

// checkModels flags duplicate and malformed model names, and models without a
// primary key. Every repeat of a name is reported, not only the first.
func checkModels(ctx *validate.Context) []core.Diagnostic {
	var diagnostics []core.Diagnostic
	seen := make(map[string]bool)

	for _, model := range ctx.Models() {
		loc := modelLocation(model)

		if seen[model.Name] {
			diagnostics = append(diagnostics, core.Errorf(loc, "Duplicate model name: %s", model.Name))
		}
		seen[model.Name] = true

		if !isIdentifier(model.Name) {
			diagnostics = append(diagnostics, core.Errorf(loc, "Invalid model name: %s. Must be a valid identifier.", model.Name))
		}

		if !hasPrimaryKey(model) {
			diagnostics = append(diagnostics, core.Warnf(loc, "Model %s has no primary key field", model.Name))
		}
	}

	return diagnostics
}

// hasPrimaryKey matches any constraint containing "primary", arguments included.
func hasPrimaryKey(model core.ModelDefinition) bool {
	for _, field := range model.Fields {
		for _, c := range field.Constraints {
			if strings.Contains(c, "primary") {
				return true
			}
		}
	}
	return false
}
