package rules

import (
	"slices"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
)

// FieldTypes are the base types a field may declare.
var FieldTypes = []string{"string", "number", "boolean", "datetime", "date", "uuid", "text", "json"}

// KnownConstraints are the constraint names the field grammar understands.
var KnownConstraints = []string{
	"primary", "unique", "optional", "email", "min", "max", "defaultNow",
	"onUpdate", "references", "default", "autoincrement",
}

func init() {
	validate.Register(validate.RuleDef{
		ID:          "DSL02",
		Name:        "field-definitions",
		Group:       "fields",
		Description: "Field names, base types and constraint combinations are valid",
		Checks: []string{
			"duplicate field name within a model (error)",
			"field name is not an identifier (error)",
			"unknown base type (error)",
			"unknown constraint (warning)",
			"primary key marked optional (error)",
			"unique field marked optional (warning)",
			"email on a non-string field (error)",
			"min/max on a field that is neither string nor number (error)",
			"defaultNow/onUpdate on a non-datetime field (error)",
		},
		Check: checkFields,

		Rationale: `Each field specification is decoded lexically, so typos in a base type or
constraint name are not caught when the file is parsed. Constraints are also only
meaningful for some types: an email check on a number can never pass.`,

		BadExample: `model("User", {
    "id": "uuid().primary().optional()",
    "age": "integer().email()",
})`,

		GoodExample: `model("User", {
    "id": "uuid().primary()",
    "age": "number().min(0).max(150)",
})`,
	})
}

func checkFields(ctx *validate.Context) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	for _, model := range ctx.Models() {
		loc := modelLocation(model)
		seen := make(map[string]bool)

		for _, field := range model.Fields {
			if seen[field.Name] {
				diagnostics = append(diagnostics, core.Errorf(loc, "Duplicate field name: %s in model %s", field.Name, model.Name))
			}
			seen[field.Name] = true

			if !isIdentifier(field.Name) {
				diagnostics = append(diagnostics, core.Errorf(loc, "Invalid field name: %s in model %s. Must be a valid identifier.", field.Name, model.Name))
			}

			if !slices.Contains(FieldTypes, field.Type) {
				diagnostics = append(diagnostics, core.Errorf(loc, "Invalid field type: %s for field %s in model %s", field.Type, field.Name, model.Name))
			}

			diagnostics = append(diagnostics, checkConstraints(field, model.Name, loc)...)
		}
	}

	return diagnostics
}

// checkConstraints validates each constraint of a field against its type and
// optionality. A repeated constraint is reported once per occurrence.
func checkConstraints(field core.ModelField, modelName, loc string) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	for _, constraint := range field.Constraints {
		name := core.ConstraintName(constraint)

		if !slices.Contains(KnownConstraints, name) {
			diagnostics = append(diagnostics, core.Warnf(loc, "Unknown constraint: %s on field %s in model %s", name, field.Name, modelName))
		}

		switch name {
		case "primary":
			if field.Optional {
				diagnostics = append(diagnostics, core.Errorf(loc, "Primary key field %s in model %s cannot be optional", field.Name, modelName))
			}
		case "unique":
			if field.Optional {
				diagnostics = append(diagnostics, core.Warnf(loc, "Unique field %s in model %s is optional, which may cause issues", field.Name, modelName))
			}
		case "email":
			if field.Type != "string" {
				diagnostics = append(diagnostics, core.Errorf(loc, "Email constraint on field %s in model %s can only be used with string fields", field.Name, modelName))
			}
		case "min", "max":
			if field.Type != "string" && field.Type != "number" {
				diagnostics = append(diagnostics, core.Errorf(loc, "%s constraint on field %s in model %s can only be used with string or number fields", name, field.Name, modelName))
			}
		case "defaultNow", "onUpdate":
			if field.Type != "datetime" {
				diagnostics = append(diagnostics, core.Errorf(loc, "%s constraint on field %s in model %s can only be used with datetime fields", name, field.Name, modelName))
			}
		}
	}

	return diagnostics
}
