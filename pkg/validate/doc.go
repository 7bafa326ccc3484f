// Package validate checks an extracted project for consistency.
//
// Validation is organized as rules held in a global registry, the same way
// lint rules are discovered elsewhere in forge. Each rule receives the whole
// project and returns its own diagnostics; no rule depends on another's
// findings and none stops early.
//
// # Rule Groups
//
//   - models (DSL01): model names and primary keys
//   - fields (DSL02): field names, types and constraint compatibility
//   - routes (DSL03): route signatures, parameters, type references and handlers
//   - relationships (DSL04): relationship targets, kinds and foreign keys
//
// # Usage
//
// Rules register themselves from init functions. Import the rules package
// for its side effects and run a validator:
//
//	import _ "github.com/leapstack-labs/forge/pkg/validate/rules"
//
//	v := validate.NewValidator(nil)
//	result := v.Validate(&project)
package validate
