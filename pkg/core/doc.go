// Package core defines the shared language of the forge system.
//
// This package contains:
//   - Extracted entities (ModelDefinition, RouteDefinition, ParsedProject)
//   - Diagnostics and validation results
//   - Severity and rule metadata
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
