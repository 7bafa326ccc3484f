// Package dsl implements the string micro-grammars embedded in model declarations.
//
// Two grammars live here:
//
//   - Field specifications such as "string().email().unique()", decoded by ParseField
//     into a base type, an ordered constraint list and an optional flag.
//   - Relationship shorthand such as `belongsTo("User")`, decoded by ParseRelationshipShorthand.
//
// Both are purely lexical. Neither looks at the host source file; callers hand them
// the already-unquoted string value of a literal.
package dsl
