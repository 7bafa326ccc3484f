// Package rules registers the project validation rules.
// Import this package for its side effects to register every rule with the
// global validate registry.
package rules
