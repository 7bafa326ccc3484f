package rules

import (
	"regexp"

	"github.com/leapstack-labs/forge/pkg/core"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// modelLocation prefers the source position of a model and falls back to its name.
func modelLocation(m core.ModelDefinition) string {
	if m.Location != "" {
		return m.Location
	}
	return m.Name
}
