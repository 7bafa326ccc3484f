package extract

import (
	"strings"

	"go.starlark.net/syntax"

	"github.com/leapstack-labs/forge/internal/source"
	"github.com/leapstack-labs/forge/pkg/core"
)

// parseRouteCall converts route("METHOD /path", {...}) into a route definition.
func parseRouteCall(f *source.File, call *syntax.CallExpr) (*core.RouteDefinition, []core.Diagnostic) {
	loc := locate(f, call)
	args := positionalArgs(call)
	if len(args) < 2 {
		return nil, []core.Diagnostic{core.Errorf(loc, "Invalid route call: expected 2 arguments, got %d", len(args))}
	}

	pattern, ok := stringLiteral(args[0])
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "Route pattern must be a string literal")}
	}

	method, path, ok := splitRoutePattern(pattern)
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "Invalid route pattern: %s", pattern)}
	}

	dict, ok := dictLiteral(args[1])
	if !ok {
		return nil, []core.Diagnostic{core.Errorf(loc, "Route configuration must be an object literal")}
	}

	route := &core.RouteDefinition{
		Method:     method,
		Path:       path,
		Parameters: core.ParametersFromPath(path),
		Location:   loc,
	}

	for _, e := range entries(dict) {
		switch e.Key {
		case "body":
			if s, ok := stringLiteral(e.Value); ok {
				route.Body = s
			}
		case "response":
			if s, ok := stringLiteral(e.Value); ok {
				route.Response = s
			}
		case "handler":
			route.Handler = core.NewCodeFragment(f.Text(e.Value))
		}
	}

	return route, nil
}

// splitRoutePattern splits "GET /api/users" on single spaces and returns the
// first two parts. Both must be non-empty.
func splitRoutePattern(pattern string) (method, path string, ok bool) {
	parts := strings.Split(pattern, " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
