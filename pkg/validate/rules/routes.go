package rules

import (
	"regexp"
	"slices"
	"strings"

	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
)

// HTTPMethods are the accepted route verbs, compared case-insensitively.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

func init() {
	validate.Register(validate.RuleDef{
		ID:          "DSL03",
		Name:        "route-definitions",
		Group:       "routes",
		Description: "Routes are unique, well formed, reference known types and have a handler",
		Checks: []string{
			"duplicate method and path (error, once per signature)",
			"unknown HTTP method (error)",
			"path does not start with '/' (error)",
			"path parameter without a declared parameter (warning)",
			"declared parameter not used in the path (warning)",
			"response type is not a model or <Model>List (warning)",
			"body type is not a model, <Model>List or <Model>Create/Update/Patch (warning)",
			"missing or blank handler (error)",
		},
		Check: checkRoutes,

		Rationale: `Two routes with the same method and path cannot both be served. Body and
response names are matched against the declared models so that a renamed model
does not leave routes pointing at a type that no longer exists.`,

		BadExample: `route("FETCH api/users", {"response": "Users"})`,

		GoodExample: `route("GET /api/users", {
    "response": "UserList",
    "handler": lambda ctx: ctx.db.user.find_many(),
})`,
	})
}

func checkRoutes(ctx *validate.Context) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	types := newTypeNames(ctx.ModelNames())
	counts := make(map[string]int)

	for _, route := range ctx.Routes() {
		loc := route.Location
		signature := route.Signature()

		counts[signature]++
		if counts[signature] == 2 {
			diagnostics = append(diagnostics, core.Errorf(loc, "Duplicate route: %s", signature))
		}

		if !slices.Contains(HTTPMethods, strings.ToUpper(route.Method)) {
			diagnostics = append(diagnostics, core.Errorf(loc, "Invalid HTTP method: %s for route %s", route.Method, route.Path))
		}

		if !strings.HasPrefix(route.Path, "/") {
			diagnostics = append(diagnostics, core.Errorf(loc, "Route path must start with '/': %s", route.Path))
		}

		diagnostics = append(diagnostics, checkRouteParameters(route)...)
		diagnostics = append(diagnostics, types.check(route)...)

		if route.Handler.IsBlank() {
			diagnostics = append(diagnostics, core.Errorf(loc, "Route %s has no handler", signature))
		}
	}

	return diagnostics
}

// checkRouteParameters compares the :name tokens of a path with the route's
// parameter list in both directions.
func checkRouteParameters(route core.RouteDefinition) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	inPath := core.PathParameterNames(route.Path)
	declared := make([]string, 0, len(route.Parameters))
	for _, p := range route.Parameters {
		declared = append(declared, p.Name)
	}

	for _, name := range inPath {
		if !slices.Contains(declared, name) {
			diagnostics = append(diagnostics, core.Warnf(route.Location, "Path parameter :%s in route %s is not defined in parameters", name, route.Signature()))
		}
	}
	for _, name := range declared {
		if !slices.Contains(inPath, name) {
			diagnostics = append(diagnostics, core.Warnf(route.Location, "Parameter %s is defined but not used in path %s", name, route.Path))
		}
	}

	return diagnostics
}

// typeNames holds the names a route may use for its body and response.
type typeNames struct {
	known       map[string]bool
	bodyPattern *regexp.Regexp
}

// newTypeNames accepts each model name and its "List" form, and builds the
// body pattern ^(M1|M2|...)(Create|Update|Patch)$ from the same names. With no
// models the pattern still compiles and matches only the bare suffixes.
func newTypeNames(models []string) typeNames {
	known := make(map[string]bool, len(models)*2)
	quoted := make([]string, 0, len(models))
	for _, name := range models {
		known[name] = true
		known[name+"List"] = true
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	return typeNames{
		known:       known,
		bodyPattern: regexp.MustCompile(`^(` + strings.Join(quoted, "|") + `)(Create|Update|Patch)$`),
	}
}

func (t typeNames) check(route core.RouteDefinition) []core.Diagnostic {
	var diagnostics []core.Diagnostic

	if route.Response != "" && !t.known[route.Response] {
		diagnostics = append(diagnostics, core.Warnf(route.Location, "Response type %s for route %s does not reference a known model", route.Response, route.Signature()))
	}

	if route.Body != "" && !t.known[route.Body] && !t.bodyPattern.MatchString(route.Body) {
		diagnostics = append(diagnostics, core.Warnf(route.Location, "Body type %s for route %s does not follow known naming patterns", route.Body, route.Signature()))
	}

	return diagnostics
}
