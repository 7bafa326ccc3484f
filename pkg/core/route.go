package core

import (
	"regexp"
	"strings"
)

// CodeFragment is raw source text captured from a route handler.
// It is carried through unchanged and never parsed or executed here.
type CodeFragment struct {
	text string
}

// NewCodeFragment wraps raw source text.
func NewCodeFragment(text string) CodeFragment {
	return CodeFragment{text: text}
}

// String returns the captured text verbatim.
func (c CodeFragment) String() string {
	return c.text
}

// IsBlank reports whether the fragment is empty or whitespace only.
func (c CodeFragment) IsBlank() bool {
	return strings.TrimSpace(c.text) == ""
}

// MarshalText encodes the fragment as its raw text.
func (c CodeFragment) MarshalText() ([]byte, error) {
	return []byte(c.text), nil
}

// UnmarshalText stores the raw text.
func (c *CodeFragment) UnmarshalText(text []byte) error {
	c.text = string(text)
	return nil
}

// RouteParameter is a path parameter of a route.
type RouteParameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// RouteDefinition binds an HTTP method and path to body/response type names and a handler.
type RouteDefinition struct {
	Method     string           `json:"method" yaml:"method"`
	Path       string           `json:"path" yaml:"path"`
	Parameters []RouteParameter `json:"parameters" yaml:"parameters"`
	Body       string           `json:"body,omitempty" yaml:"body,omitempty"`
	Response   string           `json:"response" yaml:"response"`
	Handler    CodeFragment     `json:"handler" yaml:"handler"`
	Location   string           `json:"location,omitempty" yaml:"location,omitempty"`
}

// Signature returns "<METHOD> <path>" as written in the declaration.
func (r *RouteDefinition) Signature() string {
	return r.Method + " " + r.Path
}

// pathParamPattern matches :name tokens in a route path.
var pathParamPattern = regexp.MustCompile(`:(\w+)`)

// PathParameterNames returns the :name tokens of a path in order of appearance.
func PathParameterNames(path string) []string {
	matches := pathParamPattern.FindAllStringSubmatch(path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// ParametersFromPath derives route parameters from the :name tokens of a path.
// Every derived parameter has type "string".
func ParametersFromPath(path string) []RouteParameter {
	names := PathParameterNames(path)
	params := make([]RouteParameter, 0, len(names))
	for _, name := range names {
		params = append(params, RouteParameter{Name: name, Type: "string"})
	}
	return params
}
