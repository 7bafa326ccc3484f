package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/syntax"
)

func parseCall(t *testing.T, src string) *syntax.CallExpr {
	t.Helper()
	expr, err := (&syntax.FileOptions{}).ParseExpr("test.star", src, 0)
	require.NoError(t, err)
	call, ok := expr.(*syntax.CallExpr)
	require.True(t, ok, "expected a call expression, got %T", expr)
	return call
}

func TestClassify(t *testing.T) {
	tests := []struct {
		src  string
		want DeclKind
	}{
		{`model("User", {})`, DeclModel},
		{`route("GET /", {})`, DeclRoute},
		{`dsl.model("User", {})`, DeclUnrecognized},
		{`models("User", {})`, DeclUnrecognized},
		{`Model("User", {})`, DeclUnrecognized},
		{`belongsTo("User")`, DeclUnrecognized},
		{`get_model()("User", {})`, DeclUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(parseCall(t, tt.src)).Kind)
		})
	}
}

func TestPositionalArgs(t *testing.T) {
	call := parseCall(t, `model("User", {}, strict = True, *rest, **kw)`)
	args := positionalArgs(call)
	require.Len(t, args, 2)

	name, ok := stringLiteral(args[0])
	require.True(t, ok)
	assert.Equal(t, "User", name)

	_, ok = dictLiteral(args[1])
	assert.True(t, ok)
}

func TestStringLiteral(t *testing.T) {
	call := parseCall(t, `f("a", 1, b"bytes", name)`)

	s, ok := stringLiteral(call.Args[0])
	assert.True(t, ok)
	assert.Equal(t, "a", s)

	for _, arg := range call.Args[1:] {
		_, ok := stringLiteral(arg)
		assert.False(t, ok)
	}
}

func TestEntries(t *testing.T) {
	call := parseCall(t, `f({"b": 1, "a": 2, k: 3, 4: 5})`)
	dict, ok := dictLiteral(call.Args[0])
	require.True(t, ok)

	got := entries(dict)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Key)
	assert.Equal(t, "a", got[1].Key)
}

func TestSplitRoutePattern(t *testing.T) {
	tests := []struct {
		pattern    string
		wantMethod string
		wantPath   string
		wantOK     bool
	}{
		{"GET /api/users", "GET", "/api/users", true},
		{"POST /api/users extra", "POST", "/api/users", true},
		{"GET", "", "", false},
		{"GET  /api", "", "", false},
		{" /api", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			method, path, ok := splitRoutePattern(tt.pattern)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMethod, method)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}
