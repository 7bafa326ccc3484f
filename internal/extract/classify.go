package extract

import (
	"go.starlark.net/syntax"
)

// DeclKind tags what a call expression declares.
type DeclKind int

// Declaration kinds recognized in DSL sources.
const (
	DeclUnrecognized DeclKind = iota
	DeclModel
	DeclRoute
)

// String returns the callee name for recognized kinds.
func (k DeclKind) String() string {
	switch k {
	case DeclModel:
		return "model"
	case DeclRoute:
		return "route"
	default:
		return "unrecognized"
	}
}

// Decl is a classified call expression.
type Decl struct {
	Kind DeclKind
	Call *syntax.CallExpr
}

// Classify tags a call by its callee. Only a bare identifier named exactly
// "model" or "route" is recognized; method calls such as x.model(...) are not.
func Classify(call *syntax.CallExpr) Decl {
	ident, ok := call.Fn.(*syntax.Ident)
	if !ok {
		return Decl{Kind: DeclUnrecognized, Call: call}
	}
	switch ident.Name {
	case "model":
		return Decl{Kind: DeclModel, Call: call}
	case "route":
		return Decl{Kind: DeclRoute, Call: call}
	default:
		return Decl{Kind: DeclUnrecognized, Call: call}
	}
}

// collectDecls returns every recognized declaration in a syntax tree, in source order.
func collectDecls(f *syntax.File) []Decl {
	var decls []Decl
	syntax.Walk(f, func(n syntax.Node) bool {
		call, ok := n.(*syntax.CallExpr)
		if !ok {
			return true
		}
		if d := Classify(call); d.Kind != DeclUnrecognized {
			decls = append(decls, d)
		}
		return true
	})
	return decls
}

// positionalArgs drops keyword arguments and *args/**kwargs from a call.
func positionalArgs(call *syntax.CallExpr) []syntax.Expr {
	args := make([]syntax.Expr, 0, len(call.Args))
	for _, arg := range call.Args {
		switch a := arg.(type) {
		case *syntax.BinaryExpr:
			if a.Op == syntax.EQ {
				continue
			}
		case *syntax.UnaryExpr:
			if a.Op == syntax.STAR || a.Op == syntax.STARSTAR {
				continue
			}
		}
		args = append(args, arg)
	}
	return args
}

// stringLiteral returns the value of a string literal expression.
func stringLiteral(e syntax.Expr) (string, bool) {
	lit, ok := e.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}

// dictLiteral returns e as a dict literal, the host's object literal.
func dictLiteral(e syntax.Expr) (*syntax.DictExpr, bool) {
	dict, ok := e.(*syntax.DictExpr)
	return dict, ok
}

// entries yields the string-keyed entries of a dict literal in source order.
// Entries with non-literal keys are skipped.
func entries(dict *syntax.DictExpr) []keyedEntry {
	out := make([]keyedEntry, 0, len(dict.List))
	for _, item := range dict.List {
		entry, ok := item.(*syntax.DictEntry)
		if !ok {
			continue
		}
		key, ok := stringLiteral(entry.Key)
		if !ok {
			continue
		}
		out = append(out, keyedEntry{Key: key, Value: entry.Value})
	}
	return out
}

type keyedEntry struct {
	Key   string
	Value syntax.Expr
}
