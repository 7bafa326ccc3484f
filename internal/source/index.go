package source

import (
	"fmt"
	"unicode/utf8"

	"go.starlark.net/syntax"
)

// File is a parsed DSL source file.
type File struct {
	Path    string
	Content []byte
	AST     *syntax.File
}

// Text returns the source text spanned by a node, exactly as written.
func (f *File) Text(n syntax.Node) string {
	start, end := n.Span()
	from, ok := f.offset(start)
	if !ok {
		return ""
	}
	to, ok := f.offset(end)
	if !ok || to < from {
		return ""
	}
	return string(f.Content[from:to])
}

// offset converts a line/column position into a byte offset.
// Starlark columns count runes, so the line is walked rune by rune.
func (f *File) offset(pos syntax.Position) (int, bool) {
	if pos.Line < 1 || pos.Col < 1 {
		return 0, false
	}
	line := int32(1)
	i := 0
	for line < pos.Line {
		if i >= len(f.Content) {
			return 0, false
		}
		if f.Content[i] == '\n' {
			line++
		}
		i++
	}
	for col := int32(1); col < pos.Col; col++ {
		if i >= len(f.Content) {
			return 0, false
		}
		_, size := utf8.DecodeRune(f.Content[i:])
		i += size
	}
	return i, true
}

// Diagnostic is a syntax or name-resolution problem reported for a file.
type Diagnostic struct {
	File    string
	Pos     syntax.Position
	Message string
}

// Location formats the diagnostic position as "file:line:col".
func (d Diagnostic) Location() string {
	if !d.Pos.IsValid() {
		return d.File
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Pos.Line, d.Pos.Col)
}

// Index holds every parsed file of a project plus the diagnostics raised while loading.
type Index struct {
	Root        string
	Files       []*File
	Diagnostics []Diagnostic
}
