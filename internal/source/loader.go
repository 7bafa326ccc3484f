// Package source discovers DSL source files under a project directory and
// parses them into Starlark syntax trees without executing them.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions lists the file extensions treated as DSL sources.
var DefaultExtensions = []string{".star"}

// DefaultBuiltins are the names a DSL file may call without loading them.
var DefaultBuiltins = []string{"model", "route", "belongsTo", "hasOne", "hasMany"}

// Options controls discovery and parsing.
type Options struct {
	// Extensions selects which files are loaded. Defaults to DefaultExtensions.
	Extensions []string

	// Builtins are predeclared for name resolution. Defaults to DefaultBuiltins.
	Builtins []string

	// Logger receives debug output. Defaults to a discard logger.
	Logger *slog.Logger
}

// Loader scans a directory tree for DSL files and parses each of them.
type Loader struct {
	dir    string
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts Options) *Loader {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if len(opts.Builtins) == 0 {
		opts.Builtins = DefaultBuiltins
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, opts: opts, logger: logger}
}

// Dir returns the directory this loader scans.
func (l *Loader) Dir() string {
	return l.dir
}

// Load discovers and parses every DSL file under the loader's directory.
// The load is all-or-nothing: files are parsed concurrently, but the index is
// only returned once every file has been handled, ordered by path.
// Syntax and resolution problems are reported in Index.Diagnostics;
// the returned error is reserved for I/O failures.
func (l *Loader) Load(ctx context.Context) (*Index, error) {
	paths, err := l.discover()
	if err != nil {
		return nil, err
	}

	l.logger.Debug("discovered source files", "dir", l.dir, "count", len(paths))

	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := l.loadFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{Root: l.dir}
	for _, res := range results {
		if res.file != nil {
			idx.Files = append(idx.Files, res.file)
		}
		idx.Diagnostics = append(idx.Diagnostics, res.diags...)
	}
	return idx, nil
}

// discover walks the directory and returns matching files in lexical order.
func (l *Loader) discover() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(l.opts.Extensions, filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}
	return paths, nil
}

type fileResult struct {
	file  *File
	diags []Diagnostic
}

// loadFile reads and parses a single file. A file that fails to parse yields
// diagnostics but no syntax tree.
func (l *Loader) loadFile(path string) (fileResult, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from filepath.WalkDir within the source directory
	if err != nil {
		return fileResult{}, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	f, err := fileOptions().Parse(path, content, 0)
	if err != nil {
		return fileResult{diags: []Diagnostic{parseDiagnostic(path, err)}}, nil
	}

	diags := l.resolveNames(f)
	diags = append(diags, checkLoads(path, f)...)

	l.logger.Debug("parsed source file", "file", path, "statements", len(f.Stmts), "diagnostics", len(diags))

	return fileResult{
		file:  &File{Path: path, Content: content, AST: f},
		diags: diags,
	}, nil
}

// fileOptions enables every Starlark dialect feature so that ordinary host
// code around the DSL calls parses without complaint.
func fileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// resolveNames reports undefined or misused names.
func (l *Loader) resolveNames(f *syntax.File) []Diagnostic {
	isPredeclared := func(name string) bool {
		return slices.Contains(l.opts.Builtins, name)
	}
	err := resolve.File(f, isPredeclared, starlark.Universe.Has)
	if err == nil {
		return nil
	}

	var list resolve.ErrorList
	if !errors.As(err, &list) {
		return []Diagnostic{{File: f.Path, Message: err.Error()}}
	}
	diags := make([]Diagnostic, 0, len(list))
	for _, e := range list {
		diags = append(diags, Diagnostic{File: f.Path, Pos: e.Pos, Message: e.Msg})
	}
	return diags
}

// checkLoads reports load() statements whose module cannot be found on disk.
// Label-style modules ("@repo//path") are never resolvable here.
func checkLoads(path string, f *syntax.File) []Diagnostic {
	var diags []Diagnostic
	for _, stmt := range f.Stmts {
		load, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}
		module := load.ModuleName()
		if !strings.HasPrefix(module, "@") {
			target := module
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), module)
			}
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}
		diags = append(diags, Diagnostic{
			File:    path,
			Pos:     load.Load,
			Message: fmt.Sprintf("cannot find module %q", module),
		})
	}
	return diags
}

// parseDiagnostic converts a parser error into a diagnostic.
func parseDiagnostic(path string, err error) Diagnostic {
	var se syntax.Error
	if errors.As(err, &se) {
		return Diagnostic{File: path, Pos: se.Pos, Message: se.Msg}
	}
	return Diagnostic{File: path, Message: err.Error()}
}

// LoadError represents an error reading a source file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", filepath.Base(e.File), e.Message)
}
