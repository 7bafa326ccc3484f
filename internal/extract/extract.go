// Package extract turns parsed DSL sources into a structured project description.
//
// It locates calls to model() and route() in each syntax tree and converts their
// literal arguments into core entities. Nothing is executed; malformed calls are
// skipped and reported while sibling calls are still processed.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/syntax"

	"github.com/leapstack-labs/forge/internal/source"
	"github.com/leapstack-labs/forge/pkg/core"
)

// Default settings.
const (
	DefaultAPIDir    = "api"
	DefaultDSLModule = "@forge//dsl.star"
)

// Options configures an Extractor.
type Options struct {
	// APIDir is the source directory relative to the project root.
	APIDir string

	// DSLModule is the load() path of the DSL itself. A missing-module
	// diagnostic for it is expected and filtered out.
	DSLModule string

	// Extensions selects which files are DSL sources.
	Extensions []string

	Logger *slog.Logger
}

// Extractor reads a project directory and extracts models and routes.
// It holds no state between calls.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Extractor, filling unset options with defaults.
func New(opts Options) *Extractor {
	if opts.APIDir == "" {
		opts.APIDir = DefaultAPIDir
	}
	if opts.DSLModule == "" {
		opts.DSLModule = DefaultDSLModule
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{opts: opts, logger: logger}
}

// Extract loads and extracts the project rooted at projectRoot.
// It never fails: problems are returned as diagnostics in ParsedProject.Errors,
// and an unexpected internal failure becomes a single generic diagnostic.
func (e *Extractor) Extract(ctx context.Context, projectRoot string) (project core.ParsedProject) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Failed to parse project: %v", r)
			e.logger.Error(msg)
			project = emptyProject(core.Errorf("", "%s", msg))
		}
	}()

	e.logger.Debug("parsing project", "root", projectRoot)

	apiDir := filepath.Join(projectRoot, e.opts.APIDir)
	if info, err := os.Stat(apiDir); err != nil || !info.IsDir() {
		return emptyProject(core.Errorf("", "API directory not found: %s", apiDir))
	}

	idx, err := source.NewLoader(apiDir, source.Options{
		Extensions: e.opts.Extensions,
		Logger:     e.logger,
	}).Load(ctx)
	if err != nil {
		msg := fmt.Sprintf("Failed to parse project: %v", err)
		e.logger.Error(msg)
		return emptyProject(core.Errorf("", "%s", msg))
	}

	return e.FromIndex(idx)
}

// FromIndex extracts a project from an already loaded source index.
// Any source diagnostic that is not known noise stops extraction: the result
// then holds no models or routes, only the diagnostics.
func (e *Extractor) FromIndex(idx *source.Index) core.ParsedProject {
	var errs []core.Diagnostic
	for _, d := range idx.Diagnostics {
		if isNoise(d.Message, e.opts.DSLModule) {
			continue
		}
		errs = append(errs, core.Errorf(d.Location(), "Syntax error in %s: %s", d.File, d.Message))
	}
	if len(errs) > 0 {
		return emptyProject(errs...)
	}

	type fileDecls struct {
		file  *source.File
		decls []Decl
	}
	all := make([]fileDecls, 0, len(idx.Files))
	for _, f := range idx.Files {
		all = append(all, fileDecls{file: f, decls: collectDecls(f.AST)})
	}

	project := emptyProject()

	for _, fd := range all {
		for _, d := range fd.decls {
			if d.Kind != DeclModel {
				continue
			}
			model, diags := parseModelCall(fd.file, d.Call)
			project.Errors = append(project.Errors, diags...)
			if model != nil {
				project.Models = append(project.Models, *model)
			}
		}
	}
	e.logger.Debug(fmt.Sprintf("Parsed %d models", len(project.Models)))

	for _, fd := range all {
		for _, d := range fd.decls {
			if d.Kind != DeclRoute {
				continue
			}
			route, diags := parseRouteCall(fd.file, d.Call)
			project.Errors = append(project.Errors, diags...)
			if route != nil {
				project.Routes = append(project.Routes, *route)
			}
		}
	}
	e.logger.Debug(fmt.Sprintf("Parsed %d routes", len(project.Routes)))

	return project
}

// isNoise reports diagnostics that are expected and never shown: the DSL
// module itself cannot be resolved on disk, and messages that failed to
// format carry no information.
func isNoise(msg, dslModule string) bool {
	if strings.TrimSpace(msg) == "" || strings.Contains(msg, "%!") {
		return true
	}
	return strings.Contains(msg, fmt.Sprintf("cannot find module %q", dslModule))
}

func emptyProject(errs ...core.Diagnostic) core.ParsedProject {
	if errs == nil {
		errs = []core.Diagnostic{}
	}
	return core.ParsedProject{
		Models: []core.ModelDefinition{},
		Routes: []core.RouteDefinition{},
		Errors: errs,
	}
}

// locate formats the start of a node as "file:line:col".
func locate(f *source.File, n syntax.Node) string {
	start, _ := n.Span()
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}
