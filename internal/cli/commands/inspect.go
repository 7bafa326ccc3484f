package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/spf13/cobra"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	ModelsOnly bool // Show only models
	RoutesOnly bool // Show only routes
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect [project-dir]",
		Short: "Show the extracted models and routes",
		Long: `Extract the project's DSL sources and print the resulting project
description without validating it.

In a terminal the project is drawn as a tree; piped output uses markdown
tables. Use -o json or -o yaml for the full structure, handler text included.`,
		Example: `  # Show the current project
  forge inspect

  # Only the models
  forge inspect --models

  # Full structure as YAML
  forge inspect -o yaml`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: projectAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ModelsOnly, "models", false, "Show only models")
	cmd.Flags().BoolVar(&opts.RoutesOnly, "routes", false, "Show only routes")
	cmd.MarkFlagsMutuallyExclusive("models", "routes")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	cmdCtx := NewCommandContext(cmd, args)
	r := cmdCtx.Renderer

	project := cmdCtx.Extract(cmd.Context())
	if opts.ModelsOnly {
		project.Routes = []core.RouteDefinition{}
	}
	if opts.RoutesOnly {
		project.Models = []core.ModelDefinition{}
	}

	if handled, err := r.Structured(project); handled {
		return err
	}

	for _, d := range project.Errors {
		r.Error(d.String())
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		renderProjectMarkdown(r, project, opts)
		return nil
	}
	return r.Tree(projectTree(cmdCtx.Cfg.ProjectDir, project, opts))
}

// projectTree builds the tree view. Node labels include the declaration site
// so that duplicate declarations stay distinct.
func projectTree(projectDir string, project core.ParsedProject, opts *InspectOptions) *gtree.Node {
	root := gtree.NewRoot(filepath.Base(projectDir))

	if !opts.RoutesOnly {
		models := root.Add(fmt.Sprintf("models (%d)", len(project.Models)))
		for _, m := range project.Models {
			node := models.Add(withLocation(m.Name, relLocation(projectDir, m.Location)))
			for _, f := range m.Fields {
				node.Add(fieldLabel(f))
			}
			for _, rel := range m.Relationships {
				node.Add(relationshipLabel(rel))
			}
		}
	}

	if !opts.ModelsOnly {
		routes := root.Add(fmt.Sprintf("routes (%d)", len(project.Routes)))
		for _, rt := range project.Routes {
			node := routes.Add(withLocation(rt.Signature(), relLocation(projectDir, rt.Location)))
			for _, p := range rt.Parameters {
				node.Add(fmt.Sprintf("param %s: %s", p.Name, p.Type))
			}
			if rt.Body != "" {
				node.Add("body: " + rt.Body)
			}
			if rt.Response != "" {
				node.Add("response: " + rt.Response)
			}
		}
	}

	return root
}

func renderProjectMarkdown(r *output.Renderer, project core.ParsedProject, opts *InspectOptions) {
	if !opts.RoutesOnly {
		r.Section(fmt.Sprintf("Models (%d)", len(project.Models)))
		for _, m := range project.Models {
			r.Printf("### %s\n\n", m.Name)
			rows := make([][]string, 0, len(m.Fields)+len(m.Relationships))
			for _, f := range m.Fields {
				rows = append(rows, []string{f.Name, f.Type, strings.Join(f.Constraints, ", "), yesNo(f.Optional)})
			}
			for _, rel := range m.Relationships {
				rows = append(rows, []string{rel.Name, rel.Kind + " " + rel.Target, foreignKeyText(rel), ""})
			}
			r.Table([]string{"Field", "Type", "Constraints", "Optional"}, rows)
			r.Println("")
		}
	}

	if !opts.ModelsOnly {
		r.Section(fmt.Sprintf("Routes (%d)", len(project.Routes)))
		rows := make([][]string, 0, len(project.Routes))
		for _, rt := range project.Routes {
			names := make([]string, 0, len(rt.Parameters))
			for _, p := range rt.Parameters {
				names = append(names, p.Name)
			}
			rows = append(rows, []string{rt.Method, rt.Path, strings.Join(names, ", "), rt.Body, rt.Response})
		}
		r.Table([]string{"Method", "Path", "Parameters", "Body", "Response"}, rows)
		r.Println("")
	}
}

func fieldLabel(f core.ModelField) string {
	label := f.Name + ": " + f.Type
	if f.Type == "" {
		label = f.Name + ": ?"
	}
	if len(f.Constraints) > 0 {
		label += " " + strings.Join(f.Constraints, " ")
	}
	return label
}

func relationshipLabel(rel core.RelationshipDefinition) string {
	label := fmt.Sprintf("%s -> %s %s", rel.Name, rel.Kind, rel.Target)
	if rel.ForeignKey != "" {
		label += " (fk " + rel.ForeignKey + ")"
	}
	return label
}

func foreignKeyText(rel core.RelationshipDefinition) string {
	if rel.ForeignKey == "" {
		return ""
	}
	return "fk " + rel.ForeignKey
}

func withLocation(label, location string) string {
	if location == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, location)
}

// relLocation trims the project directory from a "file:line:col" location.
func relLocation(projectDir, location string) string {
	prefix := projectDir + string(filepath.Separator)
	return strings.TrimPrefix(location, prefix)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
