package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when a project has extraction or validation errors.
var ErrCheckFailed = errors.New("check failed")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	IgnoreErrors bool     // Exit zero even when errors are found
	Severity     string   // Minimum severity to report: error, warning
	Disable      []string // Rule IDs to disable
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [project-dir]",
		Short: "Extract and validate model and route declarations",
		Long: `Extract model() and route() declarations from the project's DSL sources
and validate them.

Extraction problems (syntax errors, malformed calls) and validation errors
make the command exit non-zero. Warnings never do.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Check the project in the current directory
  forge check

  # Check another project
  forge check ./my-app

  # Only report errors
  forge check --severity error

  # Skip the relationship rule
  forge check --disable DSL04

  # Machine-readable output
  forge check -o json`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: projectAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.IgnoreErrors, "ignore-errors", false, "Exit zero even when errors are found")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "Minimum severity to report: error, warning")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	threshold, ok := core.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q: must be error or warning", opts.Severity)
	}

	cmdCtx := NewCommandContext(cmd, args)
	res := cmdCtx.runPipeline(cmd.Context(), opts.Disable)

	cmdCtx.Logger.Debug("check completed",
		"project", cmdCtx.Cfg.ProjectDir,
		"models", len(res.Project.Models),
		"routes", len(res.Project.Routes),
		"extraction_errors", len(res.Project.Errors),
		"errors", len(res.Validation.Errors),
		"warnings", len(res.Validation.Warnings),
	)

	if err := renderCheck(cmdCtx.Renderer, cmdCtx.Cfg.ProjectDir, res, threshold); err != nil {
		return err
	}

	if res.failed() && !opts.IgnoreErrors {
		return fmt.Errorf("%w: %d extraction errors, %d validation errors",
			ErrCheckFailed, len(res.Project.Errors), len(res.Validation.Errors))
	}
	return nil
}

// CheckSummary counts what a check pass found.
type CheckSummary struct {
	Models           int `json:"models" yaml:"models"`
	Routes           int `json:"routes" yaml:"routes"`
	ExtractionErrors int `json:"extraction_errors" yaml:"extraction_errors"`
	Errors           int `json:"errors" yaml:"errors"`
	Warnings         int `json:"warnings" yaml:"warnings"`
}

// CheckOutput is the structured output of the check command.
type CheckOutput struct {
	ProjectDir       string            `json:"project_dir" yaml:"project_dir"`
	Valid            bool              `json:"valid" yaml:"valid"`
	ExtractionErrors []core.Diagnostic `json:"extraction_errors" yaml:"extraction_errors"`
	Errors           []core.Diagnostic `json:"errors" yaml:"errors"`
	Warnings         []core.Diagnostic `json:"warnings" yaml:"warnings"`
	Summary          CheckSummary      `json:"summary" yaml:"summary"`
}

func newCheckOutput(projectDir string, res pipelineResult, threshold core.Severity) CheckOutput {
	out := CheckOutput{
		ProjectDir:       projectDir,
		Valid:            !res.failed(),
		ExtractionErrors: res.Project.Errors,
		Errors:           res.Validation.Errors,
		Warnings:         res.Validation.Warnings,
		Summary: CheckSummary{
			Models:           len(res.Project.Models),
			Routes:           len(res.Project.Routes),
			ExtractionErrors: len(res.Project.Errors),
			Errors:           len(res.Validation.Errors),
			Warnings:         len(res.Validation.Warnings),
		},
	}
	if threshold < core.SeverityWarning {
		out.Warnings = []core.Diagnostic{}
	}
	return out
}

func renderCheck(r *output.Renderer, projectDir string, res pipelineResult, threshold core.Severity) error {
	out := newCheckOutput(projectDir, res, threshold)
	if handled, err := r.Structured(out); handled {
		return err
	}

	if len(out.ExtractionErrors) > 0 {
		r.Section("Extraction")
		renderDiagnostics(r, out.ExtractionErrors)
		r.Println("")
	}

	reported := append(append([]core.Diagnostic{}, out.Errors...), out.Warnings...)
	if len(reported) > 0 {
		r.Section("Validation")
		renderDiagnostics(r, reported)
		r.Println("")
	}

	r.Printf("Summary: %s\n", summaryLine(out.Summary))

	switch {
	case out.Valid && out.Summary.Warnings == 0:
		r.Success("No problems found")
	case out.Valid:
		r.Warning(fmt.Sprintf("Project is valid with %d warnings", out.Summary.Warnings))
	default:
		r.Error("Project has errors")
	}
	return nil
}

func renderDiagnostics(r *output.Renderer, diags []core.Diagnostic) {
	styles := r.Styles()
	markdown := r.EffectiveMode() == output.ModeMarkdown

	for _, d := range diags {
		rule := d.RuleID
		if rule == "" {
			rule = "-"
		}
		if markdown {
			line := fmt.Sprintf("- **%s** `%s` %s", d.Severity, rule, d.Message)
			if d.Location != "" {
				line += fmt.Sprintf(" (`%s`)", d.Location)
			}
			r.Println(line)
			continue
		}

		r.Printf("  %s  %s  %s\n",
			severityLabel(r, d.Severity),
			styles.Bold.Render(fmt.Sprintf("%-5s", rule)),
			d.Message,
		)
		if d.Location != "" {
			r.Println(styles.Muted.Render("         at " + d.Location))
		}
	}
}

func severityLabel(r *output.Renderer, sev core.Severity) string {
	switch sev {
	case core.SeverityError:
		return r.Styles().Error.Render("error  ")
	case core.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}

func summaryLine(s CheckSummary) string {
	parts := []string{
		plural(s.Models, "model"),
		plural(s.Routes, "route"),
	}
	if s.ExtractionErrors > 0 {
		parts = append(parts, plural(s.ExtractionErrors, "extraction error"))
	}
	parts = append(parts, plural(s.Errors, "error"), plural(s.Warnings, "warning"))
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
