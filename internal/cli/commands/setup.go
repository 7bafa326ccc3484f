package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/forge/internal/cli/config"
	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/leapstack-labs/forge/internal/extract"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
	_ "github.com/leapstack-labs/forge/pkg/validate/rules" // register DSL rules
	"github.com/spf13/cobra"
)

// ProjectArgAnnotation marks commands whose first positional argument is the
// project directory. The root command uses it to find the config file.
const ProjectArgAnnotation = "forge/project-arg"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's context.
// A positional project directory overrides the configured one.
func NewCommandContext(cmd *cobra.Command, args []string) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	if len(args) > 0 && cmd.Annotations[ProjectArgAnnotation] == "true" {
		if dir, err := filepath.Abs(args[0]); err == nil && dir != cfg.ProjectDir {
			override := *cfg
			override.ProjectDir = dir
			cfg = &override
		}
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// projectAnnotations returns the annotations for commands taking [project-dir].
func projectAnnotations() map[string]string {
	return map[string]string{ProjectArgAnnotation: "true"}
}

// Extract runs the extractor over the configured project.
func (c *CommandContext) Extract(ctx context.Context) core.ParsedProject {
	ex := extract.New(extract.Options{
		APIDir:    c.Cfg.APIDir,
		DSLModule: c.Cfg.DSLModule,
		Logger:    c.Logger,
	})
	return ex.Extract(ctx, c.Cfg.ProjectDir)
}

// Validate runs every enabled rule. Rules disabled in the config and the
// extra IDs passed in are skipped.
func (c *CommandContext) Validate(project *core.ParsedProject, disable []string) core.ValidationResult {
	vcfg := validate.NewConfig()
	vcfg.Logger = c.Logger
	for id := range c.Cfg.DisabledRules() {
		vcfg.DisabledRules[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	for _, id := range disable {
		vcfg.DisabledRules[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	return validate.NewValidator(vcfg).Validate(project)
}

// pipelineResult is one full extract and validate pass.
type pipelineResult struct {
	Project    core.ParsedProject
	Validation core.ValidationResult
}

// failed reports whether extraction or validation produced errors.
func (p pipelineResult) failed() bool {
	return len(p.Project.Errors) > 0 || !p.Validation.IsValid
}

// runPipeline extracts the project and validates it. Validation runs even when
// extraction reported problems; the project is then empty.
func (c *CommandContext) runPipeline(ctx context.Context, disable []string) pipelineResult {
	project := c.Extract(ctx)
	return pipelineResult{
		Project:    project,
		Validation: c.Validate(&project, disable),
	}
}
