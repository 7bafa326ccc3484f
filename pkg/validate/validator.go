package validate

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/forge/pkg/core"
)

// Validator runs registered rules against an extracted project.
type Validator struct {
	disabledRules map[string]bool
	logger        *slog.Logger
}

// Config holds configuration for the validator.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// Logger receives debug output. Defaults to a discard logger.
	Logger *slog.Logger
}

// NewConfig creates a default configuration.
func NewConfig() *Config {
	return &Config{
		DisabledRules: make(map[string]bool),
	}
}

// NewValidator creates a new validator with optional configuration.
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = NewConfig()
	}
	disabled := make(map[string]bool, len(config.DisabledRules))
	for id, off := range config.DisabledRules {
		disabled[id] = off
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{
		disabledRules: disabled,
		logger:        logger,
	}
}

// Validate runs every enabled rule, in rule ID order, and splits the findings
// by severity. It always returns a complete result, even for a nil or empty project.
func (v *Validator) Validate(project *core.ParsedProject) core.ValidationResult {
	ctx := NewContext(project)

	var diagnostics []core.Diagnostic
	for _, rule := range GetAll() {
		if v.isDisabled(rule.ID) {
			continue
		}
		diagnostics = append(diagnostics, v.run(rule, ctx)...)
	}

	result := core.NewValidationResult(diagnostics)
	v.logger.Debug(fmt.Sprintf("Validation completed: %d errors, %d warnings", len(result.Errors), len(result.Warnings)))
	return result
}

// run executes one rule. A rule that panics contributes a single error
// diagnostic in place of its findings.
func (v *Validator) run(rule RuleDef, ctx *Context) (diags []core.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation rule panicked", "rule", rule.ID, "panic", r)
			d := core.Errorf("", "Rule %s failed: %v", rule.ID, r)
			d.RuleID = rule.ID
			diags = []core.Diagnostic{d}
		}
	}()

	diags = rule.Check(ctx)
	for i := range diags {
		if diags[i].RuleID == "" {
			diags[i].RuleID = rule.ID
		}
	}
	return diags
}

func (v *Validator) isDisabled(ruleID string) bool {
	return v.disabledRules[ruleID]
}

// Disable disables a rule by ID.
func (v *Validator) Disable(ruleID string) {
	v.disabledRules[ruleID] = true
}

// Enable enables a previously disabled rule.
func (v *Validator) Enable(ruleID string) {
	delete(v.disabledRules, ruleID)
}
