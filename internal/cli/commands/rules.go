package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Details bool   // Show full documentation
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available validation rules",
		Long: `List all validation rules run by 'forge check', with their documentation.

Rules are organized by group (models, fields, routes, relationships).
Use --details to see the individual checks each rule performs.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all rules
  forge rules

  # Show details for a specific rule
  forge rules DSL03

  # List rules in the routes group
  forge rules --group routes

  # Output as JSON
  forge rules -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "Show the checks and rationale of each rule")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd, nil).Renderer

	var defs []validate.RuleDef
	if opts.Group != "" {
		defs = validate.GetByGroup(opts.Group)
	} else {
		defs = validate.GetAll()
	}

	rules := make([]core.RuleInfo, 0, len(defs))
	for _, d := range defs {
		rules = append(rules, d.Info())
	}

	if handled, err := r.Structured(RulesOutput{Rules: rules, Count: len(rules)}); handled {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		listRulesMarkdown(r, rules, opts.Details)
		return nil
	}
	listRulesText(r, rules, opts.Details)
	return nil
}

func showRule(cmd *cobra.Command, ruleID string) error {
	r := NewCommandContext(cmd, nil).Renderer

	def, ok := validate.GetByID(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	rule := def.Info()

	if handled, err := r.Structured(rule); handled {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		showRuleMarkdown(r, rule)
		return nil
	}
	showRuleText(r, rule)
	return nil
}

// RulesOutput is the structured output for the rules listing.
type RulesOutput struct {
	Rules []core.RuleInfo `json:"rules" yaml:"rules"`
	Count int             `json:"count" yaml:"count"`
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []core.RuleInfo, details bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Validation Rules (%d)", len(rules))))
	r.Println("")

	for _, rule := range rules {
		r.Printf("  %s  %s %s\n",
			styles.Muted.Render(rule.ID),
			styles.Bold.Render(rule.Name),
			styles.Muted.Render("["+output.Title(rule.Group)+"]"),
		)
		r.Println("        " + rule.Description)

		if details {
			for _, check := range rule.Checks {
				r.Println(styles.Muted.Render("        - " + check))
			}
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("        Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'forge rules <rule-id>' for detailed documentation"))
	r.Println("")
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, details bool) {
	r.Header("Validation Rules")

	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{rule.ID, rule.Name, output.Title(rule.Group), rule.Description})
	}
	r.Table([]string{"ID", "Name", "Group", "Description"}, rows)
	r.Println("")

	if !details {
		return
	}
	for _, rule := range rules {
		r.Section(rule.ID + " - " + rule.Name)
		for _, check := range rule.Checks {
			r.Println("- " + check)
		}
		if rule.Rationale != "" {
			r.Println("")
			r.Println("> " + truncateOneLine(rule.Rationale, 200))
		}
		r.Println("")
	}
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule core.RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), output.Title(rule.Group))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if len(rule.Checks) > 0 {
		r.Println(styles.Bold.Render("Checks"))
		for _, check := range rule.Checks {
			r.Println("  - " + check)
		}
		r.Println("")
	}

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		for _, line := range strings.Split(rule.Rationale, "\n") {
			r.Println("  " + line)
		}
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule core.RuleInfo) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s\n\n", output.Title(rule.Group))
	r.Println(rule.Description)
	r.Println("")

	if len(rule.Checks) > 0 {
		r.Println("## Checks")
		r.Println("")
		for _, check := range rule.Checks {
			r.Println("- " + check)
		}
		r.Println("")
	}

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println("```python")
		r.Println(rule.BadExample)
		r.Println("```")
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println("```python")
		r.Println(rule.GoodExample)
		r.Println("```")
		r.Println("")
	}
}

// truncateOneLine collapses text to a single line of at most maxLen characters.
func truncateOneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
