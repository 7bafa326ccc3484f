package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/leapstack-labs/forge/pkg/validate"
	_ "github.com/leapstack-labs/forge/pkg/validate/rules" // register rules
)

// generateRulesDocs writes one page listing every registered validation rule.
func generateRulesDocs(outDir string) error {
	log.Printf("Generating rules docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	defs := validate.GetAll()

	w := NewMarkdownWriter()
	w.Frontmatter("Validation Rules", "Rules applied by forge check")
	w.GeneratedMarker()

	w.Header(1, "Validation Rules")
	w.Paragraph(fmt.Sprintf("forge check runs %d rules over the extracted models and routes. "+
		"Rules can be skipped with %s or the %s config key.",
		len(defs), InlineCode("--disable"), InlineCode("lint.disabled")))

	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		info := d.Info()
		rows = append(rows, []string{
			fmt.Sprintf("[%s](#%s)", info.ID, info.ID),
			info.Name,
			output.Title(info.Group),
			cleanDescription(info.Description),
		})
	}
	w.Table([]string{"ID", "Name", "Group", "Description"}, rows)

	w.Header(2, "Configuration")
	w.CodeBlock("yaml", `lint:
  disabled:
    - DSL04`)

	for _, d := range defs {
		writeRuleDoc(w, d.Info())
	}

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md (%d rules)", len(defs))
	return nil
}

// writeRuleDoc writes the documentation of a single rule.
func writeRuleDoc(w *MarkdownWriter, rule core.RuleInfo) {
	w.Line(fmt.Sprintf("## %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Paragraph(rule.Description)

	if len(rule.Checks) > 0 {
		w.Header(3, "Checks")
		w.BulletList(rule.Checks)
	}

	if rule.Rationale != "" {
		w.Header(3, "Why This Matters")
		w.Paragraph(rule.Rationale)
	}

	if rule.BadExample != "" {
		w.Header(3, "Bad")
		w.CodeBlock("python", rule.BadExample)
	}

	if rule.GoodExample != "" {
		w.Header(3, "Good")
		w.CodeBlock("python", rule.GoodExample)
	}

	w.Line("---")
	w.Newline()
}
