package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/forge/internal/cli"
	"github.com/leapstack-labs/forge/internal/cli/config"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes an index page plus one page per documented command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documentedCommands(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documentedCommands returns the visible subcommands of root.
func documentedCommands(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for forge")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/forge/cmd/forge@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documentedCommands(root) {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s in the project directory, then %s environment "+
		"variables, then command-line flags. Nested keys use a double underscore in variable names.",
		InlineCode(config.ConfigFileNames[0]), InlineCode(config.EnvPrefix+"*")))
	w.Table([]string{"Variable", "Default", "Description"}, [][]string{
		{InlineCode(config.EnvPrefix + "PROJECT_DIR"), "current directory", "Project root"},
		{InlineCode(config.EnvPrefix + "API_DIR"), InlineCode(config.DefaultAPIDir), "Directory holding the .star sources"},
		{InlineCode(config.EnvPrefix + "DSL_MODULE"), InlineCode(config.DefaultDSLModule), "load() path of the DSL module"},
		{InlineCode(config.EnvPrefix + "OUTPUT"), InlineCode(config.DefaultOutput), "Output format"},
		{InlineCode(config.EnvPrefix + "LINT__DISABLED"), "", "Comma-separated rule IDs to skip"},
		{InlineCode(config.EnvPrefix + "WATCH__DEBOUNCE"), InlineCode(config.DefaultDebounce.String()), "Delay before watch re-runs a check"},
	})

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error or failed check (details on stderr)"},
	})

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, alias := range cmd.Aliases {
			aliases[i] = InlineCode(alias)
		}
		w.BulletList(aliases)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return w.Bytes()
}

// writeFlagsTable writes a table of the visible flags in a set.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		rows = append(rows, []string{
			InlineCode("--" + f.Name),
			short,
			flagDefault(f),
			cleanDescription(f.Usage),
		})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// flagDefault formats a flag's default value; booleans and empty values stay bare.
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "[]", "false", "true":
		return f.DefValue
	}
	return InlineCode(f.DefValue)
}

// cleanExample removes common leading whitespace from example text.
func cleanExample(example string) string {
	return strings.TrimSpace(dedent.Dedent(example))
}
