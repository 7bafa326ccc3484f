package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/forge/internal/cli/config"
	"github.com/leapstack-labs/forge/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new forge project",
		Long: `Initialize a new forge project with a sample API definition.

This creates:
  - api/schema.star with example User and Post models
  - api/routes.star with example routes
  - forge.yaml configuration file
  - .gitignore

Existing files are left untouched unless --force is given.`,
		Example: `  # Initialize in current directory
  forge init

  # Initialize in a new directory
  forge init my-app

  # Force overwrite existing files
  forge init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContext(cmd, nil).Renderer
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for _, name := range config.ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil && !force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", name)
		}
	}

	written, err := copyTemplate("minimal", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	if handled, err := r.Structured(map[string][]string{"files": files, "written": written}); handled {
		return err
	}

	for _, f := range files {
		r.Printf("  %s\n", r.Styles().Success.Render("+ "+f))
	}

	r.Println("")
	r.Success("forge project initialized!")
	r.Println("")
	r.Println("Next steps:")
	step := 1
	if dir != "." {
		r.Printf("  %d. cd %s\n", step, dir)
		step++
	}
	r.Printf("  %d. Edit the models in api/schema.star\n", step)
	r.Printf("  %d. Run 'forge check' to validate them\n", step+1)
	r.Printf("  %d. Run 'forge watch' while you edit\n", step+2)

	return nil
}
