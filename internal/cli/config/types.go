// Package config provides configuration management for the forge CLI.
//
// Configuration is layered: built-in defaults, then forge.yaml, then FORGE_
// environment variables, then explicitly set command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	ProjectDir string      `koanf:"project_dir" validate:"required"`
	APIDir     string      `koanf:"api_dir" validate:"required"`
	DSLModule  string      `koanf:"dsl_module" validate:"required"`
	Output     string      `koanf:"output" validate:"oneof=auto text markdown json yaml"`
	Verbose    bool        `koanf:"verbose"`
	Lint       LintConfig  `koanf:"lint"`
	Watch      WatchConfig `koanf:"watch"`
}

// LintConfig holds validator settings.
type LintConfig struct {
	// Disabled lists rule IDs to skip, e.g. ["DSL04"].
	Disabled []string `koanf:"disabled" validate:"dive,required"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before re-running.
	Debounce time.Duration `koanf:"debounce" validate:"gte=0"`
}

// DisabledRules returns the disabled rule IDs as a set.
func (c *Config) DisabledRules() map[string]bool {
	disabled := make(map[string]bool, len(c.Lint.Disabled))
	for _, id := range c.Lint.Disabled {
		disabled[id] = true
	}
	return disabled
}

// Default configuration values.
const (
	DefaultAPIDir    = "api"
	DefaultDSLModule = "@forge//dsl.star"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDebounce  = 100 * time.Millisecond

	// EnvPrefix prefixes every environment variable read by the loader.
	EnvPrefix = "FORGE_"
)

// ConfigFileNames are the config file names searched in the project directory.
var ConfigFileNames = []string{"forge.yaml", "forge.yml"}
