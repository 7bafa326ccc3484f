package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("project-dir", "", "")
	fs.String("api-dir", "", "")
	fs.String("dsl-module", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringSlice("disable", nil, "")
	fs.Duration("debounce", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, file, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)

	abs, _ := filepath.Abs(dir)
	assert.Empty(t, file)
	assert.Equal(t, abs, cfg.ProjectDir)
	assert.Equal(t, DefaultAPIDir, cfg.APIDir)
	assert.Equal(t, DefaultDSLModule, cfg.DSLModule)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Lint.Disabled)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
api_dir: dsl
dsl_module: "@acme//dsl.star"
output: JSON
lint:
  disabled:
    - DSL04
watch:
  debounce: 250ms
`)

	cfg, file, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)

	assert.Equal(t, path, file)
	assert.Equal(t, "dsl", cfg.APIDir)
	assert.Equal(t, "@acme//dsl.star", cfg.DSLModule)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, []string{"DSL04"}, cfg.Lint.Disabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, map[string]bool{"DSL04": true}, cfg.DisabledRules())
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api_dir: elsewhere\n")

	cfg, file, err := Load(Options{File: path, ProjectDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, path, file)
	assert.Equal(t, "elsewhere", cfg.APIDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "api_dir: dsl\n")

	t.Setenv("FORGE_API_DIR", "from-env")
	t.Setenv("FORGE_LINT__DISABLED", "DSL01,DSL02")
	t.Setenv("FORGE_WATCH__DEBOUNCE", "2s")

	cfg, _, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIDir)
	assert.Equal(t, []string{"DSL01", "DSL02"}, cfg.Lint.Disabled)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FORGE_API_DIR", "from-env")
	t.Setenv("FORGE_OUTPUT", "yaml")

	flags := testFlags(t, "--api-dir=from-flag", "--disable=DSL03", "--debounce=1s", "-v")

	cfg, _, err := Load(Options{ProjectDir: dir, Flags: flags})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.APIDir)
	assert.Equal(t, []string{"DSL03"}, cfg.Lint.Disabled)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.True(t, cfg.Verbose)
	// Unset flags leave lower layers alone.
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_ProjectDirFlagFindsConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "api_dir: schema\n")

	cfg, file, err := Load(Options{Flags: testFlags(t, "--project-dir="+dir)})
	require.NoError(t, err)
	assert.NotEmpty(t, file)
	assert.Equal(t, "schema", cfg.APIDir)

	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, cfg.ProjectDir)
}

func TestLoad_PositionalProjectDirWins(t *testing.T) {
	flagDir := t.TempDir()
	argDir := t.TempDir()

	cfg, _, err := Load(Options{ProjectDir: argDir, Flags: testFlags(t, "--project-dir="+flagDir)})
	require.NoError(t, err)

	abs, _ := filepath.Abs(argDir)
	assert.Equal(t, abs, cfg.ProjectDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		errSubstr string
	}{
		{
			name:      "unknown output",
			file:      "output: html\n",
			errSubstr: `output must be one of [auto text markdown json yaml], got "html"`,
		},
		{
			name:      "negative debounce",
			file:      "watch:\n  debounce: -5s\n",
			errSubstr: "watch.debounce must not be negative",
		},
		{
			name:      "empty api dir",
			file:      "api_dir: \"\"\n",
			errSubstr: "api_dir is required",
		},
		{
			name:      "empty rule id",
			file:      "lint:\n  disabled: [\"\"]\n",
			errSubstr: "lint.disabled[0] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file)

			_, _, err := Load(Options{ProjectDir: dir})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()

	def := FromContext(ctx)
	assert.Equal(t, DefaultAPIDir, def.APIDir)
	assert.Equal(t, DefaultDebounce, def.Watch.Debounce)

	cfg := &Config{APIDir: "custom"}
	assert.Same(t, cfg, FromContext(WithConfig(ctx, cfg)))

	assert.NotNil(t, GetLogger(ctx))
	assert.NotNil(t, GetLogger(WithLogger(ctx, nil)))
}
