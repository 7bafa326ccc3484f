package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Options controls a configuration load.
type Options struct {
	// File is an explicit config file path. When empty, forge.yaml or
	// forge.yml is looked up in the project directory.
	File string

	// ProjectDir overrides the project directory, e.g. from a positional argument.
	ProjectDir string

	// Flags holds parsed command-line flags. Only flags that were set are applied.
	Flags *pflag.FlagSet
}

// flagKeys maps flag names onto config keys where they differ.
var flagKeys = map[string]string{
	"disable":  "lint.disabled",
	"debounce": "watch.debounce",
}

// Load loads configuration from defaults, file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Relative directories are resolved against the current working directory.
func Load(opts Options) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project_dir":    ".",
		"api_dir":        DefaultAPIDir,
		"dsl_module":     DefaultDSLModule,
		"output":         DefaultOutput,
		"verbose":        false,
		"lint.disabled":  []string{},
		"watch.debounce": DefaultDebounce.String(),
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	projectDir := projectDirHint(opts)

	// 2. Find and load config file
	cfgFile := findConfigFile(opts.File, projectDir)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Load environment variables (FORGE_ prefix)
	// Transform: FORGE_API_DIR -> api_dir, FORGE_WATCH__DEBOUNCE -> watch.debounce
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// A positional project directory beats every other source.
	if opts.ProjectDir != "" {
		if err := k.Set("project_dir", opts.ProjectDir); err != nil {
			return nil, "", fmt.Errorf("failed to set project directory: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	if abs, err := filepath.Abs(cfg.ProjectDir); err == nil {
		cfg.ProjectDir = abs
	}
	cfg.Output = strings.ToLower(cfg.Output)

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, cfgFile, nil
}

// projectDirHint picks the directory searched for a config file before the
// full configuration is known.
func projectDirHint(opts Options) string {
	if opts.ProjectDir != "" {
		return opts.ProjectDir
	}
	if opts.Flags != nil && opts.Flags.Changed("project-dir") {
		if dir, err := opts.Flags.GetString("project-dir"); err == nil && dir != "" {
			return dir
		}
	}
	if dir := os.Getenv(EnvPrefix + "PROJECT_DIR"); dir != "" {
		return dir
	}
	return "."
}

// findConfigFile finds the config file to use.
// Priority: explicit path > forge.yaml > forge.yml in the project directory.
func findConfigFile(explicit, projectDir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(projectDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Default returns the configuration used when nothing has been loaded.
func Default() *Config {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &Config{
		ProjectDir: dir,
		APIDir:     DefaultAPIDir,
		DSLModule:  DefaultDSLModule,
		Output:     DefaultOutput,
		Watch:      WatchConfig{Debounce: DefaultDebounce},
	}
}

// WithConfig stores the config in a context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from a context, or the defaults if none is stored.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}

// WithLogger stores the logger in a context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
