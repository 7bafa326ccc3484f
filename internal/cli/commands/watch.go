package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/leapstack-labs/forge/pkg/core"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration // Quiet period before re-running
	Disable  []string      // Rule IDs to disable
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [project-dir]",
		Short: "Re-run check whenever a DSL source changes",
		Long: `Watch the project's API directory and re-run the full check whenever a
.star file is written, created, removed or renamed.

Every run starts from scratch: nothing is cached between runs. Bursts of
changes are coalesced using the debounce interval (watch.debounce in
forge.yaml, default 100ms).`,
		Example: `  # Watch the current project
  forge watch

  # Wait longer after the last change
  forge watch --debounce 500ms`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: projectAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet period after the last change before re-running")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	cmdCtx := NewCommandContext(cmd, args)

	debounce := cmdCtx.Cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce = opts.Debounce
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &projectWatcher{
		cmdCtx:   cmdCtx,
		debounce: debounce,
		disable:  opts.Disable,
	}
	return w.Run(ctx)
}

// watchRun is one completed check triggered by the watcher.
type watchRun struct {
	ID      string
	Trigger string
	Result  pipelineResult
}

// projectWatcher re-runs the check pipeline on source changes.
type projectWatcher struct {
	cmdCtx   *CommandContext
	debounce time.Duration
	disable  []string

	// onRun, when set, is called after every run.
	onRun func(watchRun)

	mu     sync.Mutex
	closed bool
}

// Run checks the project once, then again after every relevant change,
// until ctx is canceled.
func (w *projectWatcher) Run(ctx context.Context) error {
	cfg := w.cmdCtx.Cfg
	logger := w.cmdCtx.Logger

	apiDir := filepath.Join(cfg.ProjectDir, cfg.APIDir)
	if info, err := os.Stat(apiDir); err != nil || !info.IsDir() {
		return fmt.Errorf("API directory not found: %s", apiDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, apiDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", apiDir, err)
	}

	logger.Info("watching for changes", "dir", apiDir, "debounce", w.debounce)
	_, _ = fmt.Fprintf(w.cmdCtx.Renderer.ErrWriter(), "Watching %s for changes (Ctrl+C to stop)\n", apiDir)

	w.check(ctx, "startup")
	return w.loop(ctx, watcher)
}

// watchDir recursively adds a directory to the watcher, skipping hidden directories.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// loop handles file system events.
func (w *projectWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	logger := w.cmdCtx.Logger

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		// Wait out an in-flight run and refuse later ones.
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(watcher, event) {
				continue
			}

			// Debounce re-runs
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			trigger := event.Name
			debounceTimer = time.AfterFunc(w.debounce, func() {
				w.check(ctx, trigger)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event should trigger a run. New directories are
// added to the watcher and count as a change, since they may already hold sources.
func (w *projectWatcher) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watchDir(watcher, event.Name); err != nil {
				w.cmdCtx.Logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			}
			return true
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Ext(event.Name) == ".star"
}

// check runs the pipeline once and renders the result. Runs never overlap.
func (w *projectWatcher) check(ctx context.Context, trigger string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || ctx.Err() != nil {
		return
	}

	run := watchRun{ID: uuid.New().String(), Trigger: trigger}
	logger := w.cmdCtx.Logger.With("run_id", run.ID)
	logger.Debug("check started", "trigger", trigger)

	started := time.Now()
	run.Result = w.cmdCtx.runPipeline(ctx, w.disable)

	logger.Info("check completed",
		"trigger", trigger,
		"duration", time.Since(started),
		"models", len(run.Result.Project.Models),
		"routes", len(run.Result.Project.Routes),
		"errors", len(run.Result.Project.Errors)+len(run.Result.Validation.Errors),
		"warnings", len(run.Result.Validation.Warnings),
	)

	r := w.cmdCtx.Renderer
	if !r.EffectiveMode().IsStructured() {
		r.Section(fmt.Sprintf("[%s] %s", started.Format("15:04:05"), filepath.Base(trigger)))
	}
	if err := renderCheck(r, w.cmdCtx.Cfg.ProjectDir, run.Result, core.SeverityWarning); err != nil {
		logger.Error("failed to render check result", "error", err)
	}

	if w.onRun != nil {
		w.onRun(run)
	}
}
