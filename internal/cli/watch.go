package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/compiler"
)

// DefaultDebounce is how long the watcher waits for more changes.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Debounce time.Duration
	Include  []string
}

// WatcherConfig configures a DefinitionWatcher.
type WatcherConfig struct {
	// Root is the definitions directory to watch.
	Root string

	// Include lists doublestar patterns relative to Root. Empty means
	// DefaultIncludes. .cue files always count.
	Include []string

	// Debounce is how long to wait for more changes before reporting.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefinitionWatcher reports batches of changed definition files.
type DefinitionWatcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path -> most recent operation
}

// NewDefinitionWatcher creates a watcher over config.Root and its subdirectories.
func NewDefinitionWatcher(config WatcherConfig) (*DefinitionWatcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if len(config.Include) == 0 {
		config.Include = DefaultIncludes
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &DefinitionWatcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
	}
	if err := w.addWatchesRecursive(config.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *DefinitionWatcher) Close() error {
	return w.watcher.Close()
}

// Run delivers debounced batches of changed files to onChange until ctx is
// done. Paths in a batch are sorted.
func (w *DefinitionWatcher) Run(ctx context.Context, onChange func(paths []string)) error {
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if paths := w.drain(); len(paths) > 0 {
				onChange(paths)
			}
		}
	}
}

func (w *DefinitionWatcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// skipDir reports hidden directories and golden output directories.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "golden"
}

func (w *DefinitionWatcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !skipDir(filepath.Base(path)) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.relevant(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("definition change detected", "path", path, "op", event.Op.String())
}

// relevant reports whether path is a definition file: a .cue file or a
// match of one of the include patterns.
func (w *DefinitionWatcher) relevant(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return true
	}
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// drain returns and clears the pending paths.
func (w *DefinitionWatcher) drain() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]fsnotify.Op)
	sort.Strings(paths)
	return paths
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-validate definitions whenever they change",
		Long: `Validate the definitions below a directory, then watch it and
re-validate after every batch of changes. Stops on interrupt.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "wait this long for more changes before validating")
	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "include patterns below the directory")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("definitions directory not found: %s", dir), nil)
	}

	logger := opts.Logger(formatter.GetErrWriter())
	w, err := NewDefinitionWatcher(WatcherConfig{
		Root:     dir,
		Include:  opts.Include,
		Debounce: opts.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("starting watcher: %v", err), nil)
	}
	defer w.Close()

	revalidate := func(changed []string) {
		errs, err := ValidateDir(dir, opts.Include)
		reportWatch(formatter, changed, errs, err)
	}

	revalidate(nil)
	logger.Info("watching definitions", "dir", dir, "debounce", opts.Debounce)

	return w.Run(commandContext(cmd), revalidate)
}

// WatchReport is emitted after every validation in JSON mode.
type WatchReport struct {
	Changed []string                   `json:"changed,omitempty"`
	Valid   bool                       `json:"valid"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

func reportWatch(formatter *OutputFormatter, changed []string, errs []compiler.ValidationError, loadErr error) {
	report := WatchReport{
		Changed: changed,
		Valid:   loadErr == nil && len(errs) == 0,
		Errors:  errs,
	}
	if loadErr != nil {
		report.Error = loadErr.Error()
	}

	if formatter.IsJSON() {
		_ = formatter.Success(report)
		return
	}
	writeWatchText(formatter.Writer, time.Now(), report)
}

func writeWatchText(w io.Writer, now time.Time, report WatchReport) {
	stamp := now.Format("15:04:05")
	if len(report.Changed) > 0 {
		fmt.Fprintf(w, "[%s] changed: %s\n", stamp, strings.Join(report.Changed, ", "))
	}
	switch {
	case report.Error != "":
		fmt.Fprintf(w, "[%s] ✗ %s\n", stamp, report.Error)
	case !report.Valid:
		fmt.Fprintf(w, "[%s] ✗ %d validation error(s)\n", stamp, len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
		}
	default:
		fmt.Fprintf(w, "[%s] ✓ definitions valid\n", stamp)
	}
}
