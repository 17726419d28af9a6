package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce groups the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var keys bool

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-expand a file whenever it changes",
		Long: `Expand the macros in a file, then expand and print it again every time the
file is saved. Useful while writing phrases that call scripts. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], keys)
		},
	}

	cmd.Flags().BoolVarP(&keys, "keys", "k", false, "Show key tokens as [key]")
	return cmd
}

func runWatch(cmd *cobra.Command, path string, keys bool) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	render := func() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "--- %s (%s)\n", path, time.Now().Format(time.TimeOnly))
		if err := expandFile(ctx, cmd, cc, abs, keys); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	render()
	return watchLoop(ctx, watcher, abs, render)
}

// watchLoop calls onChange, debounced, after writes to target until ctx is done.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, onChange func()) error {
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func expandFile(ctx context.Context, cmd *cobra.Command, cc *CommandContext, path string, keys bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is given by the user
	if err != nil {
		return err
	}

	out, err := cc.Expander.Process(ctx, string(data))
	if err != nil {
		return err
	}
	return printExpansion(ctx, cmd.OutOrStdout(), out, keys)
}
