// Package script runs the external programs used by script and system macros.
//
// A script is either a Starlark file (.star), run in-process, or any other
// executable, run as a subprocess with the macro arguments as argv.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when a script name cannot be resolved to a file.
var ErrNotFound = errors.New("script not found")

// DefaultShell runs system macro command lines.
const DefaultShell = "/bin/sh"

// Runner resolves and runs scripts. A Runner is safe for concurrent use.
type Runner struct {
	dirs    []string
	timeout time.Duration
	shell   string
	logger  *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithDirs sets the directories searched for relative script names, in order.
func WithDirs(dirs ...string) Option {
	return func(r *Runner) {
		r.dirs = append(r.dirs, dirs...)
	}
}

// WithTimeout bounds every run. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithShell sets the shell used by RunCommand.
func WithShell(shell string) Option {
	return func(r *Runner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a new script runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		shell:  DefaultShell,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves name and runs it with args. The output has exactly one
// trailing newline removed.
func (r *Runner) Run(ctx context.Context, name string, args []string) (string, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var out string
	if filepath.Ext(path) == ".star" {
		out, err = runStarlark(ctx, path, args, r.logger)
	} else {
		out, err = runProcess(ctx, path, args...)
	}
	r.logger.Debug("script finished",
		"script", path,
		"args", len(args),
		"duration", time.Since(start),
		"ok", err == nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(out, "\n"), nil
}

// RunCommand runs command with the configured shell and returns its
// standard output unchanged.
func (r *Runner) RunCommand(ctx context.Context, command string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	r.logger.Debug("running command", "shell", r.shell, "command", command)
	return runProcess(ctx, r.shell, "-c", command)
}

// Resolve returns the file a script name refers to. Absolute names and names
// starting with "~/" are used directly. Relative names are looked up in the
// configured directories, then in the working directory.
func (r *Runner) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if rest, ok := strings.CutPrefix(name, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", name, err)
		}
		name = filepath.Join(home, rest)
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range r.dirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
		candidates = append(candidates, name)
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.Mode().IsRegular() {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}
