package macro

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Clock supplies the current time to the date macro.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, optionally converted to Location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time.
func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// FileReader reads whole files for the file macro.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// OSFiles reads from the local filesystem.
type OSFiles struct{}

// ReadFile reads the named file.
func (OSFiles) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // G304: path is chosen by the phrase author
}

// ScriptRunner invokes an external script and captures its textual output.
type ScriptRunner interface {
	Run(ctx context.Context, name string, args []string) (string, error)
}

// CommandRunner runs a shell command line and captures its output.
type CommandRunner interface {
	RunCommand(ctx context.Context, command string) (string, error)
}

// Engine carries the external resources macros expand against.
// Engines share nothing with each other, so tests can build one per case.
type Engine struct {
	Clock    Clock
	Files    FileReader
	Scripts  ScriptRunner
	Commands CommandRunner
	Logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source for date macros.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.Clock = c
	}
}

// WithFiles sets the file reader for file macros.
func WithFiles(f FileReader) Option {
	return func(e *Engine) {
		e.Files = f
	}
}

// WithScripts sets the runner for script macros.
func WithScripts(r ScriptRunner) Option {
	return func(e *Engine) {
		e.Scripts = r
	}
}

// WithCommands sets the runner for system macros.
func WithCommands(r CommandRunner) Option {
	return func(e *Engine) {
		e.Commands = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// withDefaults returns a copy of e with unset clock, files and logger filled in.
func (e *Engine) withDefaults() *Engine {
	c := NewEngine()
	if e == nil {
		return c
	}
	if e.Clock != nil {
		c.Clock = e.Clock
	}
	if e.Files != nil {
		c.Files = e.Files
	}
	if e.Logger != nil {
		c.Logger = e.Logger
	}
	c.Scripts = e.Scripts
	c.Commands = e.Commands
	return c
}

// NewEngine creates an engine using the system clock and local filesystem.
// Script and command runners are unset unless provided.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Clock:  SystemClock{},
		Files:  OSFiles{},
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
