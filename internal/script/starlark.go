package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// StarlarkError reports a Starlark script that failed to parse or run.
type StarlarkError struct {
	Path string
	Err  error
}

func (e *StarlarkError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.Path), e.Err)
}

func (e *StarlarkError) Unwrap() error {
	return e.Err
}

// scriptEnv is the "engine" module seen by a Starlark script.
type scriptEnv struct {
	args []string

	mu     sync.Mutex
	result string
	set    bool
}

func (e *scriptEnv) module() starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("engine"), starlark.StringDict{
		"get_macro_arguments": starlark.NewBuiltin("get_macro_arguments", e.getMacroArguments),
		"set_return_value":    starlark.NewBuiltin("set_return_value", e.setReturnValue),
	})
}

func (e *scriptEnv) getMacroArguments(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return argList(e.args), nil
}

func (e *scriptEnv) setReturnValue(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = toText(v)
	e.set = true
	return starlark.None, nil
}

// argList converts script arguments to a Starlark list.
func argList(args []string) *starlark.List {
	list := make([]starlark.Value, len(args))
	for i, s := range args {
		list[i] = starlark.String(s)
	}
	return starlark.NewList(list)
}

// toText renders a value the way it is inserted into a phrase.
func toText(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.NoneType:
		return ""
	default:
		return val.String()
	}
}

// runStarlark executes the script at path. Its output is the value passed to
// engine.set_return_value, or everything it printed when no value was set.
func runStarlark(ctx context.Context, path string, args []string, logger *slog.Logger) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path was resolved from the script directories
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}

	var printed strings.Builder
	thread := &starlark.Thread{
		Name: "script:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, msg string) {
			printed.WriteString(msg)
			printed.WriteByte('\n')
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	env := &scriptEnv{args: args}
	predeclared := starlark.StringDict{
		"args":   argList(args),
		"engine": env.module(),
	}

	opts := &syntax.FileOptions{While: true, TopLevelControl: true}
	if _, err := starlark.ExecFileOptions(opts, thread, path, content, predeclared); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("run %s: %w", path, ctxErr)
		}
		return "", &StarlarkError{Path: path, Err: err}
	}

	env.mu.Lock()
	defer env.mu.Unlock()
	if env.set {
		logger.Debug("script returned value", "script", path)
		return env.result, nil
	}
	return printed.String(), nil
}
