package macro

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Loader scans a directory for .star files and turns each public function
// into a macro named "<file>.<function>". For example greet.star defining
// hello(name) is used as <greet.hello name=Bob>.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a new macro loader for the specified directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, logger: logger}
}

// Load reads every .star file in the directory and returns one definition per
// public function. A missing directory yields no definitions.
func (l *Loader) Load() ([]Definition, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}

	var defs []Definition
	for _, file := range files {
		fileDefs, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}

	return defs, nil
}

// loadFile executes one .star file and builds definitions for its functions.
func (l *Loader) loadFile(path string) ([]Definition, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob inside the macros directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	parsed, err := ParseStarlarkFile(path, content)
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{
		Name: "load:" + namespace,
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Debug("macro file print", "file", path, "msg", msg)
		},
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, nil)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var defs []Definition
	for _, name := range names {
		fn, ok := globals[name].(*starlark.Function)
		if !ok || strings.HasPrefix(name, "_") {
			continue
		}

		def := Definition{
			Name:   namespace + "." + name,
			Source: path,
		}
		if pf := parsed.Function(name); pf != nil {
			def.Description, _, _ = strings.Cut(pf.Docstring, "\n")
			def.Required, def.Optional = splitParams(pf.Args)
		}
		def.New = starlarkFactory(def.Name, fn, def.Required)
		defs = append(defs, def)
	}

	l.logger.Debug("loaded macro file", "file", path, "macros", len(defs))
	return defs, nil
}

// validateNamespace checks that a file name is usable as a tag prefix.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}

	if _, ok := builtinNames()[name]; ok {
		return fmt.Errorf("namespace %q is reserved for a built-in macro", name)
	}

	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("namespace must start with letter or underscore: %s", name)
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}

	return nil
}

func builtinNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, def := range Builtins() {
		names[def.Name] = struct{}{}
	}
	return names
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// starlarkFactory builds macros that call fn with the tag's arguments as
// keyword arguments.
func starlarkFactory(name string, fn *starlark.Function, required []string) Factory {
	return func(eng *Engine, args Args) (Macro, error) {
		for _, param := range required {
			if _, ok := args[param]; !ok {
				return nil, &MissingArgumentError{Macro: name, Arg: param}
			}
		}
		return &StarlarkMacro{name: name, fn: fn, args: args, logger: eng.Logger}, nil
	}
}

// StarlarkMacro calls a user-defined Starlark function.
type StarlarkMacro struct {
	name   string
	fn     *starlark.Function
	args   Args
	logger *slog.Logger
}

// Expand calls the function and converts its result to text.
// A string result is used as is, None becomes "", anything else uses str().
func (m *StarlarkMacro) Expand(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	thread := &starlark.Thread{
		Name: "macro:" + m.name,
		Print: func(_ *starlark.Thread, msg string) {
			m.logger.Debug("macro print", "macro", m.name, "msg", msg)
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

	keys := make([]string, 0, len(m.args))
	for k := range m.args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kwargs := make([]starlark.Tuple, 0, len(keys))
	for _, k := range keys {
		kwargs = append(kwargs, starlark.Tuple{starlark.String(k), starlark.String(m.args[k])})
	}

	result, err := starlark.Call(thread, m.fn, nil, kwargs)
	if err != nil {
		return "", &ResourceError{Macro: m.name, Resource: m.fn.Position().Filename(), Cause: err}
	}

	switch v := result.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return v.String(), nil
	}
}
