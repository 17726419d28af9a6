package macro

import (
	"context"
	"errors"
	"strings"
	"time"
)

var scriptRequired = []string{"name"}

var scriptDefinition = Definition{
	Name:        "script",
	Description: "Runs a script and inserts its output",
	Required:    scriptRequired,
	Optional:    []string{"args", "timeout"},
	Source:      "builtin",
	New:         newScriptMacro,
}

// errNoScriptRunner is returned when an engine has no script runner.
var errNoScriptRunner = errors.New("no script runner configured")

// ScriptMacro runs an external script with positional arguments.
type ScriptMacro struct {
	Name    string        `arg:"name"`
	Args    string        `arg:"args"`
	Timeout time.Duration `arg:"timeout"`

	runner ScriptRunner
}

func newScriptMacro(eng *Engine, args Args) (Macro, error) {
	m := &ScriptMacro{runner: eng.Scripts}
	if err := decodeArgs("script", args, scriptRequired, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Expand runs the script and returns its output.
func (m *ScriptMacro) Expand(ctx context.Context) (string, error) {
	if m.runner == nil {
		return "", &ResourceError{Macro: "script", Resource: m.Name, Cause: errNoScriptRunner}
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	out, err := m.runner.Run(ctx, m.Name, SplitScriptArgs(m.Args))
	if err != nil {
		return "", &ResourceError{Macro: "script", Resource: m.Name, Cause: err}
	}
	return out, nil
}

// SplitScriptArgs splits a comma separated argument list. Surrounding
// whitespace is trimmed from each item; spaces inside an item are kept.
func SplitScriptArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
