package macro

import (
	"context"
	"errors"
	"strings"
)

var systemRequired = []string{"command"}

var systemDefinition = Definition{
	Name:        "system",
	Description: "Runs a shell command and inserts its output",
	Required:    systemRequired,
	Optional:    []string{"trim"},
	Source:      "builtin",
	New:         newSystemMacro,
}

var errNoCommandRunner = errors.New("no command runner configured")

// SystemMacro runs a shell command line.
type SystemMacro struct {
	Command string `arg:"command"`
	Trim    bool   `arg:"trim"`

	runner CommandRunner
}

func newSystemMacro(eng *Engine, args Args) (Macro, error) {
	m := &SystemMacro{Trim: true, runner: eng.Commands}
	if err := decodeArgs("system", args, systemRequired, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Expand runs the command and returns its output.
func (m *SystemMacro) Expand(ctx context.Context) (string, error) {
	if m.runner == nil {
		return "", &ResourceError{Macro: "system", Resource: m.Command, Cause: errNoCommandRunner}
	}

	out, err := m.runner.RunCommand(ctx, m.Command)
	if err != nil {
		return "", &ResourceError{Macro: "system", Resource: m.Command, Cause: err}
	}
	if m.Trim {
		out = strings.TrimSpace(out)
	}
	return out, nil
}
