package macro

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wohanley/autokey/internal/testutil"
)

func writeMacroFile(t *testing.T, dir, name, content string) {
	t.Helper()
	testutil.WriteFile(t, dir, name, content)
}

const greetStar = `
def hello(name, greeting="Hello"):
    """Greets someone by name.

    Longer description that is not shown.
    """
    return greeting + ", " + name + "!"

def shout(text):
    return text.upper()

def count():
    return 3

def nothing():
    return None

def _helper():
    return "private"

PREFIX = "unused"
`

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeMacroFile(t, dir, "greet.star", greetStar)
	writeMacroFile(t, dir, "notes.txt", "ignored")

	defs, err := NewLoader(dir, testutil.NewTestLogger(t)).Load()
	require.NoError(t, err)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"greet.count", "greet.hello", "greet.nothing", "greet.shout"}, names)

	hello := defs[1]
	assert.Equal(t, "Greets someone by name.", hello.Description)
	assert.Equal(t, []string{"name"}, hello.Required)
	assert.Equal(t, []string{"greeting"}, hello.Optional)
	assert.Equal(t, filepath.Join(dir, "greet.star"), hello.Source)
	assert.NotNil(t, hello.New)
}

func TestLoader_MissingDir(t *testing.T) {
	defs, err := NewLoader(filepath.Join(t.TempDir(), "nope"), nil).Load()
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoader_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeMacroFile(t, dir, "file.star", "")

	_, err := NewLoader(filepath.Join(dir, "file.star"), nil).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{"reserved namespace", "date.star", "def x():\n    return 1\n", "reserved"},
		{"invalid namespace", "my-macros.star", "def x():\n    return 1\n", "invalid character"},
		{"leading digit", "1st.star", "def x():\n    return 1\n", "must start with letter"},
		{"syntax error", "broken.star", "def x(:\n", "macros/broken.star"},
		{"runtime error", "boom.star", "fail(\"boom\")\n", "Starlark execution error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeMacroFile(t, dir, tt.file, tt.content)

			_, err := NewLoader(dir, nil).Load()
			require.Error(t, err)

			var lerr *LoadError
			require.ErrorAs(t, err, &lerr)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestStarlarkMacro_Expand(t *testing.T) {
	dir := t.TempDir()
	writeMacroFile(t, dir, "greet.star", greetStar)

	defs, err := NewLoader(dir, nil).Load()
	require.NoError(t, err)

	registry := DefaultRegistry()
	require.NoError(t, registry.RegisterAll(defs))
	x := NewExpander(registry, NewEngine(WithLogger(testutil.NewTestLogger(t))))

	tests := []struct {
		input    string
		expected string
	}{
		{"<greet.hello name=Bob>", "Hello, Bob!"},
		{"<greet.hello name='Ann Lee' greeting=Hi>", "Hi, Ann Lee!"},
		{"<greet.shout text=quiet>", "QUIET"},
		{"n=<greet.count>", "n=3"},
		{"[<greet.nothing>]", "[]"},
		{"<greet._helper>", "<greet._helper>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := x.Process(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStarlarkMacro_Errors(t *testing.T) {
	dir := t.TempDir()
	writeMacroFile(t, dir, "greet.star", greetStar)

	defs, err := NewLoader(dir, nil).Load()
	require.NoError(t, err)

	registry := DefaultRegistry()
	require.NoError(t, registry.RegisterAll(defs))
	x := NewExpander(registry, NewEngine())

	_, err = x.Process(context.Background(), "<greet.hello greeting=Hi>")
	var merr *MissingArgumentError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "greet.hello", merr.Macro)
	assert.Equal(t, "name", merr.Arg)

	_, err = x.Process(context.Background(), "<greet.shout text=a extra=b>")
	var rerr *ResourceError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Resource, "greet.star")
}

func TestStarlarkMacro_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeMacroFile(t, dir, "slow.star", `
def spin():
    n = 0
    for i in range(100000000):
        n += i
    return str(n)
`)

	defs, err := NewLoader(dir, nil).Load()
	require.NoError(t, err)
	require.Len(t, defs, 1)

	m, err := defs[0].New(NewEngine(), Args{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Expand(ctx)
	require.Error(t, err)
}

func TestParseStarlarkFile(t *testing.T) {
	ns, err := ParseStarlarkFile("greet.star", []byte(greetStar))
	require.NoError(t, err)

	assert.Equal(t, "greet", ns.Name)
	require.Len(t, ns.Functions, 4)

	hello := ns.Function("hello")
	require.NotNil(t, hello)
	assert.Equal(t, []string{"name", `greeting="Hello"`}, hello.Args)
	assert.Equal(t, 2, hello.Line)
	assert.Nil(t, ns.Function("_helper"))
}

func TestSplitParams(t *testing.T) {
	required, optional := splitParams([]string{"a", "b=1", "*args", "c=None", "**kw"})
	assert.Equal(t, []string{"a"}, required)
	assert.Equal(t, []string{"b", "c"}, optional)
}
