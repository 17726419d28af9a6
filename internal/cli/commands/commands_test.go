package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wohanley/autokey/internal/macro"
	"github.com/wohanley/autokey/internal/phrase"
	"github.com/wohanley/autokey/internal/testutil"
)

func TestNewExpandCommand(t *testing.T) {
	cmd := NewExpandCommand()

	assert.Equal(t, "expand [text]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"phrase", "file", "keys"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewPhraseCommand(t *testing.T) {
	cmd := NewPhraseCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"add", "list", "show", "rm", "import", "export", "expand-all"}, names)

	rm, _, err := cmd.Find([]string{"delete"})
	require.NoError(t, err)
	assert.Equal(t, "rm", rm.Name(), "rm should have a delete alias")
}

func TestNewReplAndWatchCommands(t *testing.T) {
	repl := NewReplCommand()
	assert.Equal(t, "repl", repl.Use)
	assert.NotNil(t, repl.Flags().Lookup("keys"))

	watch := NewWatchCommand()
	assert.Equal(t, "watch <file>", watch.Use)
	assert.Error(t, watch.Args(watch, nil), "watch needs a file")
}

func newTestCommandContext(t *testing.T) *CommandContext {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	eng := macro.NewEngine(
		macro.WithClock(macro.FixedClock(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))),
		macro.WithLogger(logger),
	)
	return &CommandContext{
		Logger:   logger,
		Expander: macro.NewExpander(macro.DefaultRegistry(), eng),
	}
}

func TestExpandAll(t *testing.T) {
	cc := newTestCommandContext(t)
	phrases := []*phrase.Phrase{
		{Name: "c", Content: "<date format=%Y>"},
		{Name: "a", Content: "plain"},
		{Name: "b", Content: "<date>"},
		{Name: "d", Content: "x<cursor>y"},
	}

	for _, jobs := range []int{0, 1, 3} {
		results, err := expandAll(context.Background(), cc, phrases, jobs)
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Equal(t, "a", results[0].Name)
		assert.Equal(t, "plain", results[0].Output)
		assert.Equal(t, "b", results[1].Name)
		assert.Error(t, results[1].Err)
		assert.Equal(t, "2019", results[2].Output)
		assert.Equal(t, "xy<left>", results[3].Output)
	}
}

func TestExpandAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := expandAll(ctx, newTestCommandContext(t), []*phrase.Phrase{{Name: "a", Content: "x"}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderRecords(t *testing.T) {
	rows := []record{
		{"name": "date", "required": []string{"format"}},
		{"name": "cursor", "required": nil},
	}
	cols := []string{"name", "required"}

	tests := []struct {
		format   string
		contains []string
	}{
		{"auto", []string{"date", "format", "(2 rows)"}},
		{"text", []string{"cursor", "(2 rows)"}},
		{"json", []string{`"name": "date"`, `"format"`}},
		{"yaml", []string{"name: date", "- format"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderRecords(&buf, tt.format, cols, rows))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	var buf bytes.Buffer
	require.NoError(t, renderRecords(&buf, "text", cols, nil))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, renderRecords(&buf, "json", cols, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "a⏎b", preview("a\nb", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
}

func TestMacroSnippet(t *testing.T) {
	tests := []struct {
		def      macro.Definition
		expected string
	}{
		{macro.Definition{Name: "cursor"}, "<cursor>"},
		{macro.Definition{Name: "date", Required: []string{"format"}}, "<date format="},
		{macro.Definition{Name: "x.y", Required: []string{"a", "b"}, Optional: []string{"c"}}, "<x.y a= b="},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, macroSnippet(tt.def))
	}
}

func TestWriteExpansion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExpansion(context.Background(), &buf, "ab<left>", false))
	assert.Equal(t, "ab<left>", buf.String(), "no newline when not a terminal")

	buf.Reset()
	require.NoError(t, writeExpansion(context.Background(), &buf, "ab<left><enter>", true))
	assert.Equal(t, "ab[left][enter]", buf.String())

	buf.Reset()
	require.NoError(t, printExpansion(context.Background(), &buf, "line", false))
	assert.Equal(t, "line\n", buf.String())
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "phrase.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o600))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()
	require.NoError(t, watcher.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, watcher, target, func() { changes <- struct{}{} })
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("v2"), 0o600))
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst of writes is reported once.
	select {
	case <-changes:
		t.Fatal("writes were not debounced")
	case <-time.After(3 * watchDebounce):
	}

	cancel()
	require.NoError(t, <-done)
}
