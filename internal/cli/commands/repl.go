package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/wohanley/autokey/internal/config"
	"github.com/wohanley/autokey/internal/macro"
)

const replPrompt = "autokey> "

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	var keys bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Expand phrases interactively",
		Long: `Start an interactive prompt. Each line is expanded as a phrase and the
result printed. Tab completes macro names after '<'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, keys)
		},
	}

	cmd.Flags().BoolVarP(&keys, "keys", "k", true, "Show key tokens as [key]")
	return cmd
}

func runRepl(cmd *cobra.Command, keys bool) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	historyFile := filepath.Join(config.DataDir(), "repl_history")
	if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
		historyFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newMacroCompleter(cc.Expander.Registry()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "autokey phrase REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleReplCommand(cmd, cc, line); quit {
				break
			}
			continue
		}

		if err := expandLine(ctx, cmd.OutOrStdout(), cc.Expander, line, keys); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	return nil
}

// expandLine expands one REPL line and prints it followed by a newline.
func expandLine(ctx context.Context, w io.Writer, x *macro.Expander, line string, keys bool) error {
	out, err := x.Process(ctx, line)
	if err != nil {
		return err
	}
	return printExpansion(ctx, w, out, keys)
}

// printExpansion writes an expansion and always ends it with a newline.
func printExpansion(ctx context.Context, w io.Writer, out string, keys bool) error {
	if err := writeExpansion(ctx, w, out, keys); err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") && !isTerminal(w) {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

// handleReplCommand runs a dot-command and reports whether the REPL should exit.
func handleReplCommand(cmd *cobra.Command, cc *CommandContext, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".macros":
		for _, def := range cc.Expander.Registry().Definitions() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", def.Name, def.Description)
		}

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .macros         List available macros
  .quit / .exit   Exit the REPL

Tips:
  - Any other line is expanded, e.g. Today is <date format=%A>
  - Use arrow keys to navigate history
  - Tab completion works for macro names after '<'
`
	_, _ = fmt.Fprintln(w, help)
}

// newMacroCompleter creates a readline completer for macro tags and dot-commands.
func newMacroCompleter(registry *macro.Registry) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, def := range registry.Definitions() {
		items = append(items, readline.PcItem(macroSnippet(def)))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".macros"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}

// macroSnippet renders a tag skeleton with the macro's required arguments.
func macroSnippet(def macro.Definition) string {
	var b strings.Builder
	b.WriteString("<" + def.Name)
	for _, arg := range def.Required {
		b.WriteString(" " + arg + "=")
	}
	if len(def.Required) == 0 {
		b.WriteString(">")
	}
	return b.String()
}
