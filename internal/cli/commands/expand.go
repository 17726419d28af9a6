package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wohanley/autokey/internal/typing"
)

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	Phrase string
	File   string
	Keys   bool
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand [text]",
		Short: "Expand the macros in a piece of text",
		Long: `Expand every macro tag in the given text and print the result.

The text comes from the argument, a stored phrase (--phrase), a file (--file)
or standard input. A <cursor> tag becomes trailing <left> key tokens; use
--keys to show key tokens as [left].`,
		Example: `  autokey expand 'Today is <date format=%A>'
  autokey expand --phrase sig
  echo '<system command=hostname>' | autokey expand`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Phrase, "phrase", "p", "", "Expand a stored phrase")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Expand the contents of a file")
	cmd.Flags().BoolVarP(&opts.Keys, "keys", "k", false, "Show key tokens as [key]")

	return cmd
}

func runExpand(cmd *cobra.Command, args []string, opts *ExpandOptions) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	text, err := readExpandInput(ctx, cmd, cc, args, opts)
	if err != nil {
		return err
	}

	out, err := cc.Expander.Process(ctx, text)
	if err != nil {
		return err
	}

	return writeExpansion(ctx, cmd.OutOrStdout(), out, opts.Keys)
}

// readExpandInput returns the text selected by args and flags.
func readExpandInput(ctx context.Context, cmd *cobra.Command, cc *CommandContext, args []string, opts *ExpandOptions) (string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, opts.Phrase != "", opts.File != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", errors.New("specify only one of text, --phrase or --file")
	}

	switch {
	case len(args) > 0:
		return args[0], nil

	case opts.Phrase != "":
		store, err := cc.OpenStore(ctx)
		if err != nil {
			return "", err
		}
		defer func() { _ = store.Close() }()

		p, err := store.Get(ctx, opts.Phrase)
		if err != nil {
			return "", err
		}
		return p.Content, nil

	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
		return string(data), nil

	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
}

// writeExpansion writes an expanded phrase. On a terminal a final newline is
// added so the prompt does not run into the output.
func writeExpansion(ctx context.Context, w io.Writer, text string, keys bool) error {
	if keys {
		backend := &typing.WriterBackend{W: w, Bracketed: true}
		if err := backend.Send(ctx, typing.Tokenize(text)); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, text); err != nil {
		return err
	}

	if isTerminal(w) && !strings.HasSuffix(text, "\n") {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
