package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/wohanley/autokey/internal/phrase"
	"golang.org/x/sync/errgroup"
)

// NewPhraseCommand creates the phrase command and its subcommands.
func NewPhraseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrase",
		Short: "Manage stored phrases",
		Long:  `Add, list, show, remove, import, export and bulk-expand stored phrases.`,
	}

	cmd.AddCommand(newPhraseAddCommand())
	cmd.AddCommand(newPhraseListCommand())
	cmd.AddCommand(newPhraseShowCommand())
	cmd.AddCommand(newPhraseRemoveCommand())
	cmd.AddCommand(newPhraseImportCommand())
	cmd.AddCommand(newPhraseExportCommand())
	cmd.AddCommand(newPhraseExpandAllCommand())

	return cmd
}

// withStore opens the phrase store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cc *CommandContext, store phrase.Store) error) error {
	ctx := cmd.Context()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	store, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, cc, store)
}

func newPhraseAddCommand() *cobra.Command {
	var folder, fromFile string

	cmd := &cobra.Command{
		Use:   "add <name> [content]",
		Short: "Add or replace a phrase",
		Example: `  autokey phrase add sig 'Regards,<cursor>' --folder email
  autokey phrase add letter --from-file letter.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := phraseContent(cmd, args, fromFile)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, cc *CommandContext, store phrase.Store) error {
				p := &phrase.Phrase{Name: args[0], Folder: folder, Content: content}
				if err := store.Save(ctx, p); err != nil {
					return err
				}
				cc.Logger.Info("phrase saved", "name", p.Name, "id", p.ID)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved phrase %q\n", p.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to store the phrase in")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read the phrase content from a file (- for stdin)")
	return cmd
}

// phraseContent returns the content argument, or the --from-file contents.
func phraseContent(cmd *cobra.Command, args []string, fromFile string) (string, error) {
	switch {
	case len(args) == 2 && fromFile != "":
		return "", fmt.Errorf("specify either content or --from-file, not both")
	case len(args) == 2:
		return args[1], nil
	case fromFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	case fromFile != "":
		data, err := os.ReadFile(fromFile) //nolint:gosec // G304: path is given by the user
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", fromFile, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("phrase content is required")
	}
}

func newPhraseListCommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, cc *CommandContext, store phrase.Store) error {
				phrases, err := store.List(ctx, folder)
				if err != nil {
					return err
				}

				rows := make([]record, 0, len(phrases))
				for _, p := range phrases {
					rows = append(rows, record{
						"name":    p.Name,
						"folder":  p.Folder,
						"content": preview(p.Content, 40),
						"updated": p.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				cols := []string{"name", "folder", "content", "updated"}
				return renderRecords(cmd.OutOrStdout(), cc.Cfg.OutputFormat, cols, rows)
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only list phrases in this folder")
	return cmd
}

func newPhraseShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a phrase's unexpanded content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ *CommandContext, store phrase.Store) error {
				p, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return writeExpansion(ctx, cmd.OutOrStdout(), p.Content, false)
			})
		},
	}
}

func newPhraseRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove phrases",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ *CommandContext, store phrase.Store) error {
				for _, name := range args {
					if err := store.Delete(ctx, name); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed phrase %q\n", name)
				}
				return nil
			})
		},
	}
}

func newPhraseImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>...",
		Short: "Import phrases from YAML bundles",
		Long: `Import phrases from YAML bundles. Phrases replace stored phrases with the
same name. Every bundle is validated before anything is saved.`,
		Example: `  autokey phrase import email.yaml`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []*phrase.Phrase
			for _, path := range args {
				phrases, err := phrase.LoadFile(path)
				if err != nil {
					return err
				}
				all = append(all, phrases...)
			}

			return withStore(cmd, func(ctx context.Context, cc *CommandContext, store phrase.Store) error {
				for _, p := range all {
					if err := store.Save(ctx, p); err != nil {
						return err
					}
				}
				cc.Logger.Info("phrases imported", "files", len(args), "phrases", len(all))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d phrases\n", len(all))
				return nil
			})
		},
	}
}

func newPhraseExportCommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored phrases as a YAML bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, _ *CommandContext, store phrase.Store) error {
				phrases, err := store.List(ctx, folder)
				if err != nil {
					return err
				}
				return phrase.Encode(cmd.OutOrStdout(), phrases)
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only export phrases in this folder")
	return cmd
}

// expandResult is the outcome of expanding one stored phrase.
type expandResult struct {
	Name   string
	Output string
	Err    error
}

func newPhraseExpandAllCommand() *cobra.Command {
	var folder string
	var jobs int

	cmd := &cobra.Command{
		Use:   "expand-all",
		Short: "Expand every stored phrase and report failures",
		Long: `Expand every stored phrase concurrently. This checks that all phrases
still expand, for example after scripts or files they use have moved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, cc *CommandContext, store phrase.Store) error {
				phrases, err := store.List(ctx, folder)
				if err != nil {
					return err
				}

				results, err := expandAll(ctx, cc, phrases, jobs)
				if err != nil {
					return err
				}

				rows := make([]record, 0, len(results))
				failed := 0
				for _, r := range results {
					status, detail := "ok", preview(r.Output, 40)
					if r.Err != nil {
						status, detail = "error", r.Err.Error()
						failed++
					}
					rows = append(rows, record{"name": r.Name, "status": status, "result": detail})
				}

				if err := renderRecords(cmd.OutOrStdout(), cc.Cfg.OutputFormat, []string{"name", "status", "result"}, rows); err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d phrases failed to expand", failed, len(results))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only expand phrases in this folder")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Number of phrases expanded at once")
	return cmd
}

// expandAll expands phrases with at most jobs running at once. A phrase that
// fails is reported in its result; only cancellation stops the run.
func expandAll(ctx context.Context, cc *CommandContext, phrases []*phrase.Phrase, jobs int) ([]expandResult, error) {
	if jobs < 1 {
		jobs = 1
	}

	var mu sync.Mutex
	results := make([]expandResult, 0, len(phrases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, p := range phrases {
		g.Go(func() error {
			out, err := cc.Expander.Process(gctx, p.Content)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				cc.Logger.Debug("phrase failed to expand", "name", p.Name, "err", err)
			}

			mu.Lock()
			results = append(results, expandResult{Name: p.Name, Output: out, Err: err})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}
