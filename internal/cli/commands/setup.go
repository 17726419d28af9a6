package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/wohanley/autokey/internal/config"
	"github.com/wohanley/autokey/internal/macro"
	"github.com/wohanley/autokey/internal/phrase"
	"github.com/wohanley/autokey/internal/script"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Expander *macro.Expander
}

// NewCommandContext builds the macro registry, loading user macros from the
// macros directory, and an expander wired to the script runner.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	x, err := newExpander(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Expander: x,
	}, nil
}

// OpenStore opens the phrase database. The caller must close it.
func (c *CommandContext) OpenStore(ctx context.Context) (phrase.Store, error) {
	c.Logger.Debug("opening phrase database", "path", c.Cfg.PhraseDB)
	store, err := phrase.OpenSQLite(ctx, c.Cfg.PhraseDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open phrase database: %w", err)
	}
	return store, nil
}

// newExpander creates an expander from the current configuration.
func newExpander(cfg *config.Config, logger *slog.Logger) (*macro.Expander, error) {
	registry := macro.DefaultRegistry()

	defs, err := macro.NewLoader(cfg.MacrosDir, logger).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load macros: %w", err)
	}
	if err := registry.RegisterAll(defs); err != nil {
		return nil, fmt.Errorf("failed to register macros: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	runner := script.NewRunner(
		script.WithDirs(cfg.ScriptDirs...),
		script.WithTimeout(cfg.ScriptTimeout),
		script.WithShell(cfg.Shell),
		script.WithLogger(logger),
	)

	eng := macro.NewEngine(
		macro.WithClock(macro.SystemClock{Location: loc}),
		macro.WithScripts(runner),
		macro.WithCommands(runner),
		macro.WithLogger(logger),
	)

	logger.Debug("macro registry ready", "macros", registry.Len(), "user_macros", len(defs))
	return macro.NewExpander(registry, eng), nil
}
