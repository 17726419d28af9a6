package commands

import (
	"github.com/spf13/cobra"
	"github.com/wohanley/autokey/internal/config"
)

// NewMacrosCommand creates the macros command.
func NewMacrosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List available macros",
		Long: `List the built-in macros and the user macros loaded from the macros
directory, with their required and optional arguments.`,
		Args: cobra.NoArgs,
		RunE: runMacros,
	}
}

func runMacros(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	defs := cc.Expander.Registry().Definitions()
	rows := make([]record, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, record{
			"name":        def.Name,
			"required":    def.Required,
			"optional":    def.Optional,
			"source":      def.Source,
			"description": def.Description,
		})
	}

	cols := []string{"name", "required", "optional", "source", "description"}
	return renderRecords(cmd.OutOrStdout(), config.GetConfig(cmd.Context()).OutputFormat, cols, rows)
}
