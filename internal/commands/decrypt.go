package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] files...",
		Aliases: []string{"dec"},
		Short:   "Decrypt files addressed to the own ID",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(v, cfg, true),
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			defer logger.Sync() //nolint:errcheck

			return logic.Run(cfg, logger)
		},
	}

	cmd.Flags().String("name", "", "Output file name, instead of the name stored in the file")

	return cmd
}
