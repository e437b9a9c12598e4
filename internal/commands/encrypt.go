package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files for a list of recipients",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(v, cfg, false),
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			defer logger.Sync() //nolint:errcheck

			return logic.Run(cfg, logger)
		},
	}

	cmd.Flags().StringSliceP("recipient", "r", nil, "Recipient miniLock ID (repeatable)")
	cmd.Flags().String("recipients-from", "", "Path to a JSONC file with an array of recipient IDs")
	cmd.Flags().Bool("no-self", false, "Do not add the own ID to the recipients")

	return cmd
}
