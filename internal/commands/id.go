package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/logic"
)

// NewIDCommand creates a new cobra command printing the ID of the configured key.
func NewIDCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the miniLock ID of the configured key",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := load(v, cmd, cfg, args); err != nil {
				return err
			}

			if err := cfg.ValidateKeySource(); err != nil {
				return err
			}

			return readPassword(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.RunID(cfg, cmd.OutOrStdout())
		},
	}
}
