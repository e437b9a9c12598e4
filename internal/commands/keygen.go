package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idelchi/minilock/internal/logic"
)

// NewKeygenCommand creates a new cobra command generating a random private key.
func NewKeygenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen",
		Aliases: []string{"gen"},
		Short:   "Generate a new random private key",
		Long: `Generates a random private key for use with --key-file.
The key is written hex-encoded to --out, or to stdout. The matching ID is printed to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}

			id, err := logic.RunKeygen(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "ID: %s\n", id)

			return nil
		},
	}

	cmd.Flags().String("out", "", "Path of the key file to create; it must not exist")

	return cmd
}
