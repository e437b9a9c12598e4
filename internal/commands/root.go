package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/minilock/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	v := newViper()

	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "minilock [flags] command [flags]"
	root.Short = "Multi-recipient file encryption"
	root.Long = `Encrypts files for one or more recipients in the miniLock format.
Recipients are identified by their miniLock ID; keys are derived from an
email address and password, or read from a hex-encoded key file.`

	flags := root.PersistentFlags()

	flags.StringP("config", "c", "", "Path to a YAML config file with the same keys as the flags")
	flags.StringP("email", "e", "", "Email address used as salt for the password derived key")
	flags.StringP("key-file", "k", "", "Path to a file with a hex-encoded private key")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	flags.Bool("stats", false, "Print statistics after processing")
	flags.StringP("output", "o", "", "Output directory, defaults to the directory of each input file")
	flags.String("suffix", ".minilock", "Suffix to append to encrypted files")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")

	root.AddCommand(
		NewEncryptCommand(v, cfg),
		NewDecryptCommand(v, cfg),
		NewIDCommand(v, cfg),
		NewKeygenCommand(),
	)

	return root
}
