// Package commands provides the command-line interface for the minilock tool.
//
// It implements commands for:
//   - encryption
//   - decryption
//   - printing the local ID
//   - key generation
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/logging"
)

// envPrefix prefixes the environment variables mirroring each flag, e.g. MINILOCK_KEY_FILE.
const envPrefix = "MINILOCK"

// ErrNoPassword is returned when a password is needed but none can be read.
var ErrNoPassword = errors.New("no password: set MINILOCK_PASSWORD or run in a terminal")

// newViper returns a viper instance reading MINILOCK_* environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// load binds the flags of cmd, unmarshals flags, environment and the optional
// config file into cfg and sets the positional files.
func load(v *viper.Viper, cmd *cobra.Command, cfg *config.Config, args []string) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.BindEnv("password"); err != nil {
		return fmt.Errorf("binding environment: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	cfg.Files = args

	return nil
}

// preRun returns a PreRunE handler that loads and validates the configuration of a file command.
func preRun(v *viper.Viper, cfg *config.Config, decrypt bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := load(v, cmd, cfg, args); err != nil {
			return err
		}

		cfg.Decrypt = decrypt

		if err := cfg.Validate(); err != nil {
			return err
		}

		return readPassword(cfg)
	}
}

// readPassword prompts for the password on the terminal unless it was supplied through the environment.
func readPassword(cfg *config.Config) error {
	if !cfg.UsesPassword() || cfg.Password != "" {
		return nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in an int

	if !term.IsTerminal(fd) {
		return ErrNoPassword
	}

	fmt.Fprint(os.Stderr, "Password: ")

	password, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	cfg.Password = string(password)

	clear(password)

	if cfg.Password == "" {
		return ErrNoPassword
	}

	return nil
}

// newLogger builds the logger configured by cfg.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return logger, nil
}
