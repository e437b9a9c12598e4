// Package config holds the runtime configuration of minilock.
package config

import (
	"errors"
	"fmt"

	"github.com/idelchi/gogen/pkg/validator"
)

// ErrKeySource is returned when the key source is missing or ambiguous.
var ErrKeySource = errors.New("exactly one of --key-file or --email must be set")

// ErrNoRecipients is returned when encrypting would address nobody.
var ErrNoRecipients = errors.New("no recipients: pass --recipient or --recipients-from, or drop --no-self")

// ErrNoFiles is returned when no input files are given.
var ErrNoFiles = errors.New("no input files")

// ErrValidation wraps every failed field rule.
var ErrValidation = validator.ErrValidation

// Config holds all options of a run.
type Config struct {
	// Common flags
	Email    string `label:"--email"    mapstructure:"email"    validate:"omitempty,email"`
	Password string `json:"-"           mapstructure:"password"`
	KeyFile  string `label:"--key-file" mapstructure:"key-file" validate:"omitempty,file,exclusive=Email"`
	Parallel int    `mapstructure:"parallel" validate:"min=1"`
	Quiet    bool   `mapstructure:"quiet"`
	Delete   bool   `mapstructure:"delete"`
	Stats    bool   `mapstructure:"stats"`
	Output   string `mapstructure:"output"   validate:"omitempty,dir"`
	Suffix   string `mapstructure:"suffix"   validate:"required"`

	LogLevel  string `mapstructure:"log-level"  validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log-format" validate:"oneof=console json"`

	// Encrypt flags
	Recipients     []string `mapstructure:"recipient"`
	RecipientsFrom string   `mapstructure:"recipients-from" validate:"omitempty,file"`
	NoSelf         bool     `mapstructure:"no-self"`

	// Decrypt flags
	Name string `mapstructure:"name" validate:"omitempty,excludesall=/\\"`

	// Set by the command
	Decrypt bool `mapstructure:"-"`

	// Positional arguments
	Files []string `mapstructure:"-" validate:"dive,required"`
}

// Validate validates the configuration of an encrypt or decrypt run.
func (c *Config) Validate() error {
	if err := c.ValidateKeySource(); err != nil {
		return err
	}

	if len(c.Files) == 0 {
		return ErrNoFiles
	}

	if !c.Decrypt && c.NoSelf && len(c.Recipients) == 0 && c.RecipientsFrom == "" {
		return ErrNoRecipients
	}

	return nil
}

// ValidateKeySource validates the struct tags and that exactly one key source is set.
func (c *Config) ValidateKeySource() error {
	validate := validator.NewValidator()

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if errs := validate.Validate(c); len(errs) > 0 {
		return fmt.Errorf("validating configuration: %w", errors.Join(errs...))
	}

	if (c.KeyFile == "") == (c.Email == "") {
		return ErrKeySource
	}

	return nil
}

// UsesPassword reports whether the key pair is derived from email and password.
func (c *Config) UsesPassword() bool {
	return c.KeyFile == ""
}
