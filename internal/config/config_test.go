package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idelchi/minilock/internal/config"
)

func valid(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	key := filepath.Join(dir, "key.hex")
	require.NoError(t, os.WriteFile(key, []byte("00"), 0o600))

	return config.Config{
		KeyFile:   key,
		Parallel:  1,
		Suffix:    ".minilock",
		LogLevel:  "warn",
		LogFormat: "console",
		Files:     []string{"file.txt"},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
		fails   bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "email instead of key file", mutate: func(c *config.Config) { c.KeyFile, c.Email = "", "me@example.com" }},
		{name: "no key source", mutate: func(c *config.Config) { c.KeyFile = "" }, wantErr: config.ErrKeySource},
		{name: "both key sources", mutate: func(c *config.Config) { c.Email = "me@example.com" }, wantErr: config.ErrValidation},
		{name: "invalid email", mutate: func(c *config.Config) { c.KeyFile, c.Email = "", "nope" }, fails: true},
		{name: "missing key file", mutate: func(c *config.Config) { c.KeyFile = "/does/not/exist" }, fails: true},
		{name: "no files", mutate: func(c *config.Config) { c.Files = nil }, wantErr: config.ErrNoFiles},
		{name: "empty file name", mutate: func(c *config.Config) { c.Files = []string{""} }, fails: true},
		{name: "zero parallel", mutate: func(c *config.Config) { c.Parallel = 0 }, wantErr: config.ErrValidation},
		{name: "empty suffix", mutate: func(c *config.Config) { c.Suffix = "" }, fails: true},
		{name: "bad log format", mutate: func(c *config.Config) { c.LogFormat = "xml" }, fails: true},
		{name: "name with separator", mutate: func(c *config.Config) { c.Name = "a/b" }, fails: true},
		{name: "no recipients", mutate: func(c *config.Config) { c.NoSelf = true }, wantErr: config.ErrNoRecipients},
		{name: "no self with recipients", mutate: func(c *config.Config) { c.NoSelf, c.Recipients = true, []string{"x"} }},
		{name: "decrypt ignores recipients", mutate: func(c *config.Config) { c.NoSelf, c.Decrypt = true, true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid(t)
			tt.mutate(&cfg)

			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.fails:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateKeySourceIgnoresFiles(t *testing.T) {
	t.Parallel()

	cfg := valid(t)
	cfg.Files = nil

	require.NoError(t, cfg.ValidateKeySource())
	require.ErrorIs(t, cfg.Validate(), config.ErrNoFiles)
}

func TestValidateMessages(t *testing.T) {
	t.Parallel()

	cfg := valid(t)
	cfg.Email = "me@example.com"
	cfg.Parallel = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrValidation)
	require.ErrorContains(t, err, "--key-file is mutually exclusive")
	require.ErrorContains(t, err, "Parallel")
}
