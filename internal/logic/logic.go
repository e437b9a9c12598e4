// Package logic implements the core business logic for the encryption/decryption.
package logic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/idelchi/gogen/pkg/key"
	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/encryption"
	"github.com/idelchi/minilock/internal/identity"
)

// Run is the main logic of the application.
func Run(cfg *config.Config, logger *zap.Logger) error {
	start := time.Now()

	keys, err := LoadKeys(cfg)
	if err != nil {
		return err
	}
	defer keys.Zero()

	logger.Debug("loaded key pair", zap.Object("keys", keys))

	if !cfg.Decrypt && cfg.RecipientsFrom != "" {
		ids, err := LoadRecipients(cfg.RecipientsFrom)
		if err != nil {
			return fmt.Errorf("loading recipients: %w", err)
		}

		cfg.Recipients = append(cfg.Recipients, ids...)
	}

	proc, err := encryption.NewProcessor(cfg, keys, logger)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	processed, errored, totalSize, err := proc.ProcessFiles()

	if cfg.Stats {
		printStats(os.Stderr, len(proc.Recipients()), processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// RunID prints the ID of the configured key pair.
func RunID(cfg *config.Config, w io.Writer) error {
	keys, err := LoadKeys(cfg)
	if err != nil {
		return err
	}
	defer keys.Zero()

	_, err = fmt.Fprintln(w, keys.ID())

	return err
}

// RunKeygen writes a fresh hex encoded private key to path, or to w if path is empty,
// and returns the matching ID.
func RunKeygen(path string, w io.Writer) (identity.ID, error) {
	private, err := key.New(identity.PrivateKeySize)
	if err != nil {
		return identity.ID{}, fmt.Errorf("generating private key: %w", err)
	}
	defer clear(private)

	keys, err := identity.FromPrivateKey(private)
	if err != nil {
		return identity.ID{}, fmt.Errorf("generating key pair: %w", err)
	}
	defer keys.Zero()

	encoded := private.AsHex() + "\n"

	if path == "" {
		if _, err := io.WriteString(w, encoded); err != nil {
			return identity.ID{}, fmt.Errorf("writing key: %w", err)
		}

		return keys.ID(), nil
	}

	const ownerReadWrite = 0o600

	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, ownerReadWrite)
	if err != nil {
		return identity.ID{}, fmt.Errorf("creating key file: %w", err)
	}

	if _, err := f.WriteString(encoded); err != nil {
		f.Close()

		return identity.ID{}, fmt.Errorf("writing key file: %w", err)
	}

	if err := f.Close(); err != nil {
		return identity.ID{}, fmt.Errorf("closing key file: %w", err)
	}

	return keys.ID(), nil
}

// LoadKeys returns the key pair from the key file, or derives it from email and password.
func LoadKeys(cfg *config.Config) (*identity.KeyPair, error) {
	if cfg.UsesPassword() {
		keys, err := identity.FromPassword(cfg.Email, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("deriving key pair: %w", err)
		}

		return keys, nil
	}

	data, err := os.ReadFile(filepath.Clean(cfg.KeyFile))
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	defer clear(data)

	keys, err := identity.ParsePrivateKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing key file %q: %w", cfg.KeyFile, err)
	}

	return keys, nil
}

func printStats(w io.Writer, recipients, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")

	if recipients > 0 {
		fmt.Fprintf(w, "  Recipients: %d\n", recipients)
	}

	fmt.Fprintf(w, "  Processed:  %d\n", processed)
	fmt.Fprintf(w, "  Errors:     %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:       %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration:   %s\n", duration.Round(time.Millisecond))
}
