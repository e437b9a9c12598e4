package encryption

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/fileutil"
	"github.com/idelchi/minilock/internal/identity"
)

// Processor handles the encryption and decryption of files.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// keys is the local key pair, used as sender or recipient
	keys *identity.KeyPair

	// recipients are the resolved recipients of encrypted files
	recipients []identity.ID

	logger *zap.Logger

	// results channels processing outcomes to the printer goroutine
	results chan outcome
}

// outcome is the result of processing a single file.
type outcome struct {
	input  string
	output string
	size   int64
	err    error
}

// NewProcessor creates a Processor for the files in cfg. Recipients are parsed from
// cfg.Recipients; the local ID is added unless cfg.NoSelf is set.
func NewProcessor(cfg *config.Config, keys *identity.KeyPair, logger *zap.Logger) (*Processor, error) {
	if keys == nil {
		return nil, ErrKeyPairMissing
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	processor := &Processor{
		cfg:     cfg,
		keys:    keys,
		logger:  logger,
		results: make(chan outcome, len(cfg.Files)),
	}

	if cfg.Decrypt {
		return processor, nil
	}

	recipients, err := resolveRecipients(cfg.Recipients, keys.ID(), !cfg.NoSelf)
	if err != nil {
		return nil, err
	}

	processor.recipients = recipients

	if err := processor.checkOutputs(); err != nil {
		return nil, err
	}

	return processor, nil
}

// checkOutputs rejects runs where two inputs encrypt to the same path.
func (p *Processor) checkOutputs() error {
	seen := make(map[string]string, len(p.cfg.Files))

	for _, file := range p.cfg.Files {
		output := filepath.Clean(p.encryptedPath(file))

		if previous, ok := seen[output]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrDuplicateOutput, previous, file, output)
		}

		seen[output] = file
	}

	return nil
}

// resolveRecipients parses ids and optionally prepends self.
func resolveRecipients(ids []string, self identity.ID, includeSelf bool) ([]identity.ID, error) {
	recipients := make([]identity.ID, 0, len(ids)+1)

	if includeSelf {
		recipients = append(recipients, self)
	}

	for _, text := range ids {
		id, err := identity.Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", text, err)
		}

		recipients = append(recipients, id)
	}

	if len(recipients) == 0 {
		return nil, ErrRecipientListEmpty
	}

	return recipients, nil
}

// Recipients returns the resolved recipients.
func (p *Processor) Recipients() []identity.ID {
	return p.recipients
}

// ProcessFiles concurrently processes all files specified in the configuration.
// It encrypts or decrypts files based on the configuration settings.
// Returns the number of successfully processed files and the number of errors.
func (p *Processor) ProcessFiles() (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for res := range p.results {
			if res.err != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", res.input, res.err)

				continue
			}

			processed++

			totalSize += res.size

			if !p.cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", res.input, res.output) //nolint:forbidigo
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			output, err := p.processFile(file)
			if err != nil {
				p.results <- outcome{input: file, err: err}

				return err
			}

			size, err := fileutil.Size(output)
			if err != nil {
				p.logger.Warn("reading output size", zap.String("path", output), zap.Error(err))
			}

			p.results <- outcome{input: file, output: output, size: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// processFile encrypts or decrypts a single file and returns the output path.
func (p *Processor) processFile(file string) (string, error) {
	logger := p.logger.With(zap.String("file", file))

	opts := Options{
		DeleteSource: p.cfg.Delete,
		Logger:       logger,
		Progress: ReporterFunc(func(progress float64) {
			logger.Debug("progress", zap.Float64("ratio", progress))
		}),
	}

	if p.cfg.Decrypt {
		decryptor, err := NewFileDecryptor(file, p.keys)
		if err != nil {
			return "", err
		}

		output, err := decryptor.Decrypt(p.outputDir(file), p.cfg.Name, opts)
		if err != nil {
			return "", fmt.Errorf("decrypting file: %w", err)
		}

		return output, nil
	}

	encryptor, err := NewFileEncryptor(file, p.keys, p.recipients)
	if err != nil {
		return "", err
	}

	output := p.encryptedPath(file)

	if err := encryptor.Encrypt(output, opts); err != nil {
		return "", fmt.Errorf("encrypting file: %w", err)
	}

	return output, nil
}

// encryptedPath is where file is encrypted to.
func (p *Processor) encryptedPath(file string) string {
	return filepath.Join(p.outputDir(file), filepath.Base(file)+p.cfg.Suffix)
}

// outputDir is the configured output directory, or the directory of the input.
func (p *Processor) outputDir(file string) string {
	if p.cfg.Output != "" {
		return p.cfg.Output
	}

	return filepath.Dir(file)
}
