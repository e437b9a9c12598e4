package encryption

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/idelchi/minilock/internal/fileutil"
	"github.com/idelchi/minilock/internal/format"
	"github.com/idelchi/minilock/internal/header"
	"github.com/idelchi/minilock/internal/identity"
	"github.com/idelchi/minilock/internal/stream"
)

// FileDecryptor decrypts one miniLock file with a recipient's key pair.
type FileDecryptor struct {
	path string
	size int64
	keys *identity.KeyPair
}

// NewFileDecryptor validates the inputs of a decryption. No file content is read.
func NewFileDecryptor(path string, keys *identity.KeyPair) (*FileDecryptor, error) {
	if path == "" {
		return nil, ErrFileNameEmpty
	}

	if keys == nil {
		return nil, ErrKeyPairMissing
	}

	size, err := fileutil.Size(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAFile, err)
	}

	return &FileDecryptor{path: path, size: size, keys: keys}, nil
}

// Decrypt writes the plaintext into destinationDir and returns the path it was written to.
// The file is named after the name embedded in the file unless name is set; an
// existing file is never overwritten. The destination is created only after the
// header and the name block were authenticated, and removed again on any later failure.
func (d *FileDecryptor) Decrypt(destinationDir, name string, opts Options) (output string, err error) {
	if name != "" {
		if err := checkName(name); err != nil {
			return "", err
		}
	}

	log := opts.logger().With(zap.String("source", d.path))

	src, err := os.Open(filepath.Clean(d.path))
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	data, err := format.ReadPreamble(src, d.size-int64(format.PreambleSize))
	if err != nil {
		return "", err
	}

	hdr, err := header.Unmarshal(data)
	if err != nil {
		return "", err
	}

	opened, err := hdr.Open(d.keys)
	if err != nil {
		return "", err
	}

	log = log.With(zap.Stringer("sender", opened.Sender))

	output, err = d.decryptPayload(src, destinationDir, name, opened.FileInfo, int64(format.PreambleSize+len(data)), opts)
	if err != nil {
		return "", err
	}

	log.Debug("decrypted file", zap.String("destination", output))

	if opts.DeleteSource {
		removeSource(log, d.path)
	}

	return output, nil
}

// decryptPayload streams the chunks that follow the header into a new file.
// consumed is the number of bytes already read from src.
//
//nolint:funlen,cyclop
func (d *FileDecryptor) decryptPayload(
	src io.Reader,
	destinationDir, name string,
	info header.FileInfo,
	consumed int64,
	opts Options,
) (output string, err error) {
	dec, err := stream.NewDecryptor(info.Key, info.Nonce)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	defer dec.Zero()

	current, next, out := getBuffer(), getBuffer(), getBuffer()
	defer putBuffer(current)
	defer putBuffer(next)
	defer putBuffer(out)

	framed, err := format.ReadChunk(src, current)
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: no payload", ErrCorruptFile)
	}

	if err != nil {
		return "", err
	}

	var dst *os.File

	defer func() {
		if dst == nil {
			return
		}

		if closeErr := dst.Close(); closeErr != nil && err == nil {
			output, err = "", fmt.Errorf("closing output file: %w", closeErr)
		}

		if err != nil {
			if rmErr := os.Remove(dst.Name()); rmErr != nil {
				opts.logger().Warn("removing partial output", zap.String("path", dst.Name()), zap.Error(rmErr))
			}
		}
	}()

	for index := 0; ; index++ {
		following, readErr := format.ReadChunk(src, next)

		last := errors.Is(readErr, io.EOF)
		if readErr != nil && !last {
			return "", readErr
		}

		plain, err := dec.Open(out[:0], framed, last)
		if err != nil {
			if errors.Is(err, stream.ErrInputSizeInvalid) {
				return "", fmt.Errorf("%w: chunk %d: %w", ErrCorruptFile, index, err)
			}

			return "", fmt.Errorf("decrypting chunk %d: %w", index, err)
		}

		if index == 0 {
			if dst, err = createDestination(destinationDir, name, plain); err != nil {
				return "", err
			}
		} else if _, err := dst.Write(plain); err != nil {
			return "", fmt.Errorf("writing plaintext: %w", err)
		}

		consumed += int64(len(framed))

		opts.report(ratio(consumed, d.size))

		if last {
			break
		}

		framed = following
		current, next = next, current
	}

	sum, err := dec.Sum()
	if err != nil {
		return "", fmt.Errorf("finishing payload: %w", err)
	}

	if subtle.ConstantTimeCompare(sum, info.Hash) != 1 {
		return "", ErrIntegrity
	}

	if err := dst.Sync(); err != nil {
		return "", fmt.Errorf("syncing output file: %w", err)
	}

	return dst.Name(), nil
}

// createDestination picks the output name from the decrypted name block unless
// name is set, and creates a file under that name that did not exist before.
func createDestination(dir, name string, block []byte) (*os.File, error) {
	if len(block) != format.FileNameBlockSize {
		return nil, fmt.Errorf("%w: name block of %d bytes", ErrCorruptFile, len(block))
	}

	if name == "" {
		embedded, err := format.ParseFileName(block)
		if err != nil {
			return nil, err
		}

		name = embedded
	}

	dst, err := fileutil.CreateUnique(dir, name)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	return dst, nil
}

// checkName accepts only a plain file name, so an override cannot leave dir.
func checkName(name string) error {
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	switch name {
	case ".", "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}
