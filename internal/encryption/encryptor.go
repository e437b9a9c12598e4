package encryption

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idelchi/minilock/internal/fileutil"
	"github.com/idelchi/minilock/internal/format"
	"github.com/idelchi/minilock/internal/header"
	"github.com/idelchi/minilock/internal/identity"
	"github.com/idelchi/minilock/internal/stream"
)

// FileEncryptor encrypts one source file for a list of recipients.
type FileEncryptor struct {
	path       string
	name       string
	size       int64
	sender     *identity.KeyPair
	recipients []identity.ID
	rand       io.Reader
}

// NewFileEncryptor validates the inputs of an encryption. No file content is read.
func NewFileEncryptor(path string, sender *identity.KeyPair, recipients []identity.ID) (*FileEncryptor, error) {
	if path == "" {
		return nil, ErrFileNameEmpty
	}

	if sender == nil {
		return nil, ErrKeyPairMissing
	}

	if len(recipients) == 0 {
		return nil, ErrRecipientListEmpty
	}

	size, err := fileutil.Size(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAFile, err)
	}

	if size == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSourceFileEmpty, path)
	}

	return &FileEncryptor{
		path:       path,
		name:       filepath.Base(path),
		size:       size,
		sender:     sender,
		recipients: recipients,
		rand:       rand.Reader,
	}, nil
}

// Encrypt writes the encrypted file to destination. The destination is replaced
// atomically, so on failure nothing is left behind.
//
//nolint:funlen
func (e *FileEncryptor) Encrypt(destination string, opts Options) (err error) {
	log := opts.logger().With(zap.String("source", e.path), zap.String("destination", destination))

	src, err := os.Open(filepath.Clean(e.path))
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	enc, err := stream.NewEncryptor(e.rand)
	if err != nil {
		return fmt.Errorf("creating chunk encryptor: %w", err)
	}
	defer enc.Zero()

	scratch, err := fileutil.NewScratch()
	if err != nil {
		return err
	}
	defer scratch.Close()

	chunks, err := e.encryptPayload(src, scratch, enc, opts)
	if err != nil {
		return err
	}

	sum, err := enc.Sum()
	if err != nil {
		return fmt.Errorf("finishing payload: %w", err)
	}

	hdr, err := header.Build(e.rand, e.sender, e.recipients, header.FileInfo{
		Key:   enc.Key(),
		Nonce: enc.FileNonce(),
		Hash:  sum,
	})
	if err != nil {
		return fmt.Errorf("building header: %w", err)
	}

	data, err := hdr.Marshal()
	if err != nil {
		return err
	}

	tc, err := fileutil.NewTempContext(destination)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if err := format.WritePreamble(tc.TmpFile, data); err != nil {
		return err
	}

	if err := scratch.Rewind(); err != nil {
		return err
	}

	if _, err := io.Copy(tc.TmpFile, scratch); err != nil {
		return fmt.Errorf("copying payload: %w", err)
	}

	if err := tc.Commit(); err != nil {
		return err
	}

	log.Debug("encrypted file",
		zap.Int("chunks", chunks),
		zap.Int("recipients", len(hdr.DecryptInfo)),
		zap.Int("header_bytes", len(data)),
	)

	if opts.DeleteSource {
		removeSource(log, e.path)
	}

	return nil
}

// encryptPayload writes the name block and the source content as framed chunks to w.
// It reads one chunk ahead, so the last chunk is known without relying on the file size.
func (e *FileEncryptor) encryptPayload(src io.Reader, w io.Writer, enc *stream.Encryptor, opts Options) (int, error) {
	out := getBuffer()
	defer putBuffer(out)

	framed, err := enc.Seal(out[:0], format.PadFileName(e.name), false)
	if err != nil {
		return 0, fmt.Errorf("encrypting file name: %w", err)
	}

	if _, err := w.Write(framed); err != nil {
		return 0, fmt.Errorf("writing payload: %w", err)
	}

	current, next := getBuffer(), getBuffer()
	defer putBuffer(current)
	defer putBuffer(next)

	n, err := readFull(src, current[:format.MaxChunkSize])
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrSourceFileEmpty, e.path)
	}

	var consumed int64

	chunks := 1

	for {
		last := n < format.MaxChunkSize

		var m int

		if !last {
			if m, err = readFull(src, next[:format.MaxChunkSize]); err != nil {
				return 0, err
			}

			last = m == 0
		}

		framed, err := enc.Seal(out[:0], current[:n], last)
		if err != nil {
			return 0, fmt.Errorf("encrypting chunk %d: %w", chunks, err)
		}

		if _, err := w.Write(framed); err != nil {
			return 0, fmt.Errorf("writing payload: %w", err)
		}

		chunks++
		consumed += int64(n)

		opts.report(ratio(consumed, e.size))

		if last {
			return chunks, nil
		}

		current, next, n = next, current, m
	}
}

// readFull fills buf and reports how many bytes were read. A short count means end of input.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}

	if err != nil {
		return n, fmt.Errorf("reading source file: %w", err)
	}

	return n, nil
}

// removeSource deletes path and logs, but never returns, a failure.
func removeSource(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil {
		log.Warn("deleting source file", zap.String("path", path), zap.Error(err))

		return
	}

	log.Debug("deleted source file", zap.String("path", path))
}
