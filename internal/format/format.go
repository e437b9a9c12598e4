// Package format implements the byte-level framing of miniLock files:
// magic bytes, the length-prefixed JSON header, length-tagged chunks
// and the padded file name block.
package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// Magic identifies a miniLock file.
	Magic = "miniLock"
	// HeaderLengthSize is the width of the little-endian header length.
	HeaderLengthSize = 4
	// ChunkLengthSize is the width of the little-endian chunk length tag.
	ChunkLengthSize = 4
	// MaxChunkSize is the largest plaintext a single chunk may carry.
	MaxChunkSize = 1 << 20
	// FileNonceSize is the size of the per-file nonce prefix.
	FileNonceSize = 16
	// Overhead is the authentication tag added to every chunk.
	Overhead = secretbox.Overhead
	// MaxFramedChunkSize is the largest framed chunk on disk.
	MaxFramedChunkSize = ChunkLengthSize + MaxChunkSize + Overhead
	// PreambleSize is the size of the magic bytes plus the header length.
	PreambleSize = len(Magic) + HeaderLengthSize
)

var (
	// ErrNotMiniLockFile is returned when the magic bytes do not match.
	ErrNotMiniLockFile = errors.New("not a miniLock file")
	// ErrCorruptFile is returned when the framing of a file is inconsistent.
	ErrCorruptFile = errors.New("corrupt miniLock file")
)

// WritePreamble writes the magic bytes, the header length and the header.
func WritePreamble(w io.Writer, header []byte) error {
	if uint64(len(header)) > math.MaxUint32 {
		return fmt.Errorf("header of %d bytes does not fit the length field", len(header))
	}

	preamble := make([]byte, PreambleSize, PreambleSize+len(header))
	copy(preamble, Magic)
	binary.LittleEndian.PutUint32(preamble[len(Magic):], uint32(len(header)))

	if _, err := w.Write(append(preamble, header...)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	return nil
}

// ReadPreamble verifies the magic bytes and returns the header.
// A declared header length above limit is treated as corruption.
func ReadPreamble(r io.Reader, limit int64) ([]byte, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrNotMiniLockFile
		}

		return nil, fmt.Errorf("reading magic bytes: %w", err)
	}

	if !bytes.Equal(magic, []byte(Magic)) {
		return nil, ErrNotMiniLockFile
	}

	lengthBytes := make([]byte, HeaderLengthSize)
	if _, err := io.ReadFull(r, lengthBytes); err != nil {
		return nil, shortRead(err, "header length")
	}

	length := int64(binary.LittleEndian.Uint32(lengthBytes))
	if length == 0 || length > limit {
		return nil, fmt.Errorf("%w: header length %d out of range", ErrCorruptFile, length)
	}

	header := make([]byte, length)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, shortRead(err, "header")
	}

	return header, nil
}

// ReadChunk reads one framed chunk into buf, which must hold MaxFramedChunkSize bytes.
// It returns io.EOF when r ends exactly at a chunk boundary.
func ReadChunk(r io.Reader, buf []byte) ([]byte, error) {
	if len(buf) < MaxFramedChunkSize {
		return nil, fmt.Errorf("chunk buffer of %d bytes is too small", len(buf))
	}

	n, err := io.ReadFull(r, buf[:ChunkLengthSize])

	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return nil, io.EOF
	case err != nil:
		return nil, shortRead(err, "chunk length")
	}

	length := int(binary.LittleEndian.Uint32(buf[:ChunkLengthSize]))
	if length > MaxChunkSize {
		return nil, fmt.Errorf("%w: chunk length %d exceeds %d", ErrCorruptFile, length, MaxChunkSize)
	}

	framed := buf[:ChunkLengthSize+length+Overhead]
	if _, err := io.ReadFull(r, framed[ChunkLengthSize:]); err != nil {
		return nil, shortRead(err, "chunk")
	}

	return framed, nil
}

// ChunkLength returns the plaintext length declared by a framed chunk.
func ChunkLength(framed []byte) (int, error) {
	if len(framed) < ChunkLengthSize {
		return 0, fmt.Errorf("%w: chunk shorter than its length tag", ErrCorruptFile)
	}

	return int(binary.LittleEndian.Uint32(framed[:ChunkLengthSize])), nil
}

// PutChunkLength appends the length tag for a chunk of n plaintext bytes.
func PutChunkLength(dst []byte, n int) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(n)) //nolint:gosec // n is bounded by MaxChunkSize
}

func shortRead(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrCorruptFile, what)
	}

	return fmt.Errorf("reading %s: %w", what, err)
}
