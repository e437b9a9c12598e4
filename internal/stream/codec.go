// Package stream implements the chunked authenticated encryption of a miniLock payload.
//
// Every chunk is sealed with NaCl secretbox under one file key. The 24-byte nonce
// is the 16-byte file nonce followed by a little-endian chunk counter; the top
// bit of the counter marks the final chunk, so a stream cannot be truncated and
// re-terminated. A BLAKE2s-256 digest runs over all framed chunks.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/idelchi/minilock/internal/format"
)

const (
	// KeySize is the size of the symmetric file key.
	KeySize = 32
	// NonceSize is the size of the full secretbox nonce.
	NonceSize = 24
	// HashSize is the size of the ciphertext digest.
	HashSize = blake2s.Size

	lastChunkFlag = 0x80
)

// Status is the state of an Encryptor or Decryptor.
type Status int

const (
	// Incomplete accepts further chunks.
	Incomplete Status = iota
	// Succeeded means the last chunk was processed.
	Succeeded
	// Failed means a chunk failed verification.
	Failed
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	// ErrProcessComplete is returned when a chunk is passed after the last chunk or a failure.
	ErrProcessComplete = errors.New("stream already complete")
	// ErrProcessIncomplete is returned when the digest is requested before the last chunk.
	ErrProcessIncomplete = errors.New("stream not complete")
	// ErrInputSizeInvalid is returned for keys, nonces or chunks of the wrong size.
	ErrInputSizeInvalid = errors.New("invalid input size")
	// ErrDecryptionFailed is returned when a chunk fails authentication.
	ErrDecryptionFailed = errors.New("chunk authentication failed")
	// ErrNonceExhausted is returned when the chunk counter would reach the last-chunk bit.
	ErrNonceExhausted = errors.New("chunk counter exhausted")
)

// codec holds the state shared by both directions.
type codec struct {
	key    [KeySize]byte
	nonce  [NonceSize]byte
	hash   hash.Hash
	sum    []byte
	status Status
}

func newCodec(key, fileNonce []byte) (*codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInputSizeInvalid, KeySize, len(key))
	}

	if len(fileNonce) != format.FileNonceSize {
		return nil, fmt.Errorf("%w: file nonce must be %d bytes, got %d",
			ErrInputSizeInvalid, format.FileNonceSize, len(fileNonce))
	}

	h, err := blake2s.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("creating hash: %w", err)
	}

	c := &codec{hash: h}
	copy(c.key[:], key)
	copy(c.nonce[:], fileNonce)

	return c, nil
}

// Status returns the current state.
func (c *codec) Status() Status {
	return c.status
}

// Key returns a copy of the file key.
func (c *codec) Key() []byte {
	return bytes.Clone(c.key[:])
}

// FileNonce returns a copy of the 16-byte file nonce.
func (c *codec) FileNonce() []byte {
	return bytes.Clone(c.nonce[:format.FileNonceSize])
}

// Sum returns the BLAKE2s-256 digest of all framed chunks.
// It is only available once the last chunk was processed.
func (c *codec) Sum() ([]byte, error) {
	if c.status != Succeeded {
		return nil, fmt.Errorf("%w: status is %s", ErrProcessIncomplete, c.status)
	}

	return bytes.Clone(c.sum), nil
}

// Zero wipes the key. The codec fails every call afterwards.
func (c *codec) Zero() {
	clear(c.key[:])

	if c.status == Incomplete {
		c.status = Failed
	}
}

// prepare checks the state and the counter, and marks the nonce for the last chunk.
func (c *codec) prepare(last bool) error {
	if c.status != Incomplete {
		return ErrProcessComplete
	}

	if c.nonce[NonceSize-1]&lastChunkFlag != 0 {
		return ErrNonceExhausted
	}

	if last {
		c.nonce[NonceSize-1] |= lastChunkFlag
	}

	return nil
}

// advance hashes a framed chunk, finalizes on the last chunk and increments the counter.
func (c *codec) advance(framed []byte, last bool) {
	c.hash.Write(framed)

	if last {
		c.sum = c.hash.Sum(nil)
		c.status = Succeeded

		return
	}

	for i := format.FileNonceSize; i < NonceSize; i++ {
		c.nonce[i]++

		if c.nonce[i] != 0 {
			break
		}
	}
}

func (c *codec) fail(err error) error {
	c.status = Failed

	return err
}

// sealChunk appends the framed chunk for plaintext to dst.
func (c *codec) sealChunk(dst, plaintext []byte) []byte {
	dst = format.PutChunkLength(dst, len(plaintext))

	return secretbox.Seal(dst, plaintext, &c.nonce, &c.key)
}

// openChunk appends the plaintext of a framed chunk to dst.
func (c *codec) openChunk(dst, framed []byte) ([]byte, bool) {
	return secretbox.Open(dst, framed[format.ChunkLengthSize:], &c.nonce, &c.key)
}
