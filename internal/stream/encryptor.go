package stream

import (
	"fmt"
	"io"

	"github.com/idelchi/minilock/internal/format"
)

// Encryptor seals a sequence of plaintext chunks.
type Encryptor struct {
	*codec
}

// NewEncryptor creates an Encryptor with a random key and file nonce read from rand.
func NewEncryptor(rand io.Reader) (*Encryptor, error) {
	secret := make([]byte, KeySize+format.FileNonceSize)
	defer clear(secret)

	if _, err := io.ReadFull(rand, secret); err != nil {
		return nil, fmt.Errorf("generating file key: %w", err)
	}

	return NewEncryptorWithKey(secret[:KeySize], secret[KeySize:])
}

// NewEncryptorWithKey creates an Encryptor for a given key and file nonce.
func NewEncryptorWithKey(key, fileNonce []byte) (*Encryptor, error) {
	c, err := newCodec(key, fileNonce)
	if err != nil {
		return nil, err
	}

	return &Encryptor{codec: c}, nil
}

// Seal encrypts one chunk of plaintext and appends the framed chunk
// (length tag, authentication tag, ciphertext) to dst.
// Set last for the final chunk; the Encryptor accepts no chunks afterwards.
func (e *Encryptor) Seal(dst, plaintext []byte, last bool) ([]byte, error) {
	if e.status != Incomplete {
		return nil, ErrProcessComplete
	}

	if len(plaintext) == 0 || len(plaintext) > format.MaxChunkSize {
		return nil, fmt.Errorf("%w: chunk of %d bytes, want 1 to %d",
			ErrInputSizeInvalid, len(plaintext), format.MaxChunkSize)
	}

	if err := e.prepare(last); err != nil {
		return nil, err
	}

	start := len(dst)
	dst = e.sealChunk(dst, plaintext)

	e.advance(dst[start:], last)

	return dst, nil
}
