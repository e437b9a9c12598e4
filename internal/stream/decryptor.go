package stream

import (
	"fmt"

	"github.com/idelchi/minilock/internal/format"
)

// Decryptor opens a sequence of framed chunks produced by an Encryptor.
type Decryptor struct {
	*codec
}

// NewDecryptor creates a Decryptor for the key and file nonce recovered from a header.
func NewDecryptor(key, fileNonce []byte) (*Decryptor, error) {
	c, err := newCodec(key, fileNonce)
	if err != nil {
		return nil, err
	}

	return &Decryptor{codec: c}, nil
}

// Open authenticates and decrypts one framed chunk and appends the plaintext to dst.
// Set last for the final chunk. Any failure is terminal.
func (d *Decryptor) Open(dst, framed []byte, last bool) ([]byte, error) {
	if d.status != Incomplete {
		return nil, ErrProcessComplete
	}

	length, err := format.ChunkLength(framed)
	if err != nil {
		return nil, d.fail(fmt.Errorf("%w: %w", ErrInputSizeInvalid, err))
	}

	if length == 0 || length > format.MaxChunkSize {
		return nil, d.fail(fmt.Errorf("%w: declared chunk length %d", ErrInputSizeInvalid, length))
	}

	if len(framed) != format.ChunkLengthSize+length+format.Overhead {
		return nil, d.fail(fmt.Errorf("%w: chunk of %d bytes declares %d plaintext bytes",
			ErrInputSizeInvalid, len(framed), length))
	}

	if err := d.prepare(last); err != nil {
		return nil, d.fail(err)
	}

	out, ok := d.openChunk(dst, framed)
	if !ok {
		return nil, d.fail(ErrDecryptionFailed)
	}

	d.advance(framed, last)

	return out, nil
}
