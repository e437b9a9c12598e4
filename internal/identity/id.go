package identity

import (
	"bytes"
	"crypto/subtle"
	"fmt"

	"github.com/dchest/blake2s"
	"github.com/mr-tron/base58"
)

const (
	// PublicKeySize is the size of a Curve25519 public key.
	PublicKeySize = 32
	// ChecksumSize is the size of the BLAKE2s checksum appended to the public key.
	ChecksumSize = 1
	// Size is the size of a binary ID.
	Size = PublicKeySize + ChecksumSize
)

// ID is a miniLock identity: a public key followed by its checksum.
// The zero value is not a valid ID.
type ID struct {
	raw [Size]byte
}

// FromPublicKey builds an ID from a raw public key.
func FromPublicKey(publicKey []byte) (ID, error) {
	if len(publicKey) != PublicKeySize {
		return ID{}, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidLength, PublicKeySize, len(publicKey))
	}

	var id ID

	copy(id.raw[:], publicKey)
	copy(id.raw[PublicKeySize:], checksum(publicKey))

	return id, nil
}

// Parse decodes the base-58 text form of an ID and verifies its checksum.
func Parse(text string) (ID, error) {
	decoded, err := base58.Decode(text)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}

	if len(decoded) != Size {
		return ID{}, fmt.Errorf("%w: ID must decode to %d bytes, got %d", ErrInvalidLength, Size, len(decoded))
	}

	// Leading '1' characters map to zero bytes; only the canonical spelling is accepted.
	if base58.Encode(decoded) != text {
		return ID{}, fmt.Errorf("%w: non-canonical base-58", ErrInvalidEncoding)
	}

	sum := checksum(decoded[:PublicKeySize])
	if subtle.ConstantTimeCompare(sum, decoded[PublicKeySize:]) != 1 {
		return ID{}, ErrChecksumMismatch
	}

	var id ID

	copy(id.raw[:], decoded)

	return id, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) ID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return id
}

// String returns the base-58 text form.
func (id ID) String() string {
	return base58.Encode(id.raw[:])
}

// Bytes returns a copy of the binary form.
func (id ID) Bytes() []byte {
	return bytes.Clone(id.raw[:])
}

// PublicKey returns the public key part of the ID.
func (id ID) PublicKey() *[PublicKeySize]byte {
	var key [PublicKeySize]byte

	copy(key[:], id.raw[:PublicKeySize])

	return &key
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Equal reports whether both IDs have the same binary form.
func (id ID) Equal(other ID) bool {
	return id.raw == other.raw
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: zero ID", ErrInvalidLength)
	}

	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

func checksum(publicKey []byte) []byte {
	h, err := blake2s.New(&blake2s.Config{Size: ChecksumSize})
	if err != nil {
		// Only reachable with an out-of-range digest size.
		panic(err)
	}

	h.Write(publicKey)

	return h.Sum(nil)
}
