package identity

import (
	"fmt"
	"io"

	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/curve25519"

	"github.com/idelchi/gogen/pkg/key"
)

// PrivateKeySize is the size of a Curve25519 private key.
const PrivateKeySize = curve25519.ScalarSize

// KeyPair holds a private key together with the ID of its public key.
// The private key is never exposed through String, GoString or logging.
type KeyPair struct {
	privateKey [PrivateKeySize]byte
	id         ID
}

// FromPrivateKey builds a key pair from a raw private key.
func FromPrivateKey(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidLength, PrivateKeySize, len(privateKey))
	}

	publicKey, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("deriving public key: %w", err)
	}

	id, err := FromPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	kp := &KeyPair{id: id}
	copy(kp.privateKey[:], privateKey)

	return kp, nil
}

// GenerateKeyPair creates a key pair from random bytes read from rand.
func GenerateKeyPair(rand io.Reader) (*KeyPair, error) {
	privateKey := make([]byte, PrivateKeySize)
	defer clear(privateKey)

	if _, err := io.ReadFull(rand, privateKey); err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}

	return FromPrivateKey(privateKey)
}

// ParsePrivateKey decodes a hex encoded private key, as stored in key files.
func ParsePrivateKey(text string) (*KeyPair, error) {
	privateKey, err := key.FromHex(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	defer clear(privateKey)

	return FromPrivateKey(privateKey)
}

// ID returns the public identity of the key pair.
func (kp *KeyPair) ID() ID {
	return kp.id
}

// PublicKey returns the raw public key.
func (kp *KeyPair) PublicKey() *[PublicKeySize]byte {
	return kp.id.PublicKey()
}

// PrivateKey returns a copy of the raw private key.
func (kp *KeyPair) PrivateKey() *[PrivateKeySize]byte {
	private := kp.privateKey

	return &private
}

// Zero overwrites the private key. The key pair must not be used afterwards.
func (kp *KeyPair) Zero() {
	clear(kp.privateKey[:])
}

// String returns the ID of the key pair.
func (kp *KeyPair) String() string {
	return kp.id.String()
}

// GoString keeps the private key out of %#v output.
func (kp *KeyPair) GoString() string {
	return fmt.Sprintf("identity.KeyPair{ID: %q}", kp.id.String())
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (kp *KeyPair) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", kp.id.String())

	return nil
}
