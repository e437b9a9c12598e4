package identity

import (
	"fmt"

	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/scrypt"
)

// Changing any scrypt parameter changes every derived ID.
const (
	// ScryptN is the CPU/memory cost parameter.
	ScryptN = 1 << 17
	// ScryptR is the block size parameter.
	ScryptR = 8
	// ScryptP is the parallelism parameter.
	ScryptP = 1
)

// FromPassword derives a key pair from an email address and a password.
// The password is hashed with BLAKE2s-256, and the digest is stretched with
// scrypt using the email as salt. The result is deterministic.
func FromPassword(email, password string) (*KeyPair, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is empty", ErrDerivationFailure)
	}

	if password == "" {
		return nil, fmt.Errorf("%w: password is empty", ErrDerivationFailure)
	}

	digest := blake2s.Sum256([]byte(password))
	defer clear(digest[:])

	privateKey, err := scrypt.Key(digest[:], []byte(email), ScryptN, ScryptR, ScryptP, PrivateKeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailure, err)
	}
	defer clear(privateKey)

	return FromPrivateKey(privateKey)
}
