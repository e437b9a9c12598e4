package identity

import "errors"

var (
	// ErrInvalidLength is returned when a key or decoded ID has the wrong size.
	ErrInvalidLength = errors.New("invalid length")
	// ErrInvalidEncoding is returned when an ID is not canonical base-58 text.
	ErrInvalidEncoding = errors.New("invalid encoding")
	// ErrChecksumMismatch is returned when the checksum of an ID does not match its public key.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrDerivationFailure is returned when a key pair cannot be derived from a password.
	ErrDerivationFailure = errors.New("key derivation failed")
)
