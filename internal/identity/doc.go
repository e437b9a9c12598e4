// Package identity implements miniLock IDs and key pairs.
//
// An ID is a Curve25519 public key followed by a one-byte BLAKE2s checksum,
// shared as base-58 text. Key pairs are created from raw private keys or
// derived deterministically from an email address and a password.
package identity
