// Package header builds and opens the JSON header of a miniLock file.
//
// For every recipient the header holds a box sealed from a per-file ephemeral
// key, keyed by its nonce. The box carries the sender and recipient IDs and a
// second box sealed from the sender's own key, which carries the file key, the
// file nonce and the ciphertext digest. Opening the inner box proves the sender
// holds the private key of the ID it claims.
package header

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/nacl/box"

	"github.com/idelchi/minilock/internal/format"
	"github.com/idelchi/minilock/internal/identity"
	"github.com/idelchi/minilock/internal/stream"
)

// Version is the header version written and accepted.
const Version = 1

const nonceSize = 24

var (
	// ErrNotARecipient is returned when no entry of the header opens with the local key.
	ErrNotARecipient = errors.New("not a recipient of this file")
	// ErrHeaderParsing is returned for a malformed header.
	ErrHeaderParsing = errors.New("malformed header")
	// ErrNoRecipients is returned when a header is built without recipients.
	ErrNoRecipients = errors.New("no recipients")
)

// FileInfo is the secret material a recipient needs to decrypt the payload.
type FileInfo struct {
	Key   []byte
	Nonce []byte
	Hash  []byte
}

func (fi FileInfo) validate() error {
	switch {
	case len(fi.Key) != stream.KeySize:
		return fmt.Errorf("file key must be %d bytes, got %d", stream.KeySize, len(fi.Key))
	case len(fi.Nonce) != format.FileNonceSize:
		return fmt.Errorf("file nonce must be %d bytes, got %d", format.FileNonceSize, len(fi.Nonce))
	case len(fi.Hash) != stream.HashSize:
		return fmt.Errorf("file hash must be %d bytes, got %d", stream.HashSize, len(fi.Hash))
	}

	return nil
}

// Header is the decoded JSON header.
type Header struct {
	Version     int               `json:"version"`
	Ephemeral   string            `json:"ephemeral"`
	DecryptInfo map[string]string `json:"decryptInfo"`
}

// Opened is the result of opening a header with a recipient's key pair.
type Opened struct {
	Sender    identity.ID
	Recipient identity.ID
	FileInfo  FileInfo
}

type decryptInfo struct {
	SenderID    string `json:"senderID"`
	RecipientID string `json:"recipientID"`
	FileInfo    string `json:"fileInfo"`
}

type fileInfo struct {
	FileKey   string `json:"fileKey"`
	FileNonce string `json:"fileNonce"`
	FileHash  string `json:"fileHash"`
}

// Build creates a header addressed to every recipient.
// Duplicate recipients are dropped, keeping the first occurrence.
func Build(rand io.Reader, sender *identity.KeyPair, recipients []identity.ID, info FileInfo) (*Header, error) {
	if err := info.validate(); err != nil {
		return nil, err
	}

	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	ephemeralPublic, ephemeralPrivate, err := box.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	defer clear(ephemeralPrivate[:])

	plainInfo, err := json.Marshal(fileInfo{
		FileKey:   encode(info.Key),
		FileNonce: encode(info.Nonce),
		FileHash:  encode(info.Hash),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding file info: %w", err)
	}
	defer clear(plainInfo)

	senderPrivate := sender.PrivateKey()
	defer clear(senderPrivate[:])

	h := &Header{
		Version:     Version,
		Ephemeral:   encode(ephemeralPublic[:]),
		DecryptInfo: make(map[string]string, len(recipients)),
	}

	for _, recipient := range recipients {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand, nonce[:]); err != nil {
			return nil, fmt.Errorf("generating nonce: %w", err)
		}

		recipientKey := recipient.PublicKey()

		plainDecrypt, err := json.Marshal(decryptInfo{
			SenderID:    sender.ID().String(),
			RecipientID: recipient.String(),
			FileInfo:    encode(box.Seal(nil, plainInfo, &nonce, recipientKey, senderPrivate)),
		})
		if err != nil {
			return nil, fmt.Errorf("encoding decrypt info: %w", err)
		}

		h.DecryptInfo[encode(nonce[:])] = encode(box.Seal(nil, plainDecrypt, &nonce, recipientKey, ephemeralPrivate))
	}

	return h, nil
}

// Marshal encodes the header as JSON.
func (h *Header) Marshal() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}

	return data, nil
}

// Unmarshal decodes and validates a JSON header.
func Unmarshal(data []byte) (*Header, error) {
	var h Header

	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderParsing, err)
	}

	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrHeaderParsing, h.Version)
	}

	if _, err := decodeKey(h.Ephemeral); err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %w", ErrHeaderParsing, err)
	}

	if len(h.DecryptInfo) == 0 {
		return nil, fmt.Errorf("%w: no decryptInfo entries", ErrHeaderParsing)
	}

	return &h, nil
}

// Open finds the entry addressed to keys and recovers the file info,
// verifying that it was sealed by the declared sender.
func (h *Header) Open(keys *identity.KeyPair) (*Opened, error) {
	ephemeral, err := decodeKey(h.Ephemeral)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %w", ErrHeaderParsing, err)
	}

	private := keys.PrivateKey()
	defer clear(private[:])

	// Map order is random; sort so that the outcome does not depend on it.
	nonces := make([]string, 0, len(h.DecryptInfo))
	for n := range h.DecryptInfo {
		nonces = append(nonces, n)
	}

	slices.Sort(nonces)

	for _, encodedNonce := range nonces {
		nonce, sealed, ok := decodeEntry(encodedNonce, h.DecryptInfo[encodedNonce])
		if !ok {
			continue
		}

		plain, ok := box.Open(nil, sealed, nonce, ephemeral, private)
		if !ok {
			continue
		}

		opened, err := openDecryptInfo(plain, nonce, keys, private)
		clear(plain)

		if err != nil {
			return nil, err
		}

		return opened, nil
	}

	return nil, ErrNotARecipient
}

func openDecryptInfo(plain []byte, nonce *[nonceSize]byte, keys *identity.KeyPair, private *[32]byte) (*Opened, error) {
	var info decryptInfo
	if err := json.Unmarshal(plain, &info); err != nil {
		return nil, fmt.Errorf("%w: decrypt info: %w", ErrHeaderParsing, err)
	}

	recipient, err := identity.Parse(info.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient ID: %w", ErrHeaderParsing, err)
	}

	if !recipient.Equal(keys.ID()) {
		return nil, fmt.Errorf("%w: entry is addressed to %s", ErrNotARecipient, recipient)
	}

	sender, err := identity.Parse(info.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender ID: %w", ErrHeaderParsing, err)
	}

	sealed, err := decode(info.FileInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: file info: %w", ErrHeaderParsing, err)
	}

	plainInfo, ok := box.Open(nil, sealed, nonce, sender.PublicKey(), private)
	if !ok {
		return nil, fmt.Errorf("%w: file info is not authenticated by sender %s", ErrNotARecipient, sender)
	}
	defer clear(plainInfo)

	var fi fileInfo
	if err := json.Unmarshal(plainInfo, &fi); err != nil {
		return nil, fmt.Errorf("%w: file info: %w", ErrHeaderParsing, err)
	}

	result := FileInfo{}

	for _, field := range []struct {
		dst  *[]byte
		text string
	}{
		{&result.Key, fi.FileKey},
		{&result.Nonce, fi.FileNonce},
		{&result.Hash, fi.FileHash},
	} {
		if *field.dst, err = decode(field.text); err != nil {
			return nil, fmt.Errorf("%w: file info: %w", ErrHeaderParsing, err)
		}
	}

	if err := result.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderParsing, err)
	}

	return &Opened{Sender: sender, Recipient: recipient, FileInfo: result}, nil
}

func decodeEntry(encodedNonce, encodedBox string) (*[nonceSize]byte, []byte, bool) {
	rawNonce, err := decode(encodedNonce)
	if err != nil || len(rawNonce) != nonceSize {
		return nil, nil, false
	}

	sealed, err := decode(encodedBox)
	if err != nil || len(sealed) < box.Overhead {
		return nil, nil, false
	}

	var nonce [nonceSize]byte
	copy(nonce[:], rawNonce)

	return &nonce, sealed, true
}

func decodeKey(text string) (*[32]byte, error) {
	raw, err := decode(text)
	if err != nil {
		return nil, err
	}

	if len(raw) != identity.PublicKeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", identity.PublicKeySize, len(raw))
	}

	var key [32]byte
	copy(key[:], raw)

	return &key, nil
}

func dedupe(ids []identity.ID) []identity.ID {
	out := make([]identity.ID, 0, len(ids))

	for _, id := range ids {
		if id.IsZero() || slices.ContainsFunc(out, id.Equal) {
			continue
		}

		out = append(out, id)
	}

	return out
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	return b, nil
}
