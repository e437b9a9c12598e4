package identity_test

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/minilock/internal/identity"
)

func randomPublicKey(t *testing.T) []byte {
	t.Helper()

	key := make([]byte, identity.PublicKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	return key
}

func TestFromPublicKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{name: "valid", size: identity.PublicKeySize},
		{name: "empty", size: 0, wantErr: identity.ErrInvalidLength},
		{name: "short", size: identity.PublicKeySize - 1, wantErr: identity.ErrInvalidLength},
		{name: "long", size: identity.PublicKeySize + 1, wantErr: identity.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key := make([]byte, tt.size)

			id, err := identity.FromPublicKey(key)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, id.Bytes(), identity.Size)
			assert.Equal(t, key, id.Bytes()[:identity.PublicKeySize])
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	for range 64 {
		key := randomPublicKey(t)

		id, err := identity.FromPublicKey(key)
		require.NoError(t, err)

		parsed, err := identity.Parse(id.String())
		require.NoError(t, err)

		assert.True(t, parsed.Equal(id))
		assert.Equal(t, id.String(), parsed.String())
		assert.Equal(t, key, parsed.PublicKey()[:])
	}
}

func TestParseRejectsCorruption(t *testing.T) {
	t.Parallel()

	id, err := identity.FromPublicKey(randomPublicKey(t))
	require.NoError(t, err)

	raw := id.Bytes()

	// A flipped checksum byte can never match.
	corrupted := bytes.Clone(raw)
	corrupted[identity.PublicKeySize] ^= 0xff

	_, err = identity.Parse(base58.Encode(corrupted))
	require.ErrorIs(t, err, identity.ErrChecksumMismatch)

	// A flipped key byte collides with the one-byte checksum with probability 1/256.
	rejected := 0

	for i := range identity.PublicKeySize {
		corrupted := bytes.Clone(raw)
		corrupted[i] ^= 0x01

		if _, err := identity.Parse(base58.Encode(corrupted)); err != nil {
			assert.ErrorIs(t, err, identity.ErrChecksumMismatch)

			rejected++
		}
	}

	assert.GreaterOrEqual(t, rejected, identity.PublicKeySize-4)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	id, err := identity.FromPublicKey(randomPublicKey(t))
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "invalid alphabet", text: "0OIl", wantErr: identity.ErrInvalidEncoding},
		{name: "too short", text: base58.Encode(id.Bytes()[:identity.PublicKeySize]), wantErr: identity.ErrInvalidLength},
		{name: "too long", text: base58.Encode(append(id.Bytes(), 0)), wantErr: identity.ErrInvalidLength},
		{name: "leading zero byte", text: "1" + id.String(), wantErr: identity.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := identity.Parse(tt.text)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMustParse(t *testing.T) {
	t.Parallel()

	id, err := identity.FromPublicKey(randomPublicKey(t))
	require.NoError(t, err)

	assert.True(t, identity.MustParse(id.String()).Equal(id))
	assert.Panics(t, func() { identity.MustParse("0OIl") })
}

func TestJSON(t *testing.T) {
	t.Parallel()

	id, err := identity.FromPublicKey(randomPublicKey(t))
	require.NoError(t, err)

	data, err := json.Marshal(map[string]identity.ID{"id": id})
	require.NoError(t, err)

	var decoded map[string]identity.ID
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, decoded["id"].Equal(id))

	_, err = json.Marshal(identity.ID{})
	require.Error(t, err)
}
