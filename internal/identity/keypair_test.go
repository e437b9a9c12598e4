package identity_test

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"

	"github.com/idelchi/gogen/pkg/key"
	"github.com/idelchi/minilock/internal/identity"
)

func TestFromPrivateKeyMatchesBox(t *testing.T) {
	t.Parallel()

	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	kp, err := identity.FromPrivateKey(privateKey[:])
	require.NoError(t, err)

	assert.Equal(t, publicKey, kp.PublicKey())
	assert.Equal(t, privateKey, kp.PrivateKey())

	want, err := identity.FromPublicKey(publicKey[:])
	require.NoError(t, err)
	assert.True(t, kp.ID().Equal(want))
}

func TestFromPrivateKeyInvalidLength(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := identity.FromPrivateKey(make([]byte, size))
		require.ErrorIs(t, err, identity.ErrInvalidLength, "size %d", size)
	}
}

func TestParsePrivateKey(t *testing.T) {
	t.Parallel()

	kp, err := identity.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	text := "  " + key.Key(kp.PrivateKey()[:]).AsHex() + "\n"

	parsed, err := identity.ParsePrivateKey(text)
	require.NoError(t, err)
	assert.True(t, parsed.ID().Equal(kp.ID()))

	_, err = identity.ParsePrivateKey("not hex")
	require.ErrorIs(t, err, identity.ErrInvalidEncoding)
}

func TestKeyPairFormattingHidesPrivateKey(t *testing.T) {
	t.Parallel()

	kp, err := identity.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	secret := key.Key(kp.PrivateKey()[:]).AsHex()

	for _, format := range []string{"%v", "%s", "%+v", "%#v"} {
		out := fmt.Sprintf(format, kp)
		assert.NotContains(t, out, secret, format)
		assert.Contains(t, out, kp.ID().String(), format)
	}
}

func TestZero(t *testing.T) {
	t.Parallel()

	kp, err := identity.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	kp.Zero()

	assert.Equal(t, &[identity.PrivateKeySize]byte{}, kp.PrivateKey())
}

func TestFromPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt derivation is slow")
	}

	t.Parallel()

	const (
		email    = "alice@example.com"
		password = "correct horse battery staple"
	)

	first, err := identity.FromPassword(email, password)
	require.NoError(t, err)

	second, err := identity.FromPassword(email, password)
	require.NoError(t, err)

	assert.Equal(t, first.PrivateKey(), second.PrivateKey())
	assert.True(t, first.ID().Equal(second.ID()))

	otherEmail, err := identity.FromPassword("bob@example.com", password)
	require.NoError(t, err)
	assert.NotEqual(t, first.PrivateKey(), otherEmail.PrivateKey())

	otherPassword, err := identity.FromPassword(email, password+"!")
	require.NoError(t, err)
	assert.NotEqual(t, first.PrivateKey(), otherPassword.PrivateKey())
}

func TestFromPasswordRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := identity.FromPassword("", "password")
	require.ErrorIs(t, err, identity.ErrDerivationFailure)

	_, err = identity.FromPassword("alice@example.com", "")
	require.ErrorIs(t, err, identity.ErrDerivationFailure)
}
