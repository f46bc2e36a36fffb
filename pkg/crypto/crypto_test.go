package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/crypto"
)

func TestCookieSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("a-shared-secret")
	message := []byte(`{"player":"notch"}`)

	signed := crypto.Sign(message, secret)
	ok, got := crypto.Verify(signed, secret)

	require.True(t, ok)
	assert.Equal(t, message, got)
}

func TestCookieVerifyRejectsWrongSecret(t *testing.T) {
	signed := crypto.Sign([]byte("payload"), []byte("secret-one"))

	ok, _ := crypto.Verify(signed, []byte("secret-two"))

	assert.False(t, ok)
}

func TestCookieVerifyRejectsShortMessage(t *testing.T) {
	ok, got := crypto.Verify([]byte("too-short"), []byte("secret"))

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCookieVerifyRejectsTamperedMessage(t *testing.T) {
	secret := []byte("secret")
	signed := crypto.Sign([]byte("original"), secret)
	signed[len(signed)-1] ^= 0xFF

	ok, _ := crypto.Verify(signed, secret)

	assert.False(t, ok)
}

func TestKeyPairEncryptDecryptRoundTrip(t *testing.T) {
	kp := crypto.NewKeyPair()

	pub, err := kp.EncodedPublicKey()
	require.NoError(t, err)
	assert.NotEmpty(t, pub)

	plaintext := []byte("0123456789abcdef")
	ciphertext, err := kp.Encrypt(plaintext)
	require.NoError(t, err)

	decrypted, err := kp.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestVerifyTokenMatches(t *testing.T) {
	token, err := crypto.GenerateVerifyToken()
	require.NoError(t, err)
	assert.Len(t, token, crypto.VerifyTokenLength)

	assert.True(t, crypto.VerifyTokenMatches(token, token))

	other := append([]byte(nil), token...)
	other[0] ^= 0xFF
	assert.False(t, crypto.VerifyTokenMatches(token, other))

	assert.False(t, crypto.VerifyTokenMatches(token, token[:len(token)-1]))
}

func TestGenerateKeepAliveIDDiffersOnSuccessiveCalls(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		id := crypto.GenerateKeepAliveID()
		assert.False(t, seen[id], "keep-alive id repeated: %d", id)
		seen[id] = true
	}
}

func TestServerIDHashKnownVectors(t *testing.T) {
	// Reference vectors from Mojang's wiki.vg protocol documentation: each
	// name is hashed as the server id, with an empty secret/key pair.
	assert.Equal(t, "4ed1f46bbe04bc756bcb17c0c7ce3e4632f06a48", crypto.ServerIDHash("Notch", nil, nil))
	assert.Equal(t, "-7c9d5b0044c130109a5d7b5fb5c317c02b4e28c1", crypto.ServerIDHash("jeb_", nil, nil))
	assert.Equal(t, "88e16a1019277b15d58faf0541e11910eb756f6", crypto.ServerIDHash("simon", nil, nil))
}
