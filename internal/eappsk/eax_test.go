package eappsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestEAXRoundTrip checks that eaxDecrypt recovers exactly what eaxEncrypt
// sealed, across varying key/nonce/aad/plaintext sizes.
func TestEAXRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(rt, "key")
		nonce := rapid.SliceOfN(rapid.Byte(), 1, 16).Draw(rt, "nonce")
		aad := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(rt, "aad")
		plaintext := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "plaintext")

		sealed, err := eaxEncrypt(key, nonce, aad, plaintext)
		require.NoError(rt, err)
		assert.Len(rt, sealed, len(plaintext)+eaxTagSize)

		opened, err := eaxDecrypt(key, nonce, aad, sealed)
		require.NoError(rt, err)
		assert.Equal(rt, plaintext, opened)
	})
}

func TestEAXRejectsTamperedTag(t *testing.T) {
	key := make([]byte, 16)
	nonce := []byte{1, 2, 3, 4}
	aad := []byte("p-channel")
	plaintext := []byte("result code and nonces")

	sealed, err := eaxEncrypt(key, nonce, aad, plaintext)
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0x01

	_, err = eaxDecrypt(key, nonce, aad, tampered)
	assert.Error(t, err)
}

func TestEAXRejectsTamperedCiphertext(t *testing.T) {
	key := make([]byte, 16)
	nonce := []byte{1, 2, 3, 4}
	aad := []byte("p-channel")
	plaintext := []byte("result code and nonces")

	sealed, err := eaxEncrypt(key, nonce, aad, plaintext)
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[0] ^= 0x01

	_, err = eaxDecrypt(key, nonce, aad, tampered)
	assert.Error(t, err)
}

func TestEAXRejectsWrongAAD(t *testing.T) {
	key := make([]byte, 16)
	nonce := []byte{1, 2, 3, 4}
	plaintext := []byte("result code and nonces")

	sealed, err := eaxEncrypt(key, nonce, []byte("aad-a"), plaintext)
	require.NoError(t, err)

	_, err = eaxDecrypt(key, nonce, []byte("aad-b"), sealed)
	assert.Error(t, err)
}

func TestEAXShortCiphertextRejected(t *testing.T) {
	_, err := eaxDecrypt(make([]byte, 16), []byte{1}, nil, make([]byte, eaxTagSize-1))
	assert.Error(t, err)
}
