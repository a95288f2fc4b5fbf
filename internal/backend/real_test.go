package backend

import (
	"testing"

	"pqgate/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRealKEMUnknownAlgorithm(t *testing.T) {
	_, err := NewRealKEM("NOSUCHKEM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown KEM algorithm")
}

func TestNewRealSignerUnknownAlgorithm(t *testing.T) {
	_, err := NewRealSigner("NOSUCHSIG")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signature algorithm")
}

func TestRealKEMRoundTrip(t *testing.T) {
	kem, err := NewRealKEM("MLKEM768")
	require.NoError(t, err)

	keypair, err := kem.Keygen()
	require.NoError(t, err)
	assert.Len(t, keypair.PublicKey, kem.PublicKeySize())
	assert.Len(t, keypair.PrivateKey, kem.PrivateKeySize())

	enc, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)
	assert.Len(t, enc.Ciphertext, kem.CiphertextSize())
	assert.Len(t, enc.SharedSecret, kem.SharedSecretSize())

	// Decapsulation recovers the exact secret encapsulation produced.
	recovered, err := kem.Decapsulate(keypair.PrivateKey, enc.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, enc.SharedSecret, recovered)

	// Pure in its inputs: a second decapsulation agrees.
	again, err := kem.Decapsulate(keypair.PrivateKey, enc.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, recovered, again)
}

func TestRealKEMFreshRandomness(t *testing.T) {
	kem, err := NewRealKEM("MLKEM768")
	require.NoError(t, err)

	keypair, err := kem.Keygen()
	require.NoError(t, err)

	first, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)
	second, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)

	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
	assert.NotEqual(t, first.SharedSecret, second.SharedSecret)
}

func TestRealKEMWrongSizeKey(t *testing.T) {
	kem, err := NewRealKEM("MLKEM768")
	require.NoError(t, err)

	_, err = kem.Encapsulate([]byte("short"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlgorithmMismatch, errors.GetCode(err))

	_, err = kem.Decapsulate([]byte("short"), make([]byte, kem.CiphertextSize()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlgorithmMismatch, errors.GetCode(err))
}

func TestRealSignerSignVerify(t *testing.T) {
	signer, err := NewRealSigner("Ed25519-Dilithium2")
	require.NoError(t, err)

	keypair, err := signer.Keygen()
	require.NoError(t, err)
	assert.Len(t, keypair.PublicKey, signer.PublicKeySize())
	assert.Len(t, keypair.PrivateKey, signer.PrivateKeySize())

	message := []byte("attestation payload")
	sig, err := signer.Sign(keypair.PrivateKey, message)
	require.NoError(t, err)
	assert.Len(t, sig, signer.SignatureSize())

	valid, err := signer.Verify(keypair.PublicKey, message, sig)
	require.NoError(t, err)
	assert.True(t, valid)

	// A tampered message must fail verification.
	valid, err = signer.Verify(keypair.PublicKey, []byte("attestation payload!"), sig)
	require.NoError(t, err)
	assert.False(t, valid)

	// A foreign public key must fail verification.
	other, err := signer.Keygen()
	require.NoError(t, err)
	valid, err = signer.Verify(other.PublicKey, message, sig)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRealSignerWrongLengthSignature(t *testing.T) {
	signer, err := NewRealSigner("Ed25519-Dilithium2")
	require.NoError(t, err)

	keypair, err := signer.Keygen()
	require.NoError(t, err)

	// Wrong-length signatures report invalid, not an error.
	valid, err := signer.Verify(keypair.PublicKey, []byte("msg"), []byte("junk"))
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRealSignerWrongSizeKey(t *testing.T) {
	signer, err := NewRealSigner("Ed25519-Dilithium2")
	require.NoError(t, err)

	_, err = signer.Sign([]byte("short"), []byte("msg"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlgorithmMismatch, errors.GetCode(err))

	_, err = signer.Verify([]byte("short"), []byte("msg"), make([]byte, signer.SignatureSize()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlgorithmMismatch, errors.GetCode(err))
}
