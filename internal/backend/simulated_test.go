package backend

import (
	"testing"

	"pqgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedKEMKeygen(t *testing.T) {
	kem := NewSimulatedKEM()

	keypair, err := kem.Keygen()
	require.NoError(t, err)
	assert.Len(t, keypair.PublicKey, kem.PublicKeySize())
	assert.Len(t, keypair.PrivateKey, kem.PrivateKeySize())
	assert.Equal(t, "Kyber512 (Simulated)", keypair.Algorithm)

	// Fresh randomness on every call
	second, err := kem.Keygen()
	require.NoError(t, err)
	assert.NotEqual(t, keypair.PublicKey, second.PublicKey)
}

func TestSimulatedKEMEncapsulate(t *testing.T) {
	kem := NewSimulatedKEM()
	keypair, err := kem.Keygen()
	require.NoError(t, err)

	first, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)
	assert.Len(t, first.Ciphertext, kem.CiphertextSize())
	assert.Len(t, first.SharedSecret, kem.SharedSecretSize())

	second, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
	assert.NotEqual(t, first.SharedSecret, second.SharedSecret)
}

func TestSimulatedKEMDecapsulateIsDeterministic(t *testing.T) {
	kem := NewSimulatedKEM()
	keypair, err := kem.Keygen()
	require.NoError(t, err)

	enc, err := kem.Encapsulate(keypair.PublicKey)
	require.NoError(t, err)

	first, err := kem.Decapsulate(keypair.PrivateKey, enc.Ciphertext)
	require.NoError(t, err)
	second, err := kem.Decapsulate(keypair.PrivateKey, enc.Ciphertext)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, kem.SharedSecretSize())

	// Documented simulation limitation: the derived secret does not match
	// the one encapsulation produced.
	assert.NotEqual(t, enc.SharedSecret, first)

	// Different inputs yield different secrets
	other, err := kem.Decapsulate(keypair.PrivateKey, append([]byte{0xff}, enc.Ciphertext[1:]...))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSimulatedSigner(t *testing.T) {
	signer := NewSimulatedSigner()

	keypair, err := signer.Keygen()
	require.NoError(t, err)
	assert.Len(t, keypair.PublicKey, signer.PublicKeySize())
	assert.Len(t, keypair.PrivateKey, signer.PrivateKeySize())
	assert.Equal(t, "Dilithium2 (Simulated)", keypair.Algorithm)

	sig, err := signer.Sign(keypair.PrivateKey, []byte("message"))
	require.NoError(t, err)
	assert.Len(t, sig, signer.SignatureSize())

	// Documented simulation limitation: every signature verifies.
	valid, err := signer.Verify(keypair.PublicKey, []byte("message"), sig)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = signer.Verify(keypair.PublicKey, []byte("tampered"), sig)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "simulated", provider: "simulated"},
		{name: "unknown provider", provider: "hardware", wantErr: true},
		{name: "empty provider", provider: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kem, signer, err := Select(models.CryptoConfig{
				Provider:     tt.provider,
				KEMAlgorithm: "MLKEM768",
				SIGAlgorithm: "Ed25519-Dilithium2",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, kem)
			assert.NotNil(t, signer)
		})
	}
}
