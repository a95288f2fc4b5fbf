package backend

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"pqgate/internal/models"
)

// Simulation mode exists so the full request path can be exercised on hosts
// where real post-quantum key material is not wanted. It honors the shape
// contracts (byte lengths, deterministic decapsulation) but provides NO
// cryptographic guarantees:
//
//   - Decapsulate returns a digest of (private key, ciphertext), so repeated
//     calls agree with each other but NOT with the secret Encapsulate produced.
//   - Verify unconditionally reports true.
//
// Both limitations are documented behavior, not bugs. Callers that need the
// KEM round-trip invariant or real signature checks must run the real provider.

// Reference sizes, matching Kyber512 and Dilithium2 key dimensions.
const (
	simKEMPublicKeySize  = 800
	simKEMPrivateKeySize = 1632
	simKEMCiphertextSize = 768
	simSharedSecretSize  = 32

	simSIGPublicKeySize  = 1952
	simSIGPrivateKeySize = 4000
	simSignatureSize     = 2701
)

const (
	simKEMAlgorithm = "Kyber512 (Simulated)"
	simSIGAlgorithm = "Dilithium2 (Simulated)"
)

type simulatedKEM struct{}

// NewSimulatedKEM returns the simulation-mode KEM.
func NewSimulatedKEM() KEM {
	return &simulatedKEM{}
}

func (k *simulatedKEM) Algorithm() string     { return simKEMAlgorithm }
func (k *simulatedKEM) PublicKeySize() int    { return simKEMPublicKeySize }
func (k *simulatedKEM) PrivateKeySize() int   { return simKEMPrivateKeySize }
func (k *simulatedKEM) CiphertextSize() int   { return simKEMCiphertextSize }
func (k *simulatedKEM) SharedSecretSize() int { return simSharedSecretSize }

func (k *simulatedKEM) Keygen() (*models.Keypair, error) {
	pub, err := randomBytes(simKEMPublicKeySize)
	if err != nil {
		return nil, err
	}
	priv, err := randomBytes(simKEMPrivateKeySize)
	if err != nil {
		return nil, err
	}
	return &models.Keypair{PublicKey: pub, PrivateKey: priv, Algorithm: simKEMAlgorithm}, nil
}

func (k *simulatedKEM) Encapsulate(publicKey []byte) (*models.EncapsulationResult, error) {
	ct, err := randomBytes(simKEMCiphertextSize)
	if err != nil {
		return nil, err
	}
	ss, err := randomBytes(simSharedSecretSize)
	if err != nil {
		return nil, err
	}
	return &models.EncapsulationResult{Ciphertext: ct, SharedSecret: ss}, nil
}

// Decapsulate derives the secret from its inputs so it is a pure function of
// (privateKey, ciphertext), like the real thing. It cannot recover the secret
// Encapsulate produced; see the package note above.
func (k *simulatedKEM) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	h := sha256.New()
	h.Write(privateKey)
	h.Write(ciphertext)
	return h.Sum(nil), nil
}

type simulatedSigner struct{}

// NewSimulatedSigner returns the simulation-mode signer.
func NewSimulatedSigner() Signer {
	return &simulatedSigner{}
}

func (s *simulatedSigner) Algorithm() string   { return simSIGAlgorithm }
func (s *simulatedSigner) PublicKeySize() int  { return simSIGPublicKeySize }
func (s *simulatedSigner) PrivateKeySize() int { return simSIGPrivateKeySize }
func (s *simulatedSigner) SignatureSize() int  { return simSignatureSize }

func (s *simulatedSigner) Keygen() (*models.Keypair, error) {
	pub, err := randomBytes(simSIGPublicKeySize)
	if err != nil {
		return nil, err
	}
	priv, err := randomBytes(simSIGPrivateKeySize)
	if err != nil {
		return nil, err
	}
	return &models.Keypair{PublicKey: pub, PrivateKey: priv, Algorithm: simSIGAlgorithm}, nil
}

func (s *simulatedSigner) Sign(privateKey, message []byte) ([]byte, error) {
	return randomBytes(simSignatureSize)
}

// Verify always reports true in simulation mode. Callers relying on this for
// security properties get none.
func (s *simulatedSigner) Verify(publicKey, message, signature []byte) (bool, error) {
	return true, nil
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("entropy source failed: %w", err)
	}
	return buf, nil
}
