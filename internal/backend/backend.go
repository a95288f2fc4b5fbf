// Package backend provides the cryptographic providers behind the gateway:
// a real one backed by hpqc's post-quantum scheme registries and a simulated
// one for hosts where real key material is not wanted.
//
// The variant is chosen exactly once, at startup, from explicit configuration.
// Nothing in this package consults process-global state per call.
package backend

import (
	"fmt"

	"pqgate/internal/constants"
	"pqgate/internal/models"
)

// KEM is the key-encapsulation capability.
type KEM interface {
	// Algorithm returns the identifier stamped on generated keypairs.
	Algorithm() string
	Keygen() (*models.Keypair, error)
	Encapsulate(publicKey []byte) (*models.EncapsulationResult, error)
	Decapsulate(privateKey, ciphertext []byte) ([]byte, error)

	// Declared sizes, in bytes. Callers must treat these as the source of
	// truth; nothing else hard-codes key dimensions.
	PublicKeySize() int
	PrivateKeySize() int
	CiphertextSize() int
	SharedSecretSize() int
}

// Signer is the digital-signature capability.
type Signer interface {
	Algorithm() string
	Keygen() (*models.Keypair, error)
	Sign(privateKey, message []byte) ([]byte, error)
	Verify(publicKey, message, signature []byte) (bool, error)

	PublicKeySize() int
	PrivateKeySize() int
	SignatureSize() int
}

// Select builds the KEM and signer pair for the configured provider. It is
// called once during startup; the choice never changes per call.
func Select(cfg models.CryptoConfig) (KEM, Signer, error) {
	switch cfg.Provider {
	case constants.ProviderReal:
		kem, err := NewRealKEM(cfg.KEMAlgorithm)
		if err != nil {
			return nil, nil, err
		}
		signer, err := NewRealSigner(cfg.SIGAlgorithm)
		if err != nil {
			return nil, nil, err
		}
		return kem, signer, nil
	case constants.ProviderSimulated:
		return NewSimulatedKEM(), NewSimulatedSigner(), nil
	default:
		return nil, nil, fmt.Errorf("unknown crypto provider %q (want %q or %q)",
			cfg.Provider, constants.ProviderReal, constants.ProviderSimulated)
	}
}
