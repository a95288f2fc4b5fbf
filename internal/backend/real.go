package backend

import (
	"fmt"

	"pqgate/internal/errors"
	"pqgate/internal/models"

	"github.com/katzenpost/hpqc/kem"
	kemschemes "github.com/katzenpost/hpqc/kem/schemes"
	"github.com/katzenpost/hpqc/sign"
	signschemes "github.com/katzenpost/hpqc/sign/schemes"
)

// realKEM wraps an hpqc KEM scheme. Keys cross this boundary as raw bytes;
// unmarshalling validates them against the configured scheme so a key from a
// different algorithm surfaces as an error instead of wrong output.
type realKEM struct {
	scheme kem.Scheme
}

// NewRealKEM resolves a KEM scheme by name from the hpqc registry.
func NewRealKEM(algorithm string) (KEM, error) {
	scheme := kemschemes.ByName(algorithm)
	if scheme == nil {
		return nil, fmt.Errorf("unknown KEM algorithm %q", algorithm)
	}
	return &realKEM{scheme: scheme}, nil
}

func (k *realKEM) Algorithm() string     { return k.scheme.Name() }
func (k *realKEM) PublicKeySize() int    { return k.scheme.PublicKeySize() }
func (k *realKEM) PrivateKeySize() int   { return k.scheme.PrivateKeySize() }
func (k *realKEM) CiphertextSize() int   { return k.scheme.CiphertextSize() }
func (k *realKEM) SharedSecretSize() int { return k.scheme.SharedKeySize() }

func (k *realKEM) Keygen() (*models.Keypair, error) {
	pub, priv, err := k.scheme.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("keypair generation failed: %w", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	privBytes, err := priv.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	return &models.Keypair{
		PublicKey:  pubBytes,
		PrivateKey: privBytes,
		Algorithm:  k.scheme.Name(),
	}, nil
}

func (k *realKEM) Encapsulate(publicKey []byte) (*models.EncapsulationResult, error) {
	if len(publicKey) != k.scheme.PublicKeySize() {
		return nil, errors.NewAlgorithmMismatchError(k.scheme.Name(),
			fmt.Sprintf("public key is %d bytes, want %d", len(publicKey), k.scheme.PublicKeySize()))
	}
	pub, err := k.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, errors.NewAlgorithmMismatchError(k.scheme.Name(), err.Error())
	}
	ct, ss, err := k.scheme.Encapsulate(pub)
	if err != nil {
		return nil, fmt.Errorf("encapsulation failed: %w", err)
	}
	return &models.EncapsulationResult{Ciphertext: ct, SharedSecret: ss}, nil
}

func (k *realKEM) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	if len(privateKey) != k.scheme.PrivateKeySize() {
		return nil, errors.NewAlgorithmMismatchError(k.scheme.Name(),
			fmt.Sprintf("private key is %d bytes, want %d", len(privateKey), k.scheme.PrivateKeySize()))
	}
	priv, err := k.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, errors.NewAlgorithmMismatchError(k.scheme.Name(), err.Error())
	}
	if len(ciphertext) != k.scheme.CiphertextSize() {
		return nil, fmt.Errorf("ciphertext is %d bytes, want %d", len(ciphertext), k.scheme.CiphertextSize())
	}
	ss, err := k.scheme.Decapsulate(priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulation failed: %w", err)
	}
	return ss, nil
}

// realSigner wraps an hpqc signature scheme.
type realSigner struct {
	scheme sign.Scheme
}

// NewRealSigner resolves a signature scheme by name from the hpqc registry.
func NewRealSigner(algorithm string) (Signer, error) {
	scheme := signschemes.ByName(algorithm)
	if scheme == nil {
		return nil, fmt.Errorf("unknown signature algorithm %q", algorithm)
	}
	return &realSigner{scheme: scheme}, nil
}

func (s *realSigner) Algorithm() string   { return s.scheme.Name() }
func (s *realSigner) PublicKeySize() int  { return s.scheme.PublicKeySize() }
func (s *realSigner) PrivateKeySize() int { return s.scheme.PrivateKeySize() }
func (s *realSigner) SignatureSize() int  { return s.scheme.SignatureSize() }

func (s *realSigner) Keygen() (*models.Keypair, error) {
	pub, priv, err := s.scheme.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("keypair generation failed: %w", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	privBytes, err := priv.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	return &models.Keypair{
		PublicKey:  pubBytes,
		PrivateKey: privBytes,
		Algorithm:  s.scheme.Name(),
	}, nil
}

func (s *realSigner) Sign(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != s.scheme.PrivateKeySize() {
		return nil, errors.NewAlgorithmMismatchError(s.scheme.Name(),
			fmt.Sprintf("private key is %d bytes, want %d", len(privateKey), s.scheme.PrivateKeySize()))
	}
	priv, err := s.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, errors.NewAlgorithmMismatchError(s.scheme.Name(), err.Error())
	}
	// hpqc Sign panics on a nil or mismatched key; the size and unmarshal
	// checks above keep that path unreachable for caller-supplied bytes.
	return s.scheme.Sign(priv, message, nil), nil
}

func (s *realSigner) Verify(publicKey, message, signature []byte) (bool, error) {
	if len(publicKey) != s.scheme.PublicKeySize() {
		return false, errors.NewAlgorithmMismatchError(s.scheme.Name(),
			fmt.Sprintf("public key is %d bytes, want %d", len(publicKey), s.scheme.PublicKeySize()))
	}
	pub, err := s.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false, errors.NewAlgorithmMismatchError(s.scheme.Name(), err.Error())
	}
	if len(signature) != s.scheme.SignatureSize() {
		// A wrong-length signature can never verify; report invalid rather
		// than erroring so the result stays pure in (pub, msg, sig).
		return false, nil
	}
	return s.scheme.Verify(pub, message, signature, nil), nil
}
