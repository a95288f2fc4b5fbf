// Package gateway wraps each cryptographic backend call with a pre-flight
// resource-budget check, timing instrumentation, transport encoding, and
// structured error shaping. It is the only component with policy logic;
// persistence and HTTP routing live with its callers.
package gateway

import (
	"context"
	"fmt"
	"time"

	"pqgate/internal/backend"
	"pqgate/internal/errors"
	"pqgate/internal/models"
	"pqgate/internal/validation"

	"github.com/sirupsen/logrus"
)

// ResourceChecker is satisfied by monitor.Monitor.
type ResourceChecker interface {
	WithinBudget() (bool, models.ResourceUsage)
	Sample() models.ResourceUsage
	Budget() models.BudgetConfig
}

// Recorder receives exactly one performance sample per successful gateway
// call. Failed calls emit nothing.
type Recorder interface {
	RecordSample(ctx context.Context, sample models.PerformanceSample)
}

// Gateway orchestrates resource check, backend dispatch, timing, and
// encoding. It holds no mutable state between calls and no key material;
// concurrent use needs no locking.
type Gateway struct {
	kem      backend.KEM
	signer   backend.Signer
	monitor  ResourceChecker
	recorder Recorder
	logger   *logrus.Logger
}

// New wires a gateway. The backend pair is fixed for the gateway's lifetime.
func New(kem backend.KEM, signer backend.Signer, monitor ResourceChecker, recorder Recorder, logger *logrus.Logger) *Gateway {
	return &Gateway{
		kem:      kem,
		signer:   signer,
		monitor:  monitor,
		recorder: recorder,
		logger:   logger,
	}
}

// KEMAlgorithm returns the active KEM algorithm identifier.
func (g *Gateway) KEMAlgorithm() string { return g.kem.Algorithm() }

// SIGAlgorithm returns the active signature algorithm identifier.
func (g *Gateway) SIGAlgorithm() string { return g.signer.Algorithm() }

// KEMKeygen generates a fresh KEM keypair. Every call produces new random
// keys.
func (g *Gateway) KEMKeygen(ctx context.Context) (*models.KeypairResponse, float64, error) {
	if err := g.checkBudget(models.OpKEMKeygen); err != nil {
		return nil, 0, err
	}

	var keypair *models.Keypair
	durationMs, err := g.timed(models.OpKEMKeygen, func() error {
		var err error
		keypair, err = g.kem.Keygen()
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpKEMKeygen, durationMs)
	return &models.KeypairResponse{
		PublicKey:  validation.Encode(keypair.PublicKey),
		PrivateKey: validation.Encode(keypair.PrivateKey),
		Algorithm:  keypair.Algorithm,
	}, durationMs, nil
}

// KEMEncapsulate derives a fresh shared secret for the given public key.
// Repeated calls with the same key produce different ciphertexts and secrets.
func (g *Gateway) KEMEncapsulate(ctx context.Context, publicKeyB64 string) (*models.EncapsulateResponse, float64, error) {
	if err := g.checkBudget(models.OpKEMEncapsulate); err != nil {
		return nil, 0, err
	}

	publicKey, err := validation.DecodeRequiredField("public_key", publicKeyB64)
	if err != nil {
		return nil, 0, err
	}

	var result *models.EncapsulationResult
	durationMs, err := g.timed(models.OpKEMEncapsulate, func() error {
		var err error
		result, err = g.kem.Encapsulate(publicKey)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpKEMEncapsulate, durationMs)
	return &models.EncapsulateResponse{
		Ciphertext:   validation.Encode(result.Ciphertext),
		SharedSecret: validation.Encode(result.SharedSecret),
	}, durationMs, nil
}

// KEMDecapsulate recovers the shared secret for a ciphertext. Under the real
// provider this is a pure function of (privateKey, ciphertext) and returns
// the same secret the matching encapsulation produced.
func (g *Gateway) KEMDecapsulate(ctx context.Context, privateKeyB64, ciphertextB64 string) (*models.DecapsulateResponse, float64, error) {
	if err := g.checkBudget(models.OpKEMDecapsulate); err != nil {
		return nil, 0, err
	}

	privateKey, err := validation.DecodeRequiredField("private_key", privateKeyB64)
	if err != nil {
		return nil, 0, err
	}
	ciphertext, err := validation.DecodeRequiredField("ciphertext", ciphertextB64)
	if err != nil {
		return nil, 0, err
	}

	var sharedSecret []byte
	durationMs, err := g.timed(models.OpKEMDecapsulate, func() error {
		var err error
		sharedSecret, err = g.kem.Decapsulate(privateKey, ciphertext)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpKEMDecapsulate, durationMs)
	return &models.DecapsulateResponse{
		SharedSecret: validation.Encode(sharedSecret),
	}, durationMs, nil
}

// SIGKeygen generates a fresh signature keypair.
func (g *Gateway) SIGKeygen(ctx context.Context) (*models.KeypairResponse, float64, error) {
	if err := g.checkBudget(models.OpSIGKeygen); err != nil {
		return nil, 0, err
	}

	var keypair *models.Keypair
	durationMs, err := g.timed(models.OpSIGKeygen, func() error {
		var err error
		keypair, err = g.signer.Keygen()
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpSIGKeygen, durationMs)
	return &models.KeypairResponse{
		PublicKey:  validation.Encode(keypair.PublicKey),
		PrivateKey: validation.Encode(keypair.PrivateKey),
		Algorithm:  keypair.Algorithm,
	}, durationMs, nil
}

// SIGSign signs a plain-text message with the given private key.
func (g *Gateway) SIGSign(ctx context.Context, privateKeyB64, message string) (*models.SignResponse, float64, error) {
	if err := g.checkBudget(models.OpSIGSign); err != nil {
		return nil, 0, err
	}

	privateKey, err := validation.DecodeRequiredField("private_key", privateKeyB64)
	if err != nil {
		return nil, 0, err
	}
	if err := validation.ValidateMessage(message); err != nil {
		return nil, 0, err
	}

	var signature []byte
	durationMs, err := g.timed(models.OpSIGSign, func() error {
		var err error
		signature, err = g.signer.Sign(privateKey, []byte(message))
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpSIGSign, durationMs)
	return &models.SignResponse{
		Signature: validation.Encode(signature),
		Message:   message,
	}, durationMs, nil
}

// SIGVerify checks a signature over a message. Under the real provider the
// outcome depends only on (publicKey, message, signature).
func (g *Gateway) SIGVerify(ctx context.Context, publicKeyB64, message, signatureB64 string) (*models.VerifyResponse, float64, error) {
	if err := g.checkBudget(models.OpSIGVerify); err != nil {
		return nil, 0, err
	}

	publicKey, err := validation.DecodeRequiredField("public_key", publicKeyB64)
	if err != nil {
		return nil, 0, err
	}
	if err := validation.ValidateMessage(message); err != nil {
		return nil, 0, err
	}
	signature, err := validation.DecodeRequiredField("signature", signatureB64)
	if err != nil {
		return nil, 0, err
	}

	var valid bool
	durationMs, err := g.timed(models.OpSIGVerify, func() error {
		var err error
		valid, err = g.signer.Verify(publicKey, []byte(message), signature)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	g.emitSample(ctx, models.OpSIGVerify, durationMs)
	return &models.VerifyResponse{
		IsValid: valid,
		Message: message,
	}, durationMs, nil
}

// checkBudget runs the pre-flight resource gate. On violation no backend call
// is made and no sample is emitted.
func (g *Gateway) checkBudget(op models.OperationKind) error {
	ok, usage := g.monitor.WithinBudget()
	if ok {
		return nil
	}

	budget := g.monitor.Budget()
	g.logger.WithFields(logrus.Fields{
		"operation":   op,
		"memory_mb":   usage.MemoryMB,
		"cpu_percent": usage.CPUPercent,
	}).Warn("Operation rejected by resource budget")

	return errors.NewResourceExceededError(
		usage.MemoryMB, float64(budget.MaxMemoryMB),
		usage.CPUPercent, budget.MaxCPUPercent,
	)
}

// timed runs one backend call on the monotonic clock. A panic from the
// provider is converted into a BACKEND_FAILURE; nothing escapes the call.
func (g *Gateway) timed(op models.OperationKind, fn func() error) (durationMs float64, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			g.logger.WithField("operation", op).Errorf("Backend panic: %v", r)
			err = errors.NewBackendError(string(op), fmt.Errorf("backend panic: %v", r))
		}
	}()

	callErr := fn()
	durationMs = float64(time.Since(start).Microseconds()) / 1000

	if callErr != nil {
		if _, ok := callErr.(*errors.AppError); ok {
			// Algorithm mismatches keep their own code.
			return 0, callErr
		}
		return 0, errors.NewBackendError(string(op), callErr)
	}
	return durationMs, nil
}

// emitSample reports the call to the recorder, tagged with a fresh resource
// reading. The gateway itself retains no history.
func (g *Gateway) emitSample(ctx context.Context, op models.OperationKind, durationMs float64) {
	if g.recorder == nil {
		return
	}
	usage := g.monitor.Sample()
	g.recorder.RecordSample(ctx, models.PerformanceSample{
		Operation:  op,
		DurationMs: durationMs,
		MemoryMB:   usage.MemoryMB,
		CPUPercent: usage.CPUPercent,
	})
}
