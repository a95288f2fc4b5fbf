// Command demo exercises the gateway end to end without the HTTP server: a
// KEM roundtrip, a sign/verify cycle with a tampered-message check, and a
// resource report. It defaults to the simulated provider so it runs anywhere.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"pqgate/internal/backend"
	"pqgate/internal/database"
	"pqgate/internal/gateway"
	"pqgate/internal/models"
	"pqgate/internal/monitor"

	"github.com/sirupsen/logrus"
)

func main() {
	provider := flag.String("provider", "simulated", "Crypto provider: real or simulated")
	kemAlg := flag.String("kem", "MLKEM768", "KEM algorithm (real provider only)")
	sigAlg := flag.String("sig", "Ed25519-Dilithium2", "Signature algorithm (real provider only)")
	dbPath := flag.String("db", "", "Optional history database path")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	kem, signer, err := backend.Select(models.CryptoConfig{
		Provider:     *provider,
		KEMAlgorithm: *kemAlg,
		SIGAlgorithm: *sigAlg,
	})
	if err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}

	var recorder gateway.Recorder
	var db *database.Database
	if *dbPath != "" {
		db, err = database.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open history store: %v", err)
		}
		defer db.Close()
		recorder = &dbRecorder{db: db}
	}

	mon := monitor.New(models.BudgetConfig{})
	gw := gateway.New(kem, signer, mon, recorder, logger)
	ctx := context.Background()

	fmt.Printf("Provider: %s\n", *provider)
	fmt.Printf("KEM:      %s\n", kem.Algorithm())
	fmt.Printf("SIG:      %s\n\n", signer.Algorithm())

	if err := kemRoundtrip(ctx, gw); err != nil {
		log.Fatalf("KEM roundtrip failed: %v", err)
	}
	if err := signVerify(ctx, gw); err != nil {
		log.Fatalf("Sign/verify failed: %v", err)
	}

	usage := mon.Sample()
	budget := mon.Budget()
	fmt.Printf("Resources: %.1f MB of %d MB, CPU %.1f%% of %.0f%%\n",
		usage.MemoryMB, budget.MaxMemoryMB, usage.CPUPercent, budget.MaxCPUPercent)

	if db != nil {
		dumpHistory(ctx, db)
	}
}

func kemRoundtrip(ctx context.Context, gw *gateway.Gateway) error {
	keypair, keygenMs, err := gw.KEMKeygen(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("KEM keygen        %8.3f ms\n", keygenMs)

	enc, encapMs, err := gw.KEMEncapsulate(ctx, keypair.PublicKey)
	if err != nil {
		return err
	}
	fmt.Printf("KEM encapsulate   %8.3f ms\n", encapMs)

	dec, decapMs, err := gw.KEMDecapsulate(ctx, keypair.PrivateKey, enc.Ciphertext)
	if err != nil {
		return err
	}
	fmt.Printf("KEM decapsulate   %8.3f ms\n", decapMs)

	if dec.SharedSecret == enc.SharedSecret {
		fmt.Println("Shared secrets match")
	} else {
		fmt.Println("Shared secrets DIFFER (expected under the simulated provider)")
	}
	fmt.Println()
	return nil
}

func signVerify(ctx context.Context, gw *gateway.Gateway) error {
	const message = "resource-constrained signing demo"

	keypair, keygenMs, err := gw.SIGKeygen(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("SIG keygen        %8.3f ms\n", keygenMs)

	signed, signMs, err := gw.SIGSign(ctx, keypair.PrivateKey, message)
	if err != nil {
		return err
	}
	fmt.Printf("SIG sign          %8.3f ms\n", signMs)

	verified, verifyMs, err := gw.SIGVerify(ctx, keypair.PublicKey, message, signed.Signature)
	if err != nil {
		return err
	}
	fmt.Printf("SIG verify        %8.3f ms  valid=%v\n", verifyMs, verified.IsValid)

	tampered, _, err := gw.SIGVerify(ctx, keypair.PublicKey, message+" (tampered)", signed.Signature)
	if err != nil {
		return err
	}
	fmt.Printf("Tampered message  valid=%v\n\n", tampered.IsValid)

	if tampered.IsValid {
		fmt.Fprintln(os.Stderr, "note: the simulated provider accepts every signature")
	}
	return nil
}

func dumpHistory(ctx context.Context, db *database.Database) {
	stats, err := db.PerformanceStats(ctx)
	if err != nil {
		log.Printf("Failed to read performance stats: %v", err)
		return
	}

	fmt.Println("\nRecorded operations:")
	for _, op := range append(models.KEMOperations, models.SIGOperations...) {
		if s, ok := stats[op]; ok {
			fmt.Printf("  %-16s count=%d avg=%.3f ms\n", op, s.Count, s.AvgDurationMs)
		}
	}
}

type dbRecorder struct {
	db *database.Database
}

func (r *dbRecorder) RecordSample(ctx context.Context, sample models.PerformanceSample) {
	if err := r.db.SavePerformanceMetric(ctx, sample); err != nil {
		log.Printf("Failed to record sample: %v", err)
	}
}
