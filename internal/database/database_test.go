package database

import (
	"context"
	"path/filepath"
	"testing"

	"pqgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestNewRejectsBadPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("../escape.db")
	assert.Error(t, err)
}

func TestSaveAndFetchKEMOperations(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	for i, op := range []models.OperationKind{models.OpKEMKeygen, models.OpKEMEncapsulate, models.OpKEMDecapsulate} {
		err := db.SaveKEMOperation(ctx, &models.KEMOperationRecord{
			Operation:    op,
			PublicKey:    "pub",
			PrivateKey:   "priv",
			Ciphertext:   "ct",
			SharedSecret: "ss",
		})
		require.NoError(t, err, "row %d", i)
	}

	records, err := db.RecentKEMOperations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first
	assert.Equal(t, models.OpKEMDecapsulate, records[0].Operation)
	assert.Equal(t, models.OpKEMKeygen, records[2].Operation)
	assert.Equal(t, "priv", records[0].PrivateKey)
	assert.Equal(t, "ss", records[0].SharedSecret)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestRecentKEMOperationsHonorsLimit(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveKEMOperation(ctx, &models.KEMOperationRecord{
			Operation: models.OpKEMKeygen,
			PublicKey: "pub",
		}))
	}

	records, err := db.RecentKEMOperations(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Greater(t, records[0].ID, records[1].ID)
}

func TestSaveAndFetchSIGOperations(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	valid := true
	require.NoError(t, db.SaveSIGOperation(ctx, &models.SIGOperationRecord{
		Operation: models.OpSIGVerify,
		PublicKey: "pub",
		Message:   "hello",
		Signature: "sig",
		Valid:     &valid,
	}))
	require.NoError(t, db.SaveSIGOperation(ctx, &models.SIGOperationRecord{
		Operation:  models.OpSIGKeygen,
		PublicKey:  "pub",
		PrivateKey: "priv",
	}))

	records, err := db.RecentSIGOperations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.OpSIGKeygen, records[0].Operation)
	assert.Nil(t, records[0].Valid)

	assert.Equal(t, models.OpSIGVerify, records[1].Operation)
	require.NotNil(t, records[1].Valid)
	assert.True(t, *records[1].Valid)
	assert.Equal(t, "hello", records[1].Message)
}

func TestPerformanceStats(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	samples := []models.PerformanceSample{
		{Operation: models.OpKEMKeygen, DurationMs: 10, MemoryMB: 100, CPUPercent: 5},
		{Operation: models.OpKEMKeygen, DurationMs: 20, MemoryMB: 100, CPUPercent: 5},
		{Operation: models.OpSIGSign, DurationMs: 7, MemoryMB: 100, CPUPercent: 5},
	}
	for _, s := range samples {
		require.NoError(t, db.SavePerformanceMetric(ctx, s))
	}

	stats, err := db.PerformanceStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	keygen := stats[models.OpKEMKeygen]
	assert.Equal(t, int64(2), keygen.Count)
	assert.InDelta(t, 15.0, keygen.AvgDurationMs, 0.001)

	sign := stats[models.OpSIGSign]
	assert.Equal(t, int64(1), sign.Count)
	assert.InDelta(t, 7.0, sign.AvgDurationMs, 0.001)
}

func TestClearAll(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SaveKEMOperation(ctx, &models.KEMOperationRecord{Operation: models.OpKEMKeygen}))
	require.NoError(t, db.SaveSIGOperation(ctx, &models.SIGOperationRecord{Operation: models.OpSIGKeygen}))
	require.NoError(t, db.SavePerformanceMetric(ctx, models.PerformanceSample{Operation: models.OpKEMKeygen}))

	require.NoError(t, db.ClearAll(ctx))

	kemOps, err := db.RecentKEMOperations(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, kemOps)

	sigOps, err := db.RecentSIGOperations(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, sigOps)

	stats, err := db.PerformanceStats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestEncryptionAtRest(t *testing.T) {
	t.Setenv("PQGATE_ENABLE_ENCRYPTION", "true")
	t.Setenv("PQGATE_ENCRYPTION_SECRET", "0123456789abcdef0123456789abcdef")

	db := setupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SaveKEMOperation(ctx, &models.KEMOperationRecord{
		Operation:    models.OpKEMKeygen,
		PublicKey:    "pub",
		PrivateKey:   "super-secret-private-key",
		SharedSecret: "super-secret-shared",
	}))

	// Round trip through the encryptor is transparent to the caller.
	records, err := db.RecentKEMOperations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "super-secret-private-key", records[0].PrivateKey)
	assert.Equal(t, "super-secret-shared", records[0].SharedSecret)

	// The stored representation must not be the plaintext.
	var stored string
	err = db.db.QueryRowContext(ctx, "SELECT private_key FROM kem_operations LIMIT 1").Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-private-key", stored)
}

func TestEncryptionRequiresSecret(t *testing.T) {
	t.Setenv("PQGATE_ENABLE_ENCRYPTION", "true")
	t.Setenv("PQGATE_ENCRYPTION_SECRET", "")

	_, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PQGATE_ENCRYPTION_SECRET")
}

func TestEncryptorRoundTrip(t *testing.T) {
	t.Setenv("PQGATE_ENABLE_ENCRYPTION", "true")
	t.Setenv("PQGATE_ENCRYPTION_SECRET", "0123456789abcdef0123456789abcdef")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("plaintext value")
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext value", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "plaintext value", plaintext)

	// Empty strings pass through untouched.
	out, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
