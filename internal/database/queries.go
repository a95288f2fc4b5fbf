package database

import (
	"context"
	"fmt"

	"pqgate/internal/models"
)

// SaveKEMOperation appends one KEM operation row. Private keys and shared
// secrets pass through the at-rest encryptor when enabled.
func (d *Database) SaveKEMOperation(ctx context.Context, rec *models.KEMOperationRecord) error {
	privateKey, err := d.encryptor.EncryptIfEnabled(rec.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}
	sharedSecret, err := d.encryptor.EncryptIfEnabled(rec.SharedSecret)
	if err != nil {
		return fmt.Errorf("failed to encrypt shared secret: %w", err)
	}

	query := `
		INSERT INTO kem_operations (operation_type, public_key, private_key, ciphertext, shared_secret)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		string(rec.Operation), rec.PublicKey, privateKey, rec.Ciphertext, sharedSecret)
	if err != nil {
		return fmt.Errorf("failed to save KEM operation: %w", err)
	}
	return nil
}

// SaveSIGOperation appends one signature operation row.
func (d *Database) SaveSIGOperation(ctx context.Context, rec *models.SIGOperationRecord) error {
	privateKey, err := d.encryptor.EncryptIfEnabled(rec.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}

	query := `
		INSERT INTO sig_operations (operation_type, public_key, private_key, message, signature, is_valid)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		string(rec.Operation), rec.PublicKey, privateKey, rec.Message, rec.Signature, rec.Valid)
	if err != nil {
		return fmt.Errorf("failed to save SIG operation: %w", err)
	}
	return nil
}

// SavePerformanceMetric appends one timing sample.
func (d *Database) SavePerformanceMetric(ctx context.Context, sample models.PerformanceSample) error {
	query := `
		INSERT INTO performance_metrics (operation_type, duration_ms, memory_mb, cpu_percent)
		VALUES (?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		string(sample.Operation), sample.DurationMs, sample.MemoryMB, sample.CPUPercent)
	if err != nil {
		return fmt.Errorf("failed to save performance metric: %w", err)
	}
	return nil
}

// RecentKEMOperations returns up to limit rows, newest first.
func (d *Database) RecentKEMOperations(ctx context.Context, limit int) ([]models.KEMOperationRecord, error) {
	query := `
		SELECT id, operation_type, public_key, private_key, ciphertext, shared_secret, created_at
		FROM kem_operations
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query KEM operations: %w", err)
	}
	defer rows.Close()

	var records []models.KEMOperationRecord
	for rows.Next() {
		var rec models.KEMOperationRecord
		var op string
		if err := rows.Scan(&rec.ID, &op, &rec.PublicKey, &rec.PrivateKey,
			&rec.Ciphertext, &rec.SharedSecret, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan KEM operation: %w", err)
		}
		rec.Operation = models.OperationKind(op)

		if rec.PrivateKey, err = d.encryptor.DecryptIfEnabled(rec.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		if rec.SharedSecret, err = d.encryptor.DecryptIfEnabled(rec.SharedSecret); err != nil {
			return nil, fmt.Errorf("failed to decrypt shared secret: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentSIGOperations returns up to limit rows, newest first.
func (d *Database) RecentSIGOperations(ctx context.Context, limit int) ([]models.SIGOperationRecord, error) {
	query := `
		SELECT id, operation_type, public_key, private_key, message, signature, is_valid, created_at
		FROM sig_operations
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query SIG operations: %w", err)
	}
	defer rows.Close()

	var records []models.SIGOperationRecord
	for rows.Next() {
		var rec models.SIGOperationRecord
		var op string
		if err := rows.Scan(&rec.ID, &op, &rec.PublicKey, &rec.PrivateKey,
			&rec.Message, &rec.Signature, &rec.Valid, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan SIG operation: %w", err)
		}
		rec.Operation = models.OperationKind(op)

		if rec.PrivateKey, err = d.encryptor.DecryptIfEnabled(rec.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PerformanceStats aggregates average duration and call count per operation.
func (d *Database) PerformanceStats(ctx context.Context) (map[models.OperationKind]models.OperationStats, error) {
	query := `
		SELECT operation_type, AVG(duration_ms), COUNT(*)
		FROM performance_metrics
		GROUP BY operation_type
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[models.OperationKind]models.OperationStats)
	for rows.Next() {
		var op string
		var s models.OperationStats
		if err := rows.Scan(&op, &s.AvgDurationMs, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan performance stats: %w", err)
		}
		stats[models.OperationKind(op)] = s
	}
	return stats, rows.Err()
}

// ClearAll wipes every table. This is the only destructive operation the
// store offers.
func (d *Database) ClearAll(ctx context.Context) error {
	for _, table := range []string{"kem_operations", "sig_operations", "performance_metrics"} {
		if _, err := d.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
