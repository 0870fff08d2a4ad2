package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tracefoundry/receiptchain/pkg/receipt"
)

// PostgresStore persists the chain in Postgres for hosts that already run
// one. Import github.com/lib/pq for the driver; the caller owns the handle's
// lifecycle and connection settings.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing Postgres handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Init creates the receipts table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS receipts (
		idx BIGINT PRIMARY KEY,
		ts BIGINT NOT NULL,
		operation TEXT NOT NULL,
		input_digest TEXT NOT NULL,
		output_digest TEXT NOT NULL,
		prev_digest TEXT NOT NULL,
		self_digest TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStoreUnreadable, err)
	}
	return nil
}

// Load returns the committed chain in index order.
func (s *PostgresStore) Load(ctx context.Context) ([]receipt.Receipt, error) {
	query := `
		SELECT idx, ts, operation, input_digest, output_digest, prev_digest, self_digest
		FROM receipts
		ORDER BY idx ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	defer func() { _ = rows.Close() }()

	receipts := make([]receipt.Receipt, 0)
	for rows.Next() {
		var r receipt.Receipt
		if err := rows.Scan(&r.Index, &r.Timestamp, &r.Operation, &r.InputDigest, &r.OutputDigest, &r.PreviousDigest, &r.SelfDigest); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStoreCorrupted, err)
		}
		if r.Index != uint64(len(receipts)) {
			return nil, fmt.Errorf("%w: index %d where %d expected", ErrStoreCorrupted, r.Index, len(receipts))
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	return receipts, nil
}

// Append durably inserts one receipt.
func (s *PostgresStore) Append(ctx context.Context, r receipt.Receipt) error {
	query := `
		INSERT INTO receipts (idx, ts, operation, input_digest, output_digest, prev_digest, self_digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		r.Index, r.Timestamp, r.Operation, r.InputDigest, r.OutputDigest, r.PreviousDigest, r.SelfDigest,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	return nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
