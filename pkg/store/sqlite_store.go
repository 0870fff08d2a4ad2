package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/tracefoundry/receiptchain/pkg/receipt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the chain in a local SQLite database. The index is
// the primary key, so a committed receipt can never be silently overwritten;
// full synchronous mode keeps Append crash-durable.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and migrates the
// schema. WAL journaling plus synchronous=FULL gives O(1) durable appends
// without ever rewriting committed pages in place.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	// The path is spliced into a file: URI, so query-significant bytes in it
	// ('?', '#', '%') must be escaped or the durability pragmas are lost.
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     path,
		RawQuery: "_pragma=journal_mode(wal)&_pragma=synchronous(full)",
	}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an existing handle and migrates the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStoreUnreadable, err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS receipts (
		idx INTEGER PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		operation TEXT NOT NULL,
		input_digest TEXT NOT NULL,
		output_digest TEXT NOT NULL,
		prev_digest TEXT NOT NULL,
		self_digest TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Load returns the committed chain in index order.
func (s *SQLiteStore) Load(ctx context.Context) ([]receipt.Receipt, error) {
	query := `
		SELECT idx, timestamp, operation, input_digest, output_digest, prev_digest, self_digest
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

// Append durably inserts one receipt. The primary key rejects any attempt to
// rewrite a committed index.
func (s *SQLiteStore) Append(ctx context.Context, r receipt.Receipt) error {
	query := `
		INSERT INTO receipts (idx, timestamp, operation, input_digest, output_digest, prev_digest, self_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.Index, r.Timestamp, r.Operation, r.InputDigest, r.OutputDigest, r.PreviousDigest, r.SelfDigest,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
