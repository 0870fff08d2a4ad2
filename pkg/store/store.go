// Package store implements durable, ordered, append-only persistence of the
// receipt chain.
//
// Every backend honors the same contract: Load returns the committed chain
// (empty if nothing was ever written), Append durably commits exactly one
// receipt such that a crash during the write can never corrupt or hide
// previously committed receipts, and nothing ever mutates or removes a
// committed record.
package store

import (
	"context"
	"errors"

	"github.com/tracefoundry/receiptchain/pkg/receipt"
)

var (
	// ErrStoreUnreadable: the underlying medium cannot be accessed
	// (permissions, missing disk). Distinct from corruption.
	ErrStoreUnreadable = errors.New("chain store: medium unreadable")

	// ErrStoreCorrupted: the persisted data exists but cannot be parsed as a
	// well-formed, index-contiguous receipt sequence. The default policy is
	// to fail closed rather than silently truncate.
	ErrStoreCorrupted = errors.New("chain store: persisted chain corrupted")

	// ErrAppendFailed: the durable write could not be completed. The caller
	// must not update any in-memory state when this is returned.
	ErrAppendFailed = errors.New("chain store: durable append failed")
)

// ChainStore is the durable home of the receipt sequence.
type ChainStore interface {
	// Load returns the committed chain in index order, or the empty sequence
	// if no store exists yet. Fails with ErrStoreCorrupted or
	// ErrStoreUnreadable.
	Load(ctx context.Context) ([]receipt.Receipt, error)

	// Append durably commits one receipt. After a nil return the receipt is
	// guaranteed recoverable by the next Load, even across a crash.
	Append(ctx context.Context, r receipt.Receipt) error

	// Close releases the underlying medium. Committed receipts need no
	// flush beyond the durability Append already guaranteed.
	Close() error
}
