// Package archive seals verified receipt chains into content-addressed
// snapshot bundles and ships them to a storage sink (filesystem, S3, or
// GCS), so a host can retain offsite copies for later audit.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
	"github.com/tracefoundry/receiptchain/pkg/receipt"
	"github.com/tracefoundry/receiptchain/pkg/verifier"
)

// Snapshot is a sealed, self-describing copy of a chain at a point in time.
type Snapshot struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	ReceiptCount uint64            `json:"receiptCount"`
	HeadDigest   string            `json:"headDigest"`
	Receipts     []receipt.Receipt `json:"receipts"`
	// SnapshotHash is the canonical digest of every field above it.
	SnapshotHash string `json:"snapshotHash"`
}

// Exporter seals chains into snapshots. A chain that does not verify is
// refused: an archive of tampered data would launder the tampering.
type Exporter struct {
	verifier *verifier.Verifier
	sink     Sink
}

// NewExporter creates an Exporter writing to sink. A nil hasher selects the
// default digest algorithm.
func NewExporter(sink Sink, h *canonicalize.Hasher) *Exporter {
	return &Exporter{
		verifier: verifier.New(h),
		sink:     sink,
	}
}

// Export verifies the chain, seals it into a Snapshot, and writes it to the
// sink as canonical JSON under "<id>.snapshot.json".
func (e *Exporter) Export(ctx context.Context, chain []receipt.Receipt) (*Snapshot, error) {
	report := e.verifier.Verify(chain)
	if !report.Valid {
		return nil, fmt.Errorf("archive: refusing to export invalid chain (%d violations)", len(report.Errors))
	}

	head := receipt.GenesisDigest
	if len(chain) > 0 {
		head = chain[len(chain)-1].SelfDigest
	}

	snap := &Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		ReceiptCount: uint64(len(chain)),
		HeadDigest:   head,
		Receipts:     chain,
	}

	hash, err := canonicalize.CanonicalHash(struct {
		ID           string            `json:"id"`
		CreatedAt    time.Time         `json:"createdAt"`
		ReceiptCount uint64            `json:"receiptCount"`
		HeadDigest   string            `json:"headDigest"`
		Receipts     []receipt.Receipt `json:"receipts"`
	}{snap.ID, snap.CreatedAt, snap.ReceiptCount, snap.HeadDigest, snap.Receipts})
	if err != nil {
		return nil, fmt.Errorf("archive: seal: %w", err)
	}
	snap.SnapshotHash = hash

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("archive: encode: %w", err)
	}

	key := snap.ID + ".snapshot.json"
	if err := e.sink.Store(ctx, key, data); err != nil {
		return nil, fmt.Errorf("archive: store: %w", err)
	}
	return snap, nil
}
