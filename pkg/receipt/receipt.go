// Package receipt defines the immutable, hash-linked record of a single
// AI-assisted operation and the factory that mints new records.
//
// A Receipt is created exactly once, persisted immediately, and never
// mutated afterwards. Receipts link into a chain: each record carries the
// digest of its predecessor, so any alteration, reordering, or deletion of
// committed records is detectable by recomputation.
package receipt

import (
	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
)

// GenesisDigest is the previousDigest sentinel carried by the first
// receipt of a chain (index 0).
const GenesisDigest = "0"

// Receipt is one immutable record of a single operation.
type Receipt struct {
	Index          uint64 `json:"index"`
	Timestamp      int64  `json:"timestamp"` // wall-clock milliseconds at creation
	Operation      string `json:"operation"` // caller-supplied descriptor, opaque here
	InputDigest    string `json:"inputDigest"`
	OutputDigest   string `json:"outputDigest"`
	PreviousDigest string `json:"previousDigest"`
	SelfDigest     string `json:"selfDigest"`
}

// digestPayload is the canonical hashing view of a receipt: every field
// except SelfDigest. Field names are fixed by the persisted format; JCS
// ordering makes the struct layout irrelevant to the digest.
type digestPayload struct {
	Index          uint64 `json:"index"`
	Timestamp      int64  `json:"timestamp"`
	Operation      string `json:"operation"`
	InputDigest    string `json:"inputDigest"`
	OutputDigest   string `json:"outputDigest"`
	PreviousDigest string `json:"previousDigest"`
}

// ComputeSelfDigest recomputes the digest a receipt's SelfDigest must equal:
// the digest of the canonical encoding of all other fields.
func ComputeSelfDigest(r Receipt, h *canonicalize.Hasher) (string, error) {
	return h.CanonicalSum(digestPayload{
		Index:          r.Index,
		Timestamp:      r.Timestamp,
		Operation:      r.Operation,
		InputDigest:    r.InputDigest,
		OutputDigest:   r.OutputDigest,
		PreviousDigest: r.PreviousDigest,
	})
}
