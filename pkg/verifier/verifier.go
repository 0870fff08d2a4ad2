// Package verifier recomputes digests and links across a receipt chain and
// reports every discrepancy it finds.
//
// This package is intentionally minimal with ZERO storage, server, or network
// dependencies. It trusts only the digest primitives and the canonical
// receipt encoding, so a third party can audit a chain with nothing but this
// package and the persisted records.
//
// Integrity violations are data, not errors: detecting tampering is this
// component's purpose, not an exceptional condition, so Verify never fails —
// it always returns a report describing what it found.
package verifier

import (
	"fmt"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
	"github.com/tracefoundry/receiptchain/pkg/receipt"
)

// ViolationKind classifies one integrity violation.
type ViolationKind string

const (
	// KindDigestMismatch: a receipt's stored selfDigest does not equal the
	// digest recomputed from its own fields — the record was altered.
	KindDigestMismatch ViolationKind = "DIGEST_MISMATCH"
	// KindChainBroken: a receipt's previousDigest does not equal its
	// predecessor's selfDigest (or the genesis sentinel at index 0), or its
	// index is out of sequence — records were reordered, removed, or forged.
	KindChainBroken ViolationKind = "CHAIN_BROKEN"
)

// Violation is a single detected integrity violation.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Index  uint64        `json:"index"`
	Detail string        `json:"detail,omitempty"`
}

// Report is the structured output of chain verification.
type Report struct {
	Valid        bool        `json:"valid"`
	ReceiptCount uint64      `json:"receiptCount"`
	Errors       []Violation `json:"errors"`
}

// Verifier checks receipt chains. The zero value verifies SHA-256 chains.
type Verifier struct {
	hasher *canonicalize.Hasher
}

// New returns a Verifier using the given hasher. A nil hasher selects the
// default algorithm; the hasher must match the one the chain was built with.
func New(h *canonicalize.Hasher) *Verifier {
	if h == nil {
		h = canonicalize.MustHasher(canonicalize.DefaultAlgorithm)
	}
	return &Verifier{hasher: h}
}

// Verify walks the chain once, forward, recomputing every selfDigest and
// checking every previousDigest link. It collects every violation rather
// than short-circuiting, so callers see the full extent of tampering.
// Pure: never mutates the chain and has no side effects.
func (v *Verifier) Verify(chain []receipt.Receipt) Report {
	report := Report{
		Valid:        true,
		ReceiptCount: uint64(len(chain)),
		Errors:       make([]Violation, 0),
	}

	hasher := v.hasher
	if hasher == nil {
		hasher = canonicalize.MustHasher(canonicalize.DefaultAlgorithm)
	}

	for i, r := range chain {
		pos := uint64(i)

		if r.Index != pos {
			report.Errors = append(report.Errors, Violation{
				Kind:   KindChainBroken,
				Index:  pos,
				Detail: fmt.Sprintf("index %d at position %d breaks the 0..n-1 sequence", r.Index, pos),
			})
		}

		expected, err := receipt.ComputeSelfDigest(r, hasher)
		if err != nil {
			report.Errors = append(report.Errors, Violation{
				Kind:   KindDigestMismatch,
				Index:  pos,
				Detail: fmt.Sprintf("selfDigest could not be recomputed: %v", err),
			})
		} else if expected != r.SelfDigest {
			report.Errors = append(report.Errors, Violation{
				Kind:   KindDigestMismatch,
				Index:  pos,
				Detail: "stored selfDigest does not match recomputed digest",
			})
		}

		if i == 0 {
			if r.PreviousDigest != receipt.GenesisDigest {
				report.Errors = append(report.Errors, Violation{
					Kind:   KindChainBroken,
					Index:  pos,
					Detail: fmt.Sprintf("genesis previousDigest is %q, want sentinel %q", r.PreviousDigest, receipt.GenesisDigest),
				})
			}
		} else if r.PreviousDigest != chain[i-1].SelfDigest {
			report.Errors = append(report.Errors, Violation{
				Kind:   KindChainBroken,
				Index:  pos,
				Detail: "previousDigest does not match predecessor selfDigest",
			})
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
