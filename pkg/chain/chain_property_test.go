//go:build property
// +build property

// Property-based tests for chain construction and tamper detection.
package chain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/tracefoundry/receiptchain/pkg/store"
)

// Property: every chain built solely through CreateReceipt verifies.
func TestAnyAppendOnlyChainVerifies(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("append-only chains are always valid", prop.ForAll(
		func(ops []string, payloads []string) bool {
			c := New(store.NewFileStore(filepath.Join(t.TempDir(), "chain.ndjson")))
			if err := c.Initialize(context.Background()); err != nil {
				return false
			}
			defer func() { _ = c.Close() }()

			for i := 0; i < len(ops) && i < len(payloads); i++ {
				if _, err := c.CreateReceipt(context.Background(), ops[i], []byte(payloads[i]), []byte(ops[i])); err != nil {
					return false
				}
			}
			report, err := c.VerifyChain(context.Background())
			return err == nil && report.Valid
		},
		gen.SliceOf(gen.AnyString()),
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}

// Property: mutating any single receipt of a persisted chain is detected,
// and the report names the mutated index.
func TestAnySingleMutationIsDetected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("single mutation invalidates the chain at its index", prop.ForAll(
		func(n uint8, pick uint8, newOp string) bool {
			size := int(n%8) + 1
			target := int(pick) % size

			c := New(store.NewFileStore(filepath.Join(t.TempDir(), "chain.ndjson")))
			if err := c.Initialize(context.Background()); err != nil {
				return false
			}
			defer func() { _ = c.Close() }()

			for i := 0; i < size; i++ {
				if _, err := c.CreateReceipt(context.Background(), "generate", []byte{byte(i)}, []byte{byte(i)}); err != nil {
					return false
				}
			}

			mutated, err := c.Receipts()
			if err != nil {
				return false
			}
			if mutated[target].Operation == newOp {
				return true // not a mutation, skip
			}
			mutated[target].Operation = newOp

			report := c.verifier.Verify(mutated)
			if report.Valid {
				return false
			}
			for _, e := range report.Errors {
				if e.Index == uint64(target) {
					return true
				}
			}
			return false
		},
		gen.UInt8(),
		gen.UInt8(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
