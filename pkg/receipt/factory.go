package receipt

import (
	"fmt"
	"time"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
)

// Factory mints receipts. It is pure with respect to its explicit inputs
// except for the clock read; it never touches storage — the caller supplies
// previousDigest and index and owns durability.
type Factory struct {
	hasher *canonicalize.Hasher
	clock  func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHasher selects the digest algorithm. Default is SHA-256.
func WithHasher(h *canonicalize.Hasher) FactoryOption {
	return func(f *Factory) { f.hasher = h }
}

// WithClock overrides the clock for testing.
func WithClock(clock func() time.Time) FactoryOption {
	return func(f *Factory) { f.clock = clock }
}

// NewFactory creates a Factory with SHA-256 digests and the system clock.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		hasher: canonicalize.MustHasher(canonicalize.DefaultAlgorithm),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Hasher exposes the factory's digest configuration so verifiers can match it.
func (f *Factory) Hasher() *canonicalize.Hasher {
	return f.hasher
}

// Build constructs one new receipt linked to previousDigest at the given
// index. Input and output payloads are digested, never stored.
func (f *Factory) Build(operation string, input, output []byte, previousDigest string, index uint64) (Receipt, error) {
	r := Receipt{
		Index:          index,
		Timestamp:      f.clock().UnixMilli(),
		Operation:      operation,
		InputDigest:    f.hasher.Sum(input),
		OutputDigest:   f.hasher.Sum(output),
		PreviousDigest: previousDigest,
	}

	self, err := ComputeSelfDigest(r, f.hasher)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt: digest computation failed: %w", err)
	}
	r.SelfDigest = self
	return r, nil
}
