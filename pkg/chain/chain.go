// Package chain is the façade the host calls: initialize, append, read,
// verify. It owns the in-memory chain, the single-writer discipline that
// prevents forks, and the Ready/Degraded lifecycle.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
	"github.com/tracefoundry/receiptchain/pkg/receipt"
	"github.com/tracefoundry/receiptchain/pkg/store"
	"github.com/tracefoundry/receiptchain/pkg/verifier"
)

// State is the lifecycle of the chain façade.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateInitializing  State = "INITIALIZING"
	// StateReady accepts appends and verification.
	StateReady State = "READY"
	// StateDegraded is entered on a fatal persistence error during load or
	// append. Verification stays available over whatever is in memory;
	// appends are refused.
	StateDegraded State = "DEGRADED"
)

var (
	// ErrNotInitialized: Initialize must succeed before any other operation.
	ErrNotInitialized = errors.New("chain: not initialized")
	// ErrDegraded: a fatal persistence error occurred; appends are refused.
	ErrDegraded = errors.New("chain: degraded, appends refused")
)

const instrumentationName = "github.com/tracefoundry/receiptchain/pkg/chain"

// Chain records AI-assisted operations as hash-linked receipts.
//
// Multiple goroutines may call CreateReceipt concurrently; the
// read-modify-write of the chain tail executes under a single write lock, so
// no two receipts are ever computed against the same (index, previousDigest)
// pair. Every returned receipt is already durable.
type Chain struct {
	mu       sync.RWMutex
	state    State
	receipts []receipt.Receipt

	store    store.ChainStore
	factory  *receipt.Factory
	verifier *verifier.Verifier

	tracer   trace.Tracer
	appends  metric.Int64Counter
	verifies metric.Int64Counter
}

// Option configures a Chain.
type Option func(*Chain)

// WithHasher selects the digest algorithm for the whole chain. Must match
// the algorithm of any previously persisted receipts.
func WithHasher(h *canonicalize.Hasher) Option {
	return func(c *Chain) {
		c.factory = receipt.NewFactory(receipt.WithHasher(h))
		c.verifier = verifier.New(h)
	}
}

// WithFactory injects a prebuilt factory (e.g. with a test clock). The
// verifier is aligned to the factory's hasher.
func WithFactory(f *receipt.Factory) Option {
	return func(c *Chain) {
		c.factory = f
		c.verifier = verifier.New(f.Hasher())
	}
}

// New creates an uninitialized Chain over the given store.
func New(st store.ChainStore, opts ...Option) *Chain {
	f := receipt.NewFactory()
	c := &Chain{
		state:    StateUninitialized,
		store:    st,
		factory:  f,
		verifier: verifier.New(f.Hasher()),
		tracer:   otel.Tracer(instrumentationName),
	}
	meter := otel.Meter(instrumentationName)
	c.appends, _ = meter.Int64Counter("receiptchain.receipts.appended",
		metric.WithDescription("Receipts durably appended to the chain"))
	c.verifies, _ = meter.Int64Counter("receiptchain.chain.verifications",
		metric.WithDescription("Chain verification runs"))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the chain from the store into memory. Idempotent: calling
// it again after success is a no-op. On a load failure the chain enters
// Degraded and the error is surfaced.
func (c *Chain) Initialize(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "chain.Initialize")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateReady {
		return nil
	}
	c.state = StateInitializing

	loaded, err := c.store.Load(ctx)
	if err != nil {
		c.state = StateDegraded
		return fmt.Errorf("chain: initialize: %w", err)
	}

	c.receipts = loaded
	c.state = StateReady
	span.SetAttributes(attribute.Int("chain.receipt_count", len(loaded)))
	return nil
}

// CreateReceipt records one operation: it digests the payloads, links the
// new receipt to the current tail, durably appends it, then publishes it to
// the in-memory chain. Blocks until the durable write completes — there is
// no fire-and-forget path. On a write failure nothing changes in memory (no
// phantom receipts) and the chain degrades.
func (c *Chain) CreateReceipt(ctx context.Context, operation string, input, output []byte) (receipt.Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "chain.CreateReceipt",
		trace.WithAttributes(attribute.String("receipt.operation", operation)))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateReady:
	case StateDegraded:
		return receipt.Receipt{}, ErrDegraded
	default:
		return receipt.Receipt{}, ErrNotInitialized
	}

	previous := receipt.GenesisDigest
	index := uint64(len(c.receipts))
	if index > 0 {
		previous = c.receipts[index-1].SelfDigest
	}

	r, err := c.factory.Build(operation, input, output, previous, index)
	if err != nil {
		return receipt.Receipt{}, err
	}

	if err := c.store.Append(ctx, r); err != nil {
		c.state = StateDegraded
		return receipt.Receipt{}, fmt.Errorf("chain: append: %w", err)
	}

	c.receipts = append(c.receipts, r)
	c.appends.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("receipt.index", int64(r.Index)))
	return r, nil
}

// Receipts returns a defensive copy of the in-memory chain; callers cannot
// mutate internal state through it. Before Initialize there is no chain to
// read, so ErrNotInitialized is returned rather than an empty view. Degraded
// chains stay readable.
func (c *Chain) Receipts() ([]receipt.Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != StateReady && c.state != StateDegraded {
		return nil, ErrNotInitialized
	}
	return c.snapshotLocked(), nil
}

// snapshotLocked copies the chain; callers hold c.mu.
func (c *Chain) snapshotLocked() []receipt.Receipt {
	out := make([]receipt.Receipt, len(c.receipts))
	copy(out, c.receipts)
	return out
}

// Head returns the tail receipt's selfDigest, or the genesis sentinel for an
// empty chain.
func (c *Chain) Head() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.receipts) == 0 {
		return receipt.GenesisDigest
	}
	return c.receipts[len(c.receipts)-1].SelfDigest
}

// Len returns the number of receipts in memory.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.receipts)
}

// State reports the current lifecycle state.
func (c *Chain) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// VerifyChain verifies the in-memory chain. Once the chain is initialized it
// never fails: integrity violations are data in the report, and Degraded
// chains stay verifiable. The only error is ErrNotInitialized, since before
// Initialize nothing is loaded and an empty "valid" report would vouch for
// data that was never examined. Safe to run concurrently with appends: it
// observes a consistent pre- or post-append snapshot, never a half-written
// receipt.
func (c *Chain) VerifyChain(ctx context.Context) (verifier.Report, error) {
	ctx, span := c.tracer.Start(ctx, "chain.VerifyChain")
	defer span.End()

	snapshot, err := c.Receipts()
	if err != nil {
		return verifier.Report{}, err
	}
	report := c.verifier.Verify(snapshot)

	c.verifies.Add(ctx, 1, metric.WithAttributes(attribute.Bool("chain.valid", report.Valid)))
	span.SetAttributes(
		attribute.Bool("chain.valid", report.Valid),
		attribute.Int("chain.violations", len(report.Errors)),
	)
	return report, nil
}

// VerifyPersisted is the stricter mode: it re-reads the chain from the store
// and verifies that, catching out-of-process tampering of the persisted
// medium. The error reports load failures only; integrity violations are in
// the report.
func (c *Chain) VerifyPersisted(ctx context.Context) (verifier.Report, error) {
	ctx, span := c.tracer.Start(ctx, "chain.VerifyPersisted")
	defer span.End()

	// The read lock excludes in-flight appends, so the store read is a
	// consistent snapshot.
	c.mu.RLock()
	loaded, err := c.store.Load(ctx)
	c.mu.RUnlock()
	if err != nil {
		return verifier.Report{}, fmt.Errorf("chain: strict verify: %w", err)
	}

	report := c.verifier.Verify(loaded)
	c.verifies.Add(ctx, 1, metric.WithAttributes(attribute.Bool("chain.valid", report.Valid)))
	return report, nil
}

// Close releases the store. No flush is needed beyond the durability every
// Append already guaranteed.
func (c *Chain) Close() error {
	return c.store.Close()
}
