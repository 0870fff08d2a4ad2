package observability

import (
	"context"
	"testing"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	p, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.tracerProvider != nil || p.meterProvider != nil {
		t.Fatal("disabled provider should not construct exporters")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ServiceName != "receiptchain" {
		t.Fatalf("unexpected service name %s", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Fatalf("expected full sampling by default, got %f", cfg.SampleRate)
	}
	if cfg.Insecure {
		t.Fatal("must be secure by default")
	}
}
