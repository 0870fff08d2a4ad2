// Command receiptchain is the host-side reference CLI over the receipt
// chain core: record operations, list receipts, verify the chain, and
// export sealed snapshots.
//
// The core library exposes no UI of its own; this binary is the external
// collaborator that supplies payloads and presents verification results.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
	"github.com/tracefoundry/receiptchain/pkg/chain"
	"github.com/tracefoundry/receiptchain/pkg/config"
	"github.com/tracefoundry/receiptchain/pkg/observability"
	"github.com/tracefoundry/receiptchain/pkg/store"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	ctx := context.Background()
	shutdown := setupTelemetry(ctx)
	code := Run(os.Args, os.Stdout, os.Stderr)
	shutdown(ctx)
	os.Exit(code)
}

// setupTelemetry installs the OTLP providers when RECEIPTCHAIN_OTLP_ENDPOINT
// is set. Without it the global otel providers stay no-ops.
func setupTelemetry(ctx context.Context) func(context.Context) {
	endpoint := os.Getenv("RECEIPTCHAIN_OTLP_ENDPOINT")
	if endpoint == "" {
		return func(context.Context) {}
	}

	cfg := observability.DefaultConfig()
	cfg.OTLPEndpoint = endpoint
	cfg.Insecure = os.Getenv("RECEIPTCHAIN_OTLP_INSECURE") == "true"

	provider, err := observability.New(ctx, cfg)
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
		return func(context.Context) {}
	}
	return func(ctx context.Context) { _ = provider.Shutdown(ctx) }
}

// setupLogging installs the default slog handler at the configured level.
// Logs go to stderr so they never pollute a command's JSON output.
func setupLogging(level string, stderr io.Writer) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl})))
}

// Run is the entrypoint, split out for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "record":
		return runRecordCmd(args[2:], stdout, stderr)
	case "list":
		return runListCmd(args[2:], stdout, stderr)
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "export":
		return runExportCmd(args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Usage: receiptchain <command> [flags]

Commands:
  record   Append one operation receipt to the chain
  list     Print the chain as JSON
  verify   Verify chain integrity (exit 0 valid, 1 invalid, 2 error)
  export   Seal the chain into a snapshot and ship it to the archive sink

Configuration comes from RECEIPTCHAIN_* environment variables, or a
profile YAML via --profile.`)
}

// openChain builds the façade from configuration and initializes it. The
// hasher is returned alongside so subcommands (export) can verify with the
// same digest algorithm the chain was built with.
func openChain(ctx context.Context, profilePath string, stderr io.Writer) (*chain.Chain, *canonicalize.Hasher, error) {
	cfg := config.Load()
	if profilePath != "" {
		p, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, nil, err
		}
		p.Apply(cfg)
	}
	setupLogging(cfg.LogLevel, stderr)

	hasher, err := canonicalize.NewHasher(canonicalize.Algorithm(cfg.DigestAlgorithm))
	if err != nil {
		return nil, nil, err
	}

	var st store.ChainStore
	switch cfg.StoreBackend {
	case config.BackendFile:
		var opts []store.FileStoreOption
		if cfg.RepairOnLoad {
			opts = append(opts, store.WithRepair())
		}
		st = store.NewFileStore(cfg.StorePath, opts...)
	case config.BackendSQLite:
		st, err = store.OpenSQLiteStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(db)
		if err := pg.Init(ctx); err != nil {
			return nil, nil, err
		}
		st = pg
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	c := chain.New(st, chain.WithHasher(hasher))
	if err := c.Initialize(ctx); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	slog.Debug("chain ready",
		"backend", cfg.StoreBackend,
		"path", cfg.StorePath,
		"algorithm", hasher.Algorithm(),
		"receipts", c.Len(),
	)
	return c, hasher, nil
}
