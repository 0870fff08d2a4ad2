// Package config holds host-facing configuration for the receipt chain.
package config

import "os"

// Backend selects the ChainStore implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config holds runtime configuration.
type Config struct {
	// StoreBackend is one of "file", "sqlite", "postgres".
	StoreBackend Backend
	// StorePath is the chain file (file backend) or database file (sqlite).
	StorePath string
	// DatabaseURL is the Postgres connection string (postgres backend).
	DatabaseURL string
	// DigestAlgorithm: "sha256" (default), "blake2b-256", or "sha3-256".
	// Must match the algorithm of any previously persisted receipts.
	DigestAlgorithm string
	// RepairOnLoad enables forward-scan recovery of trailing garbage in the
	// file backend. The default is to fail closed on corruption.
	RepairOnLoad bool
	LogLevel     string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	backend := Backend(os.Getenv("RECEIPTCHAIN_BACKEND"))
	if backend == "" {
		backend = BackendFile
	}

	path := os.Getenv("RECEIPTCHAIN_STORE_PATH")
	if path == "" {
		path = "receipts.ndjson"
	}

	dbURL := os.Getenv("RECEIPTCHAIN_DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://receiptchain@localhost:5432/receiptchain?sslmode=disable"
	}

	alg := os.Getenv("RECEIPTCHAIN_DIGEST_ALGORITHM")
	if alg == "" {
		alg = "sha256"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	return &Config{
		StoreBackend:    backend,
		StorePath:       path,
		DatabaseURL:     dbURL,
		DigestAlgorithm: alg,
		RepairOnLoad:    os.Getenv("RECEIPTCHAIN_REPAIR_ON_LOAD") == "true",
		LogLevel:        logLevel,
	}
}
