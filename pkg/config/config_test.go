package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RECEIPTCHAIN_BACKEND", "")
	t.Setenv("RECEIPTCHAIN_STORE_PATH", "")
	t.Setenv("RECEIPTCHAIN_DIGEST_ALGORITHM", "")
	t.Setenv("RECEIPTCHAIN_REPAIR_ON_LOAD", "")

	cfg := Load()
	if cfg.StoreBackend != BackendFile {
		t.Fatalf("expected file backend default, got %s", cfg.StoreBackend)
	}
	if cfg.StorePath == "" {
		t.Fatal("expected a default store path")
	}
	if cfg.DigestAlgorithm != "sha256" {
		t.Fatalf("expected sha256 default, got %s", cfg.DigestAlgorithm)
	}
	if cfg.RepairOnLoad {
		t.Fatal("repair must be opt-in")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECEIPTCHAIN_BACKEND", "sqlite")
	t.Setenv("RECEIPTCHAIN_STORE_PATH", "/var/lib/receipts.db")
	t.Setenv("RECEIPTCHAIN_REPAIR_ON_LOAD", "true")

	cfg := Load()
	if cfg.StoreBackend != BackendSQLite {
		t.Fatalf("expected sqlite, got %s", cfg.StoreBackend)
	}
	if cfg.StorePath != "/var/lib/receipts.db" {
		t.Fatalf("unexpected store path %s", cfg.StorePath)
	}
	if !cfg.RepairOnLoad {
		t.Fatal("expected repair enabled")
	}
}

func TestLoadProfileAppliesOverConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := `name: ci
store_backend: sqlite
store_path: ci-receipts.db
digest_algorithm: blake2b-256
repair_on_load: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	p.Apply(cfg)

	if cfg.StoreBackend != BackendSQLite {
		t.Fatalf("expected sqlite, got %s", cfg.StoreBackend)
	}
	if cfg.StorePath != "ci-receipts.db" {
		t.Fatalf("unexpected path %s", cfg.StorePath)
	}
	if cfg.DigestAlgorithm != "blake2b-256" {
		t.Fatalf("unexpected algorithm %s", cfg.DigestAlgorithm)
	}
	if !cfg.RepairOnLoad {
		t.Fatal("expected repair enabled")
	}
}

func TestLoadProfileRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("store_backend: etcd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadProfileRejectsUnknownAlgorithm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("digest_algorithm: md5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}
