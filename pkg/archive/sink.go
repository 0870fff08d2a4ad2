package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink is where sealed snapshots land.
type Sink interface {
	// Store writes data under key. Idempotent for identical content.
	Store(ctx context.Context, key string, data []byte) error
}

// FSSink writes snapshots to a local directory.
type FSSink struct {
	dir string
}

// NewFSSink creates the directory if needed.
func NewFSSink(dir string) (*FSSink, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("archive: create dir: %w", err)
	}
	return &FSSink{dir: dir}, nil
}

func (s *FSSink) Store(ctx context.Context, key string, data []byte) error {
	// Write-then-rename so a crash never leaves a half-written snapshot
	// under its final name.
	final := filepath.Join(s.dir, key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("archive: write: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("archive: rename: %w", err)
	}
	return nil
}
