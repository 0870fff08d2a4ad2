package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/tracefoundry/receiptchain/pkg/receipt"
)

// FileStore persists the chain as newline-delimited JSON records in a single
// local file. Appends are O(1): one record per line via O_APPEND, never
// rewriting prior bytes, so a crash mid-write leaves at worst one trailing
// partial line and every committed record intact.
type FileStore struct {
	path   string
	repair bool

	mu sync.Mutex
	f  *os.File // lazily opened append handle
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithRepair enables recovery on Load: a forward scan keeps the longest
// structurally valid prefix and truncates trailing garbage (e.g. a partial
// line left by a crash mid-append). Without it, Load fails closed with
// ErrStoreCorrupted.
func WithRepair() FileStoreOption {
	return func(s *FileStore) { s.repair = true }
}

// NewFileStore creates a FileStore at path. The file is created on first
// append; a missing file loads as the empty chain.
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path reports the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and validates the persisted chain.
func (s *FileStore) Load(ctx context.Context) ([]receipt.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []receipt.Receipt{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}

	receipts := make([]receipt.Receipt, 0)
	offset := 0
	lineNo := 0
	for offset < len(data) {
		rel := bytes.IndexByte(data[offset:], '\n')
		lineStart := offset
		var line []byte
		if rel < 0 {
			// No terminating newline: the tail of a crashed append.
			line = data[offset:]
			offset = len(data)
		} else {
			line = data[offset : offset+rel]
			offset += rel + 1
		}
		lineNo++
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		r, err := decodeRecord(line, uint64(len(receipts)))
		if err != nil {
			if s.repair {
				if terr := s.truncateAt(lineStart); terr != nil {
					return nil, fmt.Errorf("%w: repair truncation failed: %v", ErrStoreUnreadable, terr)
				}
				return receipts, nil
			}
			return nil, fmt.Errorf("%w: record %d: %v", ErrStoreCorrupted, lineNo, err)
		}
		receipts = append(receipts, r)
	}

	return receipts, nil
}

// decodeRecord validates one NDJSON line against the record schema and the
// index-contiguity requirement, then decodes it.
func decodeRecord(line []byte, wantIndex uint64) (receipt.Receipt, error) {
	var generic any
	if err := json.Unmarshal(line, &generic); err != nil {
		return receipt.Receipt{}, fmt.Errorf("not valid JSON: %v", err)
	}
	if err := compiledRecordSchema.Validate(generic); err != nil {
		return receipt.Receipt{}, fmt.Errorf("record schema violation: %v", err)
	}

	var r receipt.Receipt
	if err := json.Unmarshal(line, &r); err != nil {
		return receipt.Receipt{}, fmt.Errorf("undecodable record: %v", err)
	}
	if r.Index != wantIndex {
		return receipt.Receipt{}, fmt.Errorf("index %d where %d expected (sequence must be contiguous)", r.Index, wantIndex)
	}
	return r, nil
}

// truncateAt discards everything from byte offset onward. Only called in
// repair mode, and only at a record boundary, so committed records survive.
func (s *FileStore) truncateAt(offset int) error {
	if s.f != nil {
		_ = s.f.Close()
		s.f = nil
	}
	return os.Truncate(s.path, int64(offset))
}

// Append durably writes one receipt as a single NDJSON line and fsyncs.
func (s *FileStore) Append(ctx context.Context, r receipt.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrAppendFailed, err)
	}
	line = append(line, '\n')

	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("%w: open: %v", ErrAppendFailed, err)
		}
		s.f = f
	}

	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("%w: write: %v", ErrAppendFailed, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrAppendFailed, err)
	}
	return nil
}

// Close releases the append handle.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
