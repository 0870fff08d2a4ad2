package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefoundry/receiptchain/pkg/receipt"
)

func sealedChain(t *testing.T, n int) []receipt.Receipt {
	t.Helper()
	f := receipt.NewFactory(receipt.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))

	chain := make([]receipt.Receipt, 0, n)
	prev := receipt.GenesisDigest
	for i := 0; i < n; i++ {
		r, err := f.Build("generate", []byte{byte(i)}, []byte{byte(i + 1)}, prev, uint64(i))
		require.NoError(t, err)
		chain = append(chain, r)
		prev = r.SelfDigest
	}
	return chain
}

func TestExportWritesSnapshotToSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFSSink(dir)
	require.NoError(t, err)

	chain := sealedChain(t, 3)
	snap, err := NewExporter(sink, nil).Export(context.Background(), chain)
	require.NoError(t, err)

	require.NoError(t, uuid.Validate(snap.ID))
	assert.Equal(t, uint64(3), snap.ReceiptCount)
	assert.Equal(t, chain[2].SelfDigest, snap.HeadDigest)
	assert.NotEmpty(t, snap.SnapshotHash)

	data, err := os.ReadFile(filepath.Join(dir, snap.ID+".snapshot.json"))
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *snap, got)
}

func TestExportRefusesTamperedChain(t *testing.T) {
	sink, err := NewFSSink(t.TempDir())
	require.NoError(t, err)

	chain := sealedChain(t, 2)
	chain[0].Operation = "tampered"

	_, err = NewExporter(sink, nil).Export(context.Background(), chain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to export")
}

func TestExportEmptyChain(t *testing.T) {
	sink, err := NewFSSink(t.TempDir())
	require.NoError(t, err)

	snap, err := NewExporter(sink, nil).Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.ReceiptCount)
	assert.Equal(t, receipt.GenesisDigest, snap.HeadDigest)
}

func TestFSSinkLeavesNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFSSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.Store(context.Background(), "k.json", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestNewSinkFromEnvDefaultsToFS(t *testing.T) {
	t.Setenv("ARCHIVE_SINK_TYPE", "")
	t.Setenv("ARCHIVE_DIR", filepath.Join(t.TempDir(), "archive"))

	sink, err := NewSinkFromEnv(context.Background())
	require.NoError(t, err)
	_, ok := sink.(*FSSink)
	assert.True(t, ok)
}

func TestNewSinkFromEnvRequiresS3Bucket(t *testing.T) {
	t.Setenv("ARCHIVE_SINK_TYPE", "s3")
	t.Setenv("ARCHIVE_S3_BUCKET", "")

	_, err := NewSinkFromEnv(context.Background())
	require.Error(t, err)
}
