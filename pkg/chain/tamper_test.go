package chain

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// tamperReplace edits the persisted chain file in place, simulating an
// out-of-process attacker with write access to the store.
func tamperReplace(t *testing.T, path, old, new string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.Contains(data, []byte(old)), "tamper target %q not found", old)

	data = bytes.Replace(data, []byte(old), []byte(new), 1)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
