package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileManager bypasses the system keyring probe so tests run the
// same on headless hosts and developer machines.
func newFileManager(t *testing.T, masterPassword string) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keyring.json")
	return &Manager{file: newFileStore(path, masterPassword)}, path
}

func TestConnectionSecretsRoundTrip(t *testing.T) {
	m, _ := newFileManager(t, "master")

	require.NoError(t, m.SetConnectionSecrets("conn-1", "hunter2", "key-abc"))

	password, apiKey := m.GetConnectionSecrets("conn-1")
	assert.Equal(t, "hunter2", password)
	assert.Equal(t, "key-abc", apiKey)

	m.DeleteConnectionSecrets("conn-1")

	password, apiKey = m.GetConnectionSecrets("conn-1")
	assert.Empty(t, password)
	assert.Empty(t, apiKey)
}

func TestEmptyValueClearsSlot(t *testing.T) {
	m, _ := newFileManager(t, "master")

	require.NoError(t, m.SetConnectionSecrets("conn-1", "hunter2", "key-abc"))
	require.NoError(t, m.SetConnectionSecrets("conn-1", "rotated", ""))

	password, apiKey := m.GetConnectionSecrets("conn-1")
	assert.Equal(t, "rotated", password)
	assert.Empty(t, apiKey, "clearing a slot must remove the old value")
}

func TestMissingConnectionReadsEmpty(t *testing.T) {
	m, _ := newFileManager(t, "master")

	password, apiKey := m.GetConnectionSecrets("ghost")
	assert.Empty(t, password)
	assert.Empty(t, apiKey)
}

func TestSecretsAreSealedOnDisk(t *testing.T) {
	m, path := newFileManager(t, "master")

	require.NoError(t, m.SetConnectionSecrets("conn-1", "hunter2", ""))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2", "plaintext must never reach disk")
}

func TestWrongMasterPasswordCannotOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.json")

	writer := &Manager{file: newFileStore(path, "right-password")}
	require.NoError(t, writer.SetConnectionSecrets("conn-1", "hunter2", ""))

	reader := &Manager{file: newFileStore(path, "wrong-password")}
	password, _ := reader.GetConnectionSecrets("conn-1")
	assert.Empty(t, password)
}

func TestSecretsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.json")

	first := &Manager{file: newFileStore(path, "master")}
	require.NoError(t, first.SetConnectionSecrets("conn-1", "hunter2", "key-abc"))

	second := &Manager{file: newFileStore(path, "master")}
	password, apiKey := second.GetConnectionSecrets("conn-1")
	assert.Equal(t, "hunter2", password)
	assert.Equal(t, "key-abc", apiKey)
}

func TestDefaultPath(t *testing.T) {
	t.Run("under data dir", func(t *testing.T) {
		t.Setenv("DUCKUI_KEYRING_PATH", "")
		assert.Equal(t, filepath.Join("/data", "keyring.json"), DefaultPath("/data"))
	})

	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("DUCKUI_KEYRING_PATH", "/else/ring.json")
		assert.Equal(t, "/else/ring.json", DefaultPath("/data"))
	})
}
