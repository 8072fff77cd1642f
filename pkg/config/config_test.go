package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefault(t *testing.T) {
	cfg := New()
	cfg.Update(map[string]string{"server.listen": ":9000", "datasets.manifest": ""})

	assert.Equal(t, ":9000", cfg.GetDefault("server.listen", ":8090"))
	assert.Equal(t, "fallback", cfg.GetDefault("datasets.manifest", "fallback"))
	assert.Equal(t, "fallback", cfg.GetDefault("never.set", "fallback"))
}

func TestUpdateMerges(t *testing.T) {
	cfg := New()
	cfg.Update(map[string]string{"a": "1", "b": "2"})
	cfg.Update(map[string]string{"b": "3", "c": "4"})

	assert.Equal(t, "1", cfg.Get("a"))
	assert.Equal(t, "3", cfg.Get("b"))
	assert.Equal(t, "4", cfg.Get("c"))
}

func TestLoadFileDefaults(t *testing.T) {
	fc, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, ":8090", fc.Server.Listen)
	assert.NotEmpty(t, fc.Storage.DataDir)
}

func TestLoadFileMissingFileUsesDefaults(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8090", fc.Server.Listen)
}

func TestLoadFileParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  listen: "127.0.0.1:9999"
storage:
  data_dir: "/tmp/workbench-test"
datasets:
  manifest: "/tmp/manifest.json"
logging:
  level: debug
  disable_console: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	fc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", fc.Server.Listen)
	assert.Equal(t, "/tmp/workbench-test", fc.Storage.DataDir)
	assert.Equal(t, "/tmp/manifest.json", fc.Datasets.Manifest)
	assert.Equal(t, "debug", fc.Logging.Level)
	assert.True(t, fc.Logging.DisableConsole)
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadFileEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen: \":7000\"\n"), 0o644))

	t.Setenv("DUCKUI_LISTEN", ":7001")
	t.Setenv("DUCKUI_LOG_LEVEL", "warn")

	fc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7001", fc.Server.Listen)
	assert.Equal(t, "warn", fc.Logging.Level)
}

func TestFlattenCarriesRuntimeKeys(t *testing.T) {
	fc := &FileConfig{}
	fc.Server.Listen = ":8090"
	fc.Storage.DataDir = "/data"
	fc.Logging.Level = "info"

	flat := fc.Flatten()
	assert.Equal(t, ":8090", flat["server.listen"])
	assert.Equal(t, "/data", flat["storage.data_dir"])
	assert.Equal(t, "info", flat["logging.level"])
	assert.Equal(t, "false", flat["logging.disable_console"])
}
