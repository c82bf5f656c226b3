package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
mode: dev
addr: ":9090"
storage: flatfile
database_dir: testdata
loan_days: 7
rate_limit:
  rps: 5
  burst: 10
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StorageFlatFile, cfg.Storage)
	assert.Equal(t, "testdata", cfg.DatabaseDir)
	assert.Equal(t, 7, cfg.LoanDays)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

// 省略項目にデフォルトが入ること
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mode: release\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StorageFlatFile, cfg.Storage)
	assert.Equal(t, "database", cfg.DatabaseDir)
	assert.Equal(t, 14, cfg.LoanDays)
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "mode: staging\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "mode: dev\nstorage: sqlite\n"))
	assert.Error(t, err)

	// storage=mysql は dbname 必須
	_, err = LoadConfig(writeConfig(t, "mode: dev\nstorage: mysql\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
