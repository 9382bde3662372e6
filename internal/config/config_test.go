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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "json", cfg.Storage.Mode)
	assert.Equal(t, "content", cfg.Storage.ContentDir)
	assert.Equal(t, "studio", cfg.Storage.DefaultSite)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.NeedsDatabase())
	assert.True(t, cfg.NeedsDocumentStore())
}

func TestLoadStorageModes(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  mode: dual_write\n"))
	require.NoError(t, err)
	assert.Equal(t, "dual_write", cfg.Storage.Mode)
	assert.True(t, cfg.NeedsDatabase())
	assert.True(t, cfg.NeedsDocumentStore())

	cfg, err = Load(writeConfig(t, "storage:\n  mode: db\n"))
	require.NoError(t, err)
	assert.True(t, cfg.NeedsDatabase())
	assert.False(t, cfg.NeedsDocumentStore())

	_, err = Load(writeConfig(t, "storage:\n  mode: mongo\n"))
	assert.Error(t, err)
}

func TestLoadBuildsDSNFromParts(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  host: db.internal
  port: 3307
  user: atelier
  password: hunter2
  name: atelier_prod
`))
	require.NoError(t, err)
	assert.Equal(t,
		"atelier:hunter2@tcp(db.internal:3307)/atelier_prod?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN)
}

func TestExplicitDSNWins(t *testing.T) {
	cfg, err := Load(writeConfig(t, "dsn: user:pw@tcp(h:3306)/db\ndatabase:\n  host: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(h:3306)/db", cfg.DSN)
}
