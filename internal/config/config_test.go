package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "none", cfg.QueuePlayingPolicy)
	assert.Equal(t, 24*time.Hour, cfg.SessionTokenTTL())
	assert.Equal(t, "local", cfg.Storage.Provider)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server_port: "9000"
database:
  driver: postgres
  dsn: host=db user=k dbname=karaoke
queue_playing_policy: venue
storage:
  provider: s3
  bucket: songs
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("CATALOG_CACHE_TTL", "90s")

	cfg := Load()

	assert.Equal(t, "7000", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=k dbname=karaoke", cfg.Database.DSN)
	assert.Equal(t, "venue", cfg.QueuePlayingPolicy)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "songs", cfg.Storage.Bucket)
	assert.Equal(t, 90*time.Second, cfg.CatalogCacheTTL)
	// untouched keys keep their defaults
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}
