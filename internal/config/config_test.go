package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "CONFIG_FILE", "PORT", "DB_HOST", "SEARCH_RANKER", "CORS_ALLOWED_ORIGINS", "CACHE_EVENTS_TTL_SEC", "DB_RUN_MIGRATIONS")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, RankerPostgres, cfg.Search.Ranker)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Valkey.EventsTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.SearchDebounce)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t, "CONFIG_FILE")
	t.Setenv("PORT", "9090")
	t.Setenv("SEARCH_RANKER", "Elasticsearch")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_RUN_MIGRATIONS", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, RankerElasticsearch, cfg.Search.Ranker)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Database.RunMigrations)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Search.Elasticsearch.Timeout)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventease.yaml")
	content := "port: \"7000\"\ndb_host: db.internal\nvalkey_enabled: false\nsearch_debounce_ms: 150\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	clearEnv(t, "DB_HOST", "VALKEY_ENABLED", "SEARCH_DEBOUNCE_MS")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	cfg := Load()

	// environment wins over the file
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Valkey.Enabled)
	assert.Equal(t, 150*time.Millisecond, cfg.Client.SearchDebounce)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t, "PORT")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadElasticsearchConfig(t *testing.T) {
	clearEnv(t, "CONFIG_FILE", "ELASTICSEARCH_INDEX")
	t.Setenv("ELASTICSEARCH_URL", "http://es1:9200, http://es2:9200")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "-5s")

	cfg := LoadElasticsearchConfig()

	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Addresses)
	assert.Equal(t, "eventease-events", cfg.Index)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
