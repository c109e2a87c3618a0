package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 1000, cfg.Seed.TopN)
	assert.Equal(t, 1, cfg.Seed.MinRatings)
	assert.Equal(t, 40, cfg.Seed.MaxRatings)
	assert.Equal(t, 1, cfg.Seed.MinScore)
	assert.Equal(t, 10, cfg.Seed.MaxScore)
	assert.Equal(t, 2000, cfg.Seed.DefaultYear)
	assert.Equal(t, 3, cfg.Seed.CastSummaryLen)
	assert.Equal(t, int64(0), cfg.Seed.RandomSeed)
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinefeed.yaml")
	content := `
server:
  port: 9090
seed:
  top_n: 250
  random_seed: 42
database:
  data_dir: /tmp/cinefeed-test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m := NewManager()
	require.NoError(t, m.LoadConfig(path))

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250, cfg.Seed.TopN)
	assert.Equal(t, int64(42), cfg.Seed.RandomSeed)
	// values absent from the file keep their defaults
	assert.Equal(t, 40, cfg.Seed.MaxRatings)
	// derived sqlite path follows the data dir
	assert.Equal(t, filepath.Join("/tmp/cinefeed-test", "cinefeed.db"), cfg.Database.DatabasePath)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinefeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("CINEFEED_PORT", "9999")
	t.Setenv("CINEFEED_SEED_TOP_N", "10")
	t.Setenv("CINEFEED_READ_TIMEOUT", "45s")

	m := NewManager()
	require.NoError(t, m.LoadConfig(path))

	cfg := m.GetConfig()
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Seed.TopN)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml")))
	assert.Equal(t, 8080, m.GetConfig().Server.Port)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	m := NewManager()

	t.Setenv("CINEFEED_PORT", "70000")
	assert.Error(t, m.LoadConfig(""))

	t.Setenv("CINEFEED_PORT", "8080")
	t.Setenv("DATABASE_TYPE", "oracle")
	assert.Error(t, m.LoadConfig(""))

	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("CINEFEED_SEED_MIN_RATINGS", "5")
	t.Setenv("CINEFEED_SEED_MAX_RATINGS", "2")
	assert.Error(t, m.LoadConfig(""))

	t.Setenv("CINEFEED_SEED_MIN_RATINGS", "1")
	t.Setenv("CINEFEED_SEED_MAX_RATINGS", "40")
	t.Setenv("CINEFEED_SEED_MAX_SCORE", "0")
	assert.Error(t, m.LoadConfig(""))
}

func TestLoadConfigRejectsUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinefeed.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 9090"), 0644))

	m := NewManager()
	assert.Error(t, m.LoadConfig(path))
}

func TestWatchersAreNotifiedOnReload(t *testing.T) {
	m := NewManager()

	changed := make(chan int, 1)
	m.AddWatcher(func(oldConfig, newConfig *Config) {
		changed <- newConfig.Server.Port
	})

	t.Setenv("CINEFEED_PORT", "9191")
	require.NoError(t, m.LoadConfig(""))

	select {
	case port := <-changed:
		assert.Equal(t, 9191, port)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was not notified")
	}
}
