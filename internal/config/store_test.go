package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KooshaPari/vibeproxy/internal/models"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewAppConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	cfg := models.NewAppConfig()
	cfg.Backend.Host = "10.0.0.7"
	cfg.Backend.Port = 9090
	cfg.Backend.APIKeySecret = "backend_api_key"

	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(models.NewAppConfig()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewAppConfig(), loaded)
}

func TestLoadCorruptFileIsParseError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStoreAt(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err = store.Load()
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, store.Path(), parseErr.Path)
	assert.Contains(t, err.Error(), store.Path())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStoreAt(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(models.NewAppConfig()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ConfigFileName, entries[0].Name())
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	first := models.NewAppConfig()
	require.NoError(t, store.Save(first))

	second := models.NewAppConfig()
	second.Backend.Port = 4242
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 4242, loaded.Backend.Port)
}

func TestNewStoreAtCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "vibeproxy")

	store, err := NewStoreAt(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, ConfigFileName), store.Path())
}

func TestPathIsStable(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	path := store.Path()
	require.NoError(t, store.Save(models.NewAppConfig()))
	assert.Equal(t, path, store.Path())
}
