package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KooshaPari/vibeproxy/internal/models"
)

func TestWatcherSignalsOnConfigSave(t *testing.T) {
	store, err := NewStoreAt(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(store)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.NoError(t, store.Save(models.NewAppConfig()))

	select {
	case <-watcher.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after config save")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStoreAt(dir)
	require.NoError(t, err)

	watcher, err := NewWatcher(store)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-watcher.Changes():
		t.Fatal("unexpected change signal for unrelated file")
	case <-time.After(time.Second):
	}
}
