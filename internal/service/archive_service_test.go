package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveName(t *testing.T) {
	name := ArchiveName(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^results-20250601T123000Z-[0-9a-f]{8}\.csv$`), name)
	assert.NotEqual(t, name, ArchiveName(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)))
}

func TestNewArchiveService(t *testing.T) {
	svc, err := NewArchiveService(&config.ArchiveConfig{Type: "none"})
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	location, err := svc.Archive(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, location)

	_, err = NewArchiveService(&config.ArchiveConfig{Type: "ftp"})
	assert.Error(t, err)
}

func TestLocalArchiveWritesSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archives")
	svc, err := NewArchiveService(&config.ArchiveConfig{Type: "local", LocalPath: dir})
	require.NoError(t, err)
	require.True(t, svc.Enabled())

	location, err := svc.Archive(context.Background(), []byte("header\nrow\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "header\nrow\n", string(data))
}

func TestLocalArchiveRemovesPartialSnapshot(t *testing.T) {
	orig := syncArchiveFile
	syncArchiveFile = func(*os.File) error { return errors.New("disk full") }
	t.Cleanup(func() { syncArchiveFile = orig })

	dir := t.TempDir()
	archive := &LocalArchive{Dir: dir}

	_, err := archive.Put(context.Background(), "results-test.csv", []byte("header\nrow\n"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
