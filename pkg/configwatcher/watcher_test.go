package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFileDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, WatchFile(ctx, path, 100*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: 2\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}
	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatchFileFollowsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	require.NoError(t, WatchFile(ctx, path, 50*time.Millisecond, func() error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	}))

	tmp := filepath.Join(dir, "quiz.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("version: 2\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload not triggered by rename")
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	err := WatchFile(context.Background(), filepath.Join(t.TempDir(), "nope", "quiz.yaml"), time.Second, func() error { return nil })
	assert.Error(t, err)
}
