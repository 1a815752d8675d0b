package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatchFileCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(target, []byte("name: a\n"), 0o644))

	fw, err := NewFileWatcher(target, 100*time.Millisecond)
	require.NoError(t, err)

	var changes atomic.Int32
	fw.AddOnChangeFunc(func() error {
		changes.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	defer fw.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("name: b\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load())
}

func TestWatchFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	fw, err := NewFileWatcher(target, 20*time.Millisecond)
	require.NoError(t, err)

	var changes atomic.Int32
	fw.AddOnChangeFunc(func() error {
		changes.Add(1)
		return nil
	})

	require.NoError(t, fw.Start(context.Background()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("y"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, fw.Close())

	assert.Equal(t, int32(0), changes.Load())
}

func TestWatchDirectoryPicksUpNewSubdirs(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(dir, 20*time.Millisecond)
	require.NoError(t, err)

	var changes atomic.Int32
	fw.AddOnChangeFunc(func() error {
		changes.Add(1)
		return nil
	})

	require.NoError(t, fw.Start(context.Background()))
	defer fw.Close()

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := changes.Load()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "model.cue"), []byte("name: \"x\"\n"), 0o644))
	assert.Eventually(t, func() bool { return changes.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestCloseRunsHookOnce(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, fw.Debounce)

	var closes atomic.Int32
	fw.AddOnCloseFunc(func() error {
		closes.Add(1)
		return nil
	})

	require.NoError(t, fw.Start(context.Background()))
	require.NoError(t, fw.Close())
	_ = fw.Close()

	assert.Equal(t, int32(1), closes.Load())
	select {
	case <-fw.Done():
	default:
		t.Fatal("event loop still running after Close")
	}
}

func TestShouldExcludePath(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(dir, 0)
	require.NoError(t, err)
	defer fw.Close()

	assert.True(t, fw.shouldExcludePath(filepath.Join(dir, ".git")))
	assert.True(t, fw.shouldExcludePath(filepath.Join(dir, "node_modules", "x")))
	assert.False(t, fw.shouldExcludePath(filepath.Join(dir, "schema")))
}

func TestNewFileWatcherMissingTarget(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "absent.yaml"), 0)
	assert.Error(t, err)
}
