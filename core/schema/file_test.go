package schema

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tristendillon/modelsync/core/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileSessionReloadsAndNotifies(t *testing.T) {
	path := writeSchema(t, "schema.yaml", shopYAML)

	s, err := NewFileSession(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	sub, err := s.Subscribe(context.Background(), "cli.watcher")
	require.NoError(t, err)
	defer sub.Close()

	updated := shopYAML + `      - name: Invoice
        properties:
          - name: due
            type: number
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case n := <-sub.Notifications():
		assert.True(t, n.IsModelUpdate())
		assert.Equal(t, "cli.watcher", n.Stage)
	case <-time.After(3 * time.Second):
		t.Fatal("no notification after the schema changed")
	}

	ws, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok := ws.FindClass("Invoice")
	assert.True(t, ok)
}

func TestFileSessionKeepsSnapshotOnBadReload(t *testing.T) {
	path := writeSchema(t, "schema.yaml", shopYAML)

	s, err := NewFileSession(path, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(path, []byte("modules: [unterminated\n"), 0o644))
	assert.Error(t, s.Reload())

	ws, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Shop", ws.Name)
	assert.Equal(t, path, s.Path())
}

func TestNewFileSessionInvalidSchema(t *testing.T) {
	_, err := NewFileSession(writeSchema(t, "schema.yaml", "modules:\n  - name: M\n    classes:\n      - name: A\n        ancestor: Missing\n"), 0)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/schema.yaml", []byte(shopYAML), 0o644))

	cfg := config.Default()
	s, err := Open(cfg, dir)
	require.NoError(t, err)
	fileSession, isFile := s.(*FileSession)
	require.True(t, isFile)
	assert.Equal(t, FileEventDebounce, fileSession.debounce, "watch.debounce is not applied twice")
	require.NoError(t, s.Close())

	cfg.Schema.Source = config.SourceRemote
	s, err = Open(cfg, dir)
	require.NoError(t, err)
	remote, isRemote := s.(*RemoteSession)
	require.True(t, isRemote)
	assert.Equal(t, cfg.Schema.URL, remote.URL())
	require.NoError(t, s.Close())

	cfg.Schema.Source = "ftp"
	_, err = Open(cfg, dir)
	assert.Error(t, err)
}
