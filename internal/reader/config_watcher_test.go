package reader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitConfigMsg(t *testing.T, w *ConfigWatcher) ConfigChangedMsg {
	t.Helper()
	ch := make(chan any, 1)
	go func() { ch <- w.Start()() }()

	select {
	case msg := <-ch:
		got, ok := msg.(ConfigChangedMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change")
		return ConfigChangedMsg{}
	}
}

func TestNewConfigWatcher_Unwatchable(t *testing.T) {
	assert.Nil(t, NewConfigWatcher("", t.TempDir()))
	assert.Nil(t, NewConfigWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"), t.TempDir()))
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("style:\n  text_size: 12\n"), 0o644))

	w := NewConfigWatcher(path, dir)
	require.NotNil(t, w)
	t.Cleanup(func() { _ = w.Close() })
	w.debounceDur = 20 * time.Millisecond

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte("style:\n  text_size: 14\n  padding: 2\n"), 0o644)
	}()

	msg := waitConfigMsg(t, w)
	require.NoError(t, msg.Err)
	require.NotNil(t, msg.Config)
	assert.InDelta(t, 14, msg.Config.Style.TextSize, 1e-9)
	assert.InDelta(t, 2, msg.Config.Style.Padding, 1e-9)
	assert.Equal(t, dir, msg.Config.DataDir)
}

func TestConfigWatcher_InvalidConfigReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	w := NewConfigWatcher(path, dir)
	require.NotNil(t, w)
	t.Cleanup(func() { _ = w.Close() })
	w.debounceDur = 20 * time.Millisecond

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("reader:\n  hot_zone_width: 0.9\n"), 0o644)
	}()

	msg := waitConfigMsg(t, w)
	assert.Error(t, msg.Err)
	assert.Nil(t, msg.Config)
}

func TestConfigWatcher_CloseEndsStart(t *testing.T) {
	dir := t.TempDir()
	w := NewConfigWatcher(filepath.Join(dir, "config.yaml"), dir)
	require.NotNil(t, w)

	done := make(chan any, 1)
	go func() { done <- w.Start()() }()
	require.NoError(t, w.Close())

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Close")
	}
}
