package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-data/helios/internal/testutil"
)

func TestWatchStopsOnCancel(t *testing.T) {
	c := New(Options{}, nil, nil, testutil.NewLogger(t))
	src := writeInput(t, "q.sql", "SELECT 1;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Watch(ctx, []string{src}, nil))
}

func TestWatchUnwatchablePath(t *testing.T) {
	c := New(Options{}, nil, nil, nil)

	err := c.Watch(context.Background(), []string{"/no-such-dir-helios/q.sql"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch")
}

func TestWatchReconvertsOnWrite(t *testing.T) {
	c := New(Options{}, nil, nil, testutil.NewLogger(t))
	dir := t.TempDir()
	src := filepath.Join(dir, "q.sql")
	out := filepath.Join(dir, "q_helios.sql")
	require.NoError(t, os.WriteFile(src, []byte("SELECT 1;\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, []string{src}, nil) }()

	// Rewrite the input until the watcher has picked it up; the first
	// writes may land before the watch is established.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(src, []byte("SELECT NVL(a, b) FROM t;\n"), 0o644)
		data, err := os.ReadFile(out)
		return err == nil && string(data) == "SELECT COALESCE(a, b) FROM t;\n"
	}, 10*time.Second, 300*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
