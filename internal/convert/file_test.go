package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-data/helios/internal/state"
	"github.com/helios-data/helios/internal/testutil"
)

type fakeHistory struct {
	mu   sync.Mutex
	runs []*state.Run
	err  error
}

func (f *fakeHistory) RecordRun(run *state.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertPath(t *testing.T) {
	c := New(Options{Provider: "hive"}, nil, nil, testutil.NewLogger(t))
	history := &fakeHistory{}

	src := writeInput(t, "load_orders.sql", "SELECT NVL(a, b) FROM t;\nBEGIN NULL END;\n")
	pr, err := c.ConvertPath(context.Background(), src, "", history)
	require.NoError(t, err)

	wantOut := filepath.Join(filepath.Dir(src), "load_orders_helios.sql")
	assert.Equal(t, wantOut, pr.OutputPath)
	assert.Equal(t, src, pr.SourcePath)
	assert.Equal(t, 2, pr.Statements)
	assert.Equal(t, 1, pr.Rewritten)
	assert.Equal(t, 1, pr.Failures)

	data, err := os.ReadFile(wantOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SELECT COALESCE(a, b) FROM t;")
	assert.Contains(t, string(data), "-- HELIOS_FAILURE: UNSUPPORTED_CONSTRUCT | chunk_id=2")

	require.Len(t, history.runs, 1)
	run := history.runs[0]
	assert.Equal(t, src, run.SourcePath)
	assert.Equal(t, wantOut, run.OutputPath)
	assert.Equal(t, "hive", run.Provider)
	assert.Equal(t, 2, run.Statements)
	assert.Equal(t, 1, run.Rewritten)
	assert.Equal(t, 1, run.Failures)
}

func TestConvertPathOutOverride(t *testing.T) {
	c := New(Options{}, nil, nil, nil)

	src := writeInput(t, "q.sql", "SELECT 1;\n")
	out := filepath.Join(filepath.Dir(src), "custom.sql")
	pr, err := c.ConvertPath(context.Background(), src, out, nil)
	require.NoError(t, err)
	assert.Equal(t, out, pr.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", string(data))
}

func TestConvertPathRejectsNonSQL(t *testing.T) {
	c := New(Options{}, nil, nil, nil)

	_, err := c.ConvertPath(context.Background(), "notes.txt", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input must be an existing .sql file")
}

func TestConvertPathMissingFile(t *testing.T) {
	c := New(Options{}, nil, nil, nil)

	_, err := c.ConvertPath(context.Background(), filepath.Join(t.TempDir(), "missing.sql"), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestConvertPathHistoryErrorIgnored(t *testing.T) {
	c := New(Options{}, nil, nil, testutil.NewLogger(t))

	src := writeInput(t, "q.sql", "SELECT 1;\n")
	_, err := c.ConvertPath(context.Background(), src, "", &fakeHistory{err: errors.New("db gone")})
	require.NoError(t, err)
}

func TestPathResultSummary(t *testing.T) {
	pr := PathResult{
		SourcePath: "a.sql",
		OutputPath: "a_helios.sql",
		Result:     Result{Statements: 5, Rewritten: 3, Skeletons: 1, Failures: 1},
	}
	s := pr.Summary()
	assert.Contains(t, s, "a.sql -> a_helios.sql")
	assert.Contains(t, s, "5 statements")
	assert.Contains(t, s, "3 rewritten")
	assert.Contains(t, s, "1 skeletons")
	assert.Contains(t, s, "1 failures")
}
