package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-data/helios/internal/state"
)

func writeSQL(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestConvertCommandWritesOutput(t *testing.T) {
	dir := setupTestEnv(t)
	input := writeSQL(t, dir, "load_orders.sql", "SELECT NVL(a, b) FROM t;\n")

	out, err := executeCommand(t, NewConvertCommand(), input)
	require.NoError(t, err)

	assert.Contains(t, out, "load_orders.sql")
	assert.Contains(t, out, "1 statements, 1 rewritten, 0 skeletons, 0 failures")

	converted, err := os.ReadFile(filepath.Join(dir, "load_orders_helios.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(a, b) FROM t;\n", string(converted))
}

func TestConvertCommandOutFlag(t *testing.T) {
	dir := setupTestEnv(t)
	input := writeSQL(t, dir, "in.sql", "SELECT TO_CHAR(d, 'YYYY-MM-DD') FROM t;\n")
	outPath := filepath.Join(dir, "custom.sql")

	_, err := executeCommand(t, NewConvertCommand(), "--out", outPath, input)
	require.NoError(t, err)

	converted, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(converted), "date_format(d, 'yyyy-MM-dd')")
}

func TestConvertCommandNoInput(t *testing.T) {
	setupTestEnv(t)

	_, err := executeCommand(t, NewConvertCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to convert")
}

func TestConvertCommandOutWithMultipleInputs(t *testing.T) {
	dir := setupTestEnv(t)
	a := writeSQL(t, dir, "a.sql", "SELECT 1 FROM DUAL;\n")
	b := writeSQL(t, dir, "b.sql", "SELECT 2 FROM DUAL;\n")

	_, err := executeCommand(t, NewConvertCommand(), "--out", filepath.Join(dir, "o.sql"), a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out supports a single input file")
}

func TestConvertCommandRejectsNonSQLInput(t *testing.T) {
	dir := setupTestEnv(t)
	input := writeSQL(t, dir, "notes.txt", "SELECT 1;\n")

	_, err := executeCommand(t, NewConvertCommand(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversion failed")
	assert.Contains(t, err.Error(), ".sql file")
}

func TestConvertCommandFailuresKeepZeroExit(t *testing.T) {
	dir := setupTestEnv(t)
	input := writeSQL(t, dir, "dyn.sql", "EXECUTE IMMEDIATE 'TRUNCATE TABLE t';\n")

	out, err := executeCommand(t, NewConvertCommand(), "--no-llm", input)
	require.NoError(t, err, "per-statement failures must not fail the command")

	assert.Contains(t, out, "1 failures")

	converted, readErr := os.ReadFile(filepath.Join(dir, "dyn_helios.sql"))
	require.NoError(t, readErr)
	assert.Contains(t, string(converted), "HELIOS_FAILURE: UNSUPPORTED_CONSTRUCT")
}

func TestConvertCommandManifest(t *testing.T) {
	dir := setupTestEnv(t)
	a := writeSQL(t, dir, "a.sql", "SELECT NVL(x, 0) FROM orders;\n")
	b := writeSQL(t, dir, "b.sql", "SELECT TRUNC(ts) FROM events;\n")
	manifest := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(
		"- path: "+a+"\n- path: "+b+"\n"), 0o644))

	out, err := executeCommand(t, NewConvertCommand(), "--manifest", manifest)
	require.NoError(t, err)

	assert.Contains(t, out, "a.sql")
	assert.Contains(t, out, "b.sql")
	assert.FileExists(t, filepath.Join(dir, "a_helios.sql"))
	assert.FileExists(t, filepath.Join(dir, "b_helios.sql"))
}

func TestConvertCommandRecordsHistory(t *testing.T) {
	dir := setupTestEnv(t)
	input := writeSQL(t, dir, "run.sql", "SELECT 1 FROM DUAL;\n")

	_, err := executeCommand(t, NewConvertCommand(), "--provider", "delta", input)
	require.NoError(t, err)

	st := state.NewStore()
	require.NoError(t, st.Open(filepath.Join(dir, "history.db")))
	defer st.Close()

	runs, err := st.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, input, runs[0].SourcePath)
	assert.Equal(t, "delta", runs[0].Provider)
	assert.Equal(t, 1, runs[0].Statements)
}
