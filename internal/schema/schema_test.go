package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-data/helios/internal/testutil"
)

// fakeStrategy counts invocations and returns canned columns or an error.
type fakeStrategy struct {
	name  string
	cols  []string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string {
	return f.name
}

func (f *fakeStrategy) Columns(context.Context, string) ([]string, error) {
	f.calls++
	return f.cols, f.err
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"auto", "cache", "metastore", "spark-sql"} {
		mode, err := ParseMode(valid)
		require.NoError(t, err)
		assert.Equal(t, Mode(valid), mode)
	}

	_, err := ParseMode("hive")
	assert.ErrorContains(t, err, "unknown schema mode")
}

func TestResolveCacheHitSkipsStrategies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(map[string][]string{"users": {"id", "name"}}))
	st := &fakeStrategy{name: "metastore", cols: []string{"other"}}
	r := NewResolver(store, testutil.NewLogger(t), st)

	cols, err := r.Resolve(context.Background(), "users", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)
	assert.Zero(t, st.calls)
}

func TestResolveCacheModeNeverInvokesStrategies(t *testing.T) {
	st := &fakeStrategy{name: "metastore", cols: []string{"id"}}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), st)

	_, err := r.Resolve(context.Background(), "users", ModeCache)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ReasonNotCached, resolveErr.Reason)
	assert.Equal(t, "users", resolveErr.Table)
	assert.Zero(t, st.calls)
}

func TestResolveAutoTriesStrategiesInOrder(t *testing.T) {
	store := NewMemoryStore()
	first := &fakeStrategy{name: "metastore", err: errors.New("connection refused")}
	second := &fakeStrategy{name: "spark-sql", cols: []string{"id", "amount"}}
	r := NewResolver(store, testutil.NewLogger(t), first, second)

	cols, err := r.Resolve(context.Background(), " orders ", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, cols)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)

	// The winning result is persisted under the trimmed table name.
	cache, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, cache["orders"])
}

func TestResolveAutoFirstSuccessShortCircuits(t *testing.T) {
	first := &fakeStrategy{name: "metastore", cols: []string{"id"}}
	second := &fakeStrategy{name: "spark-sql", cols: []string{"never"}}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), first, second)

	cols, err := r.Resolve(context.Background(), "t", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, cols)
	assert.Zero(t, second.calls)
}

func TestResolveNamedStrategyOnly(t *testing.T) {
	meta := &fakeStrategy{name: "metastore", cols: []string{"id"}}
	spark := &fakeStrategy{name: "spark-sql", cols: []string{"id"}}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), meta, spark)

	_, err := r.Resolve(context.Background(), "t", ModeSparkSQL)
	require.NoError(t, err)
	assert.Zero(t, meta.calls)
	assert.Equal(t, 1, spark.calls)
}

func TestResolveNamedStrategyFailure(t *testing.T) {
	spark := &fakeStrategy{name: "spark-sql", err: errors.New("binary not found")}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), spark)

	_, err := r.Resolve(context.Background(), "t", ModeSparkSQL)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ReasonStrategyFailed, resolveErr.Reason)
	assert.ErrorContains(t, resolveErr, "binary not found")
}

func TestResolveAutoExhausted(t *testing.T) {
	first := &fakeStrategy{name: "metastore", err: errors.New("no dsn")}
	second := &fakeStrategy{name: "spark-sql", err: errors.New("spawn failed")}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), first, second)

	_, err := r.Resolve(context.Background(), "t", ModeAuto)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ReasonUnresolvable, resolveErr.Reason)
}

func TestResolveEmptyStrategyResultContinues(t *testing.T) {
	first := &fakeStrategy{name: "metastore", cols: nil}
	second := &fakeStrategy{name: "spark-sql", cols: []string{"id"}}
	r := NewResolver(NewMemoryStore(), testutil.NewLogger(t), first, second)

	cols, err := r.Resolve(context.Background(), "t", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, cols)
}

func TestResolveErrorMessage(t *testing.T) {
	err := &ResolveError{Table: "t", Reason: ReasonStrategyFailed, Err: errors.New("boom")}
	assert.Equal(t, "resolve schema for t: strategy failed: boom", err.Error())

	bare := &ResolveError{Table: "t", Reason: ReasonNotCached}
	assert.Equal(t, "resolve schema for t: not cached", bare.Error())
}
