package state

import (
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestStoreOpenClose(t *testing.T) {
	store := NewStore()

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStoreNotOpened(t *testing.T) {
	store := NewStore()

	if err := store.RecordRun(&Run{}); err == nil || !strings.Contains(err.Error(), "not opened") {
		t.Errorf("RecordRun on unopened store: got %v", err)
	}
	if _, err := store.ListRuns(0); err == nil || !strings.Contains(err.Error(), "not opened") {
		t.Errorf("ListRuns on unopened store: got %v", err)
	}
	if err := store.Migrate(); err == nil || !strings.Contains(err.Error(), "not opened") {
		t.Errorf("Migrate on unopened store: got %v", err)
	}
}

func TestMigrateCreatesRunsTable(t *testing.T) {
	store := setupTestStore(t)

	rows, err := store.db.Query("SELECT 1 FROM conversion_runs LIMIT 1")
	if err != nil {
		t.Fatalf("conversion_runs table does not exist: %v", err)
	}
	_ = rows.Close()
}

func TestRecordAndGetRun(t *testing.T) {
	store := setupTestStore(t)

	run := &Run{
		SourcePath: "etl/load_orders.sql",
		OutputPath: "etl/load_orders_helios.sql",
		Provider:   "hive",
		Statements: 12,
		Rewritten:  9,
		Skeletons:  2,
		Failures:   1,
		DurationMS: 340,
	}
	if err := store.RecordRun(run); err != nil {
		t.Fatalf("failed to record run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run ID should be assigned")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("run CreatedAt should be assigned")
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.SourcePath != run.SourcePath {
		t.Errorf("source path: got %q, want %q", got.SourcePath, run.SourcePath)
	}
	if got.OutputPath != run.OutputPath {
		t.Errorf("output path: got %q, want %q", got.OutputPath, run.OutputPath)
	}
	if got.Provider != "hive" {
		t.Errorf("provider: got %q, want hive", got.Provider)
	}
	if got.Statements != 12 || got.Rewritten != 9 || got.Skeletons != 2 || got.Failures != 1 {
		t.Errorf("counters: got %d/%d/%d/%d, want 12/9/2/1",
			got.Statements, got.Rewritten, got.Skeletons, got.Failures)
	}
	if got.DurationMS != 340 {
		t.Errorf("duration: got %d, want 340", got.DurationMS)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("no-such-id")
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, src := range []string{"a.sql", "b.sql", "c.sql"} {
		run := &Run{
			SourcePath: src,
			OutputPath: src,
			Provider:   "hive",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordRun(run); err != nil {
			t.Fatalf("failed to record run %d: %v", i, err)
		}
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].SourcePath != "c.sql" || runs[2].SourcePath != "a.sql" {
		t.Errorf("expected newest first, got %q ... %q", runs[0].SourcePath, runs[2].SourcePath)
	}

	limited, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list limited runs: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(limited))
	}
	if limited[0].SourcePath != "c.sql" {
		t.Errorf("expected c.sql first, got %q", limited[0].SourcePath)
	}
}

func TestClearRuns(t *testing.T) {
	store := setupTestStore(t)

	for _, src := range []string{"a.sql", "b.sql"} {
		if err := store.RecordRun(&Run{SourcePath: src, OutputPath: src, Provider: "hive"}); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	n, err := store.ClearRuns()
	if err != nil {
		t.Fatalf("failed to clear runs: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared rows, got %d", n)
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after clear, got %d", len(runs))
	}
}
